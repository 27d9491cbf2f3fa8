// Package sshtest runs an in-process SSH server for tests. It accepts a
// single authorized key, answers exec requests through a handler and
// records every command it was asked to run.
package sshtest

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/crypto/ssh"
)

// Handler produces the stdout and exit status for an exec request.
type Handler func(command string) (stdout string, exitStatus int)

// Exec is one recorded exec request.
type Exec struct {
	User    string
	Command string
}

// Server is a minimal SSH server bound to 127.0.0.1.
type Server struct {
	Host string
	Port string

	handler Handler

	mu    sync.Mutex
	execs []Exec
}

// NewServer starts a server that only admits authorized. The listener is
// closed when the test ends.
func NewServer(t testing.TB, authorized ssh.PublicKey, handler Handler) *Server {
	t.Helper()

	_, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	hostSigner, err := ssh.NewSignerFromKey(hostPriv)
	if err != nil {
		t.Fatalf("host signer: %v", err)
	}

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if authorized != nil && bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown public key for %q", conn.User())
		},
	}
	cfg.AddHostKey(hostSigner)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	s := &Server{Host: host, Port: port, handler: handler}
	go s.serve(ln, cfg)
	return s
}

// Execs returns the exec requests received so far.
func (s *Server) Execs() []Exec {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exec, len(s.execs))
	copy(out, s.execs)
	return out
}

func (s *Server) serve(ln net.Listener, cfg *ssh.ServerConfig) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn, cfg)
	}
}

func (s *Server) handleConn(nConn net.Conn, cfg *ssh.ServerConfig) {
	defer nConn.Close()

	sconn, chans, reqs, err := ssh.NewServerConn(nConn, cfg)
	if err != nil {
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(sconn.User(), ch, requests)
	}
}

func (s *Server) handleSession(user string, ch ssh.Channel, requests <-chan *ssh.Request) {
	defer ch.Close()

	for req := range requests {
		switch req.Type {
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)

			s.mu.Lock()
			s.execs = append(s.execs, Exec{User: user, Command: payload.Command})
			s.mu.Unlock()

			stdout, status := "", 0
			if s.handler != nil {
				stdout, status = s.handler(payload.Command)
			}
			_, _ = io.WriteString(ch, stdout)
			_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{uint32(status)}))
			return
		default:
			_ = req.Reply(req.Type == "pty-req", nil)
		}
	}
}

// WriteKeyPair writes an unencrypted ed25519 key pair as dir/name and
// dir/name.pub and returns the private key path and public key.
func WriteKeyPair(t testing.TB, dir, name string) (string, ssh.PublicKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "sshtest")
	if err != nil {
		t.Fatalf("marshal private key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("public key: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("write private key: %v", err)
	}
	if err := os.WriteFile(path+".pub", ssh.MarshalAuthorizedKey(sshPub), 0644); err != nil {
		t.Fatalf("write public key: %v", err)
	}
	return path, sshPub
}
