package discovery

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"time"
)

// MulticastAddr is the SSDP group address.
const MulticastAddr = "239.255.255.250:1900"

// maxReplySize bounds one SSDP datagram.
const maxReplySize = 8192

// UDPSearcher sends M-SEARCH requests over UDP multicast.
type UDPSearcher struct {
	// Addr overrides MulticastAddr.
	Addr string
}

// Request renders the M-SEARCH message for st.
func Request(st string) []byte {
	return []byte("M-SEARCH * HTTP/1.1\r\n" +
		"HOST: " + MulticastAddr + "\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: 2\r\n" +
		"ST: " + st + "\r\n" +
		"\r\n")
}

// Search implements Searcher. The socket is closed when the window ends
// or ctx is cancelled, whichever comes first.
func (u *UDPSearcher) Search(ctx context.Context, st string, window time.Duration) ([]Response, error) {
	addr := u.Addr
	if addr == "" {
		addr = MulticastAddr
	}
	dst, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("open udp socket: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if _, err := conn.WriteToUDP(Request(st), dst); err != nil {
		return nil, fmt.Errorf("send m-search: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(window)); err != nil {
		return nil, err
	}

	var responses []Response
	buf := make([]byte, maxReplySize)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if stderrors.Is(err, os.ErrDeadlineExceeded) {
				return responses, nil
			}
			if ctx.Err() != nil {
				return responses, ctx.Err()
			}
			return responses, fmt.Errorf("read ssdp reply: %w", err)
		}
		responses = append(responses, Response{IP: from.IP.String(), Raw: string(buf[:n])})
	}
}
