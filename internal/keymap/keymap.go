// Package keymap writes the Kodi keymap that binds a remote-control button
// to the backlight toggle.
package keymap

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rileyhilliard/backlight/internal/errors"
)

// FileName is the keymap document written into the keymap directory.
const FileName = "backlight.xml"

// Buttons are the <remote> button names Kodi understands.
var Buttons = map[string]bool{
	"left": true, "right": true, "up": true, "down": true, "select": true,
	"back": true, "menu": true, "info": true, "display": true, "title": true,
	"play": true, "pause": true, "reverse": true, "forward": true,
	"skipplus": true, "skipminus": true, "stop": true, "power": true,
	"zero": true, "one": true, "two": true, "three": true, "four": true,
	"five": true, "six": true, "seven": true, "eight": true, "nine": true,
	"mytv": true, "mymusic": true, "mypictures": true, "myvideo": true,
	"record": true, "start": true, "volumeplus": true, "volumeminus": true,
	"channelplus": true, "channelminus": true, "pageplus": true, "pageminus": true,
	"mute": true, "recordedtv": true, "guide": true, "livetv": true,
	"liveradio": true, "epgsearch": true, "star": true, "hash": true,
	"clear": true, "enter": true, "playlist": true, "teletext": true,
	"red": true, "green": true, "yellow": true, "blue": true,
	"subtitle": true, "language": true, "eject": true,
	"contentsmenu": true, "rootmenu": true, "topmenu": true, "dvdmenu": true,
}

// Mapping binds one remote button to a Kodi builtin action.
type Mapping struct {
	Button string
	Action string
}

// DefaultAction runs exe with the toggle argument. Paths with characters
// the shell treats specially are single-quoted, then backslash-escaped for
// Kodi's builtin parameter parser.
func DefaultAction(exe string) string {
	cmd := shellQuote(exe) + " toggle"
	cmd = kodiEscaper.Replace(cmd)
	return fmt.Sprintf(`System.Exec("%s")`, cmd)
}

var kodiEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("/._-+:@%=,", r)
}

// ValidButton reports whether name is a Kodi remote button.
func ValidButton(name string) bool {
	return Buttons[strings.ToLower(name)]
}

// ButtonNames returns the known buttons sorted alphabetically.
func ButtonNames() []string {
	names := make([]string, 0, len(Buttons))
	for name := range Buttons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render returns the keymap XML for m.
func Render(m Mapping) ([]byte, error) {
	button := strings.ToLower(strings.TrimSpace(m.Button))
	if !Buttons[button] {
		return nil, errors.New(errors.ErrKeymap,
			fmt.Sprintf("%q is not a Kodi remote button", m.Button),
			"Pick one of: red, green, yellow, blue, or another Kodi remote button name")
	}
	if strings.TrimSpace(m.Action) == "" {
		return nil, errors.New(errors.ErrKeymap, "Keymap action is empty", "")
	}

	var action strings.Builder
	if err := xml.EscapeText(&action, []byte(m.Action)); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrKeymap, "Can't encode keymap action", "")
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<keymap>\n")
	b.WriteString("  <global>\n")
	b.WriteString("    <remote>\n")
	fmt.Fprintf(&b, "      <%s>%s</%s>\n", button, action.String(), button)
	b.WriteString("    </remote>\n")
	b.WriteString("  </global>\n")
	b.WriteString("</keymap>\n")
	return []byte(b.String()), nil
}

// Write renders m into dir/backlight.xml and returns the file path.
// The file is replaced atomically.
func Write(dir string, m Mapping) (string, error) {
	data, err := Render(m)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrKeymap,
			fmt.Sprintf("Can't create keymap directory %s", dir),
			"Check keymap_dir in the config file")
	}

	path := filepath.Join(dir, FileName)
	tmp, err := os.CreateTemp(dir, ".backlight-*.xml")
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrKeymap,
			fmt.Sprintf("Can't write keymap in %s", dir),
			"Check permissions on the keymap directory")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.WrapWithCode(err, errors.ErrKeymap, "Can't write keymap", "")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrKeymap, "Can't write keymap", "")
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrKeymap, "Can't write keymap", "")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrKeymap,
			fmt.Sprintf("Can't replace %s", path),
			"Check permissions on the keymap directory")
	}
	return path, nil
}
