package remote

import (
	"encoding/json"
	"strings"
)

// runningMarker is what older PicCap builds are matched on when their
// reply isn't clean JSON.
const runningMarker = `"isRunning":true`

// State is the backlight service state as far as we can tell.
type State int

const (
	StateUnknown State = iota
	StateRunning
	StateStopped
	StateUnreachable
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Reply is the subset of a luna-send response we care about.
type Reply struct {
	ReturnValue *bool  `json:"returnValue"`
	IsRunning   bool   `json:"isRunning"`
	ErrorCode   int    `json:"errorCode"`
	ErrorText   string `json:"errorText"`
}

// OK reports whether the service accepted the call. Replies without a
// returnValue field count as accepted.
func (r Reply) OK() bool {
	return r.ReturnValue == nil || *r.ReturnValue
}

// ParseReply decodes the first JSON object in out. The pty adds carriage
// returns and some firmwares print a banner first, so the object is cut
// out of the surrounding text.
func ParseReply(out string) (Reply, bool) {
	clean := strings.ReplaceAll(out, "\r", "")
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end < start {
		return Reply{}, false
	}

	var r Reply
	if err := json.Unmarshal([]byte(clean[start:end+1]), &r); err != nil {
		return Reply{}, false
	}
	return r, true
}

// stateFromText is the fallback for replies ParseReply can't decode.
func stateFromText(out string) State {
	if strings.Contains(strings.ReplaceAll(out, " ", ""), runningMarker) {
		return StateRunning
	}
	return StateStopped
}
