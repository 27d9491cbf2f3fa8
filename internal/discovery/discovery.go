package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/logger"
)

// Search targets, in the order they are tried.
const (
	TargetSecondScreen = "urn:lge-com:service:webos-second-screen:1"
	TargetAll          = "ssdp:all"
)

// DefaultTargets is the priority list used when Discoverer.Targets is empty.
var DefaultTargets = []string{TargetSecondScreen, TargetAll}

// DefaultWindow is how long replies are collected for each target.
const DefaultWindow = 3 * time.Second

// vendorMarkers identify an LG device in a raw SSDP reply.
var vendorMarkers = []string{"lge", "lg", "webos"}

// TV is one discovered television.
type TV struct {
	IP           string
	FriendlyName string
}

// Results maps IP to friendly name.
type Results map[string]string

// Sorted returns the results ordered by IP address.
func (r Results) Sorted() []TV {
	tvs := make([]TV, 0, len(r))
	for ip, name := range r {
		tvs = append(tvs, TV{IP: ip, FriendlyName: name})
	}
	sort.Slice(tvs, func(i, j int) bool {
		return ipLess(tvs[i].IP, tvs[j].IP)
	})
	return tvs
}

// ipLess orders parseable addresses numerically and falls back to string order.
func ipLess(a, b string) bool {
	ipA, ipB := net.ParseIP(a), net.ParseIP(b)
	if ipA == nil || ipB == nil {
		return a < b
	}
	ipA, ipB = ipA.To16(), ipB.To16()
	for i := range ipA {
		if ipA[i] != ipB[i] {
			return ipA[i] < ipB[i]
		}
	}
	return false
}

// Response is one SSDP reply.
type Response struct {
	IP  string
	Raw string
}

// Searcher sends one M-SEARCH for st and returns the replies received
// within window.
type Searcher interface {
	Search(ctx context.Context, st string, window time.Duration) ([]Response, error)
}

// Describer resolves a device description URL to its friendly name.
type Describer interface {
	FriendlyName(ctx context.Context, location string) (string, error)
}

// Discoverer runs SSDP searches and names the TVs that answer.
type Discoverer struct {
	Searcher  Searcher
	Describer Describer
	Targets   []string
	Window    time.Duration
	Log       logger.Logger
}

// New returns a Discoverer using UDP multicast and HTTP description
// fetches sent with userAgent.
func New(log logger.Logger, userAgent string) *Discoverer {
	if log == nil {
		log = logger.Noop()
	}
	return &Discoverer{
		Searcher:  &UDPSearcher{},
		Describer: NewHTTPDescriber(userAgent),
		Targets:   DefaultTargets,
		Window:    DefaultWindow,
		Log:       log,
	}
}

// Discover returns every LG TV found. An empty result with a nil error
// means nothing answered. Search failures are only reported when no
// target produced a TV.
func (d *Discoverer) Discover(ctx context.Context) (Results, error) {
	targets := d.Targets
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	window := d.Window
	if window <= 0 {
		window = DefaultWindow
	}
	log := d.Log
	if log == nil {
		log = logger.Noop()
	}

	found := Results{}
	var firstErr error

	for _, st := range targets {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		log.Debug("ssdp search st=%s window=%s", st, window)
		responses, err := d.Searcher.Search(ctx, st, window)
		if err != nil {
			log.Warn("ssdp search for %s failed: %v", st, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, resp := range responses {
			if resp.IP == "" {
				continue
			}
			if _, seen := found[resp.IP]; seen {
				continue
			}
			if !isVendorReply(resp.Raw) {
				continue
			}
			found[resp.IP] = d.name(ctx, resp, log)
			log.Debug("found %s (%s)", resp.IP, found[resp.IP])
		}

		if len(found) > 0 {
			return found, nil
		}
	}

	if firstErr != nil {
		return found, errors.WrapWithCode(firstErr, errors.ErrDiscovery,
			"TV discovery couldn't run",
			"Enter the TV's IP address manually")
	}
	return found, nil
}

func (d *Discoverer) name(ctx context.Context, resp Response, log logger.Logger) string {
	location := HeaderValue(resp.Raw, "LOCATION")
	if location == "" || d.Describer == nil {
		return FallbackName(resp.IP)
	}
	name, err := d.Describer.FriendlyName(ctx, location)
	if err != nil || name == "" {
		log.Debug("no friendly name for %s from %s: %v", resp.IP, location, err)
		return FallbackName(resp.IP)
	}
	return name
}

// FallbackName is the name given to a TV whose description can't be read.
func FallbackName(ip string) string {
	return fmt.Sprintf("LG TV (%s)", ip)
}

func isVendorReply(raw string) bool {
	lower := strings.ToLower(raw)
	for _, marker := range vendorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// HeaderValue returns the value of the named header in a raw HTTP-over-UDP
// message. Header names match case-insensitively.
func HeaderValue(raw, name string) string {
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(strings.TrimRight(line, "\r"), ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
