package discovery

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DescribeTimeout bounds one device description fetch.
const DescribeTimeout = 2 * time.Second

// maxDescriptionSize bounds how much of a description document is read.
const maxDescriptionSize = 1 << 20

// DefaultUserAgent identifies description fetches when no user agent is set.
const DefaultUserAgent = "Backlight/dev UPnP/1.1"

var friendlyNamePattern = regexp.MustCompile(`(?is)<friendlyName>\s*(.*?)\s*</friendlyName>`)

// HTTPDescriber fetches UPnP device descriptions over HTTP.
type HTTPDescriber struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPDescriber returns a describer with DescribeTimeout applied.
// An empty userAgent means DefaultUserAgent.
func NewHTTPDescriber(userAgent string) *HTTPDescriber {
	return &HTTPDescriber{
		Client:    &http.Client{Timeout: DescribeTimeout},
		UserAgent: userAgent,
	}
}

// FriendlyName implements Describer.
func (h *HTTPDescriber) FriendlyName(ctx context.Context, location string) (string, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: DescribeTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", err
	}
	ua := h.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("description fetch returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptionSize))
	if err != nil {
		return "", err
	}
	return ParseFriendlyName(string(body))
}

// ParseFriendlyName extracts the first <friendlyName> element of a
// device description.
func ParseFriendlyName(doc string) (string, error) {
	m := friendlyNamePattern.FindStringSubmatch(doc)
	if m == nil {
		return "", fmt.Errorf("no friendlyName in device description")
	}
	name := strings.TrimSpace(html.UnescapeString(m[1]))
	if name == "" {
		return "", fmt.Errorf("empty friendlyName in device description")
	}
	return name, nil
}
