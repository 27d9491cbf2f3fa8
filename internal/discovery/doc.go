// Package discovery finds LG webOS TVs on the local network.
//
// One SSDP M-SEARCH is sent per search target, vendor-specific target first.
// Replies from LG devices are resolved to a friendly name by fetching the
// UPnP device description named in their LOCATION header. The search stops
// before the next target as soon as one TV has answered.
package discovery
