// Package wizard walks the user through first-run setup: pick a TV, make
// sure an SSH key exists, get it accepted by the TV and remember the TV.
//
// The flow is a small state machine:
//
//	discover -> key-check -> connection-test -> complete
//	                               |
//	                               v
//	                           key-copy -> verify -> complete
//
// Each state returns a Transition: advance to another state, abort with a
// reason, or complete. The TV address is persisted only in complete, so an
// aborted run never leaves a half-configured TV behind.
package wizard
