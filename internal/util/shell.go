// Package util holds small helpers shared by the remote and setup packages.
package util

import "strings"

// ShellQuote single-quotes s for a POSIX shell. Embedded single quotes
// become '\'' so the result is always one literal word.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ShellJoin quotes every argument and joins them with spaces, producing a
// command line the remote shell splits back into exactly these arguments.
func ShellJoin(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = ShellQuote(a)
	}
	return strings.Join(quoted, " ")
}
