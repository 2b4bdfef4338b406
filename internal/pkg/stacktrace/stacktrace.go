// Package stacktrace trims runtime stacks down to the frames that belong to this module.
package stacktrace

import (
	"strings"
)

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" entries for every
// frame of stack that points into an internal package, outermost last.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, marker)
		if idx == -1 || !strings.Contains(line, ".go:") {
			continue
		}

		frame := line[idx+1:]
		if sp := strings.IndexByte(frame, ' '); sp != -1 {
			frame = frame[:sp]
		}
		paths = append(paths, frame)
	}
	return paths
}
