// Package process terminates browser process trees left behind by rod.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned for PIDs that would target init or the
// caller's own process group.
var ErrInvalidPID = errors.New("invalid pid")

// KillTree kills pid and its children. Errors are informational: callers
// run launcher.Kill afterwards as a fallback.
func KillTree(pid int) error {
	if pid <= 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
