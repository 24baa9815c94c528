//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package dispatcher

import (
	"fmt"
	"runtime"
)

// NewExecRunner is only available where workloads can be stopped with signals.
func NewExecRunner(path string, args []string) (Runner, error) {
	return nil, fmt.Errorf("%w: no job control for %s on %s", ErrProcessControl, path, runtime.GOOS)
}
