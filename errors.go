package dispatcher

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgs       = errors.New("invalid args")
	ErrOpenDispatchList  = errors.New("can't open dispatch list")
	ErrParse             = errors.New("error parsing dispatch list")
	ErrProcessControl    = errors.New("process control failed")
	ErrInvalidTransition = errors.New("invalid process transition")
)

// ParseError reports a dispatch list line that is not arrival,priority,proc_time.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: line %d %q: %v", ErrParse, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// ProcessControlError is a failed start, suspend, resume or terminate of a workload.
type ProcessControlError struct {
	Op  string
	Id  string
	Pid int
	Err error
}

func (e *ProcessControlError) Error() string {
	return fmt.Sprintf("%v: %s %s (pid %d): %v", ErrProcessControl, e.Op, e.Id, e.Pid, e.Err)
}

func (e *ProcessControlError) Unwrap() []error { return []error{ErrProcessControl, e.Err} }
