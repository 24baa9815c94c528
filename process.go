package dispatcher

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Status is where a Process is in its lifecycle.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusWaiting
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusWaiting:
		return "waiting"
	case StatusTerminated:
		return "terminated"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Process is one line of the dispatch list plus the handle of the OS process
// running it once it has been started.
type Process struct {
	Id          string
	ArrivalTime uint
	// Priority is the current level, 0 is the highest.
	Priority        int
	InitialPriority int
	// ProcTime is the run time asked for, RemainingTime what is left of it.
	ProcTime      uint
	RemainingTime uint
	Status        Status
	// Handle is the OS pid, 0 until started.
	Handle int

	StartTick   uint
	FinishTick  uint
	Suspensions int
}

// NewProcess builds a Ready process.
func NewProcess(id string, arrivalTime uint, priority int, procTime uint) *Process {
	return &Process{
		Id:              id,
		ArrivalTime:     arrivalTime,
		Priority:        priority,
		InitialPriority: priority,
		ProcTime:        procTime,
		RemainingTime:   procTime,
		Status:          StatusReady,
	}
}

func (p *Process) String() string {
	return fmt.Sprintf("{%s %d %d %d}", p.Id, p.ArrivalTime, p.Priority, p.RemainingTime)
}

/********* lifecycle *********/

// Start spawns the workload of a Ready process: Ready -> Running.
func (p *Process) Start(r Runner) error {
	if err := p.expect(StatusReady, "start"); err != nil {
		return err
	}
	if err := r.Start(p); err != nil {
		return &ProcessControlError{Op: "start", Id: p.Id, Pid: p.Handle, Err: err}
	}
	p.Status = StatusRunning
	return nil
}

// Resume continues a suspended workload without waiting for it: Waiting -> Running.
func (p *Process) Resume(r Runner) error {
	if err := p.expect(StatusWaiting, "resume"); err != nil {
		return err
	}
	if err := r.Resume(p); err != nil {
		return &ProcessControlError{Op: "resume", Id: p.Id, Pid: p.Handle, Err: err}
	}
	p.Status = StatusRunning
	return nil
}

// Dispatch starts a Ready process or resumes a Waiting one.
func (p *Process) Dispatch(r Runner) error {
	if p.Status == StatusWaiting {
		return p.Resume(r)
	}
	return p.Start(r)
}

// Suspend stops the workload and waits until it has stopped: Running -> Waiting.
// The process then ages one level, never past lowest.
func (p *Process) Suspend(r Runner, lowest int) error {
	if err := p.expect(StatusRunning, "suspend"); err != nil {
		return err
	}
	if err := r.Suspend(p); err != nil {
		return &ProcessControlError{Op: "suspend", Id: p.Id, Pid: p.Handle, Err: err}
	}
	p.Status = StatusWaiting
	p.Suspensions++
	if p.Priority < lowest {
		p.Priority++
	}
	return nil
}

// Terminate stops the workload and reaps it: Running -> Terminated.
func (p *Process) Terminate(r Runner) error {
	if err := p.expect(StatusRunning, "terminate"); err != nil {
		return err
	}
	err := r.Terminate(p)
	// the record is done with either way, it must never be dispatched again
	p.Status = StatusTerminated
	if err != nil {
		return &ProcessControlError{Op: "terminate", Id: p.Id, Pid: p.Handle, Err: err}
	}
	return nil
}

func (p *Process) expect(status Status, op string) error {
	if p.Status != status {
		log.WithFields(log.Fields{
			"process": p,
			"status":  p.Status,
			"op":      op,
		}).Error("[Process] illegal transition")
		return fmt.Errorf("%w: %s %s process %s", ErrInvalidTransition, op, p.Status, p.Id)
	}
	return nil
}
