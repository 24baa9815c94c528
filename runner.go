package dispatcher

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Runner is what the controller can do to the OS process behind a Process.
//
//   - Start spawns a fresh workload and sets p.Handle.
//   - Suspend stops it and blocks until the stop is acknowledged.
//   - Resume continues it and does not wait.
//   - Terminate stops it for good and reaps it.
//   - Kill gets rid of a workload the controller gave up on, without blocking.
//   - Close kills and reaps every workload still around.
//
// A workload that exits by itself is not an error: Suspend and Resume
// leave it alone and Terminate only collects it.
type Runner interface {
	Start(p *Process) error
	Suspend(p *Process) error
	Resume(p *Process) error
	Terminate(p *Process) error
	Kill(p *Process) error
	Close() error
}

// ErrInjected is what FakeRunner returns for an operation listed in Fail.
var ErrInjected = errors.New("injected failure")

// FakeRunner is an in-memory Runner: no OS process is ever touched,
// it hands out fake pids and records what it was asked to do.
type FakeRunner struct {
	// Fail holds "op:id" keys, e.g. "suspend:proc3", that fail with ErrInjected.
	Fail map[string]bool
	// Calls is every call made, as "op:id", in order.
	Calls []string
	// States is the state of each fake workload by process id.
	States map[string]Status
	// Closed is set once Close was called.
	Closed bool

	nextPid int
}

// NewFakeRunner returns a FakeRunner whose pids start at 1000.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Fail:    map[string]bool{},
		States:  map[string]Status{},
		nextPid: 1000,
	}
}

func (f *FakeRunner) Start(p *Process) error {
	if err := f.call("start", p); err != nil {
		return err
	}
	if _, ok := f.States[p.Id]; ok {
		return fmt.Errorf("workload %s already spawned", p.Id)
	}
	f.nextPid++
	p.Handle = f.nextPid
	f.States[p.Id] = StatusRunning
	return nil
}

func (f *FakeRunner) Suspend(p *Process) error {
	return f.move(p, "suspend", StatusRunning, StatusWaiting)
}

func (f *FakeRunner) Resume(p *Process) error {
	return f.move(p, "resume", StatusWaiting, StatusRunning)
}

func (f *FakeRunner) Terminate(p *Process) error {
	return f.move(p, "terminate", StatusRunning, StatusTerminated)
}

// Kill marks the workload terminated whatever state it was in.
func (f *FakeRunner) Kill(p *Process) error {
	if err := f.call("kill", p); err != nil {
		return err
	}
	if _, ok := f.States[p.Id]; ok {
		f.States[p.Id] = StatusTerminated
	}
	return nil
}

func (f *FakeRunner) Close() error {
	f.Closed = true
	for id := range f.States {
		f.States[id] = StatusTerminated
	}
	return nil
}

func (f *FakeRunner) move(p *Process, op string, from, to Status) error {
	if err := f.call(op, p); err != nil {
		return err
	}
	if s, ok := f.States[p.Id]; !ok || s != from {
		return fmt.Errorf("%s: workload %s is %v", op, p.Id, s)
	}
	f.States[p.Id] = to
	return nil
}

func (f *FakeRunner) call(op string, p *Process) error {
	key := op + ":" + p.Id
	f.Calls = append(f.Calls, key)
	log.WithFields(log.Fields{"op": op, "process": p.Id, "pid": p.Handle}).Trace("[Runner] fake")
	if f.Fail[key] {
		return ErrInjected
	}
	return nil
}
