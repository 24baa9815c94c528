//go:build linux || darwin || freebsd || netbsd || openbsd

package dispatcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"
)

// ExecRunner runs every Process as a fresh copy of the workload program.
// Signals go through gopsutil: SIGSTOP to suspend, SIGCONT to resume
// and SIGTERM to terminate.
type ExecRunner struct {
	Path string
	Args []string

	workloads map[string]*workload
	reaping   sync.WaitGroup
}

type workload struct {
	cmd  *exec.Cmd
	proc *process.Process
	out  *outputDevice
	// exited is set once wait4 collected the workload's exit.
	exited bool
}

// NewExecRunner checks that path can be run and returns an ExecRunner for it.
func NewExecRunner(path string, args []string) (Runner, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: workload %s: %v", ErrProcessControl, path, err)
	}
	return &ExecRunner{
		Path:      resolved,
		Args:      args,
		workloads: map[string]*workload{},
	}, nil
}

func (e *ExecRunner) Start(p *Process) error {
	if e.workloads == nil {
		e.workloads = map[string]*workload{}
	}
	if _, ok := e.workloads[p.Id]; ok {
		return fmt.Errorf("workload %s already spawned", p.Id)
	}

	cmd := exec.Command(e.Path, e.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	p.Handle = cmd.Process.Pid

	proc, err := process.NewProcess(int32(p.Handle))
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return err
	}

	e.workloads[p.Id] = &workload{
		cmd:  cmd,
		proc: proc,
		out:  newOutputDevice(fmt.Sprintf("%s/%d", p.Id, p.Handle), stdout),
	}
	log.WithFields(log.Fields{"process": p.Id, "pid": p.Handle}).Debug("[Runner] spawned")
	return nil
}

// Suspend sends SIGSTOP and waits for the kernel to report the stop.
// A workload that already exited is collected and left alone.
func (e *ExecRunner) Suspend(p *Process) error {
	w, err := e.lookup(p)
	if err != nil {
		return err
	}
	if w.exited {
		return nil
	}
	if err := w.proc.Suspend(); err != nil {
		if gone(err) {
			e.exited(p, w, "gone before SIGSTOP")
			return nil
		}
		return err
	}

	var ws syscall.WaitStatus
	for {
		_, err = syscall.Wait4(p.Handle, &ws, syscall.WUNTRACED, nil)
		if err != syscall.EINTR {
			break
		}
	}
	if err != nil {
		return err
	}
	switch {
	case ws.Stopped():
		log.WithFields(log.Fields{"process": p.Id, "pid": p.Handle}).Debug("[Runner] stopped")
		return nil
	case ws.Exited() || ws.Signaled():
		// wait4 reaped it
		e.exited(p, w, fmt.Sprintf("exited with status %v", ws))
		return nil
	}
	return fmt.Errorf("unexpected wait status %v", ws)
}

// Resume sends SIGCONT and returns straight away.
func (e *ExecRunner) Resume(p *Process) error {
	w, err := e.lookup(p)
	if err != nil {
		return err
	}
	if w.exited {
		return nil
	}
	if err := w.proc.Resume(); err != nil {
		if gone(err) {
			e.exited(p, w, "gone before SIGCONT")
			return nil
		}
		return err
	}
	return nil
}

// Terminate sends SIGTERM and reaps the workload.
func (e *ExecRunner) Terminate(p *Process) error {
	w, err := e.lookup(p)
	if err != nil {
		return err
	}
	delete(e.workloads, p.Id)

	if !w.exited {
		if err := w.proc.Terminate(); err != nil && !gone(err) {
			log.WithFields(log.Fields{"process": p.Id, "pid": p.Handle}).WithError(err).
				Warn("[Runner] SIGTERM failed, killing")
			_ = w.cmd.Process.Kill()
		}
	}
	<-w.out.Done
	err = w.cmd.Wait()
	if w.exited {
		// the exit status is gone already, Wait only releases the pipes
		return nil
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return err
		}
	}
	log.WithFields(log.Fields{"process": p.Id, "pid": p.Handle}).Debug("[Runner] reaped")
	return nil
}

// Kill sends SIGKILL to a workload the controller dropped and reaps it in
// the background. Close waits for those reaps.
func (e *ExecRunner) Kill(p *Process) error {
	w, ok := e.workloads[p.Id]
	if !ok {
		return nil
	}
	delete(e.workloads, p.Id)

	err := e.kill(w)
	e.reaping.Add(1)
	go func() {
		defer e.reaping.Done()
		<-w.out.Done
		_ = w.cmd.Wait()
		log.WithFields(log.Fields{"process": p.Id, "pid": p.Handle}).Debug("[Runner] reaped")
	}()
	return err
}

// Close kills every workload left, stopped or not, and reaps them all.
func (e *ExecRunner) Close() error {
	var errs []error
	for id, w := range e.workloads {
		delete(e.workloads, id)
		if err := e.kill(w); err != nil {
			errs = append(errs, fmt.Errorf("kill %s: %w", id, err))
		}
		<-w.out.Done
		_ = w.cmd.Wait()
		log.WithFields(log.Fields{"process": id, "pid": w.cmd.Process.Pid}).Info("[Runner] cleaned up")
	}
	e.reaping.Wait()
	return errors.Join(errs...)
}

// kill continues a stopped workload and kills it.
func (e *ExecRunner) kill(w *workload) error {
	if w.exited {
		return nil
	}
	_ = w.proc.Resume()
	if err := w.cmd.Process.Kill(); err != nil && !gone(err) {
		return err
	}
	return nil
}

func (e *ExecRunner) exited(p *Process, w *workload, why string) {
	w.exited = true
	log.WithFields(log.Fields{"process": p.Id, "pid": p.Handle}).Info("[Runner] workload ", why)
}

// gone reports whether a signal failed because the process no longer exists.
func gone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH)
}

func (e *ExecRunner) lookup(p *Process) (*workload, error) {
	w, ok := e.workloads[p.Id]
	if !ok {
		return nil, fmt.Errorf("no workload for %s", p.Id)
	}
	return w, nil
}
