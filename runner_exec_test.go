//go:build linux

package dispatcher

import (
	"os/exec"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecRunner(t *testing.T, path string, args ...string) Runner {
	t.Helper()
	if testing.Short() {
		t.Skip("spawns real processes")
	}
	if _, err := exec.LookPath(path); err != nil {
		t.Skipf("no %s binary", path)
	}
	r, err := NewExecRunner(path, args)
	require.NoError(t, err)
	return r
}

func newSleepRunner(t *testing.T) Runner {
	t.Helper()
	return newExecRunner(t, "sleep", "30")
}

func newExitingRunner(t *testing.T) Runner {
	t.Helper()
	return newExecRunner(t, "sh", "-c", "exit 0")
}

func pidExists(t *testing.T, pid int) bool {
	t.Helper()
	exists, err := process.PidExists(int32(pid))
	require.NoError(t, err)
	return exists
}

// failStart fails Start for one process and passes everything else through.
type failStart struct {
	Runner
	id string
}

func (f failStart) Start(p *Process) error {
	if p.Id == f.id {
		return ErrInjected
	}
	return f.Runner.Start(p)
}

func statusOf(t *testing.T, pid int) []string {
	t.Helper()
	proc, err := process.NewProcess(int32(pid))
	require.NoError(t, err)
	status, err := proc.Status()
	require.NoError(t, err)
	return status
}

func TestExecRunnerLifecycle(t *testing.T) {
	r := newSleepRunner(t)
	p := NewProcess("proc0", 0, 1, 3)

	require.NoError(t, p.Start(r))
	require.NotZero(t, p.Handle)
	pid := p.Handle

	require.NoError(t, p.Suspend(r, 3))
	assert.Contains(t, statusOf(t, pid), process.Stop)

	require.NoError(t, p.Resume(r))
	require.NoError(t, p.Suspend(r, 3))
	assert.Contains(t, statusOf(t, pid), process.Stop)
	require.NoError(t, p.Resume(r))
	assert.Equal(t, pid, p.Handle)

	require.NoError(t, p.Terminate(r))
	assert.False(t, pidExists(t, pid), "workload must be reaped")
}

func TestExecRunnerWorkloadExitsOnItsOwn(t *testing.T) {
	r := newExitingRunner(t)
	p := NewProcess("proc0", 0, 1, 3)

	require.NoError(t, p.Start(r))
	pid := p.Handle
	require.Eventually(t, func() bool {
		proc, err := process.NewProcess(int32(pid))
		if err != nil {
			return false
		}
		status, err := proc.Status()
		return err == nil && len(status) > 0 && status[0] == process.Zombie
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, p.Suspend(r, 3))
	assert.Equal(t, StatusWaiting, p.Status)
	require.NoError(t, p.Resume(r))
	require.NoError(t, p.Terminate(r))
	assert.Equal(t, StatusTerminated, p.Status)
	assert.False(t, pidExists(t, pid))
}

func TestExecRunnerEarlyExitKeepsSchedule(t *testing.T) {
	r := newExitingRunner(t)
	procs := []*Process{
		NewProcess("proc0", 0, 1, 5),
		NewProcess("proc1", 1, 0, 1),
	}
	c, err := NewController(DefaultLevels, r, procs)
	require.NoError(t, err)
	c.Quantum = 200 * time.Millisecond

	require.NoError(t, c.Boot())

	assert.Equal(t, []string{"proc1", "proc0"}, ids(c.Finished))
	assert.Equal(t, 1, procs[0].Suspensions)
	for _, p := range procs {
		assert.Equal(t, StatusTerminated, p.Status)
		assert.False(t, pidExists(t, p.Handle))
	}
}

func TestExecRunnerAbortReapsStoppedWorkloads(t *testing.T) {
	r := failStart{Runner: newSleepRunner(t), id: "proc1"}
	procs := []*Process{
		NewProcess("proc0", 0, 1, 5),
		NewProcess("proc1", 1, 1, 2),
	}
	c, err := NewController(DefaultLevels, r, procs)
	require.NoError(t, err)

	err = c.Boot()

	require.ErrorIs(t, err, ErrInjected)
	require.NotZero(t, procs[0].Handle)
	assert.Equal(t, StatusWaiting, procs[0].Status)
	assert.False(t, pidExists(t, procs[0].Handle), "stopped workload must be reaped")
}

func TestExecRunnerKill(t *testing.T) {
	r := newSleepRunner(t)
	p := NewProcess("proc0", 0, 1, 3)
	require.NoError(t, p.Start(r))
	require.NoError(t, p.Suspend(r, 3))

	require.NoError(t, r.Kill(p))
	require.NoError(t, r.Close())

	assert.False(t, pidExists(t, p.Handle))
	// nothing left to kill
	assert.NoError(t, r.Kill(p))
}

func TestExecRunnerDrivesController(t *testing.T) {
	r := newSleepRunner(t)
	procs := []*Process{
		NewProcess("proc0", 0, 1, 2),
		NewProcess("proc1", 1, 0, 1),
	}
	c, err := NewController(DefaultLevels, r, procs)
	require.NoError(t, err)

	require.NoError(t, c.Boot())

	assert.Equal(t, []string{"proc1", "proc0"}, ids(c.Finished))
	for _, p := range procs {
		assert.Equal(t, StatusTerminated, p.Status)
	}
}

func TestNewExecRunnerMissingWorkload(t *testing.T) {
	_, err := NewExecRunner("./no-such-workload", nil)
	assert.ErrorIs(t, err, ErrProcessControl)
}
