package dispatcher

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ellandis/dispatcher-shell/buffer"
	log "github.com/sirupsen/logrus"
)

// DefaultLevels is the number of ready queues: 0 (highest) to 3.
const DefaultLevels = 4

// Controller is the simulated dispatcher. It owns the clock, the queue of
// processes that have not arrived yet, one ready queue per level and the CPU.
// A Process is held by exactly one of those at any time.
type Controller struct {
	CPU       CPU
	Runner    Runner
	Scheduler Scheduler

	// Quantum is how long Boot waits between ticks. 0 runs the ticks back to back.
	Quantum time.Duration
	// IsolateFailures drops a process whose workload could not be controlled
	// instead of stopping the whole run.
	IsolateFailures bool

	Levels  int
	pending *buffer.CircularBuffer[*Process]
	ready   []*buffer.CircularBuffer[*Process]

	procs    []*Process
	admitted int

	Trace    []Event
	Slices   []TimeSlice
	Finished []*Process
}

// NewController builds a controller for procs, in dispatch list order,
// with the MLFQ scheduler.
func NewController(levels int, runner Runner, procs []*Process) (*Controller, error) {
	if levels < 1 {
		return nil, fmt.Errorf("%w: need at least one level, got %d", ErrInvalidArgs, levels)
	}

	c := &Controller{
		Runner:    runner,
		Scheduler: MLFQScheduler{},
		Levels:    levels,
		pending:   buffer.NewCircularBuffer[*Process](),
		ready:     make([]*buffer.CircularBuffer[*Process], levels),
		procs:     procs,
	}
	for i := range c.ready {
		c.ready[i] = buffer.NewCircularBuffer[*Process]()
	}
	for _, p := range procs {
		if p.Priority < 0 || p.Priority >= levels {
			return nil, fmt.Errorf("%w: %s has priority %d, levels are 0..%d",
				ErrInvalidArgs, p.Id, p.Priority, levels-1)
		}
		c.pending.InsertBack(p)
	}
	return c, nil
}

// Boot ticks until every process has arrived and terminated.
func (c *Controller) Boot() error {
	field := "[Controller] "

	log.WithFields(log.Fields{
		"processes": len(c.procs),
		"levels":    c.Levels,
		"scheduler": fmt.Sprintf("%T", c.Scheduler),
	}).Info(field, "Boot")

	for !c.Done() {
		if err := c.Tick(); err != nil {
			log.WithError(err).WithField("clock", c.CPU.Clock).Error(field, "Abort")
			if cerr := c.Runner.Close(); cerr != nil {
				log.WithError(cerr).Warn(field, "Workloads left behind")
			}
			return err
		}
		if c.Quantum > 0 {
			time.Sleep(c.Quantum)
		}
	}

	log.WithField("clock", c.CPU.Clock).Info(field, "No process left. Shutdown.")
	log.WithField("trace", c.Trace).Debug(field, "Trace")
	return nil
}

// Tick runs one quantum: admit arrivals, reap a finished process,
// let the scheduler decide, execute, advance the clock.
func (c *Controller) Tick() error {
	c.admit()
	if err := c.reap(); err != nil {
		return err
	}
	if err := c.Scheduler.schedule(c); err != nil {
		return err
	}
	if c.CPU.Execute() {
		c.recordSlice(c.CPU.Running)
	}
	if log.IsLevelEnabled(log.TraceLevel) {
		log.WithFields(log.Fields{
			"clock":   c.CPU.Clock,
			"running": c.CPU.Running,
			"ready":   c.showQueues(),
		}).Trace("[Controller] Tick")
	}
	c.CPU.Clock++
	return nil
}

// Done reports whether every process has arrived and nothing is left to run.
func (c *Controller) Done() bool {
	return c.CPU.Idle() && c.admitted == len(c.procs) && c.queued() == 0
}

// Processes returns every process in dispatch list order.
func (c *Controller) Processes() []*Process { return c.procs }

// Queued returns the number of processes waiting at level.
func (c *Controller) Queued(level int) int { return c.ready[level].Size() }

func (c *Controller) queued() int {
	n := 0
	for _, q := range c.ready {
		n += q.Size()
	}
	return n
}

func (c *Controller) lowest() int { return c.Levels - 1 }

// showQueues renders the ready queues as [proc0,proc3] [] ...
func (c *Controller) showQueues() string {
	var b strings.Builder
	for i, q := range c.ready {
		if i > 0 {
			b.WriteString(" ")
		}
		q.Display(&b, func(w io.Writer, p *Process) {
			_, _ = io.WriteString(w, p.Id)
		})
	}
	return b.String()
}

// admit moves the processes arriving now to the back of their ready queue,
// keeping dispatch list order.
func (c *Controller) admit() {
	arrivals := buffer.NewDynamicArray[*Process]()
	later := buffer.NewCircularBuffer[*Process]()
	for _, p := range c.pending.Extract() {
		if p.ArrivalTime == c.CPU.Clock {
			arrivals.Insert(p)
		} else {
			later.InsertBack(p)
		}
	}
	buffer.UnionCDA(c.pending, later)

	for i := 0; i < arrivals.Size(); i++ {
		p, _ := arrivals.Get(i)
		c.ready[p.Priority].InsertBack(p)
		c.admitted++
		c.event(p, AdmitEvent)
		log.WithField("process", p).Debug("[Controller] Admit")
	}
}

// reap terminates the running process once it has no time left.
func (c *Controller) reap() error {
	if c.CPU.Idle() || c.CPU.Running.RemainingTime > 0 {
		return nil
	}

	p := c.CPU.Unload()
	log.WithField("process", p).Info("[Controller] RunningToTerminated")
	if err := p.Terminate(c.Runner); err != nil {
		return c.fail(p, err)
	}
	p.FinishTick = c.CPU.Clock
	c.Finished = append(c.Finished, p)
	c.event(p, TerminateEvent)
	return nil
}

// tryDispatch runs the head of the level queue, preempting whatever runs now.
// It reports false, and does nothing, when the queue is empty.
func (c *Controller) tryDispatch(level int, exclusive bool) (bool, error) {
	q := c.ready[level]
	if q.Size() == 0 {
		return false, nil
	}
	if !c.CPU.Idle() {
		if err := c.preempt(); err != nil {
			return true, err
		}
	}

	p, err := q.RemoveFront()
	if err != nil {
		return true, err
	}

	wasWaiting := p.Status == StatusWaiting
	if wasWaiting {
		log.WithField("process", p).Info("[Controller] WaitingToRunning")
	} else {
		log.WithField("process", p).Info("[Controller] ReadyToRunning")
	}
	if err := p.Dispatch(c.Runner); err != nil {
		return true, c.fail(p, err)
	}

	if wasWaiting {
		c.event(p, ResumeEvent)
	} else {
		p.StartTick = c.CPU.Clock
		c.event(p, StartEvent)
	}
	c.CPU.Load(p, exclusive)
	return true, nil
}

// preempt suspends the running process, ages it and queues it at the back
// of its new level.
func (c *Controller) preempt() error {
	p := c.CPU.Unload()
	log.WithField("process", p).Info("[Controller] RunningToWaiting")
	if err := p.Suspend(c.Runner, c.lowest()); err != nil {
		return c.fail(p, err)
	}
	c.ready[p.Priority].InsertBack(p)
	c.event(p, SuspendEvent)
	return nil
}

// fail handles a process control error: fatal unless IsolateFailures is set,
// in which case the workload is killed, the process is terminated in the
// books and never dispatched again.
func (c *Controller) fail(p *Process, err error) error {
	if !c.IsolateFailures {
		return err
	}
	log.WithError(err).WithField("process", p).Error("[Controller] Drop process")
	if kerr := c.Runner.Kill(p); kerr != nil {
		log.WithError(kerr).WithField("process", p).Warn("[Controller] Kill dropped workload")
	}
	p.Status = StatusTerminated
	p.FinishTick = c.CPU.Clock
	c.Finished = append(c.Finished, p)
	c.event(p, FailEvent)
	return nil
}

func (c *Controller) event(p *Process, typ EventType) {
	c.Trace = append(c.Trace, Event{
		Tick:     c.CPU.Clock,
		Pid:      p.Id,
		Type:     typ,
		Priority: p.Priority,
	})
}

func (c *Controller) recordSlice(p *Process) {
	if n := len(c.Slices); n > 0 {
		last := &c.Slices[n-1]
		if last.Pid == p.Id && last.Stop == c.CPU.Clock {
			last.Stop++
			return
		}
	}
	c.Slices = append(c.Slices, TimeSlice{Pid: p.Id, Start: c.CPU.Clock, Stop: c.CPU.Clock + 1})
}
