package dispatcher

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Scheduler makes the dispatch decision of one tick.
// schedule may leave the CPU as it is, or preempt and load another process
// through the controller.
type Scheduler interface {
	schedule(c *Controller) error
}

// SchedulerByName returns the scheduler for a policy name: "mlfq" or "fcfs".
func SchedulerByName(name string) (Scheduler, error) {
	switch name {
	case "", "mlfq":
		return MLFQScheduler{}, nil
	case "fcfs":
		return FCFSScheduler{}, nil
	}
	return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidArgs, name)
}

// MLFQScheduler is the multilevel feedback queue.
//
// A process from level 0 preempts anything else and then runs until it
// terminates. Below level 0, the head of the first non-empty level is
// dispatched every tick, and the process it displaces is suspended and
// sinks one level.
type MLFQScheduler struct{}

func (MLFQScheduler) schedule(c *Controller) error {
	field := "[MLFQ] "

	switch {
	case c.Queued(0) > 0 && !c.CPU.Exclusive:
		log.WithField("clock", c.CPU.Clock).Debug(field, "level 0 takes the CPU")
		_, err := c.tryDispatch(0, true)
		return err
	case c.CPU.Exclusive:
		return nil
	}

	for level := 1; level < c.Levels; level++ {
		ok, err := c.tryDispatch(level, false)
		if err != nil {
			return err
		}
		if ok {
			log.WithFields(log.Fields{"clock": c.CPU.Clock, "level": level}).Debug(field, "dispatched")
			return nil
		}
	}
	return nil
}

// FCFSScheduler does first-come first-served: a process runs until it
// terminates, then the earliest arrival waiting at any level goes next.
type FCFSScheduler struct{}

func (FCFSScheduler) schedule(c *Controller) error {
	if !c.CPU.Idle() {
		return nil
	}

	next := -1
	var earliest uint
	for level, q := range c.ready {
		head, err := q.Get(0)
		if err != nil {
			continue
		}
		if next == -1 || head.ArrivalTime < earliest {
			next, earliest = level, head.ArrivalTime
		}
	}
	if next == -1 {
		return nil
	}

	log.WithFields(log.Fields{"clock": c.CPU.Clock, "level": next}).Debug("[FCFS] ", "run the earliest arrival")
	_, err := c.tryDispatch(next, false)
	return err
}
