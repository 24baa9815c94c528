package dispatcher

// CPU is the one simulated processor: at any tick it runs at most one
// Process. Clock is the simulated time, in quanta, starting at 0.
type CPU struct {
	Running *Process
	// Exclusive is set while Running was dispatched from level 0.
	// Such a process is not preempted until it terminates.
	Exclusive bool

	Clock uint
}

// Idle reports whether nothing is running.
func (c *CPU) Idle() bool {
	return c.Running == nil
}

// Load puts p on the CPU.
func (c *CPU) Load(p *Process, exclusive bool) {
	c.Running = p
	c.Exclusive = exclusive
}

// Unload takes the running process off the CPU and returns it.
func (c *CPU) Unload() *Process {
	p := c.Running
	c.Running = nil
	c.Exclusive = false
	return p
}

// Execute gives the running process one quantum.
// It returns false if nothing was executed.
func (c *CPU) Execute() bool {
	if c.Running == nil || c.Running.RemainingTime == 0 {
		return false
	}
	c.Running.RemainingTime--
	return true
}
