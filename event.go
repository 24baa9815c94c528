package dispatcher

import "fmt"

// EventType names something that happened to a process.
type EventType string

// Everything the controller records in its trace.
const (
	AdmitEvent     EventType = "admit"
	StartEvent     EventType = "start"
	ResumeEvent    EventType = "resume"
	SuspendEvent   EventType = "suspend"
	TerminateEvent EventType = "terminate"
	// FailEvent marks a process dropped after a process control error.
	FailEvent EventType = "fail"
)

// Event is one entry of the trace. Priority is the level right after the event.
type Event struct {
	Tick     uint
	Pid      string
	Type     EventType
	Priority int
}

func (e Event) String() string {
	return fmt.Sprintf("%d:%s:%s@%d", e.Tick, e.Type, e.Pid, e.Priority)
}

// TimeSlice is a run of consecutive ticks executed by one process.
type TimeSlice struct {
	Pid   string
	Start uint
	Stop  uint
}
