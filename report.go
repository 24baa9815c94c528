package dispatcher

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// WriteReport prints a Gantt line of what ran when and a table of every
// process with its timings.
func (c *Controller) WriteReport(w io.Writer, title string) {
	outputTitle(w, title)
	outputGantt(w, c.Slices)
	outputSchedule(w, c.procs)
}

func outputTitle(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len(title)*2))
	_, _ = fmt.Fprintln(w, strings.Repeat(" ", len(title)/2), title)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len(title)*2))
}

// idlePid labels the ticks where nothing ran.
const idlePid = "idle"

func outputGantt(w io.Writer, slices []TimeSlice) {
	gantt := withIdle(slices)
	_, _ = fmt.Fprintln(w, "Gantt schedule")
	_, _ = fmt.Fprint(w, "|")
	for i := range gantt {
		pid := gantt[i].Pid
		padding := strings.Repeat(" ", max(0, (8-len(pid))/2))
		_, _ = fmt.Fprint(w, padding, pid, padding, "|")
	}
	_, _ = fmt.Fprintln(w)
	for i := range gantt {
		_, _ = fmt.Fprint(w, fmt.Sprint(gantt[i].Start), "\t")
		if len(gantt)-1 == i {
			_, _ = fmt.Fprint(w, fmt.Sprint(gantt[i].Stop))
		}
	}
	_, _ = fmt.Fprintf(w, "\n\n")
}

// withIdle fills the gaps between slices, and before the first one, with idle slices.
func withIdle(slices []TimeSlice) []TimeSlice {
	out := make([]TimeSlice, 0, len(slices))
	var clock uint
	for _, s := range slices {
		if s.Start > clock {
			out = append(out, TimeSlice{Pid: idlePid, Start: clock, Stop: s.Start})
		}
		out = append(out, s)
		clock = s.Stop
	}
	return out
}

func outputSchedule(w io.Writer, procs []*Process) {
	var (
		rows            = make([][]string, 0, len(procs))
		totalWait       float64
		totalTurnaround float64
		lastCompletion  uint
		finished        int
	)
	for _, p := range procs {
		wait, turnaround := "-", "-"
		exit := "-"
		if p.Status == StatusTerminated {
			t := p.FinishTick - p.ArrivalTime
			// dropped processes may have run for less than ProcTime
			ran := p.ProcTime - p.RemainingTime
			totalTurnaround += float64(t)
			totalWait += float64(t - ran)
			turnaround, wait, exit = fmt.Sprint(t), fmt.Sprint(t-ran), fmt.Sprint(p.FinishTick)
			if p.FinishTick > lastCompletion {
				lastCompletion = p.FinishTick
			}
			finished++
		}
		rows = append(rows, []string{
			p.Id,
			fmt.Sprint(p.InitialPriority),
			fmt.Sprint(p.Priority),
			fmt.Sprint(p.ProcTime),
			fmt.Sprint(p.ArrivalTime),
			fmt.Sprint(p.Suspensions),
			wait,
			turnaround,
			exit,
		})
	}

	var aveWait, aveTurnaround, throughput float64
	if finished > 0 {
		aveWait = totalWait / float64(finished)
		aveTurnaround = totalTurnaround / float64(finished)
	}
	if lastCompletion > 0 {
		throughput = float64(finished) / float64(lastCompletion)
	}

	_, _ = fmt.Fprintln(w, "Schedule table")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Priority", "Final", "Burst", "Arrival", "Suspended", "Wait", "Turnaround", "Exit"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "", "", "",
		fmt.Sprintf("Average\n%.2f", aveWait),
		fmt.Sprintf("Average\n%.2f", aveTurnaround),
		fmt.Sprintf("Throughput\n%.2f/t", throughput)})
	table.Render()
}
