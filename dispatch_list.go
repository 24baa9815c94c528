package dispatcher

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ellandis/dispatcher-shell/buffer"
)

// LoadDispatchList reads arrival_time,priority,proc_time lines.
// Every field is a non-negative integer and priority must be below levels.
// Processes are named proc0, proc1, ... in the order they are read.
func LoadDispatchList(r io.Reader, levels int) ([]*Process, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	procs := buffer.NewDynamicArray[*Process]()
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &ParseError{Line: line, Text: strings.Join(row, ","), Err: err}
		}
		line, _ := reader.FieldPos(0)

		p, err := parseRecord(procs.Size(), row, levels)
		if err != nil {
			return nil, &ParseError{Line: line, Text: strings.Join(row, ","), Err: err}
		}
		procs.Insert(p)
	}
	return procs.Extract(), nil
}

func parseRecord(n int, row []string, levels int) (*Process, error) {
	var fields [3]uint64
	for i, s := range row {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 31)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	if int(fields[1]) >= levels {
		return nil, fmt.Errorf("priority %d out of range 0..%d", fields[1], levels-1)
	}
	return NewProcess(fmt.Sprintf("proc%d", n), uint(fields[0]), int(fields[1]), uint(fields[2])), nil
}
