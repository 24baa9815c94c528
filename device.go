package dispatcher

import (
	"bufio"
	"io"

	log "github.com/sirupsen/logrus"
)

// outputDevice is where a workload's stdout and stderr end up.
// It reads the pipe line by line and hands every line to the log,
// closing Done once the workload has closed its end.
type outputDevice struct {
	Id   string
	Done chan struct{}
}

func newOutputDevice(id string, r io.Reader) *outputDevice {
	d := &outputDevice{
		Id:   id,
		Done: make(chan struct{}),
	}

	go func() {
		defer close(d.Done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			log.WithField("device", d.Id).Info("<STDOUT> ", scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			log.WithField("device", d.Id).WithError(err).Warn("[Device] read failed")
		}
	}()

	return d
}
