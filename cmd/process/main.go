// Command process is the workload the dispatcher spawns for every record.
// It burns time printing a heartbeat once a second until it is told to stop
// or the given number of seconds have passed.
package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

func main() {
	seconds := 20
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n < 0 {
			log.WithField("arg", os.Args[1]).Fatal("usage: process [seconds]")
		}
		seconds = n
	}

	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	logger := log.WithField("pid", os.Getpid())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for i := 1; i <= seconds; i++ {
		select {
		case s := <-sigs:
			logger.WithField("signal", s).Info("terminated")
			return
		case <-ticker.C:
			logger.WithField("tick", i).Info("running")
		}
	}
	logger.Info("finished")
}
