package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	dispatcher "github.com/ellandis/dispatcher-shell"
	log "github.com/sirupsen/logrus"
)

const usage = "usage: dispatcher [flags] <dispatch_list>"

func main() {
	var (
		configPath = flag.String("config", "", "JSON config file")
		quantum    = flag.Duration("quantum", time.Second, "real time per simulated tick, 0 for none")
		levels     = flag.Int("levels", dispatcher.DefaultLevels, "number of priority levels")
		workload   = flag.String("workload", "./process", "workload program spawned for every process")
		args       = flag.String("workload-args", "20", "space separated workload arguments")
		policy     = flag.String("policy", "mlfq", "scheduling policy: mlfq or fcfs")
		isolate    = flag.Bool("isolate-failures", false, "drop a process whose workload cannot be controlled instead of aborting")
		logLevel   = flag.String("log-level", "info", "log level")
		report     = flag.Bool("report", true, "print the schedule report when done")
		dryRun     = flag.Bool("dry-run", false, "simulate without spawning any process")
	)
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := dispatcher.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = dispatcher.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	// flags given on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "quantum":
			cfg.Quantum = dispatcher.Duration(*quantum)
		case "levels":
			cfg.Levels = *levels
		case "workload":
			cfg.Workload = *workload
		case "workload-args":
			cfg.WorkloadArgs = strings.Fields(*args)
		case "policy":
			cfg.Policy = *policy
		case "isolate-failures":
			cfg.IsolateFailures = *isolate
		case "log-level":
			cfg.LogLevel = *logLevel
		case "report":
			cfg.Report = *report
		}
	})

	if err := dispatcher.SetLogLevel(cfg.LogLevel); err != nil {
		log.WithError(err).Warn("unknown log level, keeping info")
	}

	f, closeFile, err := openDispatchList(flag.Args()...)
	if errors.Is(err, dispatcher.ErrInvalidArgs) {
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeFile()

	procs, err := dispatcher.LoadDispatchList(f, cfg.Levels)
	if err != nil {
		log.Fatal(err)
	}

	var runner dispatcher.Runner = dispatcher.NewFakeRunner()
	if !*dryRun {
		if runner, err = dispatcher.NewExecRunner(cfg.Workload, cfg.WorkloadArgs); err != nil {
			log.Fatal(err)
		}
	}

	c, err := dispatcher.NewController(cfg.Levels, runner, procs)
	if err != nil {
		log.Fatal(err)
	}
	if c.Scheduler, err = dispatcher.SchedulerByName(cfg.Policy); err != nil {
		log.Fatal(err)
	}
	c.Quantum = time.Duration(cfg.Quantum)
	c.IsolateFailures = cfg.IsolateFailures

	if err := c.Boot(); err != nil {
		log.Fatal(err)
	}

	if cfg.Report {
		c.WriteReport(os.Stdout, strings.ToUpper(cfg.Policy)+" dispatcher")
	}
}

func openDispatchList(args ...string) (*os.File, func(), error) {
	if len(args) != 1 {
		return nil, nil, fmt.Errorf("%w: must give one dispatch list", dispatcher.ErrInvalidArgs)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: %v", dispatcher.ErrOpenDispatchList, args[0], err)
	}
	closeFn := func() {
		if err := f.Close(); err != nil {
			log.Fatalf("%v: error closing dispatch list", err)
		}
	}

	return f, closeFn, nil
}
