package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/galygious/grubwatch/config"
	"github.com/galygious/grubwatch/locator"
	"github.com/galygious/grubwatch/utils"
)

// runWatch implements `grubwatch watch`: attach to the running game, poll
// the live counter, and rewrite the output file whenever the value changes.
// It waits for the process to appear rather than failing immediately, the
// way the original monitoring script's main loop does.
func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "settings.yaml", "path to the YAML config file")
	once := fs.Bool("once", false, "print the counter once and exit (no file written)")
	verbose := fs.Bool("verbose", false, "print debug info about candidate nodes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *verbose {
		cfg.Verbose = true
	}

	logFile, err := utils.InitializeAppLog("grubwatch.log")
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.Printf("config loaded: %+v\n", cfg)

	l := locator.New()
	if *verbose {
		l.Observe = func(c locator.CandidateNode) {
			fmt.Printf("  candidate: addr=0x%08X value=%d score=%d\n", c.Address, c.Value, c.Score)
		}
	}

	if err := waitForAttach(l, cfg.ProcessName); err != nil {
		return err
	}
	defer l.Close()

	fmt.Printf("Attached to %s\n", cfg.ProcessName)

	if *once {
		value, err := l.Poll()
		if err != nil {
			if errors.Is(err, &locator.Error{Kind: locator.CounterNotFound}) {
				fmt.Println("Counter not found (game not in episode 3?)")
				return nil
			}
			return err
		}
		fmt.Printf("Grub Count: %d\n", value)
		return nil
	}

	return watchLoop(l, cfg)
}

// waitForAttach retries Attach until the process appears, printing a single
// waiting message the first time it's needed.
func waitForAttach(l *locator.Locator, processName string) error {
	err := l.Attach(processName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, &locator.Error{Kind: locator.ProcessNotRunning}) {
		return err
	}

	fmt.Printf("Waiting for %s to be launched... (Ctrl+C to cancel)", processName)
	for {
		time.Sleep(time.Second)
		err = l.Attach(processName)
		if err == nil {
			fmt.Println()
			return nil
		}
		if !errors.Is(err, &locator.Error{Kind: locator.ProcessNotRunning}) {
			return err
		}
	}
}

func watchLoop(l *locator.Locator, cfg *config.Settings) error {
	fmt.Printf("Counting grubs... writing to %s (Ctrl+C to stop)\n", cfg.OutputFile)

	var last uint32
	haveLast := false

	for {
		value, err := l.Poll()
		if err != nil {
			if errors.Is(err, &locator.Error{Kind: locator.CounterNotFound}) {
				value = 0
			} else if errors.Is(err, &locator.Error{Kind: locator.ProcessNotRunning}) {
				// The game closed mid-poll: wait for it to come back rather
				// than exiting, per the live locator's failure-semantics
				// contract (a polling wrapper waits for the process to
				// reappear).
				fmt.Println("Game process ended. Waiting for it to relaunch...")
				l.Close()
				if err := waitForAttach(l, cfg.ProcessName); err != nil {
					return err
				}
				fmt.Printf("Attached to %s\n", cfg.ProcessName)
				haveLast = false
				continue
			} else {
				return err
			}
		}

		if !haveLast || value != last {
			last = value
			haveLast = true
			fmt.Printf("Grub Count: %d\n", value)
			if writeErr := os.WriteFile(cfg.OutputFile, []byte(fmt.Sprintf("%d", value)), 0644); writeErr != nil {
				utils.IfError(writeErr, "writing output file")
			}
		}

		time.Sleep(cfg.PollInterval)
	}
}
