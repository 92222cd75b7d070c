package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"leadhunt/internal/domain"
	"leadhunt/internal/events"
	"leadhunt/internal/runner"
	"leadhunt/internal/secrets"
)

func (a *app) runCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var c domain.SearchCriteria
	fs.StringVar(&c.JobTitle, "title", "", "job title to search for, e.g. realtor")
	fs.StringVar(&c.Area, "area", "", "city or region, e.g. Phoenix")
	fs.StringVar(&c.EmailDomain, "domain", "", "only keep leads with an email at this domain, e.g. gmail.com")
	fs.IntVar(&c.TargetCount, "count", 0, "number of leads to collect")
	quiet := fs.Bool("q", false, "no progress output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := a.promptCriteria(&c); err != nil {
		fmt.Fprintln(os.Stderr, "leadhunt:", err)
		return 2
	}
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "leadhunt:", err)
		return 2
	}

	// credentials are needed before the first request; ask once if missing
	if _, err := secrets.Resolve(a.cfg()); errors.Is(err, secrets.ErrMissingCredentials) {
		fmt.Println("No search credentials configured.")
		if code := a.setupInteractive("", ""); code != 0 {
			return code
		}
	}

	if !*quiet {
		stop := a.printProgress(c.TargetCount)
		defer stop()
	}

	rep, err := a.runner.Run(ctx, c)

	fmt.Println()
	fmt.Printf("Collected %d of %d leads (%d pages)\n", len(rep.Leads), c.TargetCount, rep.Pages)
	fmt.Printf("Stopped: %s (%s)\n", rep.StopReason, rep.Hint)
	if rep.Error != "" {
		fmt.Printf("Detail: %s\n", rep.Error)
	}
	for _, f := range rep.Files {
		fmt.Printf("Saved: %s\n", a.absPath(f))
	}
	if len(rep.Files) == 0 && len(rep.Leads) == 0 {
		fmt.Println("No files written.")
	}

	return exitCode(rep, err)
}

// promptCriteria asks for whatever the flags left out. Title, area and domain
// are asked together when neither title nor area was given.
func (a *app) promptCriteria(c *domain.SearchCriteria) error {
	if c.JobTitle == "" && c.Area == "" {
		fields := []struct {
			label string
			dst   *string
		}{
			{"Job title: ", &c.JobTitle},
			{"Area: ", &c.Area},
			{"Email domain (blank for any): ", &c.EmailDomain},
		}
		for _, f := range fields {
			v, err := a.prompt(f.label)
			if err != nil {
				return err
			}
			*f.dst = v
		}
	}
	for c.TargetCount <= 0 {
		line, err := a.prompt("How many leads: ")
		if err != nil {
			return err
		}
		if n, err := strconv.Atoi(line); err == nil && n > 0 {
			c.TargetCount = n
			break
		}
		fmt.Println("enter a whole number greater than 0")
	}
	return nil
}

// exitCode is 1 when the search could not run at all (fatal error or no
// client) before finding a lead, or when the output files could not be
// written. Stops on quota, cancel or exhausted retries exit 0.
func exitCode(rep runner.Report, err error) int {
	if err != nil || rep.Failed() {
		return 1
	}
	return 0
}

// printProgress prints "Found k/N" as leads arrive and returns a func that
// stops the printer.
func (a *app) printProgress(target int) func() {
	ch := a.hub.SubscribeN(256)
	done := make(chan struct{})

	go func() {
		defer close(done)
		found := 0
		for msg := range ch {
			e, err := events.Parse(msg)
			if err != nil {
				continue
			}
			switch e.Type {
			case events.RunStarted:
				fmt.Println("Searching...")
			case events.LeadFound:
				found++
				if found > target {
					found = target
				}
				fmt.Printf("\rFound %d/%d", found, target)
			case events.PageRetry:
				fmt.Printf("\rFound %d/%d (retrying)", found, target)
			}
		}
	}()

	return func() {
		a.hub.Unsubscribe(ch)
		<-done
	}
}
