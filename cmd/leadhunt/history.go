package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
)

func (a *app) historyCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	n := fs.Int("n", 20, "number of runs to show")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if a.history == nil {
		fmt.Fprintln(os.Stderr, "leadhunt: history database unavailable")
		return 1
	}

	runs, err := a.history.ListRuns(ctx, *n)
	if err != nil {
		fmt.Fprintln(os.Stderr, "leadhunt:", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Println("No runs yet.")
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tTITLE\tAREA\tDOMAIN\tLEADS\tSTOP\tFILES")
	for _, r := range runs {
		files := "-"
		if len(r.Files) > 0 {
			files = r.Files[0]
			if len(r.Files) > 1 {
				files = fmt.Sprintf("%s (+%d)", files, len(r.Files)-1)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"),
			r.Criteria.JobTitle,
			r.Criteria.Area,
			r.Criteria.EmailDomain,
			r.LeadCount,
			r.Criteria.TargetCount,
			r.StopReason,
			files,
		)
	}
	_ = tw.Flush()
	return 0
}
