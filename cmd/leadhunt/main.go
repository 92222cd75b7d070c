package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: leadhunt <command> [flags]

commands:
  run      search for leads and export them (default)
  setup    store the search API key and engine id
  history  list recent runs
  serve    start the local HTTP backend for the desktop UI
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	cmd := "run"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		fmt.Print(usage)
		return 0
	case "run", "setup", "history", "serve":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	a, err := bootstrap()
	if err != nil {
		fmt.Fprintln(os.Stderr, "leadhunt:", err)
		return 1
	}
	defer a.close()

	switch cmd {
	case "setup":
		return a.setupCmd(args)
	case "history":
		return a.historyCmd(ctx, args)
	case "serve":
		return a.serveCmd(ctx, args)
	default:
		return a.runCmd(ctx, args)
	}
}
