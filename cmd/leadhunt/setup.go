package main

import (
	"flag"
	"fmt"
	"os"

	"leadhunt/internal/config"
	"leadhunt/internal/secrets"
)

func (a *app) setupCmd(args []string) int {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	key := fs.String("key", "", "search API key (prompted when empty)")
	cx := fs.String("cx", "", "search engine id (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	return a.setupInteractive(*key, *cx)
}

// setupInteractive stores credentials, prompting for whatever is missing.
func (a *app) setupInteractive(key, cx string) int {
	cur := a.cfg()
	if cx == "" {
		label := "Search engine id (cx): "
		if cur.Search.CX != "" {
			label = fmt.Sprintf("Search engine id (cx) [%s]: ", cur.Search.CX)
		}
		v, err := a.prompt(label)
		if err != nil {
			fmt.Fprintln(os.Stderr, "leadhunt:", err)
			return 2
		}
		cx = v
		if cx == "" {
			cx = cur.Search.CX
		}
	}
	if key == "" {
		v, err := a.prompt("API key: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "leadhunt:", err)
			return 2
		}
		key = v
	}

	next, loc, err := secrets.SaveCredentials(cur, cx, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, "leadhunt:", err)
		return 1
	}
	if err := config.SaveAtomic(a.userCfgPath, next); err != nil {
		fmt.Fprintln(os.Stderr, "leadhunt: save config:", err)
		return 1
	}
	a.cfgVal.Store(next)

	switch loc {
	case secrets.InKeychain:
		fmt.Println("API key stored in the OS keychain.")
	default:
		fmt.Printf("Keychain unavailable; API key stored in %s.\n", a.absPath(a.userCfgPath))
	}
	return 0
}
