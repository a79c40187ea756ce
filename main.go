package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/go-errors/errors"
	"github.com/integrii/flaggy"
)

var (
	commit  string
	version = "unversioned"
	date    string
)

// exitCode ends the process with a status and no message. Commands like
// validate use it to fail without printing a stack trace.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	if code, ok := err.(exitCode); ok {
		os.Exit(int(code))
	}
	newErr := errors.Wrap(err, 0)
	if debuggingFlag {
		fmt.Fprintln(os.Stderr, newErr.ErrorStack())
	} else {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}

var debuggingFlag = false

func run(args []string, stdout, stderr io.Writer) error {
	debuggingFlag = false
	info := fmt.Sprintf(
		"%s\nDate: %s\nCommit: %s\nOS: %s\nArch: %s",
		version,
		date,
		commit,
		runtime.GOOS,
		runtime.GOARCH,
	)

	p := flaggy.NewParser("knowthelist")
	p.Description = "Read, check, look up and machine-translate Qt Linguist catalogs"
	p.AdditionalHelpPrepend = "https://github.com/david-geiger/knowthelist"
	p.Version = info
	p.Bool(&debuggingFlag, "d", "debug", "Log to development.log in the config dir")

	cmds := newCommands()
	for _, c := range cmds {
		p.AttachSubcommand(c.sc, 1)
	}
	if err := p.ParseArgs(args); err != nil {
		return err
	}

	var selected *command
	for _, c := range cmds {
		if c.sc.Used {
			selected = c
		}
	}
	if selected == nil {
		p.ShowHelp()
		return nil
	}
	return selected.exec(stdout, stderr)
}
