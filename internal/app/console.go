package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"kiosk-go/internal/kiosk"
)

const consoleHelp = `commands:
  login             capture a face and record an IN or OUT mark
  register NAME     open a registration form for NAME
  accept            start the enrollment capture for the open form
  cancel            drop the enrollment and close the form
  snapshot PATH     save the latest camera frame
  status            show the controller state
  quit              stop the kiosk`

// parseCommand splits a console line into a lower-cased command word and the
// rest of the line.
func parseCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// console turns operator input into controller calls on the event loop.
type console struct {
	ctrl      *kiosk.Controller
	presenter *ConsolePresenter
	out       io.Writer
	stop      context.CancelFunc
}

// execute runs one console line. It must be called on the event loop.
func (c *console) execute(line string) {
	cmd, arg := parseCommand(line)
	var err error

	switch cmd {
	case "":
		return
	case "login":
		err = c.ctrl.Login()
	case "register":
		err = c.ctrl.RegisterNewUser(arg)
		if err == nil {
			name, _ := c.ctrl.Registration()
			fmt.Fprintf(c.out, "registering %s: type accept to start recording\n", name)
		}
	case "accept":
		err = c.ctrl.AcceptRegistration()
	case "cancel":
		c.ctrl.CancelRegistration()
	case "snapshot":
		if arg == "" {
			err = fmt.Errorf("snapshot needs a file path")
			break
		}
		if err = c.presenter.Snapshot(arg); err == nil {
			fmt.Fprintf(c.out, "saved %s\n", arg)
		}
	case "status":
		name, open := c.ctrl.Registration()
		if open {
			fmt.Fprintf(c.out, "state: %s, registering %s\n", c.ctrl.State(), name)
		} else {
			fmt.Fprintf(c.out, "state: %s\n", c.ctrl.State())
		}
	case "help", "?":
		fmt.Fprintln(c.out, consoleHelp)
	case "quit", "exit":
		c.stop()
	default:
		err = fmt.Errorf("unknown command %q (try help)", cmd)
	}

	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
}

// readCommands posts every line of in to the loop until in is exhausted or
// the loop stops. prompt is printed before each line when non-empty.
func readCommands(in io.Reader, out io.Writer, prompt string, loop *EventLoop, c *console) {
	scanner := bufio.NewScanner(in)
	for {
		if prompt != "" {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if !loop.Post(func() { c.execute(line) }) {
			return
		}
	}
}
