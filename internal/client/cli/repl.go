package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Status(ctx context.Context) error
	Medications(ctx context.Context) error
	AddMedication(ctx context.Context) error
	UpdateMedication(ctx context.Context, args []string) error
	DeleteMedication(ctx context.Context, args []string) error
	Groups(ctx context.Context) error
	AddGroup(ctx context.Context) error
	DeleteGroup(ctx context.Context, args []string) error
	Today(ctx context.Context) error
	Take(ctx context.Context, args []string) error
	TakeAll(ctx context.Context) error
	Resync(ctx context.Context) error
	Alerts(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, status, exit"
	helpLoggedIn  = "Available commands: me, (l)ist, add, update <id>, delete <id>, groups, addgroup, delgroup <id>, today, take <id>..., takeall, resync, alerts, status, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// It returns on EOF, on "exit"/"quit", or when ctx is done.
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("medisync %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "l", "list", "meds":
			cmdErr = a.Medications(ctx)
		case "add":
			cmdErr = a.AddMedication(ctx)
		case "update":
			cmdErr = a.UpdateMedication(ctx, args)
		case "delete":
			cmdErr = a.DeleteMedication(ctx, args)
		case "groups":
			cmdErr = a.Groups(ctx)
		case "addgroup":
			cmdErr = a.AddGroup(ctx)
		case "delgroup":
			cmdErr = a.DeleteGroup(ctx, args)
		case "today":
			cmdErr = a.Today(ctx)
		case "take":
			cmdErr = a.Take(ctx, args)
		case "takeall":
			cmdErr = a.TakeAll(ctx)
		case "resync":
			cmdErr = a.Resync(ctx)
		case "alerts":
			cmdErr = a.Alerts(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
