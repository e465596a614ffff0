package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Open(ctx context.Context, name string) error
	Remove(ctx context.Context, name, id string) error
}

// runREPL starts a simple read–eval–print loop for the back-office CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - signup         — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help               — show available commands
//	  - open <screen>      — open an admin screen (guarded)
//	  - delete <screen> <id> — delete one record on a screen (guarded)
//	  - profile            — update name/email/password/picture
//	  - whoami             — show the current identity
//	  - logout             — log out
//	  - exit | quit        — leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("bo> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: open <screen>, delete <screen> <id>, profile, whoami, logout, exit")
				printlnFn("Screens: " + strings.Join(screenNames(), ", "))
			} else {
				printlnFn("Available commands: signup, login, exit")
			}

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			_ = a.UpdateProfile(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "o", "open":
			if len(args) == 0 {
				printlnFn("Usage: open <screen>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "delete":
			if len(args) < 2 {
				printlnFn("Usage: delete <screen> <id>")
				continue
			}
			_ = a.Remove(ctx, args[0], args[1])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
