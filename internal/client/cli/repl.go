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
	Gallery(ctx context.Context) error
	Profile(ctx context.Context) error
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	ToggleMode(ctx context.Context) error
	Select(ctx context.Context, path string) error
	Post(ctx context.Context) error
	Pending(ctx context.Context) error
	Refresh(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the capgallery CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, when ctx is done, or when
// the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the session status (from statusFn) and accepts commands:
//
//	Always:
//	  - help           — show available commands
//	  - gallery        — open the global feed
//	  - refresh        — re-check the session and reload the open view
//	  - status         — show session and view state
//	  - exit | quit    — leave the program
//
//	Not logged in:
//	  - login          — submit the login form
//	  - register       — submit the register form
//	  - mode           — toggle the form between login and register
//
//	Logged in:
//	  - profile        — open your own posts
//	  - select <path>  — choose an image to post
//	  - pending        — show the selected image
//	  - post           — upload it and wait for the caption
//
// Any errors returned by command handlers are ignored here; handlers report
// to the user and log on their own. This keeps the REPL loop resilient and
// focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("cg %s> ", statusFn()))
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
				printlnFn("Available commands: gallery, profile, select <path>, pending, post, refresh, status, exit")
			} else {
				printlnFn("Available commands: gallery, login, register, mode, refresh, status, exit")
			}

		case "gallery":
			_ = a.Gallery(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "mode":
			_ = a.ToggleMode(ctx)

		case "select":
			if len(args) == 0 {
				printlnFn("Usage: select <path>")
				continue
			}
			_ = a.Select(ctx, strings.Join(args, " "))

		case "post":
			_ = a.Post(ctx)

		case "pending":
			_ = a.Pending(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
