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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Mine(ctx context.Context) error
	Search(ctx context.Context) error
	Page(ctx context.Context) error
	Show(ctx context.Context) error
	Create(ctx context.Context) error
	Update(ctx context.Context) error
	Delete(ctx context.Context) error
	Rate(ctx context.Context) error
	AddNote(ctx context.Context) error
	Notes(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the RecipeShelf CLI.
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
//	  - register       — create an account
//	  - login          — authenticate
//	  - list | mine | search | page | show — browse recipes
//	  - exit | quit    — leave the program
//
//	Logged in, additionally:
//	  - create         — add a recipe
//	  - update         — edit an own recipe
//	  - delete         — remove an own recipe
//	  - rate           — rate a recipe 1..5
//	  - note | notes   — personal notes on a recipe
//	  - whoami         — show the current profile
//	  - logout         — log out
//
// Commands prompt interactively for their inputs. Errors returned by command
// handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("shelf %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, mine, search, page, show, create, update, delete, rate, note, notes, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, (l)ist, search, page, show, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "l", "list":
			err = a.List(ctx)

		case "mine":
			err = a.Mine(ctx)

		case "search":
			err = a.Search(ctx)

		case "page":
			err = a.Page(ctx)

		case "show":
			err = a.Show(ctx)

		case "create":
			err = a.Create(ctx)

		case "update":
			err = a.Update(ctx)

		case "delete":
			err = a.Delete(ctx)

		case "rate":
			err = a.Rate(ctx)

		case "note":
			err = a.AddNote(ctx)

		case "notes":
			err = a.Notes(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
