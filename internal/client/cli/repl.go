package cli

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	takeExpired() bool

	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Whoami(ctx context.Context, args []string) error

	Profile(ctx context.Context, args []string) error
	SetProfile(ctx context.Context, args []string) error

	Workout(ctx context.Context, args []string) error
	GenWorkout(ctx context.Context, args []string) error
	CompleteWorkout(ctx context.Context, args []string) error
	Nutrition(ctx context.Context, args []string) error
	GenNutrition(ctx context.Context, args []string) error
	Coach(ctx context.Context, args []string) error

	Posts(ctx context.Context, args []string) error
	ShowPost(ctx context.Context, args []string) error
	NewPost(ctx context.Context, args []string) error
	EditPost(ctx context.Context, args []string) error
	DeletePost(ctx context.Context, args []string) error
	LikePost(ctx context.Context, args []string) error
	Comments(ctx context.Context, args []string) error
	AddComment(ctx context.Context, args []string) error

	Progress(ctx context.Context, args []string) error
	AddProgress(ctx context.Context, args []string) error
	DeleteProgress(ctx context.Context, args []string) error
}

type command struct {
	auth bool
	run  func(ctx context.Context, args []string) error
}

func commandTable(a execIface) map[string]command {
	return map[string]command{
		"register": {false, a.Register},
		"login":    {false, a.Login},
		"logout":   {true, a.Logout},
		"whoami":   {false, a.Whoami},

		"profile":    {true, a.Profile},
		"setprofile": {true, a.SetProfile},

		"workout":      {true, a.Workout},
		"genworkout":   {true, a.GenWorkout},
		"complete":     {true, a.CompleteWorkout},
		"nutrition":    {true, a.Nutrition},
		"gennutrition": {true, a.GenNutrition},
		"coach":        {true, a.Coach},

		"posts":    {true, a.Posts},
		"post":     {true, a.ShowPost},
		"newpost":  {true, a.NewPost},
		"editpost": {true, a.EditPost},
		"delpost":  {true, a.DeletePost},
		"like":     {true, a.LikePost},
		"comments": {true, a.Comments},
		"comment":  {true, a.AddComment},

		"progress":    {true, a.Progress},
		"addprogress": {true, a.AddProgress},
		"delprogress": {true, a.DeleteProgress},
	}
}

func helpLine(table map[string]command, loggedIn bool) string {
	names := make([]string, 0, len(table)+2)
	for name, c := range table {
		if c.auth == loggedIn || name == "whoami" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append(names, "help", "exit")
	return "Available commands: " + strings.Join(names, ", ")
}

// runREPL reads commands from scanner until EOF, "exit", "quit" or ctx is
// cancelled (Ctrl-C).
//
// The first token selects the command; the rest is passed as arguments.
// Commands that need a session are refused while logged out. When a command
// ends with the session destroyed by a rejected renewal, the user is told to
// log in again instead of seeing the raw error.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	table := commandTable(a)

	for {
		if ctx.Err() != nil {
			printlnFn("Interrupted, bye!")
			return
		}
		printlnFn(fmt.Sprintf("nf (%s)> ", statusFn()))
		line, ok := nextLine(ctx, scanner)
		if !ok {
			if ctx.Err() != nil {
				printlnFn("Interrupted, bye!")
			}
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name := parts[0]

		switch name {
		case "help":
			printlnFn(helpLine(table, a.isLoggedIn()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := table[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if cmd.auth && !a.isLoggedIn() {
			printlnFn("Please log in first.")
			continue
		}

		err := cmd.run(ctx, parts[1:])
		if a.takeExpired() {
			printlnFn("Session expired, please log in again.")
			continue
		}
		if err != nil {
			printlnFn("Error:", describe(err))
		}
	}
}

// nextLine waits for one line or for ctx to end. Only one Scan is in flight at
// a time, so commands may read the same input between calls. On cancellation
// the pending Scan is abandoned.
func nextLine(ctx context.Context, scanner *bufio.Scanner) (string, bool) {
	type result struct {
		line string
		ok   bool
	}
	ch := make(chan result, 1)
	go func() {
		ok := scanner.Scan()
		ch <- result{line: scanner.Text(), ok: ok}
	}()

	select {
	case <-ctx.Done():
		return "", false
	case r := <-ch:
		return r.line, r.ok
	}
}
