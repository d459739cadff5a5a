package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if user := a.session.Current(); user != nil && user.IsLoggedIn {
		s = user.Nick + " "
	}
	if a.monitor.Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Life is Skill CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("lisk %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: sync, points, total, rank, near, scan, queue, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "sync":
			err = a.Sync(ctx)
		case "points":
			err = a.Points(ctx)
		case "total":
			err = a.Total(ctx, args)
		case "rank":
			err = a.Rank(ctx, args)
		case "near":
			err = a.Near(ctx, args)
		case "scan":
			err = a.Scan(ctx, args)
		case "queue":
			err = a.Queue(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
