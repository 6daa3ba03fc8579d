package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"Preview-Player-Go/pkg/player"
)

// transport is the part of the controller driven by user commands.
type transport interface {
	Select(index int) error
	Next() error
	Previous() error
	Toggle() error
	State() player.State
}

var errQuit = errors.New("quit")

// handleCommand applies one line of user input. Track numbers are 1-based.
func handleCommand(c transport, line string) error {
	cmd := strings.ToLower(strings.TrimSpace(line))
	switch cmd {
	case "":
		return nil
	case "p", "play", "pause", "toggle":
		return c.Toggle()
	case "n", "next":
		return c.Next()
	case "b", "prev", "previous":
		return c.Previous()
	case "q", "quit", "exit":
		return errQuit
	}
	if n, err := strconv.Atoi(cmd); err == nil {
		return c.Select(n - 1)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// loop reads commands from in and redraws the status line every interval
// until the user quits, in reaches EOF or ctx is cancelled.
func loop(ctx context.Context, c transport, in io.Reader, out io.Writer, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := ""
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			if err := handleCommand(c, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Fprintf(out, "\n%v\n", err)
			}
		case <-ticker.C:
		}
		if s := statusLine(c.State()); s != last {
			fmt.Fprintf(out, "\r\033[K%s", s)
			last = s
		}
	}
}
