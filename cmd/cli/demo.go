package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/onedotone/landing-api/domain/demo"
	"github.com/onedotone/landing-api/internal/log"
)

// RunDemo plays the scripted chat in the terminal, then answers any extra
// queries given on the command line.
func RunDemo(logger *log.Logger, queries []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seq := demo.NewSequencer(demo.ClockDelayer{}, demo.DefaultTimings())
	defer seq.Close()

	updates, unsubscribe := seq.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	printed := 0
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-updates:
				if !ok {
					return
				}
				printed = printNew(os.Stdout, seq.Snapshot(), printed)
			}
		}
	}()

	if err := seq.Start(ctx); err != nil {
		return fmt.Errorf("demo playback: %w", err)
	}

	for _, q := range queries {
		if err := seq.Send(ctx, q); err != nil {
			return fmt.Errorf("demo query %q: %w", q, err)
		}
	}

	stop()
	<-done
	printNew(os.Stdout, seq.Snapshot(), printed)

	logger.Debug("Demo playback finished", "queries", len(queries))
	return nil
}

func printNew(w io.Writer, t demo.Transcript, from int) int {
	for _, m := range t.Messages[min(from, len(t.Messages)):] {
		speaker := "you"
		if m.Role == demo.RoleAssistant {
			speaker = "1dot1"
		}
		fmt.Fprintf(w, "%-6s %s\n", speaker+">", m.Text)
		for _, c := range m.Contacts {
			fmt.Fprintf(w, "       - %s, %s at %s (%s) %s\n", c.Name, c.Title, c.Company, c.Location, strings.TrimSpace(c.Email))
		}
	}
	return len(t.Messages)
}
