package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/daypaste/dayclip/client"
	"github.com/daypaste/dayclip/internal/domain"
)

const reconnectDelay = 3 * time.Second

func main() {
	addr := flag.String("addr", "http://localhost:8000", "server base url")
	day := flag.String("day", "", "day to watch or clear (YYYY-MM-DD, defaults to today)")
	source := flag.String("source", "", "source label attached to posted entries")
	format := flag.String("format", "", "format of posted entries (markdown or text)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(*addr)

	switch flag.Arg(0) {
	case "post":
		if err := post(ctx, api, *source, *format, flag.Args()[1:]); err != nil {
			fmt.Fprintln(os.Stderr, "post failed:", err)
			os.Exit(1)
		}
	case "clear":
		cleared, err := api.ClearDay(ctx, *day)
		if err != nil {
			fmt.Fprintln(os.Stderr, "clear failed:", err)
			os.Exit(1)
		}
		fmt.Printf("cleared %s: %d entries removed\n", cleared.DayKey, cleared.Removed)
	case "", "watch":
		if err := watch(ctx, api, *addr, *day); err != nil && ctx.Err() == nil {
			fmt.Fprintln(os.Stderr, "watch failed:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: dayclip [flags] [watch|post <content>|clear]")
		os.Exit(2)
	}
}

// post creates one entry from the arguments, or from stdin when none are
// given.
func post(ctx context.Context, api *client.Client, source, format string, args []string) error {
	content := strings.Join(args, " ")
	if content == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %v", err)
		}
		content = string(raw)
	}

	payload := client.CreatePayload{Content: content, Format: format}
	if source != "" {
		payload.Source = &source
	}

	entry, err := api.Create(ctx, payload)
	if err != nil {
		return err
	}

	fmt.Printf("posted %s to %s\n", entry.ID, entry.DayKey)
	return nil
}

// watch mirrors one day live. A dropped connection reconnects and
// re-bootstraps, since anything pushed while disconnected is lost.
func watch(ctx context.Context, api *client.Client, addr, day string) error {
	watcher := client.NewWatcher(api)
	if err := watcher.Bootstrap(ctx); err != nil {
		return err
	}
	if day != "" {
		if err := watcher.SelectDay(ctx, day); err != nil {
			return err
		}
	}

	printView(watcher.View())

	realtime := client.NewRealtime(addr)
	events := make(chan domain.Event)

	for {
		listenErr := make(chan error, 1)
		go func() {
			listenErr <- realtime.Listen(ctx, events)
		}()

		if err := consume(ctx, watcher, events, listenErr); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(os.Stderr, "connection lost, reconnecting:", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}

		if err := watcher.Bootstrap(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(os.Stderr, "re-sync failed, retrying:", err)
		} else {
			printView(watcher.View())
		}
	}
}

func consume(ctx context.Context, watcher *client.Watcher, events <-chan domain.Event, listenErr <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-listenErr:
			return err
		case event := <-events:
			if err := watcher.Handle(ctx, event); err != nil {
				fmt.Fprintln(os.Stderr, "skipping event:", err)
				continue
			}
			printView(watcher.View())
		}
	}
}

func printView(view *client.View) {
	fmt.Printf("--- %s (%d entries", view.SelectedDay, len(view.Entries))
	for _, summary := range view.Days {
		if summary.DayKey == view.SelectedDay {
			continue
		}
		fmt.Printf(", %s:%d", summary.DayKey, summary.Total)
	}
	fmt.Println(") ---")

	for _, entry := range view.Entries {
		label := ""
		if entry.Source != nil {
			label = " [" + *entry.Source + "]"
		}
		fmt.Printf("%s %s%s\n    %s\n",
			entry.CreatedAt.Local().Format("15:04:05"),
			entry.ID,
			label,
			strings.ReplaceAll(strings.TrimSpace(entry.Content), "\n", "\n    "),
		)
	}
}
