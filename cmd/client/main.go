package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"undercover/internal/client"
)

func main() {
	godotenv.Load()

	server := flag.String("server", envOr("UNDERCOVER_SERVER", "http://localhost:8080"), "coordination server URL")
	name := flag.String("name", "", "display name")
	code := flag.String("code", envOr("UNDERCOVER_CODE", ""), "room code to join")
	create := flag.Bool("create", false, "create a new room first, then join it")
	reset := flag.Bool("reset", false, "discard the cached session and exit")
	sessionPath := flag.String("session", defaultSessionPath(), "session cache file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	api := client.NewAPI(*server)
	store := client.NewFileStore(*sessionPath)
	loop := client.NewSyncLoop(api, store, logger)

	assigned := make(chan client.Snapshot, 1)
	var lastJoined int
	loop.OnChange = func(s client.Snapshot) {
		switch s.State {
		case client.StateWaiting:
			if s.View.Joined != lastJoined {
				lastJoined = s.View.Joined
				fmt.Printf("room %s: %d/%d players\n", s.View.Room, s.View.Joined, s.View.MaxPlayers)
			}
		case client.StateAssigned:
			select {
			case assigned <- s:
			default:
			}
		}
	}

	if *reset {
		if err := loop.Reset(); err != nil {
			fatal("reset failed: %v", err)
		}
		fmt.Println("session cleared")
		return
	}

	ctx := context.Background()

	restored, err := loop.Restore(ctx)
	if err != nil {
		fatal("restore failed: %v", err)
	}

	if restored {
		snap := loop.Snapshot()
		fmt.Printf("resuming session in room %s as %s\n", snap.View.Room, snap.View.Name)
	} else {
		roomCode := *code
		if *create {
			res, err := api.CreateRoom(ctx, 0, 0, 0)
			if err != nil {
				fatal("create room failed: %v", err)
			}
			roomCode = res.Code
			fmt.Printf("created room %s (capacity %d, %d tasks, max %d per type)\n",
				res.Code, res.MaxPlayers, res.Settings.TaskCount, res.Settings.MaxSameType)
		}

		if err := loop.Join(ctx, *name, roomCode); err != nil {
			fatal("join failed: %v", err)
		}
	}

	fmt.Println("waiting for the room to fill...")
	snap := <-assigned

	fmt.Printf("\nroom %s is full. Everyone has a role.\n", snap.View.Room)
	fmt.Print("press Enter to reveal yours (make sure nobody is looking): ")
	bufio.NewReader(os.Stdin).ReadString('\n')

	if err := loop.Reveal(ctx); err != nil {
		fatal("reveal failed: %v", err)
	}
	snap = loop.Snapshot()

	fmt.Printf("\nrole: %s\n", snap.View.Role)
	if snap.View.Lane != "" {
		fmt.Printf("lane: %s\n", snap.View.Lane)
	}
	if len(snap.View.Tasks) > 0 {
		fmt.Println("your tasks:")
		for _, t := range snap.View.Tasks {
			fmt.Printf("  [%s] %s\n", t.Type, t.Text)
		}
	}
	fmt.Println("\nthis session stays cached; run with -reset to leave the room locally.")
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".undercover-session.json"
	}
	return filepath.Join(home, ".undercover", "session.json")
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
