// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/replay/internal/history"
	"github.com/urfave/cli/v3"
)

// windowFlagUsage enumerates the supported time windows so the flag
// help stays in sync with [history.Windows].
func windowFlagUsage() string {
	names := make([]string, len(history.Windows()))
	for i, w := range history.Windows() {
		names[i] = string(w)
	}
	return "Time window: " + strings.Join(names, ", ")
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify using OAuth2 (opens browser)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authorization state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Discard the stored access token",
				Action: r.AuthLogout,
			},
		},
	}
}

// historyCommand handles listening history operations
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "Listening history operations",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Fetch and normalize recently played tracks",
				Action: r.HistorySync,
			},
			{
				Name:  "list",
				Usage: "List recent plays, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "window",
						Aliases: []string{"w"},
						Usage:   windowFlagUsage(),
						Value:   "all",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:    "save",
						Aliases: []string{"o"},
						Usage:   "Save output to a file",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Saved file format: json, csv, md, text",
						Value:   "json",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "stats",
				Usage: "Aggregate listening stats",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryStats,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive history browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing listening history",
		Action:  r.TUI,
	}
}
