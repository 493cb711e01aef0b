package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func newApp(cmd *cli.Command) (*internal.App, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return internal.New(internal.WithConfig(cfg))
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	limit, err := parseLimit(cmd.String("limit"))
	if err != nil {
		return err
	}
	query := strings.Join(cmd.Args().Slice(), " ")
	return app.Search(query, limit, cmd.Bool("fuzzy"))
}

// parseLimit accepts a result count or "all" for unlimited.
func parseLimit(s string) (int, error) {
	if s == "all" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit %q: expected a count or 'all'", s)
	}
	return n, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "ansuz",
		Usage:     "Index and search note files scattered across the filesystem",
		ArgsUsage: "[query terms]",
		Action:    runSearch,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "ansuz.yaml",
				Value:       "ansuz.yaml",
				Sources:     cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results, or 'all'",
				Value:   "10",
			},
			&cli.BoolFlag{
				Name:  "fuzzy",
				Usage: "Enable typo-tolerant term matching",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Destructively rebuild the index and reindex every note",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Build(ctx)
				},
			},
			{
				Name:  "update",
				Usage: "Incrementally reindex new and changed notes",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Update(ctx)
				},
			},
			{
				Name:  "files",
				Usage: "Dump the discovered note paths and refresh the tracked-files cache",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Files()
				},
			},
			{
				Name:  "serve",
				Usage: "Serve the read-only search API over HTTP",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Serve(ctx)
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve the index over the Model Context Protocol on stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.MCP()
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
