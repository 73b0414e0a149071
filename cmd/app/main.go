package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	pkgconfig "github.com/starford/raido/pkg/config"
)

var version = "dev"

// loadConfig reads the config file (when present) and applies flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("input") {
		cfg.Build.Input = cmd.String("input")
	}
	if cmd.IsSet("output") {
		cfg.Build.Output = cmd.String("output")
	}
	if cmd.IsSet("index") {
		cfg.Index.Path = cmd.String("index")
	}
	if cmd.IsSet("quiet") {
		cfg.Build.Quiet = cmd.Bool("quiet")
	}
	if cmd.IsSet("dev") {
		cfg.Build.Dev = cmd.Bool("dev")
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := internal.Build(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("build error: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("serve error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Build.Quiet = true
	return internal.ServeMCP(ctx, cmd.Bool("refresh"),
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr),
	)
}

func queryCommand(name, usage, kind string, needsArg bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<value>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			arg := cmd.Args().First()
			if needsArg && arg == "" {
				return fmt.Errorf("%s: missing argument", name)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return internal.Query(ctx, kind, arg, int(cmd.Int("limit")),
				internal.WithConfig(cfg),
				internal.WithLogOutput(os.Stderr),
			)
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "raido",
		Usage:   "Static site builder for linked Markdown documents",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Source directory (overrides build.input)",
				Sources: cli.EnvVars("RAIDO_INPUT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (overrides build.output)",
				Sources: cli.EnvVars("RAIDO_OUTPUT"),
			},
			&cli.StringFlag{
				Name:    "index",
				Usage:   "Graph index database, empty to disable (overrides index.path)",
				Sources: cli.EnvVars("RAIDO_INDEX"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the site once",
				Action: runBuild,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Do not log every written file"},
					&cli.BoolFlag{Name: "dev", Usage: "Inject the live reload script"},
				},
			},
			{
				Name:   "serve",
				Usage:  "Build, serve and rebuild on change with live reload",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port (overrides app.http.port)", Sources: cli.EnvVars("RAIDO_PORT")},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Do not log every written file"},
				},
			},
			{
				Name:  "graph",
				Usage: "Query the page graph recorded by the last build",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of search results"},
				},
				Commands: []*cli.Command{
					queryCommand("backlinks", "Pages linking to a page", internal.QueryBacklinks, true),
					queryCommand("children", "Child pages of an index page", internal.QueryChildren, false),
					queryCommand("tag", "Pages carrying a tag", internal.QueryTag, true),
					queryCommand("tags", "All tags with page counts", internal.QueryTags, false),
					queryCommand("search", "Full-text search", internal.QuerySearch, true),
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve graph tools over MCP (stdio)",
				Action: runMCP,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "Build the site before serving"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
