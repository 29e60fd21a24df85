package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ontrack/internal"
	"github.com/starford/ontrack/internal/track"
	pkgconfig "github.com/starford/ontrack/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func writeReport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ro := internal.ReportOptions{
		Filter: track.Filter{
			Season: cmd.String("season"),
			Year:   cmd.String("year"),
			Status: cmd.String("status"),
		},
		Sort:  cmd.String("sort"),
		Order: cmd.String("order"),
	}
	if path := cmd.String("xlsx"); path != "" {
		return internal.ReportFile(ctx, ro, path, internal.WithConfig(cfg))
	}
	return internal.Report(ctx, ro, internal.WithConfig(cfg))
}

func importDataset(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("import: dataset file argument is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Import(ctx, path, cmd.String("name"), internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:    "ontrack",
		Usage:   "Track whether students are on course for graduation, by cohort",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live dataset reload",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve roster tools over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:   "report",
				Usage:  "Print the roster summary and cohort trend",
				Action: writeReport,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "season", Usage: "Winter, Spring, Summer, Fall, or All", Value: track.All},
					&cli.StringFlag{Name: "year", Usage: "Four-digit cohort year or All", Value: track.All},
					&cli.StringFlag{Name: "status", Usage: "On Track, Off Track, or All", Value: track.All},
					&cli.StringFlag{Name: "sort", Usage: "Trend sort key", Value: string(track.SortStartDate)},
					&cli.StringFlag{Name: "order", Usage: "asc or desc (start date only)", Value: "asc"},
					&cli.StringFlag{Name: "xlsx", Usage: "Write an Excel workbook to this path instead of text"},
				},
			},
			{
				Name:      "import",
				Usage:     "Validate a dataset file and copy it into the data directory",
				ArgsUsage: "FILE",
				Action:    importDataset,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "File name inside the data directory (defaults to the base name)"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
