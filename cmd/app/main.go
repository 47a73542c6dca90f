package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mizutama/koyomi/internal"
	"github.com/mizutama/koyomi/internal/mcpserver"
	"github.com/mizutama/koyomi/internal/notify"
	"github.com/mizutama/koyomi/internal/registry"
	"github.com/mizutama/koyomi/internal/store"
	pkgconfig "github.com/mizutama/koyomi/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// openService opens the store and builds a one-shot registry service for CLI
// commands that run without the server. The caller must Close the store.
func openService(cfg *internal.Config) (*registry.Service, *store.DB, error) {
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return registry.NewService(db, nil, nil), db, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := openService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	notifier := notify.New(db, svc.Clock(), notify.SlogSink{})
	return mcpserver.New(svc, notifier).ServeStdio()
}

func importAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: import <file.csv|file.vcf>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := openService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := svc.ImportReader(ctx, path, f)
	if err != nil {
		return err
	}
	if report.Empty() {
		fmt.Println("file contained no rows")
		return nil
	}
	fmt.Printf("imported %d of %d rows (%d rejected)\n", report.Accepted, report.Total, report.Rejected)
	return nil
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: export <file.csv>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := openService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := svc.ExportCSV(ctx, f); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := openService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	notifier := notify.New(db, svc.Clock(), notify.SlogSink{})
	report, err := notifier.Check(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("today %s: %d character birthdays, %d owner greetings\n",
		report.Today, report.CharacterBirthdays, report.OwnerGreetings)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "koyomi",
		Usage:  "Character birthday registry with same-day match notifications, calendar feed, and bulk import/export",
		Action: serveAction,
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
				Usage:  "Run the HTTP server (default)",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: mcpAction,
			},
			{
				Name:      "import",
				Usage:     "Bulk import characters from a CSV or vCard file",
				ArgsUsage: "<file>",
				Action:    importAction,
			},
			{
				Name:      "export",
				Usage:     "Export all characters to a CSV file",
				ArgsUsage: "<file>",
				Action:    exportAction,
			},
			{
				Name:   "check",
				Usage:  "Run the birthday check once and print the result",
				Action: checkAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
