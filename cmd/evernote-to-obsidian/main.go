package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/sleroq/evernote-to-obsidian/internal/app/importer"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/enml"
	"github.com/sleroq/evernote-to-obsidian/internal/infra/vaultfs"
	"github.com/sleroq/evernote-to-obsidian/internal/logger"
	pkgconfig "github.com/sleroq/evernote-to-obsidian/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := importer.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if v := cmd.String("input"); v != "" {
		cfg.InputDir = v
	}
	if v := cmd.String("output"); v != "" {
		cfg.OutputDir = v
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if cmd.Bool("skip-web-clips") {
		cfg.SkipWebClips = true
	}
	if cmd.Bool("zettel") {
		cfg.ZettelFilenames = true
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	control := importer.NewConsoleControl(ctx)
	defer control.Close()

	imp := importer.New(cfg, vaultfs.OS{}, enml.NewRenderer(), control)
	stats, err := imp.Run()
	if err != nil {
		return err
	}

	fmt.Printf("imported %d notes from %d archives (%d resources, %d tasks, %d skipped, %d failed)\n",
		stats.Notes, stats.Archives, stats.Resources, stats.Tasks, stats.Skipped, stats.Failed)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "evernote-to-obsidian",
		Usage:  "Convert Evernote ENEX exports into an Obsidian vault",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Directory containing .enex archives",
				Value:   "./enex",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path to output Obsidian vault",
				Value:   "./obsidian-vault",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Sources: cli.EnvVars("EVERNOTE_TO_OBSIDIAN_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "skip-web-clips",
				Usage: "Skip notes captured by the web clipper",
			},
			&cli.BoolFlag{
				Name:  "zettel",
				Usage: "Name files by creation timestamp instead of title",
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}
