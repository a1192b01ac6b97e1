package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"site_analyzer/internal/analyzer"
	"site_analyzer/internal/app"
	"site_analyzer/internal/config"
	"site_analyzer/internal/history"
	"site_analyzer/internal/logger"
	"site_analyzer/internal/render"
	"site_analyzer/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "site-analyzer",
		Short:         "Client for the remote site analysis service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newServeCmd(), newWatchCmd(), newHistoryCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var outputDir string
	var skipReport bool
	cmd := &cobra.Command{
		Use:   "analyze <address>",
		Short: "Analyze one address and save its PDF report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.LogLevel)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			return runAnalyze(cmd.Context(), cfg, strings.Join(args, " "), skipReport)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the PDF report (default from config)")
	cmd.Flags().BoolVar(&skipReport, "skip-report", false, "do not save the PDF report")
	return cmd
}

func runAnalyze(ctx context.Context, cfg config.Config, address string, skipReport bool) error {
	client := analyzer.New(cfg.BaseURL, cfg.HTTPTimeout())
	sess := session.New(client)

	result, err := sess.Submit(ctx, address)
	if err != nil {
		return fmt.Errorf("%s", analyzer.UserMessage(err))
	}
	fmt.Print(render.Report(result))

	var reportBytes int64
	if !skipReport && sess.HasReport() {
		data, err := sess.Report()
		if err != nil {
			return err
		}
		path, err := sess.DownloadReport(cfg.OutputDir)
		if err != nil {
			return err
		}
		reportBytes = int64(len(data))
		fmt.Printf("Report saved to %s (%s)\n", path, humanize.Bytes(uint64(len(data))))
	}

	store, err := history.Open(cfg.DBPath)
	if err != nil {
		logger.Log.WithError(err).Warn("open history")
		return nil
	}
	defer store.Close()
	if err := store.Record(ctx, history.EntryFrom(result, reportBytes)); err != nil {
		logger.Log.WithError(err).Warn("record history")
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local analysis page and API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(config.Load())
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox directory and analyze address files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			cfg.EnableWatcher = true
			return runApp(cfg)
		},
	}
}

func runApp(cfg config.Config) error {
	logger.Init(cfg.LogLevel)
	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	return application.Run(ctx)
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.LogLevel)
			store, err := history.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s  %s  %s  %s  %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.Address,
					render.Coordinates(e.Latitude, e.Longitude),
					e.SlopeClassification,
					e.AccessScore)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}
