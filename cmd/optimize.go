package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cooliber/Fulmark20CRM-sub003/app"
	"github.com/Cooliber/Fulmark20CRM-sub003/config"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/logger"
	"github.com/Cooliber/Fulmark20CRM-sub003/pkg/export"
)

var (
	optimizeDate   string
	optimizeFormat string
	optimizeOut    string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run daily route optimization across the technician pool",
	RunE:  optimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optimizeDate, "date", "", "day to optimize (YYYY-MM-DD, default today)")
	optimizeCmd.Flags().StringVar(&optimizeFormat, "format", "json", "output format (json or csv)")
	optimizeCmd.Flags().StringVarP(&optimizeOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(optimizeCmd)
}

func optimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	date := time.Now()
	if optimizeDate != "" {
		date, err = time.ParseInLocation("2006-01-02", optimizeDate, time.Local)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("optimize-command").Errorf("service close: %v", err)
		}
	}()

	routes, err := svc.Trigger.Run(ctx, date)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if optimizeOut != "" {
		f, err := os.Create(optimizeOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return export.Write(out, optimizeFormat, routes)
}
