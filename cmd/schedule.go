package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Cooliber/Fulmark20CRM-sub003/app"
	"github.com/Cooliber/Fulmark20CRM-sub003/config"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/logger"
)

var (
	requestPath string
	emergency   bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a service request from a JSON file",
	RunE:  schedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&requestPath, "request", "r", "", "service request JSON file")
	scheduleCmd.Flags().BoolVar(&emergency, "emergency", false, "use the emergency override path")
	_ = scheduleCmd.MarkFlagRequired("request")
	rootCmd.AddCommand(scheduleCmd)
}

func schedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	b, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req model.SchedulingRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("schedule-command").Errorf("service close: %v", err)
		}
	}()
	svc.StartMetrics(ctx)

	var result model.SchedulingResult
	if emergency {
		result, err = svc.Coordinator.HandleEmergencyScheduling(ctx, req)
	} else {
		result, err = svc.Coordinator.ScheduleServiceRequest(ctx, req)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
