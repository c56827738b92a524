// Package app wires the dispatch engine from configuration: collaborators,
// metrics sinks, event bus and notifier.
package app

import (
	"context"
	"fmt"

	"github.com/Cooliber/Fulmark20CRM-sub003/config"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/dispatch"
	coremetrics "github.com/Cooliber/Fulmark20CRM-sub003/core/metrics"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/directory"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/logger"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/metrics"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/mqtt"
	"github.com/Cooliber/Fulmark20CRM-sub003/internal/eventbus"
	"github.com/Cooliber/Fulmark20CRM-sub003/jobs/dailyroutes"
)

// Service bundles the wired engine components.
type Service struct {
	Coordinator *dispatch.DispatchCoordinator
	Trigger     *dailyroutes.Trigger
	Tickets     *dispatch.MemoryTicketStore

	bus         eventbus.EventBus
	notifier    *mqtt.PahoNotifier
	log         logger.Logger
	promEnabled bool
	promPort    int
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	if cfg.FleetFile == "" {
		return nil, fmt.Errorf("app: fleet_file is required")
	}
	dir, err := directory.Load(cfg.FleetFile)
	if err != nil {
		return nil, fmt.Errorf("fleet directory: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()

	var notifier *mqtt.PahoNotifier
	var coordNotifier dispatch.Notifier
	if cfg.MQTT.Enabled {
		notifier, err = mqtt.NewPahoNotifier(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		coordNotifier = notifier
	}

	tickets := dispatch.NewMemoryTicketStore()
	coordinator, err := dispatch.NewDispatchCoordinator(dir, tickets, cfg.Dispatch, sink, bus, coordNotifier, logg)
	if err != nil {
		return nil, fmt.Errorf("dispatch coordinator: %w", err)
	}
	trigger, err := dailyroutes.NewTrigger(dir, sink, bus, logg)
	if err != nil {
		return nil, fmt.Errorf("daily routes trigger: %w", err)
	}

	return &Service{
		Coordinator: coordinator,
		Trigger:     trigger,
		Tickets:     tickets,
		bus:         bus,
		notifier:    notifier,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// StartMetrics serves /metrics until the context is canceled, when enabled.
func (s *Service) StartMetrics(ctx context.Context) {
	if !s.promEnabled {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, fmt.Sprintf(":%d", s.promPort)); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	return nil
}
