package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/Cooliber/Fulmark20CRM-sub003/core/metrics"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a down metrics backend never blocks
// scheduling.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAssignments writes each assignment as a point.
func (s *InfluxSink) RecordAssignments(records []coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("assignment").
			AddTag("ticket_id", r.TicketID).
			AddTag("technician_id", r.TechnicianID).
			AddTag("emergency", strconv.FormatBool(r.Emergency)).
			AddTag("component", "dispatch_coordinator").
			AddField("score", r.Score).
			AddField("confidence", r.Confidence).
			AddField("travel_minutes", r.TravelMinutes).
			AddField("scheduled_time", r.ScheduledTime.Unix()).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRouteOptimizations writes per-technician route results.
func (s *InfluxSink) RecordRouteOptimizations(records []coremetrics.RouteRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("route_optimization").
			AddTag("technician_id", r.TechnicianID).
			AddTag("component", "daily_routes").
			AddField("jobs", r.Jobs).
			AddField("travel_minutes", r.TravelMinutes).
			AddField("work_minutes", r.WorkMinutes).
			AddField("efficiency", round3(r.Efficiency)).
			AddField("fuel_savings_pln", round3(r.FuelSavingsPLN)).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure writes a failed scheduling attempt.
func (s *InfluxSink) RecordFailure(record coremetrics.FailureRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("scheduling_failure").
		AddTag("ticket_id", record.TicketID).
		AddTag("reason", record.Reason).
		AddTag("component", "dispatch_coordinator").
		AddField("count", 1).
		SetTime(record.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
