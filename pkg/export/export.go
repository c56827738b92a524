// Package export writes optimized route plans in the formats the back office
// consumes.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

// WriteJSON writes the route plan to w in JSON format.
func WriteJSON(w io.Writer, routes []model.RouteOptimization) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(routes)
}

// WriteCSV writes the route plan to w with one row per routed job.
func WriteCSV(w io.Writer, routes []model.RouteOptimization) error {
	cw := csv.NewWriter(w)
	header := []string{
		"technician_id", "stop", "job_id", "ticket_id", "start",
		"travel_minutes", "efficiency_percent", "fuel_savings_pln",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range routes {
		for i, j := range r.Jobs {
			rec := []string{
				r.TechnicianID,
				strconv.Itoa(i + 1),
				j.ID,
				j.TicketID,
				j.Start.Format(time.RFC3339),
				strconv.Itoa(j.TravelTimeMinutes),
				strconv.FormatFloat(r.Efficiency, 'f', 1, 64),
				strconv.FormatFloat(r.FuelSavingsPLN, 'f', 2, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format, accepting "json" and "csv".
func Write(w io.Writer, format string, routes []model.RouteOptimization) error {
	switch format {
	case "json":
		return WriteJSON(w, routes)
	case "csv":
		return WriteCSV(w, routes)
	default:
		return fmt.Errorf("export: unsupported format %q", format)
	}
}
