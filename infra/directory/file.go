// Package directory provides a file-backed TechnicianDirectory. It exists
// for the CLI and for local experiments; production deployments implement
// the directory against the CRM technician service.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

type fleetFile struct {
	Technicians []fleetTechnician `json:"technicians" yaml:"technicians"`
}

type fleetTechnician struct {
	ID                  string            `json:"id" yaml:"id"`
	Name                string            `json:"name" yaml:"name"`
	Status              string            `json:"status" yaml:"status"`
	Level               string            `json:"level" yaml:"level"`
	Skills              []string          `json:"skills" yaml:"skills"`
	Location            model.Coordinates `json:"location" yaml:"location"`
	WorkDayStart        string            `json:"work_day_start" yaml:"work_day_start"`
	WorkDayEnd          string            `json:"work_day_end" yaml:"work_day_end"`
	TravelBufferMinutes int               `json:"travel_buffer_minutes" yaml:"travel_buffer_minutes"`
	Jobs                []fleetJob        `json:"jobs" yaml:"jobs"`
}

type fleetJob struct {
	ID       string            `json:"id" yaml:"id"`
	TicketID string            `json:"ticket_id" yaml:"ticket_id"`
	Start    time.Time         `json:"start" yaml:"start"`
	End      time.Time         `json:"end" yaml:"end"`
	Location model.Coordinates `json:"location" yaml:"location"`
	Status   string            `json:"status" yaml:"status"`
}

// FileDirectory serves a technician pool loaded from a JSON or YAML fleet
// file.
type FileDirectory struct {
	technicians []model.TechnicianAvailability
}

// Load reads a fleet file and builds a FileDirectory.
func Load(path string) (*FileDirectory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read fleet file: %w", err)
	}
	var f fleetFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	case ".json":
		err = json.Unmarshal(b, &f)
	default:
		return nil, fmt.Errorf("directory: unsupported fleet file format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("directory: parse fleet file: %w", err)
	}

	d := &FileDirectory{}
	for _, ft := range f.Technicians {
		tech := model.TechnicianAvailability{
			ID:                  ft.ID,
			Name:                ft.Name,
			Status:              ft.Status,
			Level:               model.ParseSkillLevel(ft.Level),
			Skills:              ft.Skills,
			Location:            ft.Location,
			WorkDayStart:        ft.WorkDayStart,
			WorkDayEnd:          ft.WorkDayEnd,
			TravelBufferMinutes: ft.TravelBufferMinutes,
		}
		if tech.WorkDayStart == "" {
			tech.WorkDayStart = "08:00"
		}
		if tech.WorkDayEnd == "" {
			tech.WorkDayEnd = "16:00"
		}
		for _, fj := range ft.Jobs {
			tech.Jobs = append(tech.Jobs, model.ScheduledJob{
				ID:       fj.ID,
				TicketID: fj.TicketID,
				Start:    fj.Start,
				End:      fj.End,
				Location: fj.Location,
				Status:   model.ParseJobStatus(fj.Status),
			})
		}
		d.technicians = append(d.technicians, tech)
	}
	return d, nil
}

// ListAvailable returns technicians whose status is "available", with only
// the jobs falling on the requested date.
func (d *FileDirectory) ListAvailable(_ context.Context, date time.Time) ([]model.TechnicianAvailability, error) {
	var out []model.TechnicianAvailability
	for _, t := range d.technicians {
		if !strings.EqualFold(t.Status, "available") {
			continue
		}
		out = append(out, withJobsOn(t, date))
	}
	return out, nil
}

// ListAll returns every technician regardless of status.
func (d *FileDirectory) ListAll(_ context.Context, date time.Time) ([]model.TechnicianAvailability, error) {
	out := make([]model.TechnicianAvailability, 0, len(d.technicians))
	for _, t := range d.technicians {
		out = append(out, withJobsOn(t, date))
	}
	return out, nil
}

// LocationOf returns the position of the technician with the given id.
func (d *FileDirectory) LocationOf(_ context.Context, id string) (model.Coordinates, error) {
	for _, t := range d.technicians {
		if t.ID == id {
			return t.Location, nil
		}
	}
	return model.Coordinates{}, fmt.Errorf("directory: unknown technician %s", id)
}

func withJobsOn(t model.TechnicianAvailability, date time.Time) model.TechnicianAvailability {
	var jobs []model.ScheduledJob
	for _, j := range t.Jobs {
		if j.Start.Year() == date.Year() && j.Start.YearDay() == date.YearDay() {
			jobs = append(jobs, j)
		}
	}
	t.Jobs = jobs
	return t
}
