// Package scenarios runs end-to-end scheduling scenarios described in YAML
// against the dispatch coordinator. The files next to this package double as
// executable QA documentation.
package scenarios

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

type JobDef struct {
	ID       string            `yaml:"id"`
	TicketID string            `yaml:"ticket_id"`
	Start    time.Time         `yaml:"start"`
	End      time.Time         `yaml:"end"`
	Location model.Coordinates `yaml:"location"`
	Status   string            `yaml:"status"`
}

type TechnicianDef struct {
	ID                  string            `yaml:"id"`
	Name                string            `yaml:"name"`
	Status              string            `yaml:"status"`
	Level               string            `yaml:"level"`
	Skills              []string          `yaml:"skills"`
	Location            model.Coordinates `yaml:"location"`
	WorkDayStart        string            `yaml:"work_day_start"`
	WorkDayEnd          string            `yaml:"work_day_end"`
	TravelBufferMinutes int               `yaml:"travel_buffer_minutes"`
	Jobs                []JobDef          `yaml:"jobs,omitempty"`
}

func (d TechnicianDef) ToModel() model.TechnicianAvailability {
	tech := model.TechnicianAvailability{
		ID:                  d.ID,
		Name:                d.Name,
		Status:              d.Status,
		Level:               model.ParseSkillLevel(d.Level),
		Skills:              d.Skills,
		Location:            d.Location,
		WorkDayStart:        d.WorkDayStart,
		WorkDayEnd:          d.WorkDayEnd,
		TravelBufferMinutes: d.TravelBufferMinutes,
	}
	if tech.WorkDayStart == "" {
		tech.WorkDayStart = "08:00"
	}
	if tech.WorkDayEnd == "" {
		tech.WorkDayEnd = "16:00"
	}
	for _, j := range d.Jobs {
		tech.Jobs = append(tech.Jobs, model.ScheduledJob{
			ID:       j.ID,
			TicketID: j.TicketID,
			Start:    j.Start,
			End:      j.End,
			Location: j.Location,
			Status:   model.ParseJobStatus(j.Status),
		})
	}
	return tech
}

type RequestDef struct {
	TicketID          string            `yaml:"ticket_id"`
	Priority          string            `yaml:"priority"`
	ServiceType       string            `yaml:"service_type"`
	EstimatedDuration int               `yaml:"estimated_duration"`
	RequiredSkills    []string          `yaml:"required_skills"`
	PreferredDate     *time.Time        `yaml:"preferred_date,omitempty"`
	Location          model.Coordinates `yaml:"location"`
	Emergency         bool              `yaml:"emergency,omitempty"`
}

func (d RequestDef) ToModel() model.SchedulingRequest {
	return model.SchedulingRequest{
		TicketID:          d.TicketID,
		Priority:          d.Priority,
		ServiceType:       d.ServiceType,
		EstimatedDuration: d.EstimatedDuration,
		RequiredSkills:    d.RequiredSkills,
		PreferredDate:     d.PreferredDate,
		Location:          d.Location,
	}
}

type Expected struct {
	Scheduled   int               `yaml:"scheduled"`
	Assignments map[string]string `yaml:"assignments,omitempty"`
}

type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Now         time.Time       `yaml:"now"`
	Technicians []TechnicianDef `yaml:"technicians"`
	Requests    []RequestDef    `yaml:"requests"`
	FailNotify  []string        `yaml:"fail_notify,omitempty"`
	Expected    Expected        `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
