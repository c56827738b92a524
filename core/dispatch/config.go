package dispatch

// Config defines scheduling-related settings.
type Config struct {
	// SlotMinutes is the candidate-slot granularity.
	SlotMinutes int `json:"slot_minutes"`
	// MaxAlternatives caps the alternative proposals generated when the
	// top candidate has no feasible slot.
	MaxAlternatives int `json:"max_alternatives"`
}

// SetDefaults applies the production defaults.
func (c *Config) SetDefaults() {
	if c.SlotMinutes == 0 {
		c.SlotMinutes = 30
	}
	if c.MaxAlternatives == 0 {
		c.MaxAlternatives = 3
	}
}
