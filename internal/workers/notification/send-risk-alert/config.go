package sendriskalert

import (
	"time"

	"copro-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	// SMSSenderID is the alphanumeric sender shown on handsets; empty
	// leaves it to the SNS account default.
	SMSSenderID string
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		Timeout:      30 * time.Second,
	}
}

// NewConfig takes channel switches and senders from the notifications
// section.
func NewConfig(app *config.Config) *Config {
	c := LoadConfig()
	if t := config.GetDuration(config.GetWorkerConfig(app, TaskType).Timeout); t > 0 {
		c.Timeout = t
	}
	c.EmailEnabled = app.Notifications.Email.Enabled
	c.FromEmail = app.Notifications.Email.FromEmail
	c.SMSEnabled = app.Notifications.SMS.Enabled
	c.SMSSenderID = app.Notifications.SMS.SenderID
	return c
}
