package sendriskalert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"copro-workers/internal/common/config"
)

func TestNewConfig(t *testing.T) {
	app := &config.Config{
		Workers: map[string]config.WorkerConfig{TaskType: {Enabled: true, Timeout: 12000}},
	}
	app.Notifications.Email.Enabled = false
	app.Notifications.SMS.Enabled = true
	app.Notifications.SMS.SenderID = "COPRO"

	c := NewConfig(app)

	assert.Equal(t, 12*time.Second, c.Timeout)
	assert.False(t, c.EmailEnabled)
	assert.True(t, c.SMSEnabled)
	assert.Equal(t, "COPRO", c.SMSSenderID)
	assert.Empty(t, c.FromEmail)
}
