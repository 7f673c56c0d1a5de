package sendriskalert

type Input struct {
	CondoID          string                 `json:"condoId"`
	RunID            string                 `json:"runId,omitempty"`
	NotificationType string                 `json:"notificationType,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	EmailSent      int    `json:"emailSent"`
	SMSSent        int    `json:"smsSent"`
	Recipients     int    `json:"recipients"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeRiskAlert   = "risk_alert"
	TypeRiskCleared = "risk_cleared"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	PriorityHigh = "high"
)
