package models

// Watcher is a subscriber following alerts for one condominium.
type Watcher struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
