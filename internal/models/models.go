package models

// User represents a registered bot user
type User struct {
	ID       int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Username string `json:"username"` // empty when the account has no handle
}

// Channel represents a channel users must be subscribed to
type Channel struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	ChatID string `json:"channel_id"` // numeric chat id ("-100...") or "@username"
	Link   string `json:"link"`
}

// Status holds the cumulative delivery counters
type Status struct {
	Active  int `json:"active"`
	Blocked int `json:"block"`
}

// Total returns Active + Blocked
func (s Status) Total() int {
	return s.Active + s.Blocked
}
