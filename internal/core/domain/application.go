package domain

import "time"

// Application is a registered API caller identified by client id and
// secret. The client id is globally unique.
type Application struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"-"`
	Origins      []string  `json:"origins"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor identifies who drives a workflow operation: the authenticated
// application plus an optional end-user id supplied by the caller.
type Actor struct {
	AppID   string
	AppName string
	UserID  string
}
