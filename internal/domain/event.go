package domain

import "time"

type Event struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Price            string    `json:"price"`
	Theme            string    `json:"theme"`
	RegistrationOpen bool      `json:"registration_open"`
	Participants     []string  `json:"participants"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasParticipant reports whether name is already on the roster.
func (e Event) HasParticipant(name string) bool {
	for _, p := range e.Participants {
		if p == name {
			return true
		}
	}
	return false
}
