package domain

import "time"

// Pair is one giver -> receiver link of a draw.
type Pair struct {
	Giver    string `json:"giver"`
	Receiver string `json:"receiver"`
}

// AssignmentSet is the frozen result of one draw for an event. It is not kept
// in sync with later roster edits.
type AssignmentSet struct {
	EventName string    `json:"event_name"`
	DrawID    string    `json:"draw_id"`
	DrawnAt   time.Time `json:"drawn_at"`
	Pairs     []Pair    `json:"pairs"`
}

// ReceiverOf returns the receiver paired with giver.
func (a AssignmentSet) ReceiverOf(giver string) (string, bool) {
	for _, p := range a.Pairs {
		if p.Giver == giver {
			return p.Receiver, true
		}
	}
	return "", false
}
