package response

import (
	"time"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/domain"
)

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// DrawResponse summarises a draw without revealing who gives to whom.
type DrawResponse struct {
	EventName    string    `json:"event_name"`
	DrawID       string    `json:"draw_id"`
	DrawnAt      time.Time `json:"drawn_at"`
	Participants int       `json:"participants"`
}

func NewDrawResponse(set domain.AssignmentSet) DrawResponse {
	return DrawResponse{
		EventName:    set.EventName,
		DrawID:       set.DrawID,
		DrawnAt:      set.DrawnAt,
		Participants: len(set.Pairs),
	}
}

type ReceiverResponse struct {
	EventName string `json:"event_name"`
	Giver     string `json:"giver"`
	Receiver  string `json:"receiver"`
}

// AssignmentsResponse exposes the full draw; it is only served to admins.
type AssignmentsResponse struct {
	DrawResponse
	Pairs []domain.Pair `json:"pairs"`
}

func NewAssignmentsResponse(set domain.AssignmentSet) AssignmentsResponse {
	return AssignmentsResponse{
		DrawResponse: NewDrawResponse(set),
		Pairs:        set.Pairs,
	}
}
