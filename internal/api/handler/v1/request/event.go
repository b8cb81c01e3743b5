package request

import (
	"errors"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/text/unicode/norm"
)

// participantNamePattern allows letters with single inner spaces, apostrophes,
// dots and hyphens, starting with a letter and not ending in a space. Line
// breaks never match.
const participantNamePattern = `^(?=.{1,64}\z)(?!.*  )\p{L}[\p{L} '.-]*(?<! )\z`

var (
	participantNameExp = func() *regexp2.Regexp {
		re := regexp2.MustCompile(participantNamePattern, regexp2.None)
		re.MatchTimeout = 100 * time.Millisecond
		return re
	}()

	errInvalidEventName = errors.New("event name must not contain '/' or be '.' or '..'")

	errInvalidParticipantName = errors.New("participant name must start with a letter and contain only letters, spaces, apostrophes, dots or hyphens")
)

type CreateEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Price       string `json:"price" binding:"required"`
	Theme       string `json:"theme" binding:"required"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100), validation.By(routableEventName)),
		validation.Field(&req.Description, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.Price, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Theme, validation.Required, validation.Length(1, 100)),
	)
}

type UpdateEventRequest struct {
	Description      string `json:"description" binding:"required"`
	Price            string `json:"price" binding:"required"`
	Theme            string `json:"theme" binding:"required"`
	RegistrationOpen *bool  `json:"registration_open"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Description, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.Price, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Theme, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.RegistrationOpen, validation.NotNil),
	)
}

// routableEventName rejects names that cannot be addressed as a single
// :name path segment.
func routableEventName(value interface{}) error {
	s, _ := value.(string)
	if strings.Contains(s, "/") || s == "." || s == ".." {
		return errInvalidEventName
	}
	return nil
}

// NormalizeParticipantName returns name in NFC so that composed and
// decomposed spellings of the same name compare equal in a roster.
func NormalizeParticipantName(name string) string {
	return norm.NFC.String(name)
}

// ValidateParticipantName checks a display name before it joins a roster.
func ValidateParticipantName(name string) error {
	return validation.Validate(name, validation.Required, validation.By(matchParticipantName))
}

func matchParticipantName(value interface{}) error {
	s, _ := value.(string)
	ok, err := participantNameExp.MatchString(s)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidParticipantName
	}
	return nil
}
