package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
)

// MaxDuration is the longest a training session may last.
const MaxDuration = 8 * time.Hour

var (
	errEndBeforeStart = errors.New("End time must be after start time")
	errTooLong        = errors.New("Session cannot be longer than 8 hours")
	errBothForms      = errors.New("provide either date, startTime, endTime and timezone, or startUtc and endUtc")
	errNoTimes        = errors.New("start and end times are required")

	requiredText = "this field is required"
)

// Session is a scheduled training slot. Times are stored in UTC.
type Session struct {
	ID        string      `json:"id" db:"id"`
	AcademyID string      `json:"academyId" db:"academy_id"`
	CoachID   null.String `json:"coachId" db:"coach_id"`
	Title     string      `json:"title" db:"title"`
	AgeGroup  string      `json:"ageGroup" db:"age_group"`
	Location  null.String `json:"location" db:"location"`
	Notes     null.String `json:"notes" db:"notes"`
	StartsAt  time.Time   `json:"startsAt" db:"starts_at"`
	EndsAt    time.Time   `json:"endsAt" db:"ends_at"`
	CreatedBy string      `json:"createdBy" db:"created_by"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// SessionInput is the create/update payload. Times come either as a local date & wall-clock times
// in an IANA time zone, or directly as UTC instants.
type SessionInput struct {
	Title    string `json:"title" validate:"required,max=120"`
	AgeGroup string `json:"ageGroup" validate:"required,agegroup"`
	Location string `json:"location" validate:"omitempty,max=200"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
	CoachID  string `json:"coachId" validate:"omitempty,uuid"`

	// UnassignCoach clears the coach on update. Without it an empty CoachID keeps the current coach.
	UnassignCoach bool `json:"unassignCoach"`

	// local form
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"omitempty,datetime=15:04"`
	Timezone  string `json:"timezone" validate:"omitempty,timezone"`

	// UTC form
	StartUTC string `json:"startUtc" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndUTC   string `json:"endUtc" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`

	startsAt time.Time
	endsAt   time.Time
}

// Validate checks the payload and resolves its start & end instants.
func (in *SessionInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.AgeGroup = core.CleanString(in.AgeGroup)
	in.Location = core.CleanString(in.Location)
	in.Notes = core.CleanString(in.Notes)
	in.CoachID = core.CleanString(in.CoachID, true /* lower */)
	in.Date = core.CleanString(in.Date)
	in.StartTime = core.CleanString(in.StartTime)
	in.EndTime = core.CleanString(in.EndTime)
	in.Timezone = core.CleanString(in.Timezone)
	in.StartUTC = core.CleanString(in.StartUTC)
	in.EndUTC = core.CleanString(in.EndUTC)

	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.UnassignCoach && in.CoachID != "" {
		return core.NewValidationError(nil, core.FieldError{Field: "coachId", Error: "cannot be combined with unassignCoach"})
	}
	start, end, err := in.resolve()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return core.NewValidationError(errEndBeforeStart)
	}
	if end.Sub(start) > MaxDuration {
		return core.NewValidationError(errTooLong)
	}
	in.startsAt, in.endsAt = start, end
	return nil
}

func (in *SessionInput) resolve() (start, end time.Time, err error) {
	local := in.Date != "" || in.StartTime != "" || in.EndTime != "" || in.Timezone != ""
	utc := in.StartUTC != "" || in.EndUTC != ""

	switch {
	case local && utc:
		return start, end, core.NewValidationError(errBothForms)
	case local:
		if flds := missing(map[string]string{
			"date": in.Date, "startTime": in.StartTime, "endTime": in.EndTime, "timezone": in.Timezone,
		}); len(flds) > 0 {
			return start, end, core.NewValidationError(nil, flds...)
		}
		if start, err = LocalToUTC(in.Date, in.StartTime, in.Timezone, "startTime"); err != nil {
			return start, end, err
		}
		end, err = LocalToUTC(in.Date, in.EndTime, in.Timezone, "endTime")
		return start, end, err
	case utc:
		if flds := missing(map[string]string{"startUtc": in.StartUTC, "endUtc": in.EndUTC}); len(flds) > 0 {
			return start, end, core.NewValidationError(nil, flds...)
		}
		if start, err = time.Parse(time.RFC3339, in.StartUTC); err != nil {
			return start, end, errors.Wrap(err, "parsing startUtc")
		}
		end, err = time.Parse(time.RFC3339, in.EndUTC)
		return start.UTC(), end.UTC(), errors.Wrap(err, "parsing endUtc")
	}
	return start, end, core.NewValidationError(errNoTimes)
}

func missing(fields map[string]string) []core.FieldError {
	var flds []core.FieldError
	for name, val := range fields {
		if val == "" {
			flds = append(flds, core.FieldError{Field: name, Error: requiredText})
		}
	}
	return flds
}

// QueryFilter narrows session listings. Zero fields are ignored.
type QueryFilter struct {
	From      time.Time // inclusive
	To        time.Time // exclusive
	AgeGroup  string
	CoachID   string
	AcademyID string
}
