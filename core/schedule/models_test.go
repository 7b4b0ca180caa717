package schedule

import (
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academy/core"
)

func newValidator() *validator.Validate {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func TestSessionInput_Validate(t *testing.T) {
	validate := newValidator()
	base := func() SessionInput { return SessionInput{Title: " Nets ", AgeGroup: "U11"} }

	tests := []struct {
		name      string
		edit      func(in *SessionInput)
		wantStart time.Time
		wantEnd   time.Time
		wantErr   string
	}{
		{
			name:      "local form",
			edit:      func(in *SessionInput) { in.Date, in.StartTime, in.EndTime, in.Timezone = "2024-07-01", "17:00", "18:00", "Australia/Sydney" },
			wantStart: time.Date(2024, 7, 1, 7, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:      "utc form",
			edit:      func(in *SessionInput) { in.StartUTC, in.EndUTC = "2024-07-01T07:00:00Z", "2024-07-01T15:00:00Z" },
			wantStart: time.Date(2024, 7, 1, 7, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC),
		},
		{
			name:    "end before start",
			edit:    func(in *SessionInput) { in.StartUTC, in.EndUTC = "2024-07-01T07:00:00Z", "2024-07-01T06:00:00Z" },
			wantErr: "End time must be after start time",
		},
		{
			name:    "end equals start",
			edit:    func(in *SessionInput) { in.StartUTC, in.EndUTC = "2024-07-01T07:00:00Z", "2024-07-01T07:00:00Z" },
			wantErr: "End time must be after start time",
		},
		{
			name:    "over 8 hours",
			edit:    func(in *SessionInput) { in.StartUTC, in.EndUTC = "2024-07-01T07:00:00Z", "2024-07-01T15:01:00Z" },
			wantErr: "Session cannot be longer than 8 hours",
		},
		{
			name:    "both forms",
			edit:    func(in *SessionInput) { in.Date, in.StartUTC, in.EndUTC = "2024-07-01", "2024-07-01T07:00:00Z", "2024-07-01T08:00:00Z" },
			wantErr: errBothForms.Error(),
		},
		{
			name:    "incomplete local form",
			edit:    func(in *SessionInput) { in.Date, in.StartTime = "2024-07-01", "10:00" },
			wantErr: "this field is required",
		},
		{
			name: "unassign with a coach",
			edit: func(in *SessionInput) {
				in.StartUTC, in.EndUTC = "2024-07-01T07:00:00Z", "2024-07-01T08:00:00Z"
				in.CoachID, in.UnassignCoach = "6f1c8a52-7d2e-4c59-9b0e-2a4f8c3d1e77", true
			},
			wantErr: "cannot be combined with unassignCoach",
		},
		{name: "no times", edit: func(*SessionInput) {}, wantErr: errNoTimes.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.edit(&in)
			err := in.Validate(validate)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Nets", in.Title)
			assert.True(t, tt.wantStart.Equal(in.startsAt))
			assert.True(t, tt.wantEnd.Equal(in.endsAt))
		})
	}
}
