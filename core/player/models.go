package player

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academy/core"
)

type Player struct {
	ID           string      `json:"id" db:"id"`
	AcademyID    string      `json:"academyId" db:"academy_id"`
	ParentID     string      `json:"parentId" db:"parent_id"`
	Name         string      `json:"name" db:"name"`
	DateOfBirth  time.Time   `json:"dateOfBirth" db:"date_of_birth"`
	AgeGroup     string      `json:"ageGroup" db:"age_group"`
	MedicalNotes null.String `json:"medicalNotes" db:"medical_notes"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// PlayerInput is the create/update payload.
type PlayerInput struct {
	ParentID     string `json:"parentId" validate:"omitempty,uuid"`
	Name         string `json:"name" validate:"required,max=120"`
	DateOfBirth  string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	AgeGroup     string `json:"ageGroup" validate:"required,agegroup"`
	MedicalNotes string `json:"medicalNotes" validate:"omitempty,max=2000"`

	dob time.Time
}

func (in *PlayerInput) Validate(validate *validator.Validate) error {
	in.ParentID = core.CleanString(in.ParentID, true /* lower */)
	in.Name = core.CleanString(in.Name)
	in.DateOfBirth = core.CleanString(in.DateOfBirth)
	in.AgeGroup = core.CleanString(in.AgeGroup)
	in.MedicalNotes = core.CleanString(in.MedicalNotes)

	if err := validate.Struct(in); err != nil {
		return err
	}
	dob, err := time.Parse("2006-01-02", in.DateOfBirth)
	if err != nil {
		return err
	}
	if dob.After(nowFunc().UTC()) {
		return core.NewValidationError(nil, core.FieldError{Field: "dateOfBirth", Error: "cannot be in the future"})
	}
	in.dob = dob
	return nil
}

type QueryFilter struct {
	AcademyID string
	ParentID  string `query:"parentId"`
	AgeGroup  string `query:"ageGroup"`
}
