package academy

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academy/core"
)

// Academy is a tenant. Users, players, sessions and payments all belong to one.
type Academy struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type NewAcademy struct {
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"required,max=60,slug"`
}

func (na *NewAcademy) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Slug = core.CleanString(na.Slug, true /* lower */)
	return validate.Struct(na)
}
