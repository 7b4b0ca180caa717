package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/schedule"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses `?ordering=name,-createdAt`. Only the JSON names in fields are kept,
// translated to their column.
func (ord *Ordering) Bind(ctx echo.Context, fields map[string]string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if col, ok := fields[field]; ok {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: col, Ascending: !descending})
		}
	}
}

// bindSessionFilter reads the `from`, `to` & `ageGroup` query params shared by the session listings.
func bindSessionFilter(ctx echo.Context) (schedule.QueryFilter, error) {
	var (
		filter schedule.QueryFilter
		flds   []core.FieldError
		err    error
	)
	if filter.From, err = schedule.ParseBound(ctx.QueryParam("from")); err != nil {
		flds = append(flds, core.FieldError{Field: "from", Error: err.Error()})
	}
	if filter.To, err = schedule.ParseBound(ctx.QueryParam("to")); err != nil {
		flds = append(flds, core.FieldError{Field: "to", Error: err.Error()})
	}
	if flds != nil {
		return filter, core.NewValidationError(nil, flds...)
	}
	filter.AgeGroup = core.CleanString(ctx.QueryParam("ageGroup"))
	return filter, nil
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string      `json:"token"`
		User  interface{} `json:"user"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	RegistrationResponse struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
	}

	HealthResponse struct {
		Status string `json:"status"`
		Build  string `json:"build"`
	}

	FlagsResponse struct {
		RequireAdminApprovalForParents bool `json:"requireAdminApprovalForParents"`
		GoLive                         bool `json:"goLive"`
	}
)
