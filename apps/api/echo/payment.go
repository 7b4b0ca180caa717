package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/payment"
	"github.com/trezcool/academy/core/user"
)

type paymentApi struct {
	svc      payment.ServiceInterface
	validate *validator.Validate
}

func registerPaymentAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	admin echo.MiddlewareFunc,
	svc payment.ServiceInterface,
	validate *validator.Validate,
) {
	api := paymentApi{svc: svc, validate: validate}

	pg := g.Group("/payments", auth)
	pg.GET("", api.query)
	pg.POST("", api.create, roleRequired(user.RoleParent))

	dg := pg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.POST("/capture", api.capture)
	dg.PUT("/status", api.setStatus, admin)
}

// objectMiddleware puts the :id payment in the context. Only its payer and the admins can see it.
func (api *paymentApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == payment.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding payment")
		}

		usr := mustContextUser(ctx)
		switch {
		case usr.IsSuperAdmin():
		case usr.IsAdmin() && p.AcademyID == usr.AcademyID:
		case p.ParentID == usr.ID:
		default:
			return errHttpNotFound
		}
		ctx.Set("object", p)
		return next(ctx)
	}
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data, mustContextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) query(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}
	for i, s := range filter.Statuses {
		filter.Statuses[i] = core.CleanString(s, true /* lower */)
	}

	usr := mustContextUser(ctx)
	if !usr.IsAdmin() {
		filter.ParentID = usr.ID
	}
	filter.AcademyID = academyScope(usr)

	payments, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	p, ok := ctx.Get("object").(payment.Payment)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving payment from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) capture(ctx echo.Context) error {
	p, ok := ctx.Get("object").(payment.Payment)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving payment from context")
	}
	if p.ParentID != mustContextUser(ctx).ID {
		return errHttpForbidden
	}

	p, err := api.svc.Capture(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "capturing payment")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) setStatus(ctx echo.Context) error {
	p, ok := ctx.Get("object").(payment.Payment)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving payment from context")
	}

	var data payment.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.SetStatus(ctx.Request().Context(), p, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting payment status")
	}
	return ctx.JSON(http.StatusOK, p)
}
