package echoapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
)

type programApi struct {
	svc     program.ServiceInterface
	userSvc user.ServiceInterface
}

func registerProgramAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc program.ServiceInterface,
	userSvc user.ServiceInterface,
) {
	api := programApi{svc: svc, userSvc: userSvc}

	lg := g.Group("/level-subjects", jwt)
	lg.GET("/:id/calendar", api.calendar)
}

// calendar returns the module schedule of a level-subject track for the
// authenticated student.
func (api *programApi) calendar(ctx echo.Context) error {
	lsID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cal, err := api.svc.Calendar(ctx.Request().Context(), usr.ID, lsID)
	if err != nil {
		return errors.Wrap(err, "building calendar")
	}
	return ctx.JSON(http.StatusOK, cal)
}
