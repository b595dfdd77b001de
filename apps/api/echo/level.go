package echoapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/level"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
)

type levelApi struct {
	svc     level.ServiceInterface
	userSvc user.ServiceInterface
}

func registerLevelAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc level.ServiceInterface,
	userSvc user.ServiceInterface,
) {
	api := levelApi{svc: svc, userSvc: userSvc}

	cg := g.Group("/gemini-copilots", jwt)
	cg.GET("/by-level/:levelId", api.copilotByLevel)

	g.GET("/plans", api.plans, jwt)
}

// Handlers

func (api *levelApi) copilotByLevel(ctx echo.Context) error {
	levelID, err := uuid.Parse(ctx.Param("levelId"))
	if err != nil {
		return errHttpNotFound
	}
	copilot, err := api.svc.CopilotByLevel(ctx.Request().Context(), levelID)
	if err != nil {
		return errors.Wrap(err, "getting copilot")
	}
	return ctx.JSON(http.StatusOK, copilot)
}

// plans serves the pricing dataset; filtered to a level when levelId is given.
func (api *levelApi) plans(ctx echo.Context) error {
	if raw := ctx.QueryParam("levelId"); raw != "" {
		levelID, err := uuid.Parse(raw)
		if err != nil {
			return errHttpNotFound
		}
		plans, err := api.svc.PlansForLevel(ctx.Request().Context(), levelID)
		if err != nil {
			return errors.Wrap(err, "getting plans for level")
		}
		return ctx.JSON(http.StatusOK, plans)
	}
	return ctx.JSON(http.StatusOK, api.svc.AllPlans())
}
