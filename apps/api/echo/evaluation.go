package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
)

type evaluationApi struct {
	svc      evaluation.ServiceInterface
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerEvaluationAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc evaluation.ServiceInterface,
	userSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := evaluationApi{svc: svc, userSvc: userSvc, validate: validate}

	mg := g.Group("/modules", jwt)
	mg.GET("/:moduleNumber/evaluations", api.moduleEvaluations)

	eg := g.Group("/evaluations", jwt)
	eg.POST("/:id/submit", api.submit)
	eg.POST("/:id/complete", api.complete)
}

// Handlers

func (api *evaluationApi) moduleEvaluations(ctx echo.Context) error {
	moduleNumber, err := strconv.Atoi(ctx.Param("moduleNumber"))
	if err != nil {
		return errHttpNotFound
	}
	lsID, err := uuid.Parse(ctx.QueryParam("levelSubjectId"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "levelSubjectId", Error: "a valid level subject id is required"})
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	view, err := api.svc.ModuleEvaluations(ctx.Request().Context(), usr, lsID, moduleNumber)
	if err != nil {
		return errors.Wrap(err, "getting module evaluations")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *evaluationApi) submit(ctx echo.Context) error {
	evalID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	result, err := api.svc.Submit(ctx.Request().Context(), usr, evalID, data.Answers)
	if err != nil {
		return errors.Wrap(err, "scoring submission")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *evaluationApi) complete(ctx echo.Context) error {
	evalID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data CompleteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.MarkComplete(ctx.Request().Context(), usr, evalID, data.Score, data.Passed); err != nil {
		return errors.Wrap(err, "marking evaluation complete")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "evaluation completed"})
}

type (
	SubmitRequest struct {
		Answers []evaluation.Answer `json:"answers" validate:"required,min=1,dive"`
	}

	CompleteRequest struct {
		Score  float64 `json:"score" validate:"min=0,max=100"`
		Passed bool    `json:"passed"`
	}
)

func (sr *SubmitRequest) Validate(validate *validator.Validate) error { return validate.Struct(sr) }

func (cr *CompleteRequest) Validate(validate *validator.Validate) error { return validate.Struct(cr) }
