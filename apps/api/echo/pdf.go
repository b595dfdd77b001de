package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
	pdfsvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/pdf"
)

type pdfApi struct {
	svc      *pdfsvc.Proxy
	validate *validator.Validate
}

func registerPDFAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *pdfsvc.Proxy,
	validate *validator.Validate,
) {
	api := pdfApi{svc: svc, validate: validate}
	g.GET("/pdf-proxy", api.proxy, jwt)
}

// proxy streams an allow-listed Drive-hosted PDF through the API, so the
// front-end never hits Google with student credentials.
func (api *pdfApi) proxy(ctx echo.Context) error {
	rawURL := ctx.QueryParam("url")
	if rawURL == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "url", Error: "this field is required"})
	}

	doc, err := api.svc.Fetch(ctx.Request().Context(), rawURL)
	if err != nil {
		return errors.Wrap(err, "fetching document")
	}
	return ctx.Blob(http.StatusOK, doc.ContentType, doc.Content)
}
