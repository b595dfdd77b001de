package pdfsvc

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
)

var (
	ErrHostNotAllowed = errors.New("pdf host not allowed")
	ErrNotPDF         = errors.New("remote document is not a PDF")

	// textbooks live on Drive; anything else is refused so the proxy cannot
	// be used as an open relay
	defaultAllowedHosts = []string{
		"drive.google.com",
		"drive.usercontent.google.com",
		"docs.google.com",
	}
)

type (
	// Document is the relayed PDF payload.
	Document struct {
		Content     []byte
		ContentType string
	}

	// Proxy fetches Drive-hosted PDFs server-side so the front-end can render
	// them without fighting CORS. It relays bytes; rendering stays client-side.
	Proxy struct {
		client       *resty.Client
		allowedHosts map[string]bool
	}
)

func NewProxy(logger core.Logger, allowedHosts ...string) *Proxy {
	hosts := allowedHosts
	if len(hosts) == 0 {
		hosts = defaultAllowedHosts
	}
	allowed := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		allowed[h] = true
	}

	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetLogger(restyLogger{logger})

	return &Proxy{client: client, allowedHosts: allowed}
}

// Fetch retrieves the document at rawURL after checking the host allow-list.
func (p *Proxy) Fetch(ctx context.Context, rawURL string) (Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, core.NewValidationError(errors.Wrap(err, "parsing url"))
	}
	if u.Scheme != "https" || !p.allowedHosts[u.Hostname()] {
		return Document{}, core.NewValidationError(ErrHostNotAllowed)
	}

	res, err := p.client.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return Document{}, errors.Wrap(err, "fetching pdf")
	}
	if res.IsError() {
		return Document{}, errors.Errorf("fetching pdf: upstream status %d", res.StatusCode())
	}

	ct := res.Header().Get("Content-Type")
	if ct != "application/pdf" && ct != "application/octet-stream" {
		return Document{}, ErrNotPDF
	}
	return Document{Content: res.Body(), ContentType: "application/pdf"}, nil
}

// restyLogger adapts core.Logger to resty's logger interface.
type restyLogger struct {
	logger core.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.logger.Error(fmt.Sprintf(format, v...)) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.logger.Warn(fmt.Sprintf(format, v...)) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.logger.Debug(fmt.Sprintf(format, v...)) }
