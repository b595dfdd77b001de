package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"path/filepath"
	"sync"
	texttmpl "text/template"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently.
		SendMessages(messages ...*EmailMessage)
	}

	emailContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: tmplCacheEntry}
)

var (
	emailTemplates tmplCache
	emailTmplInit  sync.Once
)

// ParseEmailTemplates eagerly parses assets/templates/email so template errors
// surface at boot instead of on first send.
func ParseEmailTemplates(conf *Config, logger Logger) {
	emailTmplInit.Do(func() { parseEmailTemplates(conf, logger) })
}

func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	data := emailContextData{FrontendBaseURL: conf.FrontendBaseURL, Data: m.TemplateData}

	if entry, ok := m.template(".txt"); ok {
		if tmpl, ok := entry.(*texttmpl.Template); ok {
			var buff bytes.Buffer
			if err := tmpl.Execute(&buff, data); err != nil {
				return err
			}
			m.TextContent = buff.String()
		}
	}
	if entry, ok := m.template(".gohtml"); ok {
		if tmpl, ok := entry.(*htmltmpl.Template); ok {
			var buff bytes.Buffer
			if err := tmpl.Execute(&buff, data); err != nil {
				return err
			}
			m.HTMLContent = buff.String()
		}
	}
	return nil
}

func (m *EmailMessage) template(ext string) (interface{}, bool) {
	cache, ok := emailTemplates[m.TemplateName]
	if !ok {
		return nil, false
	}
	entry, ok := cache[ext]
	return entry, ok
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

func parseEmailTemplates(conf *Config, logger Logger) {
	emailTemplates = make(tmplCache)

	rp := filepath.Join(conf.WorkDir, "assets", "templates", "email")
	fps, err := filepath.Glob(filepath.Join(rp, "*"))
	if err != nil {
		logger.Error(fmt.Sprintf("parsing email templates: %v", err), err)
		return
	}

	for _, fp := range fps {
		fname := filepath.Base(fp)
		ext := filepath.Ext(fname)
		if fname[0] == '_' || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := fname[:len(fname)-len(ext)]
		entry, ok := emailTemplates[name]
		if !ok {
			entry = make(tmplCacheEntry)
			emailTemplates[name] = entry
		}
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFiles(filepath.Join(rp, "_base.txt"), fp)
			if err != nil {
				logger.Error(fmt.Sprintf("parsing email template %s: %v", fname, err), err)
				continue
			}
			if conf.Debug || conf.TestMode {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFiles(filepath.Join(rp, "_base.gohtml"), fp)
			if err != nil {
				logger.Error(fmt.Sprintf("parsing email template %s: %v", fname, err), err)
				continue
			}
			if conf.Debug || conf.TestMode {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		}
	}
}
