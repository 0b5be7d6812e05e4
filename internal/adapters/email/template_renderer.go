package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"ourevents/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// Template names known to the renderer.
const (
	TemplateWelcome               = "welcome"
	TemplateRegistrationConfirmed = "registration_confirmed"
)

type renderedTemplate struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
type templateRenderer struct {
	templates map[string]renderedTemplate
}

// NewTemplateRenderer parses every known template from the embedded templates folder.
func NewTemplateRenderer() (domain.EmailTemplateRenderer, error) {
	r := &templateRenderer{templates: make(map[string]renderedTemplate)}
	for _, name := range []string{TemplateWelcome, TemplateRegistrationConfirmed} {
		subject, err := texttemplate.ParseFS(templateFS, "templates/"+name+"_subject.txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", name, err)
		}
		html, err := htmltemplate.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s html: %w", name, err)
		}
		text, err := texttemplate.ParseFS(templateFS, "templates/"+name+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s text: %w", name, err)
		}
		r.templates[name] = renderedTemplate{subject: subject, html: html, text: text}
	}
	return r, nil
}

// Render executes the named template (e.g. "welcome") with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	t, ok := r.templates[templateName]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", templateName)
	}
	var buf bytes.Buffer
	if err := t.subject.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := t.html.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err := t.text.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return subject, htmlBody, buf.String(), nil
}
