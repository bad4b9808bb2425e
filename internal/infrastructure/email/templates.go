// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/interval"
)

//go:embed templates/*
var templateFS embed.FS

// RenderedEmail holds both HTML and text versions of a rendered email
type RenderedEmail struct {
	HTML string
	Text string
}

// BookingTemplateManager defines the interface for rendering booking email templates
type BookingTemplateManager interface {
	RenderConfirmation(data domain.BookingNotice) (*RenderedEmail, error)
	RenderRescheduled(data domain.BookingNotice) (*RenderedEmail, error)
	RenderCancellation(data domain.BookingNotice) (*RenderedEmail, error)
}

// TemplateSet holds HTML and text versions of a template
type TemplateSet struct {
	HTML *template.Template
	Text *template.Template
}

// Templates holds all booking-related templates
type Templates struct {
	Confirmation TemplateSet
	Rescheduled  TemplateSet
	Cancellation TemplateSet
}

// templateConfig defines a template to be loaded
type templateConfig struct {
	name string
	path string
}

// TemplateManager is the default implementation of BookingTemplateManager
type TemplateManager struct {
	templates Templates
}

// Ensure TemplateManager implements BookingTemplateManager
var _ BookingTemplateManager = (*TemplateManager)(nil)

// NewTemplateManager creates a new template manager with all templates loaded
func NewTemplateManager() (*TemplateManager, error) {
	templateConfigs := map[string]templateConfig{
		"confirmationHTML": {"booking_confirmation.html", "templates/booking_confirmation.html"},
		"confirmationText": {"booking_confirmation.txt", "templates/booking_confirmation.txt"},
		"rescheduledHTML":  {"booking_rescheduled.html", "templates/booking_rescheduled.html"},
		"rescheduledText":  {"booking_rescheduled.txt", "templates/booking_rescheduled.txt"},
		"cancellationHTML": {"booking_cancellation.html", "templates/booking_cancellation.html"},
		"cancellationText": {"booking_cancellation.txt", "templates/booking_cancellation.txt"},
	}

	loadedTemplates := make(map[string]*template.Template)
	for key, cfg := range templateConfigs {
		tmpl, err := loadTemplate(cfg)
		if err != nil {
			return nil, err
		}
		loadedTemplates[key] = tmpl
	}

	return &TemplateManager{
		templates: Templates{
			Confirmation: TemplateSet{
				HTML: loadedTemplates["confirmationHTML"],
				Text: loadedTemplates["confirmationText"],
			},
			Rescheduled: TemplateSet{
				HTML: loadedTemplates["rescheduledHTML"],
				Text: loadedTemplates["rescheduledText"],
			},
			Cancellation: TemplateSet{
				HTML: loadedTemplates["cancellationHTML"],
				Text: loadedTemplates["cancellationText"],
			},
		},
	}, nil
}

// RenderConfirmation renders a confirmation email with both HTML and text versions
func (tm *TemplateManager) RenderConfirmation(data domain.BookingNotice) (*RenderedEmail, error) {
	return renderSet(tm.templates.Confirmation, data, "confirmation")
}

// RenderRescheduled renders a reschedule notice with both HTML and text versions
func (tm *TemplateManager) RenderRescheduled(data domain.BookingNotice) (*RenderedEmail, error) {
	return renderSet(tm.templates.Rescheduled, data, "rescheduled")
}

// RenderCancellation renders a cancellation email with both HTML and text versions
func (tm *TemplateManager) RenderCancellation(data domain.BookingNotice) (*RenderedEmail, error) {
	return renderSet(tm.templates.Cancellation, data, "cancellation")
}

func renderSet(set TemplateSet, data domain.BookingNotice, name string) (*RenderedEmail, error) {
	html, err := renderTemplate(set.HTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s HTML: %w", name, err)
	}

	text, err := renderTemplate(set.Text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s text: %w", name, err)
	}

	return &RenderedEmail{HTML: html, Text: text}, nil
}

// loadTemplate loads a single template with the shared function map
func loadTemplate(config templateConfig) (*template.Template, error) {
	tmpl, err := template.New(config.name).Funcs(template.FuncMap{
		"formatTime": formatTime,
	}).ParseFS(templateFS, config.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", config.name, err)
	}
	return tmpl, nil
}

// renderTemplate renders any template with the provided data
func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatTime formats a time for display in emails, in the recipient's timezone.
// Accepts both time.Time and *time.Time so templates can pass optional fields.
func formatTime(value any, timezone string) string {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return ""
		}
		t = *v
	default:
		return ""
	}

	local, err := interval.ConvertFromUTC(t, timezone)
	if err != nil {
		local = t.UTC()
	}

	return local.Format("Monday, January 2, 2006 at 3:04 PM MST")
}
