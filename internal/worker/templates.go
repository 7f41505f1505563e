package worker

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

const (
	tplConfirmation = "booking_confirmation"
	tplReminder     = "booking_reminder"
	tplCancellation = "booking_cancellation"
	tplAdmin        = "admin_notification"
)

type templates struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

func loadTemplates() (*templates, error) {
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	return &templates{text: text, html: html}, nil
}

// emailData is what every template sees: the task payload as P plus
// branding.
type emailData struct {
	P            any
	Headline     string
	Company      string
	SupportEmail string
	Year         int
}

// render returns the plain text body and, when an HTML variant exists, the
// HTML body.
func (t *templates) render(name string, data emailData) (string, string, error) {
	var text bytes.Buffer
	if err := t.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	if t.html.Lookup(name+".html") == nil {
		return text.String(), "", nil
	}
	var html bytes.Buffer
	if err := t.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	return text.String(), html.String(), nil
}

// reminderHeadline varies the copy with how close the check-in is.
func reminderHeadline(days int) string {
	switch {
	case days <= 1:
		return "Your check-in is tomorrow!"
	case days <= 3:
		return fmt.Sprintf("Your check-in is in %d days!", days)
	default:
		return fmt.Sprintf("Your check-in is in %d days.", days)
	}
}
