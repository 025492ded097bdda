package mailer

import (
	"fmt"

	"github.com/oksasatya/go-ddd-task-manager/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (with Data) or Subject/Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}

// Content returns the subject and bodies for j, rendering its template when set.
func (j EmailJob) Content() (subject, text, html string, err error) {
	if j.Template == "" {
		return j.Subject, j.Text, j.HTML, nil
	}
	subject, text, html, err = templates.Render(j.Template, j.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("render %s: %w", j.Template, err)
	}
	if j.Subject != "" {
		subject = j.Subject
	}
	return subject, text, html, nil
}
