package mailer

import "github.com/oksasatya/authmify/pkg/mailer/templates"

// EmailJob is a rendered message ready for a Sender.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// NewEmailJob renders the named template set for one recipient.
func NewEmailJob(template, to string, data templates.EmailData) (EmailJob, error) {
	subject, text, html, err := templates.Render(template, data)
	if err != nil {
		return EmailJob{}, err
	}
	return EmailJob{To: to, Subject: subject, Text: text, HTML: html}, nil
}
