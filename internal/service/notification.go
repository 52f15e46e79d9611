package service

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
	"github.com/usmansyedcoder/Portfolio-Backend/pkg/mailer"
)

var notificationHTML = template.Must(template.New("contact_html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #667eea;">New Contact Form Submission</h2>
  <table cellpadding="6">
    <tr><td><strong>Name:</strong></td><td>{{.Name}}</td></tr>
    <tr><td><strong>Email:</strong></td><td><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
    <tr><td><strong>Subject:</strong></td><td>{{.Subject}}</td></tr>
    <tr><td><strong>Received:</strong></td><td>{{.Received}}</td></tr>
    <tr><td><strong>IP:</strong></td><td>{{.IPAddress}}</td></tr>
  </table>
  <h3>Message</h3>
  <p style="white-space: pre-wrap;">{{.Message}}</p>
  {{if .ID}}<p style="color: #999; font-size: 12px;">Message ID: {{.ID}}</p>{{end}}
</body>
</html>`))

var notificationText = texttemplate.Must(texttemplate.New("contact_text").Parse(`New Contact Form Submission

Name:     {{.Name}}
Email:    {{.Email}}
Subject:  {{.Subject}}
Received: {{.Received}}
IP:       {{.IPAddress}}

{{.Message}}
`))

type notificationData struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	IPAddress string
	Received  string
}

// buildNotification renders the mail sent to the site owner for msg.
// Reply-To is the submitter so the owner can answer directly.
func buildNotification(msg *model.ContactMessage) (mailer.Message, error) {
	data := notificationData{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		IPAddress: msg.IPAddress,
		Received:  msg.CreatedAt.UTC().Format(time.RFC1123),
	}

	var html, text bytes.Buffer
	if err := notificationHTML.Execute(&html, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render html notification: %w", err)
	}
	if err := notificationText.Execute(&text, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render text notification: %w", err)
	}

	return mailer.Message{
		Subject:  "New Portfolio Contact: " + msg.Subject,
		HTMLBody: html.String(),
		TextBody: text.String(),
		ReplyTo:  msg.Email,
	}, nil
}
