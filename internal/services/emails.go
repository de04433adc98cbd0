package services

import (
	"bytes"
	"html/template"
)

const (
	loginSubject   = "Your ASA Portal Login Link"
	welcomeSubject = "Welcome to ASA - Access Your Portal"
)

var loginEmail = template.Must(template.New("login").Parse(`<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 40px 20px;">
  <h2 style="color: #1e293b;">ASA Student Portal</h2>
  <p style="color: #64748b; font-size: 16px;">Click the link below to log in to your portal. This link expires in {{.Minutes}} minutes.</p>
  <a href="{{.Link}}" style="display: inline-block; background: #2563eb; color: #fff; padding: 14px 28px; border-radius: 6px; text-decoration: none; font-weight: 600; margin: 20px 0;">Log In to Portal</a>
  <p style="color: #94a3b8; font-size: 13px;">If you didn't request this link, you can safely ignore this email.</p>
</div>`))

var welcomeEmail = template.Must(template.New("welcome").Parse(`<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 40px 20px;">
  <h2 style="color: #1e293b;">Welcome to the Agency Scaling Accelerator{{if .Name}}, {{.Name}}{{end}}!</h2>
  <p style="color: #64748b; font-size: 16px;">Your enrollment is confirmed. Click below to access your student portal and start Module 1.</p>
  <a href="{{.Link}}" style="display: inline-block; background: #2563eb; color: #fff; padding: 14px 28px; border-radius: 6px; text-decoration: none; font-weight: 600; margin: 20px 0;">Access Your Portal</a>
  <p style="color: #94a3b8; font-size: 13px;">This link expires in {{.Minutes}} minutes. You can request a new one anytime from the login page.</p>
</div>`))

type emailData struct {
	Name    string
	Link    string
	Minutes int
}

func render(tpl *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
