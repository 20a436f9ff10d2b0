package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const subjectAssignmentFmt = "New case assignment: %s"

var assignmentTemplate = template.Must(template.New("assignment").Parse(`
<html>
<body style="font-family: sans-serif; color: #1f2933;">
	<h2>You have been assigned a new case</h2>
	<p>Hi {{.AttorneyName}},</p>
	<p>A new lead has been assigned to you:</p>
	<ul>
		<li><strong>Lead:</strong> {{.LeadName}} (#{{.LeadID}})</li>
		<li><strong>Phone:</strong> {{.LeadPhone}}</li>
		<li><strong>Case type:</strong> {{.CaseType}}</li>
	</ul>
	<p>Please reach out to the client as soon as possible.</p>
</body>
</html>`))

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	fromName  string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendAssignmentEmail notifies an attorney that a lead was assigned to them.
func (s *SMTPSender) SendAssignmentEmail(ctx context.Context, toEmail string, data AssignmentData) error {
	var body bytes.Buffer
	if err := assignmentTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render assignment email: %w", err)
	}
	subject := fmt.Sprintf(subjectAssignmentFmt, data.CaseType)
	return s.send(ctx, toEmail, subject, body.String())
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
