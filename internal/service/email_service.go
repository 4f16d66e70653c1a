package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// Mailer sends the account emails parents receive
type Mailer interface {
	IsEnabled() bool
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
	SendPINResetEmail(ctx context.Context, toEmail, toName, pin string) error
}

// SESClient is the part of the SES v2 API the email service uses
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     SESClient
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
	log        *zap.Logger
}

// NewEmailService creates a new email service. Without a sender address the
// service is disabled and every send is skipped.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool, log *zap.Logger) (*EmailService, error) {
	log = log.With(zap.String("component", "email"))

	if fromEmail == "" {
		log.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug, log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return NewEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug, log), nil
}

// NewEmailServiceWithClient creates an enabled email service around client
func NewEmailServiceWithClient(client SESClient, fromEmail, fromName, appBaseURL string, debug bool, log *zap.Logger) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
		log:        log,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

const emailStyle = `
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f5a623; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.pin { font-size: 32px; letter-spacing: 8px; text-align: center; font-weight: bold; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }`

// SendWelcomeEmail greets a newly registered parent
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		s.log.Debug("skipping welcome email, service disabled", zap.String("to", toEmail))
		return nil
	}

	subject := "Welcome to KidsVids!"
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>Welcome to KidsVids!</h1></div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your parent account is ready. Add a profile for each of your children and they will only see videos picked for their age group.</p>
			<ul>
				<li>Create a profile per child</li>
				<li>Block any video you would rather they skip</li>
				<li>Keep your 4-digit PIN handy for the parent area</li>
			</ul>
			<p>Get started: <a href="%s">%s</a></p>
		</div>
		<div class="footer"><p>This is an automated email from KidsVids. Please do not reply.</p></div>
	</div>
</body>
</html>
`, emailStyle, html.EscapeString(toName), s.appBaseURL, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your parent account is ready. Add a profile for each of your children and they will only see videos picked for their age group.

- Create a profile per child
- Block any video you would rather they skip
- Keep your 4-digit PIN handy for the parent area

Get started: %s

---
This is an automated email from KidsVids. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendPINResetEmail delivers a newly generated parental PIN
func (s *EmailService) SendPINResetEmail(ctx context.Context, toEmail, toName, pin string) error {
	if !s.enabled {
		s.log.Debug("skipping PIN reset email, service disabled", zap.String("to", toEmail))
		return nil
	}

	subject := "Your new KidsVids PIN"
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>PIN Reset</h1></div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your parental PIN has been reset. Your new PIN is:</p>
			<p class="pin">%s</p>
			<p>If you didn't ask for a new PIN, sign in and reset it again.</p>
		</div>
		<div class="footer"><p>This is an automated email from KidsVids. Please do not reply.</p></div>
	</div>
</body>
</html>
`, emailStyle, html.EscapeString(toName), pin)

	textBody := fmt.Sprintf(`Hi %s,

Your parental PIN has been reset. Your new PIN is: %s

If you didn't ask for a new PIN, sign in and reset it again.

---
This is an automated email from KidsVids. Please do not reply.
`, toName, pin)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		s.log.Debug("sending email",
			zap.String("from", fromAddress),
			zap.String("to", toEmail),
			zap.String("subject", subject),
			zap.Int("html_bytes", len(htmlBody)),
			zap.Int("text_bytes", len(textBody)))
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.log.Info("email sent", fields...)
	return nil
}
