package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"eventsignup/internal/models"
)

// EmailService sends mail via Amazon SES. When no from-address is
// configured the service runs disabled and logs instead of sending, so
// local development works without AWS credentials.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendLoginCode e-mails a one-time verification code
func (s *EmailService) SendLoginCode(ctx context.Context, toEmail, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf("Use the code %s to verify your account.\n\nThe code expires shortly and can only be used once. If you did not request it, you can ignore this message.\n", code)

	return s.sendEmail(ctx, toEmail, subject, body)
}

// SendRegistrationSummary sends the operator one consolidated message
// describing who was registered for an event.
func (s *EmailService) SendRegistrationSummary(ctx context.Context, toEmail string, event *models.Event, candidates []models.RegistrationCandidate) error {
	var b strings.Builder
	fmt.Fprintf(&b, "New registration for %s:\n\n", event.Name)
	for i := range candidates {
		c := &candidates[i]
		fmt.Fprintf(&b, "- %s %s (group: %s)\n", c.Person.FirstName, c.Person.LastName, c.GroupName())
	}

	subject := fmt.Sprintf("Registration: %s", event.Name)
	return s.sendEmail(ctx, toEmail, subject, b.String())
}

// sendEmail sends a plain-text email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, textBody string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): %q to %s", subject, toEmail)
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
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
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
