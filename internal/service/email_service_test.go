package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailServiceDisabled(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "us-east-1", "", "", "", false, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.SendWelcomeEmail(context.Background(), "pat@example.com", "Pat"))
	assert.NoError(t, svc.SendPINResetEmail(context.Background(), "pat@example.com", "Pat", "1234"))
}

func TestSendWelcomeEmail(t *testing.T) {
	ses := &fakeSES{}
	svc := NewEmailServiceWithClient(ses, "hello@kidsvids.app", "KidsVids", "https://kidsvids.app", true, zap.NewNop())

	require.NoError(t, svc.SendWelcomeEmail(context.Background(), "pat@example.com", "Pat <script>"))
	require.Len(t, ses.inputs, 1)

	input := ses.inputs[0]
	assert.Equal(t, "KidsVids <hello@kidsvids.app>", aws.ToString(input.FromEmailAddress))
	assert.Equal(t, []string{"pat@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "Welcome to KidsVids!", aws.ToString(input.Content.Simple.Subject.Data))
	assert.Contains(t, aws.ToString(input.Content.Simple.Body.Html.Data), "Pat &lt;script&gt;")
	assert.Contains(t, aws.ToString(input.Content.Simple.Body.Text.Data), "https://kidsvids.app")
}

func TestSendPINResetEmail(t *testing.T) {
	ses := &fakeSES{}
	svc := NewEmailServiceWithClient(ses, "hello@kidsvids.app", "", "https://kidsvids.app", false, zap.NewNop())

	require.NoError(t, svc.SendPINResetEmail(context.Background(), "pat@example.com", "Pat", "8642"))
	require.Len(t, ses.inputs, 1)
	assert.Equal(t, "hello@kidsvids.app", aws.ToString(ses.inputs[0].FromEmailAddress))
	assert.Contains(t, aws.ToString(ses.inputs[0].Content.Simple.Body.Html.Data), "8642")
	assert.Contains(t, aws.ToString(ses.inputs[0].Content.Simple.Body.Text.Data), "8642")
}

func TestSendEmailFailure(t *testing.T) {
	boom := errors.New("throttled")
	svc := NewEmailServiceWithClient(&fakeSES{err: boom}, "hello@kidsvids.app", "", "", false, zap.NewNop())
	assert.ErrorIs(t, svc.SendWelcomeEmail(context.Background(), "pat@example.com", "Pat"), boom)
}
