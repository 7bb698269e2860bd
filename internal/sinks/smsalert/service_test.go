package smsalert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awsclient "lead-intake/internal/common/aws"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

type MockSNSService struct {
	PublishFunc          func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	GetSMSAttributesFunc func(ctx context.Context, params *sns.GetSMSAttributesInput, optFns ...func(*sns.Options)) (*sns.GetSMSAttributesOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func (m *MockSNSService) GetSMSAttributes(ctx context.Context, params *sns.GetSMSAttributesInput, optFns ...func(*sns.Options)) (*sns.GetSMSAttributesOutput, error) {
	return m.GetSMSAttributesFunc(ctx, params, optFns...)
}

func enabledConfig() *Config {
	return &Config{Enabled: true, AlertPhone: "+15550001111", SenderID: "LEADS"}
}

func TestConfigValidate(t *testing.T) {
	assert.EqualError(t, DefaultConfig().Validate(), "sms alerts disabled")

	cfg := enabledConfig()
	cfg.AlertPhone = "555-000-1111"
	assert.EqualError(t, cfg.Validate(), "alert_phone must be E.164")

	cfg = enabledConfig()
	cfg.SenderID = "AGENCYLEADS1"
	assert.Error(t, cfg.Validate())
}

func TestConfigured(t *testing.T) {
	client := awsclient.NewSNSClientWithAPI(&MockSNSService{})
	assert.True(t, NewService(enabledConfig(), client, logger.NewNoOpLogger()).Configured())
	assert.False(t, NewService(enabledConfig(), nil, logger.NewNoOpLogger()).Configured())
	assert.False(t, NewService(DefaultConfig(), client, logger.NewNoOpLogger()).Configured())
}

func TestUpsert_PublishesAlert(t *testing.T) {
	var captured *sns.PublishInput
	client := awsclient.NewSNSClientWithAPI(&MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("sns-42")}, nil
		},
	})
	svc := NewService(enabledConfig(), client, logger.NewTestLogger(t))

	ref, err := svc.Upsert(context.Background(), &leads.Submission{
		ID:        "lead-5",
		FirstName: "Jane",
		Email:     "jane@example.com",
		Phone:     "555-123-4567",
		Source:    "website",
	})

	require.NoError(t, err)
	assert.Equal(t, "sns-42", ref)
	require.NotNil(t, captured)
	assert.Equal(t, "+15550001111", aws.ToString(captured.PhoneNumber))
	assert.Equal(t, "New lead (website): Jane, jane@example.com, 555-123-4567", aws.ToString(captured.Message))
	assert.Equal(t, "LEADS", aws.ToString(captured.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestUpsert_PublishError(t *testing.T) {
	client := awsclient.NewSNSClientWithAPI(&MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("OptedOut")
		},
	})
	svc := NewService(enabledConfig(), client, logger.NewTestLogger(t))

	_, err := svc.Upsert(context.Background(), &leads.Submission{FirstName: "Jane", Email: "jane@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OptedOut")
}

func TestAlertText_Truncated(t *testing.T) {
	text := alertText(&leads.Submission{
		FirstName: strings.Repeat("J", 200),
		Email:     "jane@example.com",
		Source:    "website",
	})
	assert.Len(t, text, maxMessageLength)
	assert.True(t, strings.HasSuffix(text, "..."))
}
