// Package notify pushes kitchen alerts to an SNS topic for off-site staff.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

// PublishAPI is the subset of the SNS client the notifier uses
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier forwards alert events to an SNS topic
type SNSNotifier struct {
	client   PublishAPI
	topicARN string
	logger   *zap.Logger
}

var _ events.EventHandler = (*SNSNotifier)(nil)

// NewSNSNotifier loads the default AWS configuration for region
func NewSNSNotifier(ctx context.Context, region, topicARN string, logger *zap.Logger) (*SNSNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewNotifierWithClient(sns.NewFromConfig(cfg), topicARN, logger), nil
}

func NewNotifierWithClient(client PublishAPI, topicARN string, logger *zap.Logger) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN, logger: logger}
}

func (n *SNSNotifier) CanHandle(eventType string) bool {
	return eventType == events.AlertRaisedEvent
}

func (n *SNSNotifier) Handle(event events.Event) error {
	alert, ok := event.Data().(events.AlertRaised)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", event.Type(), event.Data())
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(Subject(alert.AlertType)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"alert_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alert.AlertType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert %d to sns: %w", alert.AlertID, err)
	}

	n.logger.Info("alert pushed to sns",
		zap.Int64("alert_id", int64(alert.AlertID)),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}

// Subject is the SNS subject line for an alert type
func Subject(alertType string) string {
	switch alertType {
	case "ingredient_low":
		return "Kitchen: low stock"
	case "usage_suspicious":
		return "Kitchen: suspicious usage"
	default:
		return "Kitchen alert"
	}
}
