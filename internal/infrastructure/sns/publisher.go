package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ainager-onboarding/internal/config"
	"github.com/ainager-onboarding/internal/infrastructure/awscfg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// EventTenantProvisioned is published after a tenant transaction commits.
const EventTenantProvisioned = "tenant.provisioned"

// API is the subset of the SNS client used by Publisher.
type API interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TenantProvisioned is the event payload.
type TenantProvisioned struct {
	TenantID     string `json:"tenant_id"`
	TenantName   string `json:"tenant_name"`
	DocumentID   string `json:"document_id"`
	Email        string `json:"email"`
	Domain       string `json:"domain"`
	ArtifactPath string `json:"artifact_path"`
	Created      bool   `json:"created"`
}

// Publisher sends onboarding events to one topic.
type Publisher struct {
	client   API
	topicARN string
}

func NewClient(ctx context.Context, cfg *config.Config) (*sns.Client, error) {
	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config for sns: %w", err)
	}
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = awscfg.Endpoint(cfg)
	}), nil
}

func NewPublisher(client API, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

// PublishTenantProvisioned sends ev with an event_type message attribute.
func (p *Publisher) PublishTenantProvisioned(ctx context.Context, ev TenantProvisioned) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(EventTenantProvisioned)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", EventTenantProvisioned, err)
	}
	return nil
}
