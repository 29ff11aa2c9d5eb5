package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/peachlease/edu-verify/internal/config"
	"github.com/peachlease/edu-verify/internal/domain"
)

// PublishAPI is the subset of the SNS client the publisher uses.
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EmailPublisher hands rendered verification emails to a mail relay that
// subscribes to an SNS topic. The recipient travels as a message attribute.
type EmailPublisher struct {
	client   PublishAPI
	topicARN string
}

func NewEmailPublisher(ctx context.Context, cfg *config.Config) (*EmailPublisher, error) {
	if cfg.SNSTopicARN == "" {
		return nil, fmt.Errorf("SNS_TOPIC_ARN not set: %w", domain.ErrConfiguration)
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SNSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return NewEmailPublisherWithClient(sns.NewFromConfig(awsCfg, clientOpts...), cfg.SNSTopicARN), nil
}

func NewEmailPublisherWithClient(client PublishAPI, topicARN string) *EmailPublisher {
	return &EmailPublisher{client: client, topicARN: topicARN}
}

func (p *EmailPublisher) Deliver(ctx context.Context, msg domain.Message) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(msg.Subject),
		Message:  aws.String(msg.Body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"recipient": {DataType: aws.String("String"), StringValue: aws.String(msg.To)},
			"kind":      {DataType: aws.String("String"), StringValue: aws.String("email_verification")},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
