package sns

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/campus-market-auth/internal/config"
)

const purposeVerification = "uf-email-verification"

// API is the subset of the SNS client used here.
type API interface {
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher hands one-time codes to an SNS topic. A subscriber (an email
// Lambda or SES integration) does the actual delivery.
type Publisher struct {
	client   API
	topicARN string
}

func NewPublisher(client API, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

// NewClient builds an SNS client for cfg.SNSRegion, honouring AWS_ENDPOINT_URL
// for LocalStack.
func NewClient(ctx context.Context, cfg *config.Config) (*sns.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) { o.BaseEndpoint = aws.String(cfg.AWSEndpointURL) })
	}
	return sns.NewFromConfig(awsCfg, opts...), nil
}

func (p *Publisher) SendCode(ctx context.Context, to, code string, ttl time.Duration) error {
	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("Verification code"),
		Message:  aws.String(fmt.Sprintf("Your verification code is %s. It expires in %s.", code, ttl)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"email":   {DataType: aws.String("String"), StringValue: aws.String(to)},
			"purpose": {DataType: aws.String("String"), StringValue: aws.String(purposeVerification)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	slog.Debug("verification code published", "to", to, "message_id", aws.ToString(out.MessageId))
	return nil
}
