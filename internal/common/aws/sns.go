// internal/common/aws/sns.go
package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the subset of *sns.Client used here.
type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client SNSAPI
}

func NewSNSClient(client SNSAPI) *SNSClient {
	return &SNSClient{client: client}
}

func NewSNSClientFromConfig(cfg awssdk.Config) *SNSClient {
	return NewSNSClient(sns.NewFromConfig(cfg))
}

// PublishAlert posts a build alert to a topic. The artifact id travels as a
// message attribute so subscribers can filter on it.
func (s *SNSClient) PublishAlert(ctx context.Context, topicARN, artifactID, subject, message string) (string, error) {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(topicARN),
		Subject:  awssdk.String(truncate(subject, 100)),
		Message:  awssdk.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"artifactId": {DataType: awssdk.String("String"), StringValue: awssdk.String(artifactID)},
		},
	})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
