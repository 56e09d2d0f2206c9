// internal/common/oracle/bedrock.go
package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockAPI is the subset of *bedrockruntime.Client the model calls.
type BedrockAPI interface {
	Converse(ctx context.Context, in *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

var _ BedrockAPI = (*bedrockruntime.Client)(nil)
var _ Model = (*BedrockModel)(nil)

// BedrockModel talks to a foundation model through the Converse API.
type BedrockModel struct {
	api         BedrockAPI
	modelID     string
	maxTokens   int32
	temperature float32
}

func NewBedrockModel(api BedrockAPI, modelID string, maxTokens int, temperature float64) *BedrockModel {
	return &BedrockModel{
		api:         api,
		modelID:     modelID,
		maxTokens:   int32(maxTokens),
		temperature: float32(temperature),
	}
}

func (m *BedrockModel) Converse(ctx context.Context, system string, messages []Message) (string, error) {
	in := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(m.modelID),
		Messages: make([]types.Message, 0, len(messages)),
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(m.temperature),
		},
	}
	if m.maxTokens > 0 {
		in.InferenceConfig.MaxTokens = aws.Int32(m.maxTokens)
	}
	if system != "" {
		in.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: system}}
	}
	for _, msg := range messages {
		role := types.ConversationRoleUser
		if msg.Role == RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		in.Messages = append(in.Messages, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: msg.Content}},
		})
	}

	out, err := m.api.Converse(ctx, in)
	if err != nil {
		return "", err
	}
	reply, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("bedrock returned no message")
	}
	var b strings.Builder
	for _, block := range reply.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	return b.String(), nil
}
