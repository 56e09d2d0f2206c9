package oracle

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBedrock struct {
	in  *bedrockruntime.ConverseInput
	out *bedrockruntime.ConverseOutput
}

func (s *stubBedrock) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.in = in
	return s.out, nil
}

func TestBedrockModel_Converse(t *testing.T) {
	api := &stubBedrock{out: &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role:    types.ConversationRoleAssistant,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: `{"ok":`}, &types.ContentBlockMemberText{Value: `true}`}},
		}},
	}}
	m := NewBedrockModel(api, "anthropic.model", 1024, 0.2)

	reply, err := m.Converse(context.Background(), "guideline", []Message{
		{Role: RoleUser, Content: "fix"},
		{Role: RoleAssistant, Content: "{}"},
		{Role: RoleUser, Content: "again"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, reply)
	assert.Equal(t, "anthropic.model", aws.ToString(api.in.ModelId))
	assert.Equal(t, int32(1024), aws.ToInt32(api.in.InferenceConfig.MaxTokens))
	require.Len(t, api.in.System, 1)
	assert.Equal(t, "guideline", api.in.System[0].(*types.SystemContentBlockMemberText).Value)
	require.Len(t, api.in.Messages, 3)
	assert.Equal(t, types.ConversationRoleAssistant, api.in.Messages[1].Role)
}

func TestBedrockModel_NoMessage(t *testing.T) {
	m := NewBedrockModel(&stubBedrock{out: &bedrockruntime.ConverseOutput{}}, "m", 0, 0)

	_, err := m.Converse(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}})

	assert.Error(t, err)
}

func TestExtractJSONObject(t *testing.T) {
	assert.JSONEq(t, `{"a":"}"}`, string(extractJSONObject("prefix {\"a\":\"}\"} suffix")))
	assert.JSONEq(t, `{"b":1}`, string(extractJSONObject("{not json} then {\"b\":1}")))
	assert.Nil(t, extractJSONObject("no braces"))
	assert.Nil(t, extractJSONObject("{\"open\": "))
}
