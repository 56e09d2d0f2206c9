package artifacts

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lex-build-workers/internal/models"
)

type stubDynamo struct {
	item   map[string]types.AttributeValue
	update *dynamodb.UpdateItemInput
	err    error
}

func (s *stubDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: s.item}, nil
}

func (s *stubDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	s.update = in
	if s.err != nil {
		return nil, s.err
	}
	return &dynamodb.UpdateItemOutput{Attributes: s.item}, nil
}

func TestDynamoDBRepository_Get(t *testing.T) {
	item, err := attributevalue.MarshalMap(models.Artifact{
		ID: "a1", BotID: "BOT1", Locale: "en_US", Status: models.StatusBuilt,
		StatusMessages: []models.StatusMessage{{Status: models.StatusSuccess, Message: "Building bot locale"}},
	})
	require.NoError(t, err)

	a, err := NewDynamoDBRepository(&stubDynamo{item: item}, "artifacts").Get(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, "BOT1", a.BotID)
	assert.Equal(t, models.StatusBuilt, a.Status)
	require.Len(t, a.StatusMessages, 1)
}

func TestDynamoDBRepository_GetMissing(t *testing.T) {
	_, err := NewDynamoDBRepository(&stubDynamo{}, "artifacts").Get(context.Background(), "a1")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoDBRepository_UpdateBuildsExpression(t *testing.T) {
	item, err := attributevalue.MarshalMap(models.Artifact{ID: "a1", Status: models.StatusBuilt})
	require.NoError(t, err)
	api := &stubDynamo{item: item}
	repo := NewDynamoDBRepository(api, "artifacts")
	repo.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }
	loc := "s3://exports/a1.zip"

	_, err = repo.Update(context.Background(), "a1", Patch{Status: StatusPtr(models.StatusBuilt), ExportLocation: &loc})

	require.NoError(t, err)
	assert.Equal(t, "SET #updatedAt = :updatedAt, #status = :status, #exportLocation = :exportLocation", aws.ToString(api.update.UpdateExpression))
	assert.Equal(t, "attribute_exists(id)", aws.ToString(api.update.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "built"}, api.update.ExpressionAttributeValues[":status"])
}

func TestDynamoDBRepository_UpdateMissing(t *testing.T) {
	api := &stubDynamo{err: &types.ConditionalCheckFailedException{Message: aws.String("no item")}}

	_, err := NewDynamoDBRepository(api, "artifacts").Update(context.Background(), "a1", Patch{})

	assert.ErrorIs(t, err, ErrNotFound)
}
