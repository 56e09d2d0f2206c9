// internal/common/artifacts/dynamodb.go
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"lex-build-workers/internal/models"
)

// DynamoDBAPI is the subset of *dynamodb.Client the repository calls.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

var (
	_ DynamoDBAPI = (*dynamodb.Client)(nil)
	_ Repository  = (*DynamoDBRepository)(nil)
)

// DynamoDBRepository stores one item per artifact keyed by "id".
type DynamoDBRepository struct {
	client DynamoDBAPI
	table  string
	now    func() time.Time
}

func NewDynamoDBRepository(client DynamoDBAPI, table string) *DynamoDBRepository {
	return &DynamoDBRepository{client: client, table: table, now: time.Now}
}

func (r *DynamoDBRepository) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func (r *DynamoDBRepository) Get(ctx context.Context, id string) (*models.Artifact, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get artifact %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var a models.Artifact
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", id, err)
	}
	return &a, nil
}

func (r *DynamoDBRepository) Update(ctx context.Context, id string, patch Patch) (*models.Artifact, error) {
	sets := []string{"#updatedAt = :updatedAt"}
	names := map[string]string{"#updatedAt": "updatedAt"}
	values := map[string]types.AttributeValue{}

	updatedAt, err := attributevalue.Marshal(r.now().UTC())
	if err != nil {
		return nil, err
	}
	values[":updatedAt"] = updatedAt

	if patch.Status != nil {
		sets = append(sets, "#status = :status")
		names["#status"] = "status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(*patch.Status)}
	}
	if patch.StatusMessages != nil {
		av, err := attributevalue.Marshal(patch.StatusMessages)
		if err != nil {
			return nil, fmt.Errorf("encode status messages: %w", err)
		}
		sets = append(sets, "#statusMessages = :statusMessages")
		names["#statusMessages"] = "statusMessages"
		values[":statusMessages"] = av
	}
	if patch.ExportLocation != nil {
		sets = append(sets, "#exportLocation = :exportLocation")
		names["#exportLocation"] = "exportLocation"
		values[":exportLocation"] = &types.AttributeValueMemberS{Value: *patch.ExportLocation}
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(id),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var missing *types.ConditionalCheckFailedException
		if errors.As(err, &missing) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update artifact %s: %w", id, err)
	}
	var a models.Artifact
	if err := attributevalue.UnmarshalMap(out.Attributes, &a); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", id, err)
	}
	return &a, nil
}
