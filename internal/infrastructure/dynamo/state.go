package dynamo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/pkg/clock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrKey       = "state_key"
	attrValue     = "value"
	attrExpiresAt = "expires_at"
)

// API is the subset of *dynamodb.Client the state repo uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// stateItem is one key-value entry. ExpiresAt is a Unix timestamp used as DynamoDB TTL;
// zero means the item never expires. DynamoDB evicts lazily, so reads re-check it.
type stateItem struct {
	Key       string `dynamodbav:"state_key"`
	Value     []byte `dynamodbav:"value"`
	ExpiresAt int64  `dynamodbav:"expires_at,omitempty"`
}

// StateRepo implements domain.StateStore with conditional writes.
// PK: state_key.
type StateRepo struct {
	client    API
	tableName string
	clock     clock.Clock
}

func NewStateRepo(client API, tableName string, c clock.Clock) *StateRepo {
	return &StateRepo{client: client, tableName: tableName, clock: c}
}

func (r *StateRepo) item(key string, value []byte, ttl time.Duration) (map[string]types.AttributeValue, error) {
	it := stateItem{Key: key, Value: value}
	if ttl > 0 {
		it.ExpiresAt = r.clock.Now().Add(ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return nil, fmt.Errorf("marshal state item: %w", err)
	}
	return av, nil
}

func (r *StateRepo) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	av, err := r.item(key, value, ttl)
	if err != nil {
		return false, err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#k) OR (attribute_exists(#e) AND #e <= :now)"),
		ExpressionAttributeNames: map[string]string{
			"#k": attrKey,
			"#e": attrExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": numValue(r.clock.Now().Unix()),
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("dynamo put-if-absent %s: %w", key, err)
	}
	return true, nil
}

func (r *StateRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	av, err := r.item(key, value, ttl)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("dynamo put %s: %w", key, err)
	}
	return nil
}

func (r *StateRepo) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrKey, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo get %s: %w", key, err)
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var it stateItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal state item: %w", err)
	}
	if it.ExpiresAt != 0 && it.ExpiresAt <= r.clock.Now().Unix() {
		return nil, domain.ErrNotFound
	}
	return it.Value, nil
}

func (r *StateRepo) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(attrKey, key),
		ConditionExpression:      aws.String("#v = :v"),
		ExpressionAttributeNames: map[string]string{"#v": attrValue},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberB{Value: bytes.Clone(expected)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("dynamo compare-and-delete %s: %w", key, err)
	}
	return true, nil
}

func (r *StateRepo) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrKey, key),
	})
	if err != nil {
		return fmt.Errorf("dynamo delete %s: %w", key, err)
	}
	return nil
}
