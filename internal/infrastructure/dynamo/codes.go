package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/campus-market-auth/internal/domain"
)

// CodeRepo is the credential store for one-time codes.
// PK: email. Every mutation after issuance is a single conditional write keyed
// on code_id, so a read-check-write sequence in the service can never act on a
// code that was consumed or replaced in between.
type CodeRepo struct {
	client    API
	tableName string
}

func NewCodeRepo(client API, tableName string) *CodeRepo {
	return &CodeRepo{client: client, tableName: tableName}
}

// Replace stores c, overwriting any previous code for the same email.
func (r *CodeRepo) Replace(ctx context.Context, c *domain.OneTimeCode) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal one-time code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Get returns the live code for email, or ErrNotFound.
// Reads are strongly consistent so a just-consumed code is never returned.
func (r *CodeRepo) Get(ctx context.Context, email string) (*domain.OneTimeCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("one-time code not found: %w", domain.ErrNotFound)
	}
	var c domain.OneTimeCode
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// IncrementAttempts atomically adds one failed attempt to the code identified
// by codeID and returns the new count. Returns ErrNotFound when the code is gone
// or was replaced.
func (r *CodeRepo) IncrementAttempts(ctx context.Context, email, codeID string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		UpdateExpression:    aws.String("ADD #a :one"),
		ConditionExpression: aws.String("#cid = :cid"),
		ExpressionAttributeNames: map[string]string{
			"#a":   fieldAttempts,
			"#cid": fieldCodeID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":cid": &types.AttributeValueMemberS{Value: codeID},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return 0, fmt.Errorf("one-time code not found: %w", domain.ErrNotFound)
		}
		return 0, err
	}
	n, ok := out.Attributes[fieldAttempts].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("attempts missing from update result")
	}
	attempts, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("parse attempts: %w", err)
	}
	return attempts, nil
}

// Consume deletes the code identified by codeID if it still has attempts left.
// Exactly one concurrent caller can succeed; the rest get ErrNotFound.
func (r *CodeRepo) Consume(ctx context.Context, email, codeID string, maxAttempts int) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		ConditionExpression: aws.String("#cid = :cid AND #a < :max"),
		ExpressionAttributeNames: map[string]string{
			"#a":   fieldAttempts,
			"#cid": fieldCodeID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: codeID},
			":max": &types.AttributeValueMemberN{Value: strconv.Itoa(maxAttempts)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("one-time code already consumed: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

// Delete removes the code identified by codeID. A code that is already gone
// or was replaced is left alone and is not an error.
func (r *CodeRepo) Delete(ctx context.Context, email, codeID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		ConditionExpression: aws.String("#cid = :cid"),
		ExpressionAttributeNames: map[string]string{
			"#cid": fieldCodeID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: codeID},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			slog.Debug("one-time code already removed", "email", email, "code_id", codeID)
			return nil
		}
		return err
	}
	return nil
}
