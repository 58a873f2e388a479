package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/campus-market-auth/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Email uniqueness is held by a guard item in the users table keyed
// "email#<address>" that points at the owning user_id. The guard carries no
// email attribute of its own.
const emailGuardPrefix = "email#"

func emailGuardKey(email string) map[string]types.AttributeValue {
	return strKey("user_id", emailGuardPrefix+email)
}

// Put creates a user and claims its email in one transaction. It returns
// ErrConflict when the user_id exists or another user already owns the email.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	guard := emailGuardKey(u.Email)
	guard[fieldOwnerID] = &types.AttributeValueMemberS{Value: u.UserID}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                guard,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user %s or email %s exists: %w", u.UserID, u.Email, domain.ErrConflict)
	}
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("user_id", userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail resolves the email guard and loads its owner. Both reads are
// strongly consistent, so a user created by a concurrent sign-in is visible
// as soon as its transaction commits. email must already be normalized.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            emailGuardKey(email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	owner, _ := out.Item[fieldOwnerID].(*types.AttributeValueMemberS)
	if owner == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return r.Get(ctx, owner.Value)
}

// Update applies a partial update to an existing user and returns the stored result.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error) {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Attributes, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
