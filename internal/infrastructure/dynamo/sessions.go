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

// SessionRepo provides typed DynamoDB operations for the sessions table.
// expires_at is the table TTL attribute.
type SessionRepo struct {
	client    API
	tableName string
}

func NewSessionRepo(client API, tableName string) *SessionRepo {
	return &SessionRepo{client: client, tableName: tableName}
}

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("session_id", sessionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	var s domain.Session
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateClaims stores a new claims snapshot on an enabled session and moves
// its TTL to expiresAt, the expiry of the token minted alongside.
// Returns ErrUnauthorized when the session is missing or disabled.
func (r *SessionRepo) UpdateClaims(ctx context.Context, sessionID string, claims domain.SessionClaims, expiresAt int64) error {
	return r.update(ctx, sessionID, map[string]interface{}{
		fieldClaims:    claims,
		fieldExpiresAt: expiresAt,
	}, true)
}

// Disable marks a session as logged out.
func (r *SessionRepo) Disable(ctx context.Context, sessionID string) error {
	return r.update(ctx, sessionID, map[string]interface{}{fieldEnable: false}, false)
}

// update applies updates to an existing session. When requireEnabled is set the
// write is also conditioned on the session still being enabled.
func (r *SessionRepo) update(ctx context.Context, sessionID string, updates map[string]interface{}, requireEnabled bool) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	in := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("session_id", sessionID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(session_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}
	if requireEnabled {
		in.ConditionExpression = aws.String("attribute_exists(session_id) AND #enable = :true")
		in.ExpressionAttributeNames["#enable"] = fieldEnable
		in.ExpressionAttributeValues[":true"] = &types.AttributeValueMemberBOOL{Value: true}
	}
	_, err = r.client.UpdateItem(ctx, in)
	if isConditionFailed(err) {
		return fmt.Errorf("session %s inactive: %w", sessionID, domain.ErrUnauthorized)
	}
	return err
}
