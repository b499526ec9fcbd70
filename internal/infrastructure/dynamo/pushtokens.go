package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/projtrack-notify/internal/domain"
	"golang.org/x/sync/errgroup"
)

// lookupConcurrency bounds parallel per-user GSI queries in TokensFor.
const lookupConcurrency = 8

// PushTokenRepo is the token registry: one row per token, keyed by the token value.
type PushTokenRepo struct {
	client    API
	tableName string
}

func NewPushTokenRepo(client API, tableName string) *PushTokenRepo {
	return &PushTokenRepo{client: client, tableName: tableName}
}

// Register upserts t by token value. Registering a token held by another
// user reassigns it to t.UserID.
func (r *PushTokenRepo) Register(ctx context.Context, t *domain.PushToken) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal push token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put push token: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Unregister deletes token only while userID owns it.
func (r *PushTokenRepo) Unregister(ctx context.Context, userID, token string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldToken, token),
		ConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("push token: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("delete push token: %w: %w", domain.ErrStoreUnavailable, err)
}

// TokensFor returns every token owned by any of userIDs, grouped in userIDs order.
// Users with no tokens contribute nothing.
func (r *PushTokenRepo) TokensFor(ctx context.Context, userIDs []string) ([]domain.PushToken, error) {
	users := uniqueNonEmpty(userIDs)
	perUser := make([][]domain.PushToken, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, userID := range users {
		g.Go(func() error {
			tokens, err := r.listByUser(gctx, userID)
			if err != nil {
				return err
			}
			perUser[i] = tokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("lookup push tokens: %w: %w", domain.ErrStoreUnavailable, err)
	}

	var out []domain.PushToken
	for _, tokens := range perUser {
		out = append(out, tokens...)
	}
	return out, nil
}

func (r *PushTokenRepo) listByUser(ctx context.Context, userID string) ([]domain.PushToken, error) {
	var tokens []domain.PushToken
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(indexUserID),
			KeyConditionExpression: aws.String("user_id = :uid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.PushToken
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		tokens = append(tokens, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return tokens, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func uniqueNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
