package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/projtrack-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func tokenItem(t *testing.T, token, user string) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(domain.PushToken{Token: token, UserID: user, RegisteredAt: time.Unix(0, 0).UTC()})
	require.NoError(t, err)
	return item
}

func queryFor(user string) any {
	return mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		v, ok := in.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS)
		return ok && v.Value == user && *in.IndexName == indexUserID
	})
}

func TestPushTokenRegister_Upserts(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		tok, _ := in.Item[fieldToken].(*types.AttributeValueMemberS)
		return *in.TableName == "push_tokens" && tok != nil && tok.Value == "tok-1" && in.ConditionExpression == nil
	})).Return(&dynamodb.PutItemOutput{}, nil)

	err := NewPushTokenRepo(api, "push_tokens").Register(context.Background(), &domain.PushToken{Token: "tok-1", UserID: "S1"})
	assert.NoError(t, err)
	api.AssertExpectations(t)
}

func TestPushTokenUnregister(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "owner", err: nil},
		{name: "not owner or missing", err: &types.ConditionalCheckFailedException{}, wantErr: domain.ErrNotFound},
		{name: "store down", err: errors.New("boom"), wantErr: domain.ErrStoreUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &mockAPI{}
			api.On("DeleteItem", mock.Anything, mock.Anything).Return(&dynamodb.DeleteItemOutput{}, tc.err)

			err := NewPushTokenRepo(api, "push_tokens").Unregister(context.Background(), "S1", "tok-1")
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPushTokensFor_GroupsByUserAndFollowsPages(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		v := in.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS).Value
		return v == "S1" && in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{tokenItem(t, "a1", "S1")},
		LastEvaluatedKey: strKey(fieldToken, "a1"),
	}, nil).Once()
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		v := in.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS).Value
		return v == "S1" && in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{tokenItem(t, "a2", "S1")},
	}, nil).Once()
	api.On("Query", mock.Anything, queryFor("S2")).Return(&dynamodb.QueryOutput{}, nil).Once()
	api.On("Query", mock.Anything, queryFor("S3")).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{tokenItem(t, "c1", "S3")},
	}, nil).Once()

	tokens, err := NewPushTokenRepo(api, "push_tokens").TokensFor(context.Background(), []string{"S1", "S2", "S1", "", "S3"})
	require.NoError(t, err)

	var got []string
	for _, tok := range tokens {
		got = append(got, tok.Token)
	}
	assert.Equal(t, []string{"a1", "a2", "c1"}, got)
	api.AssertExpectations(t)
}

func TestPushTokensFor_Empty(t *testing.T) {
	api := &mockAPI{}
	tokens, err := NewPushTokenRepo(api, "push_tokens").TokensFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tokens)
	api.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestPushTokensFor_QueryFailure(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := NewPushTokenRepo(api, "push_tokens").TokensFor(context.Background(), []string{"S1"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
