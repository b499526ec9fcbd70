package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/projtrack-notify/internal/domain"
)

// NotificationRepo stores notification records and the per-recipient inbox rows
// that index them by recipient and creation time.
type NotificationRepo struct {
	client      API
	recordTable string
	inboxTable  string
	now         func() time.Time
}

type inboxRow struct {
	InboxKey       string `dynamodbav:"inbox_key"`
	NotificationID string `dynamodbav:"notification_id"`
}

func NewNotificationRepo(client API, recordTable, inboxTable string) *NotificationRepo {
	return &NotificationRepo{client: client, recordTable: recordTable, inboxTable: inboxTable, now: time.Now}
}

// Create validates in, writes one inbox row per recipient and then the record itself.
// The record is written last so it is never visible without its inbox rows.
func (r *NotificationRepo) Create(ctx context.Context, in domain.NotificationInput) (*domain.Notification, error) {
	n, err := domain.NewNotification(in, r.now())
	if err != nil {
		return nil, err
	}

	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	// Recipients and read state live in one item, so the recipient list is
	// bounded by DynamoDB's item size.
	if size := itemSize(item); size > maxItemSize {
		return nil, fmt.Errorf("notification for %d recipients is %d bytes, limit %d: %w",
			len(n.Recipients), size, maxItemSize, domain.ErrValidation)
	}

	if err := batchWrite(ctx, r.client, r.inboxTable, r.inboxRequests(n, true)); err != nil {
		r.removeInbox(ctx, n)
		return nil, fmt.Errorf("write inbox: %w: %w", domain.ErrStoreUnavailable, err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.recordTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(notification_id)"),
	})
	if err != nil {
		r.removeInbox(ctx, n)
		return nil, fmt.Errorf("put notification: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

// ListFor returns one newest-first page of the records addressed to recipientID.
// Inbox rows whose record is missing are skipped.
func (r *NotificationRepo) ListFor(ctx context.Context, recipientID string, kind domain.RecipientKind, page domain.PageRequest) (*domain.NotificationPage, error) {
	page = page.Normalize()
	inboxKey := domain.InboxKey(kind, recipientID)

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.inboxTable),
		KeyConditionExpression: aws.String("inbox_key = :k"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":k": &types.AttributeValueMemberS{Value: inboxKey},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(page.Limit)),
	}
	if page.Cursor != "" {
		lastID, err := decodeCursor(page.Cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", domain.ErrValidation)
		}
		input.ExclusiveStartKey = compositeKey(fieldInboxKey, inboxKey, fieldNotificationID, lastID)
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query inbox: %w: %w", domain.ErrStoreUnavailable, err)
	}
	var rows []inboxRow
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal inbox: %w", err)
	}

	keys := make([]map[string]types.AttributeValue, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, strKey(fieldNotificationID, row.NotificationID))
	}
	raw, err := batchGet(ctx, r.client, r.recordTable, keys)
	if err != nil {
		return nil, fmt.Errorf("get notifications: %w: %w", domain.ErrStoreUnavailable, err)
	}
	var records []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(raw, &records); err != nil {
		return nil, fmt.Errorf("unmarshal notifications: %w", err)
	}
	byID := make(map[string]domain.Notification, len(records))
	for _, n := range records {
		byID[n.NotificationID] = n
	}

	// BatchGetItem returns items in no particular order; the inbox rows carry the ordering.
	items := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		n, ok := byID[row.NotificationID]
		if !ok || !n.Addresses(recipientID, kind) {
			continue
		}
		items = append(items, n)
	}

	next := ""
	if v, ok := out.LastEvaluatedKey[fieldNotificationID].(*types.AttributeValueMemberS); ok {
		next = encodeCursor(v.Value)
	}
	return &domain.NotificationPage{Items: items, NextCursor: next}, nil
}

// MarkRead flips recipientID's entry to true with a single-key update, so
// concurrent readers of the same record never overwrite each other.
// Marking an already-read entry, an id that is not a recipient, or a record
// addressed to another kind is a no-op.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, recipientID string, kind domain.RecipientKind) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.recordTable),
		Key:                 strKey(fieldNotificationID, notificationID),
		UpdateExpression:    aws.String("SET #rs.#r = :t"),
		ConditionExpression: aws.String("attribute_exists(#rs.#r) AND #rk = :kind"),
		ExpressionAttributeNames: map[string]string{
			"#rs": fieldReadState,
			"#r":  recipientID,
			"#rk": fieldRecipientKind,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":    &types.AttributeValueMemberBOOL{Value: true},
			":kind": &types.AttributeValueMemberS{Value: string(kind)},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if len(ccf.Item) == 0 {
			return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
		}
		return nil
	}
	return fmt.Errorf("mark read: %w: %w", domain.ErrStoreUnavailable, err)
}

func (r *NotificationRepo) inboxRequests(n *domain.Notification, put bool) []types.WriteRequest {
	reqs := make([]types.WriteRequest, 0, len(n.Recipients))
	for _, recipient := range n.Recipients {
		key := domain.InboxKey(n.RecipientKind, recipient)
		if put {
			reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{
				Item: compositeKey(fieldInboxKey, key, fieldNotificationID, n.NotificationID),
			}})
			continue
		}
		reqs = append(reqs, types.WriteRequest{DeleteRequest: &types.DeleteRequest{
			Key: compositeKey(fieldInboxKey, key, fieldNotificationID, n.NotificationID),
		}})
	}
	return reqs
}

// removeInbox deletes inbox rows left behind by a failed create. Failures are
// logged only; readers skip rows whose record does not exist.
func (r *NotificationRepo) removeInbox(ctx context.Context, n *domain.Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := batchWrite(ctx, r.client, r.inboxTable, r.inboxRequests(n, false)); err != nil {
		slog.Warn("could not remove orphaned inbox rows", "notification_id", n.NotificationID, "err", err)
	}
}
