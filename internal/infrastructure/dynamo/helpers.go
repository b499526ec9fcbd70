package dynamo

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// DynamoDB per-request limits.
	maxBatchWrite = 25
	maxBatchGet   = 100

	// maxItemSize is DynamoDB's item size limit.
	maxItemSize = 400 * 1024

	maxBatchAttempts = 5
	batchBackoff     = 50 * time.Millisecond
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// compositeKey builds a DynamoDB primary key with two string attributes (PK + SK).
func compositeKey(pkName, pkValue, skName, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberS{Value: pkValue},
		skName: &types.AttributeValueMemberS{Value: skValue},
	}
}

// itemSize approximates the stored size of item the way DynamoDB counts it:
// attribute names plus values, with a few bytes of overhead per list or map.
func itemSize(item map[string]types.AttributeValue) int {
	size := 0
	for name, v := range item {
		size += len(name) + valueSize(v)
	}
	return size
}

func valueSize(v types.AttributeValue) int {
	switch v := v.(type) {
	case *types.AttributeValueMemberS:
		return len(v.Value)
	case *types.AttributeValueMemberN:
		return len(v.Value)
	case *types.AttributeValueMemberB:
		return len(v.Value)
	case *types.AttributeValueMemberL:
		size := 3
		for _, e := range v.Value {
			size += 1 + valueSize(e)
		}
		return size
	case *types.AttributeValueMemberM:
		size := 3
		for k, e := range v.Value {
			size += 1 + len(k) + valueSize(e)
		}
		return size
	case *types.AttributeValueMemberSS:
		size := 0
		for _, e := range v.Value {
			size += len(e)
		}
		return size
	}
	return 1
}

func encodeCursor(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", fmt.Errorf("empty cursor")
	}
	return string(b), nil
}

// batchWrite sends reqs to table in chunks of maxBatchWrite and resubmits
// unprocessed items with linear backoff until maxBatchAttempts is reached.
func batchWrite(ctx context.Context, client API, table string, reqs []types.WriteRequest) error {
	for start := 0; start < len(reqs); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(reqs))
		pending := map[string][]types.WriteRequest{table: reqs[start:end]}
		for attempt := 1; len(pending[table]) > 0; attempt++ {
			if attempt > maxBatchAttempts {
				return fmt.Errorf("batch write %s: %d items unprocessed after %d attempts", table, len(pending[table]), maxBatchAttempts)
			}
			if attempt > 1 {
				if err := sleepCtx(ctx, time.Duration(attempt-1)*batchBackoff); err != nil {
					return err
				}
			}
			out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("batch write %s: %w", table, err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

// batchGet fetches keys from table in chunks of maxBatchGet, retrying unprocessed keys.
func batchGet(ctx context.Context, client API, table string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for start := 0; start < len(keys); start += maxBatchGet {
		end := min(start+maxBatchGet, len(keys))
		pending := map[string]types.KeysAndAttributes{table: {Keys: keys[start:end]}}
		for attempt := 1; len(pending[table].Keys) > 0; attempt++ {
			if attempt > maxBatchAttempts {
				return nil, fmt.Errorf("batch get %s: %d keys unprocessed after %d attempts", table, len(pending[table].Keys), maxBatchAttempts)
			}
			if attempt > 1 {
				if err := sleepCtx(ctx, time.Duration(attempt-1)*batchBackoff); err != nil {
					return nil, err
				}
			}
			out, err := client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: pending})
			if err != nil {
				return nil, fmt.Errorf("batch get %s: %w", table, err)
			}
			items = append(items, out.Responses[table]...)
			pending = out.UnprocessedKeys
		}
	}
	return items, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
