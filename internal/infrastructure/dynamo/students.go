package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/projtrack-notify/internal/domain"
)

// StudentRepo reads the active-student roster used for broadcast notifications.
// The table is owned by the portal's domain layer; this repo never writes to it.
type StudentRepo struct {
	client    API
	tableName string
}

type studentRow struct {
	StudentID string `dynamodbav:"student_id"`
}

func NewStudentRepo(client API, tableName string) *StudentRepo {
	return &StudentRepo{client: client, tableName: tableName}
}

// ActiveStudentIDs queries the enable-index GSI (enable = 1) and follows every page.
func (r *StudentRepo) ActiveStudentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(indexEnable),
			KeyConditionExpression: aws.String("#en = :one"),
			ProjectionExpression:   aws.String(fieldStudentID),
			ExpressionAttributeNames: map[string]string{
				"#en": fieldEnable,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":one": &types.AttributeValueMemberN{Value: "1"},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query students: %w: %w", domain.ErrStoreUnavailable, err)
		}
		var rows []studentRow
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
			return nil, fmt.Errorf("unmarshal students: %w", err)
		}
		for _, row := range rows {
			ids = append(ids, row.StudentID)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return ids, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
