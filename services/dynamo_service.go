package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"subjectswap_server/logger"
)

// ErrItemNotFound is returned by GetItem when the key has no item.
var ErrItemNotFound = errors.New("item not found")

// maxBatchGetKeys is DynamoDB's BatchGetItem key limit.
const maxBatchGetKeys = 100

// DynamoService wraps the DynamoDB client with the access patterns used by the stores.
type DynamoService struct {
	Client *dynamodb.Client
	Logger *logger.Logger
}

// LoadAWSConfig loads the shared AWS configuration for region.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewDynamoService builds a DynamoService from an AWS config.
func NewDynamoService(cfg aws.Config, log *logger.Logger) *DynamoService {
	return &DynamoService{Client: dynamodb.NewFromConfig(cfg), Logger: logger.OrGlobal(log)}
}

// IsConditionFailed reports whether err is a failed ConditionExpression.
func IsConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// IsItemTooLarge reports whether err is DynamoDB rejecting a write that would
// push an item past the 400 KB item limit.
func IsItemTooLarge(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationException" &&
		strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "item size")
}

// PutItem marshals item and writes it. A non-empty condition makes the write conditional.
func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}, condition string) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      marshaledItem,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	if _, err := ds.Client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	ds.Logger.Debug("item stored", zap.String("table", tableName))
	return nil
}

// GetItem retrieves an item from DynamoDB
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(tableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}

	if output.Item == nil {
		return nil, ErrItemNotFound
	}

	return output.Item, nil
}

// UpdateItem runs an update expression, optionally guarded by a condition.
func (ds *DynamoService) UpdateItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpression string,
	conditionExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
) error {
	if len(key) == 0 {
		return errors.New("update failed: key cannot be empty")
	}
	if updateExpression == "" {
		return errors.New("update failed: updateExpression cannot be empty")
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpression),
		ExpressionAttributeValues: expressionAttributeValues,
		ReturnValues:              types.ReturnValueNone,
	}
	if len(expressionAttributeNames) > 0 {
		input.ExpressionAttributeNames = expressionAttributeNames
	}
	if conditionExpression != "" {
		input.ConditionExpression = aws.String(conditionExpression)
	}

	if _, err := ds.Client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}
	return nil
}

// QueryItemsWithOptions queries DynamoDB with sorting and limit options
func (ds *DynamoService) QueryItemsWithOptions(
	ctx context.Context,
	tableName string,
	keyConditionExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	limit int32,
	latestFirst bool, // true = highest sort key first
) ([]map[string]types.AttributeValue, error) {
	queryInput := &dynamodb.QueryInput{
		TableName:                 aws.String(tableName),
		KeyConditionExpression:    aws.String(keyConditionExpression),
		ExpressionAttributeValues: expressionAttributeValues,
		ScanIndexForward:          aws.Bool(!latestFirst),
		ConsistentRead:            aws.Bool(true),
	}
	if len(expressionAttributeNames) > 0 {
		queryInput.ExpressionAttributeNames = expressionAttributeNames
	}
	if limit > 0 {
		queryInput.Limit = aws.Int32(limit)
	}

	output, err := ds.Client.Query(ctx, queryInput)
	if err != nil {
		return nil, fmt.Errorf("failed to query table '%s': %w", tableName, err)
	}

	ds.Logger.Debug("query complete", zap.String("table", tableName), zap.Int("items", len(output.Items)))
	return output.Items, nil
}

// ScanAll pages through a filtered scan and returns every matching item.
func (ds *DynamoService) ScanAll(
	ctx context.Context,
	tableName string,
	filterExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	projection string,
) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	}
	if filterExpression != "" {
		input.FilterExpression = aws.String(filterExpression)
		input.ExpressionAttributeValues = expressionAttributeValues
	}
	if len(expressionAttributeNames) > 0 {
		input.ExpressionAttributeNames = expressionAttributeNames
	}
	if projection != "" {
		input.ProjectionExpression = aws.String(projection)
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(ds.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", tableName, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// BatchGetItems fetches items by key in chunks of 100.
func (ds *DynamoService) BatchGetItems(ctx context.Context, tableName string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue

	for i := 0; i < len(keys); i += maxBatchGetKeys {
		end := i + maxBatchGetKeys
		if end > len(keys) {
			end = len(keys)
		}

		request := map[string]types.KeysAndAttributes{
			tableName: {Keys: keys[i:end]},
		}
		for len(request) > 0 {
			output, err := ds.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get items from table '%s': %w", tableName, err)
			}
			items = append(items, output.Responses[tableName]...)
			request = output.UnprocessedKeys
		}
	}

	return items, nil
}
