package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"subjectswap_server/models"
	"subjectswap_server/utils"
)

// DynamoConversationStore keeps conversation documents in a table keyed by
// participantId (partition) and docSeq (sort).
type DynamoConversationStore struct {
	Dynamo *DynamoService
	Table  string
}

// NewDynamoConversationStore creates a store over table.
func NewDynamoConversationStore(dynamo *DynamoService, table string) *DynamoConversationStore {
	if table == "" {
		table = models.ConversationsTable
	}
	return &DynamoConversationStore{Dynamo: dynamo, Table: table}
}

func (s *DynamoConversationStore) documentKey(key string, seq int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"participantId": &types.AttributeValueMemberS{Value: key},
		"docSeq":        utils.NumberValue(seq),
	}
}

// LatestDocuments queries the partition newest-first.
func (s *DynamoConversationStore) LatestDocuments(ctx context.Context, key string, limit int) ([]models.ConversationDocument, error) {
	keyCondition := "#pid = :pid"
	expressionValues := map[string]types.AttributeValue{
		":pid": &types.AttributeValueMemberS{Value: key},
	}
	expressionNames := map[string]string{
		"#pid": "participantId",
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, s.Table, keyCondition, expressionValues, expressionNames, int32(limit), true)
	if err != nil {
		return nil, err
	}

	var docs []models.ConversationDocument
	if err := attributevalue.UnmarshalListOfMaps(items, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse conversation documents: %w", err)
	}
	return docs, nil
}

// CreateDocument writes doc unless its (participantId, docSeq) already exists.
func (s *DynamoConversationStore) CreateDocument(ctx context.Context, doc models.ConversationDocument) error {
	err := s.Dynamo.PutItem(ctx, s.Table, doc, "attribute_not_exists(participantId)")
	if IsConditionFailed(err) {
		return models.ErrDocumentExists
	}
	return err
}

// AppendMessage list-appends msg while the document is below capacity. A
// document that has hit the item size limit is reported as full.
func (s *DynamoConversationStore) AppendMessage(ctx context.Context, key string, seq int, msg models.Message, capacity int) error {
	av, err := attributevalue.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	updateExpression := "SET messages = list_append(messages, :msg), noOfMessages = noOfMessages + :one"
	conditionExpression := "attribute_exists(participantId) AND noOfMessages < :cap"
	expressionValues := map[string]types.AttributeValue{
		":msg": &types.AttributeValueMemberL{Value: []types.AttributeValue{av}},
		":one": utils.NumberValue(1),
		":cap": utils.NumberValue(capacity),
	}

	err = s.Dynamo.UpdateItem(ctx, s.Table, s.documentKey(key, seq), updateExpression, conditionExpression, expressionValues, nil)
	if IsConditionFailed(err) || IsItemTooLarge(err) {
		return models.ErrDocumentFull
	}
	return err
}

// GetDocument loads one document.
func (s *DynamoConversationStore) GetDocument(ctx context.Context, key string, seq int) (*models.ConversationDocument, error) {
	item, err := s.Dynamo.GetItem(ctx, s.Table, s.documentKey(key, seq))
	if errors.Is(err, ErrItemNotFound) {
		return nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc models.ConversationDocument
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse conversation document: %w", err)
	}
	return &doc, nil
}

// ListKeys scans for partitions whose key contains userID.
func (s *DynamoConversationStore) ListKeys(ctx context.Context, userID string) ([]string, error) {
	filter := "contains(#pid, :uid) AND #seq = :first"
	expressionValues := map[string]types.AttributeValue{
		":uid":   &types.AttributeValueMemberS{Value: userID},
		":first": utils.NumberValue(1),
	}
	expressionNames := map[string]string{
		"#pid": "participantId",
		"#seq": "docSeq",
	}

	items, err := s.Dynamo.ScanAll(ctx, s.Table, filter, expressionValues, expressionNames, "#pid, #seq")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		key := utils.ExtractString(item, "participantId")
		if key == "" {
			continue
		}
		if _, ok := utils.OtherParticipant(key, userID); !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}
