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

// UserDirectory is the user record collaborator consumed by matchmaking, ratings and chat.
type UserDirectory interface {
	FindActiveByID(ctx context.Context, id string) (*models.UserProfile, error)
	FindManyActiveByIDs(ctx context.Context, ids []string) ([]models.UserProfile, error)
	ListActive(ctx context.Context) ([]models.UserProfile, error)
	Save(ctx context.Context, profile models.UserProfile) error
}

// UserProfileService is the DynamoDB-backed UserDirectory.
type UserProfileService struct {
	Dynamo *DynamoService
	Table  string
}

// NewUserProfileService creates a directory over table.
func NewUserProfileService(dynamo *DynamoService, table string) *UserProfileService {
	if table == "" {
		table = models.UserProfilesTable
	}
	return &UserProfileService{Dynamo: dynamo, Table: table}
}

// FindActiveByID retrieves an active user profile by ID
func (ups *UserProfileService) FindActiveByID(ctx context.Context, id string) (*models.UserProfile, error) {
	if id == "" {
		return nil, models.ErrUserNotFound
	}

	item, err := ups.Dynamo.GetItem(ctx, ups.Table, utils.StringKey("id", id))
	if errors.Is(err, ErrItemNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if !profile.Active {
		return nil, models.ErrUserNotFound
	}
	return &profile, nil
}

// FindManyActiveByIDs batch-loads profiles and drops inactive ones
func (ups *UserProfileService) FindManyActiveByIDs(ctx context.Context, ids []string) ([]models.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, utils.StringKey("id", id))
	}

	items, err := ups.Dynamo.BatchGetItems(ctx, ups.Table, keys)
	if err != nil {
		return nil, err
	}

	var profiles []models.UserProfile
	if err := attributevalue.UnmarshalListOfMaps(items, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
	}
	return activeOnly(profiles), nil
}

// ListActive scans every active profile
func (ups *UserProfileService) ListActive(ctx context.Context) ([]models.UserProfile, error) {
	filter := "#active = :true"
	expressionValues := map[string]types.AttributeValue{
		":true": &types.AttributeValueMemberBOOL{Value: true},
	}
	expressionNames := map[string]string{"#active": "active"}

	items, err := ups.Dynamo.ScanAll(ctx, ups.Table, filter, expressionValues, expressionNames, "")
	if err != nil {
		return nil, err
	}

	var profiles []models.UserProfile
	if err := attributevalue.UnmarshalListOfMaps(items, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
	}
	return activeOnly(profiles), nil
}

// Save writes the full profile record
func (ups *UserProfileService) Save(ctx context.Context, profile models.UserProfile) error {
	if profile.ID == "" {
		return errors.New("profile id is required")
	}
	return ups.Dynamo.PutItem(ctx, ups.Table, profile, "")
}

func activeOnly(profiles []models.UserProfile) []models.UserProfile {
	out := profiles[:0]
	for _, p := range profiles {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}
