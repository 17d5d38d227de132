package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

func TestIsItemTooLarge(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "update past size limit",
			err: fmt.Errorf("failed to update item in table 'Conversations': %w", &smithy.GenericAPIError{
				Code:    "ValidationException",
				Message: "Item size to update has exceeded the maximum allowed size",
			}),
			want: true,
		},
		{
			name: "put past size limit",
			err: &smithy.GenericAPIError{
				Code:    "ValidationException",
				Message: "Item size has exceeded the maximum allowed size",
			},
			want: true,
		},
		{
			name: "other validation error",
			err: &smithy.GenericAPIError{
				Code:    "ValidationException",
				Message: "Invalid UpdateExpression: Syntax error",
			},
			want: false,
		},
		{name: "condition failed", err: &types.ConditionalCheckFailedException{}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsItemTooLarge(tt.err); got != tt.want {
				t.Errorf("IsItemTooLarge() = %v, want %v", got, tt.want)
			}
		})
	}
}
