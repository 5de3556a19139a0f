package repository

import (
	"context"
	"fmt"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoPutter is the subset of the DynamoDB client used by the ledger
type DynamoPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoUsageRepository appends AI usage records to a DynamoDB table keyed
// by user_id (partition) and recorded_at (sort)
type DynamoUsageRepository struct {
	client DynamoPutter
	table  string
}

// NewDynamoClient builds a DynamoDB client from the default AWS credential
// chain. endpoint overrides the service URL, e.g. for DynamoDB Local.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// NewDynamoUsageRepository creates a new DynamoDB usage ledger
func NewDynamoUsageRepository(client DynamoPutter, table string) *DynamoUsageRepository {
	return &DynamoUsageRepository{client: client, table: table}
}

// Record appends one usage entry
func (r *DynamoUsageRepository) Record(ctx context.Context, record *domain.UsageRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal usage record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.table,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// NoOpUsageRepository discards usage records. Used when the ledger is disabled.
type NoOpUsageRepository struct{}

func (NoOpUsageRepository) Record(context.Context, *domain.UsageRecord) error {
	return nil
}
