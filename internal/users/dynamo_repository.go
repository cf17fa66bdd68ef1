package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type dynamoUser struct {
	ID        string `dynamodbav:"id"`
	Email     string `dynamodbav:"email"`
	FirstName string `dynamodbav:"firstName"`
	LastName  string `dynamodbav:"lastName"`
	Role      string `dynamodbav:"role"`
	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// DynamoRepository stores users in a DynamoDB table.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
}

func NewDynamoRepository(client dynamoAPI, tableName string) *DynamoRepository {
	if client == nil {
		panic("users: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("users: table name cannot be empty")
	}
	return &DynamoRepository{client: client, tableName: tableName}
}

func (r *DynamoRepository) Upsert(ctx context.Context, user *User) error {
	if user == nil || user.ID == "" {
		return errors.New("users: missing user id")
	}

	stored := *user
	now := time.Now().UTC()
	if existing, err := r.Get(ctx, user.ID); err == nil {
		stored.CreatedAt = existing.CreatedAt
		if stored.Role == "" {
			stored.Role = existing.Role
		}
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.Role == "" {
		stored.Role = RolePatient
	}
	stored.UpdatedAt = now

	item, err := attributevalue.MarshalMap(dynamoUser{
		ID:        stored.ID,
		Email:     stored.Email,
		FirstName: stored.FirstName,
		LastName:  stored.LastName,
		Role:      string(stored.Role),
		CreatedAt: stored.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: stored.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("users: marshaling user: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("users: storing user: %w", err)
	}
	return nil
}

func (r *DynamoRepository) Get(ctx context.Context, id string) (*User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("users: fetching user: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var rec dynamoUser
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("users: unmarshaling user: %w", err)
	}

	user := &User{
		ID:        rec.ID,
		Email:     rec.Email,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Role:      Role(rec.Role),
	}
	if t, err := time.Parse(time.RFC3339Nano, rec.CreatedAt); err == nil {
		user.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, rec.UpdatedAt); err == nil {
		user.UpdatedAt = t
	}
	return user, nil
}

func (r *DynamoRepository) Delete(ctx context.Context, id string) error {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("users: deleting user: %w", err)
	}
	if len(out.Attributes) == 0 {
		return ErrNotFound
	}
	return nil
}
