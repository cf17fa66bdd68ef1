package users

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func itemID(item map[string]types.AttributeValue) string {
	if v, ok := item["id"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.items[itemID(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	item, ok := m.items[itemID(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	id := itemID(in.Key)
	item, ok := m.items[id]
	if !ok {
		return &dynamodb.DeleteItemOutput{}, nil
	}
	delete(m.items, id)
	if in.ReturnValues == types.ReturnValueAllOld {
		return &dynamodb.DeleteItemOutput{Attributes: item}, nil
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoUpsertGetDelete(t *testing.T) {
	mock := newMockDynamo()
	repo := NewDynamoRepository(mock, "users")
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &User{ID: "user_1", Email: "jane@example.com", FirstName: "Jane"}))

	got, err := repo.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, RolePatient, got.Role)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, "user_1"))
	_, err = repo.Get(ctx, "user_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoUpsertPreservesExistingRole(t *testing.T) {
	mock := newMockDynamo()
	repo := NewDynamoRepository(mock, "users")
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &User{ID: "user_1", Email: "jane@example.com", Role: RoleDoctor}))
	require.NoError(t, repo.Upsert(ctx, &User{ID: "user_1", Email: "jane.doe@example.com"}))

	got, err := repo.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, RoleDoctor, got.Role)
	assert.Equal(t, "jane.doe@example.com", got.Email)
}

func TestDynamoDeleteMissing(t *testing.T) {
	repo := NewDynamoRepository(newMockDynamo(), "users")
	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), ErrNotFound)
}
