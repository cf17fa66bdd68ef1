package appointments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// updateRetries bounds optimistic-concurrency retries before giving up.
const updateRetries = 3

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoRecord is the persisted item shape. Timestamps are RFC3339 strings
// so the conditional replace can compare them as plain attributes.
type dynamoRecord struct {
	ID              string  `dynamodbav:"id"`
	PatientID       string  `dynamodbav:"patientId"`
	PatientName     string  `dynamodbav:"patientName"`
	PatientEmail    string  `dynamodbav:"patientEmail"`
	PatientPhone    string  `dynamodbav:"patientPhone,omitempty"`
	DoctorID        string  `dynamodbav:"doctorId,omitempty"`
	DoctorName      string  `dynamodbav:"doctorName,omitempty"`
	DoctorEmail     string  `dynamodbav:"doctorEmail,omitempty"`
	AppointmentDate string  `dynamodbav:"appointmentDate"`
	AppointmentTime string  `dynamodbav:"appointmentTime"`
	Reason          string  `dynamodbav:"reason"`
	Symptoms        string  `dynamodbav:"symptoms,omitempty"`
	Status          string  `dynamodbav:"status"`
	ConsultationFee float64 `dynamodbav:"consultationFee"`
	MeetingLink     string  `dynamodbav:"meetingLink,omitempty"`
	DoctorNotes     string  `dynamodbav:"doctorNotes,omitempty"`
	CreatedAt       string  `dynamodbav:"createdAt"`
	UpdatedAt       string  `dynamodbav:"updatedAt"`
}

// DynamoRepository stores appointments in a DynamoDB table, the
// document-style backend variant.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewDynamoRepository builds a repository backed by the provided DynamoDB client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointments: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{client: client, tableName: tableName, logger: logger}
}

// Create inserts a new item, refusing to overwrite an existing id.
func (r *DynamoRepository) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	appt := newFromRequest(req)
	item, err := attributevalue.MarshalMap(toDynamoRecord(appt))
	if err != nil {
		return nil, wrapStoreErr("marshal item", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, wrapStoreErr("persist item", err)
	}
	return appt, nil
}

// Get fetches an item by id.
func (r *DynamoRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, wrapStoreErr("get item", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, wrapStoreErr("unmarshal item", err)
	}
	return fromDynamoRecord(&rec)
}

// List scans the table and filters client-side, newest-created-first. The
// table stays small enough that a scan with a filter expression is the
// simplest correct shape.
func (r *DynamoRepository) List(ctx context.Context, filter Filter) ([]*Appointment, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}

	expr := ""
	values := map[string]types.AttributeValue{}
	names := map[string]string{}
	appendCond := func(cond string) {
		if expr != "" {
			expr += " AND "
		}
		expr += cond
	}
	if filter.PatientID != "" {
		appendCond("patientId = :pid")
		values[":pid"] = &types.AttributeValueMemberS{Value: filter.PatientID}
	}
	if filter.DoctorID != "" {
		appendCond("doctorId = :did")
		values[":did"] = &types.AttributeValueMemberS{Value: filter.DoctorID}
	}
	if filter.Status != "" {
		appendCond("#st = :status")
		names["#st"] = "status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(filter.Status)}
	}
	if expr != "" {
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeValues = values
		if len(names) > 0 {
			input.ExpressionAttributeNames = names
		}
	}

	out := []*Appointment{}
	for {
		page, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, wrapStoreErr("scan", err)
		}
		var recs []dynamoRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &recs); err != nil {
			return nil, wrapStoreErr("unmarshal page", err)
		}
		for i := range recs {
			appt, err := fromDynamoRecord(&recs[i])
			if err != nil {
				return nil, err
			}
			out = append(out, appt)
		}
		if page.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Update reads, merges and writes the whole item back, conditioned on the
// updatedAt it read. A lost race retries; interleaved merges cannot happen.
func (r *DynamoRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Appointment, error) {
	for attempt := 0; attempt < updateRetries; attempt++ {
		current, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		expected := current.UpdatedAt.Format(time.RFC3339Nano)
		merged := cloned(current)
		req.Apply(merged)
		merged.UpdatedAt = nowUTC()

		if err := r.replace(ctx, merged, expected); err != nil {
			var cond *types.ConditionalCheckFailedException
			if errors.As(err, &cond) {
				r.logger.Debug("appointment update lost race, retrying", "id", id, "attempt", attempt+1)
				continue
			}
			return nil, err
		}
		return merged, nil
	}
	return nil, ErrConflict
}

// Delete soft-cancels with the same conditional replace.
func (r *DynamoRepository) Delete(ctx context.Context, id string) (*Appointment, error) {
	for attempt := 0; attempt < updateRetries; attempt++ {
		prior, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		expected := prior.UpdatedAt.Format(time.RFC3339Nano)
		cancelled := cloned(prior)
		cancelled.Status = StatusCancelled
		cancelled.UpdatedAt = nowUTC()

		if err := r.replace(ctx, cancelled, expected); err != nil {
			var cond *types.ConditionalCheckFailedException
			if errors.As(err, &cond) {
				continue
			}
			return nil, err
		}
		return prior, nil
	}
	return nil, ErrConflict
}

func (r *DynamoRepository) replace(ctx context.Context, appt *Appointment, expectedUpdatedAt string) error {
	item, err := attributevalue.MarshalMap(toDynamoRecord(appt))
	if err != nil {
		return wrapStoreErr("marshal item", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("updatedAt = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberS{Value: expectedUpdatedAt},
		},
	})
	return err
}

func toDynamoRecord(a *Appointment) *dynamoRecord {
	return &dynamoRecord{
		ID:              a.ID,
		PatientID:       a.PatientID,
		PatientName:     a.PatientName,
		PatientEmail:    a.PatientEmail,
		PatientPhone:    a.PatientPhone,
		DoctorID:        a.DoctorID,
		DoctorName:      a.DoctorName,
		DoctorEmail:     a.DoctorEmail,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		Reason:          a.Reason,
		Symptoms:        a.Symptoms,
		Status:          string(a.Status),
		ConsultationFee: a.ConsultationFee,
		MeetingLink:     a.MeetingLink,
		DoctorNotes:     a.DoctorNotes,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:       a.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func fromDynamoRecord(rec *dynamoRecord) (*Appointment, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("appointments: bad createdAt %q: %w", rec.CreatedAt, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("appointments: bad updatedAt %q: %w", rec.UpdatedAt, err)
	}
	return &Appointment{
		ID:              rec.ID,
		PatientID:       rec.PatientID,
		PatientName:     rec.PatientName,
		PatientEmail:    rec.PatientEmail,
		PatientPhone:    rec.PatientPhone,
		DoctorID:        rec.DoctorID,
		DoctorName:      rec.DoctorName,
		DoctorEmail:     rec.DoctorEmail,
		AppointmentDate: rec.AppointmentDate,
		AppointmentTime: rec.AppointmentTime,
		Reason:          rec.Reason,
		Symptoms:        rec.Symptoms,
		Status:          Status(rec.Status),
		ConsultationFee: rec.ConsultationFee,
		MeetingLink:     rec.MeetingLink,
		DoctorNotes:     rec.DoctorNotes,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}
