package repository

import (
	"context"
	"errors"
	"fmt"
	appterrors "medibook/internal/appointments/errors"
	"medibook/pkg/config"
	mongotx "medibook/pkg/db/mongo"
	"medibook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Appointments"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	// FindActiveBySlot returns the pending or confirmed appointment holding the
	// slot, ignoring excludeID. It returns nil, nil when the slot is free.
	FindActiveBySlot(ctx context.Context, doctorID, date, slot, excludeID string) (*model.Appointment, error)
	FindActiveByDoctorAndDate(ctx context.Context, doctorID, date string) ([]*model.Appointment, error)
	FindByDateAndStatus(ctx context.Context, date string, status model.AppointmentStatus) ([]*model.Appointment, error)
	Find(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
	Count(ctx context.Context, filter model.AppointmentFilter) (int64, error)
	CountByStatus(ctx context.Context, filter model.AppointmentFilter) (map[model.AppointmentStatus]int64, error)
	// UpdateDetails and UpdateStatus only write while the stored status still
	// matches the expected one; otherwise they return ErrStatusChanged.
	UpdateDetails(ctx context.Context, appt *model.Appointment) error
	UpdateStatus(ctx context.Context, appt *model.Appointment, from model.AppointmentStatus) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Active = appt.Status.IsActive()

	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appterrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	var appt model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appt, nil
}

func (r *mongoAppointmentRepository) FindActiveBySlot(ctx context.Context, doctorID, date, slot, excludeID string) (*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"doctor_id":        doctorID,
		"appointment_date": date,
		"appointment_time": slot,
		"status":           bson.M{"$in": model.ActiveStatuses},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	var appt model.Appointment
	err := r.collection.FindOne(ctx, filter).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepository) FindActiveByDoctorAndDate(ctx context.Context, doctorID, date string) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"doctor_id":        doctorID,
		"appointment_date": date,
		"status":           bson.M{"$in": model.ActiveStatuses},
	}
	return r.findMany(ctx, filter, options.Find().SetSort(bson.D{{Key: "appointment_time", Value: 1}}))
}

func (r *mongoAppointmentRepository) FindByDateAndStatus(ctx context.Context, date string, status model.AppointmentStatus) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"appointment_date": date,
		"status":           status,
	}
	return r.findMany(ctx, filter, options.Find().SetSort(bson.D{{Key: "appointment_time", Value: 1}}))
}

func (r *mongoAppointmentRepository) Find(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{
			{Key: "appointment_date", Value: -1},
			{Key: "appointment_time", Value: 1},
		}).
		SetLimit(int64(filter.Limit)).
		SetSkip(filter.Offset)

	return r.findMany(ctx, buildFilter(filter), opts)
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, filter model.AppointmentFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) CountByStatus(ctx context.Context, filter model.AppointmentFilter) (map[model.AppointmentStatus]int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildFilter(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate appointment statuses: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status model.AppointmentStatus `bson:"_id"`
		Count  int64                   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode appointment statuses: %w", err)
	}

	counts := make(map[model.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *mongoAppointmentRepository) UpdateDetails(ctx context.Context, appt *model.Appointment) error {
	update := bson.M{
		"$set": bson.M{
			"appointment_date": appt.AppointmentDate,
			"appointment_time": appt.AppointmentTime,
			"notes":            appt.Notes,
			"symptoms":         appt.Symptoms,
			"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	return r.updateOne(ctx, appt.ID, appt.Status, update)
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, appt *model.Appointment, from model.AppointmentStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":       appt.Status,
			"active":       appt.Status.IsActive(),
			"doctor_notes": appt.DoctorNotes,
			"prescription": appt.Prescription,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	return r.updateOne(ctx, appt.ID, from, update)
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoAppointmentRepository) updateOne(ctx context.Context, id string, expected model.AppointmentStatus, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": expected}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appterrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check appointment: %w", err)
	}
	if exists == 0 {
		return appterrors.ErrNotFound
	}
	return fmt.Errorf("%w: expected %s", appterrors.ErrStatusChanged, expected)
}

func (r *mongoAppointmentRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Appointment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := []*model.Appointment{}
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

func buildFilter(f model.AppointmentFilter) bson.M {
	filter := bson.M{}
	if f.PatientID != "" {
		filter["patient_id"] = f.PatientID
	}
	if f.DoctorID != "" {
		filter["doctor_id"] = f.DoctorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	// YYYY-MM-DD strings order the same way the dates do
	if f.DateFrom != "" || f.DateTo != "" {
		dateRange := bson.M{}
		if f.DateFrom != "" {
			dateRange["$gte"] = f.DateFrom
		}
		if f.DateTo != "" {
			dateRange["$lte"] = f.DateTo
		}
		filter["appointment_date"] = dateRange
	}
	return filter
}
