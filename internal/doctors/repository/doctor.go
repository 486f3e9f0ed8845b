package repository

import (
	"context"
	"errors"
	"fmt"
	"medibook/internal/availability"
	doctorserrors "medibook/internal/doctors/errors"
	"medibook/pkg/config"
	mongotx "medibook/pkg/db/mongo"
	"medibook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Doctors"
)

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	FindByID(ctx context.Context, id string) (*model.Doctor, error)
	FindByUserID(ctx context.Context, userID string) (*model.Doctor, error)
	UpdateTimeslots(ctx context.Context, id string, template availability.Template) error
}

type mongoDoctorRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDoctorRepository(cfg *config.Config) DoctorRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDoctorRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoDoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, doctor)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return doctorserrors.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		doctor.ID = oid.Hex()
	}
	return nil
}

func (r *mongoDoctorRepository) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", doctorserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoDoctorRepository) FindByUserID(ctx context.Context, userID string) (*model.Doctor, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *mongoDoctorRepository) UpdateTimeslots(ctx context.Context, id string, template availability.Template) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", doctorserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"available_timeslots": template,
			"updated_at":          time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update doctor schedule: %w", err)
	}
	if result.MatchedCount == 0 {
		return doctorserrors.ErrNotFound
	}
	return nil
}

func (r *mongoDoctorRepository) findOne(ctx context.Context, filter bson.M) (*model.Doctor, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doctor model.Doctor
	if err := r.collection.FindOne(ctx, filter).Decode(&doctor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, doctorserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find doctor: %w", err)
	}
	return &doctor, nil
}
