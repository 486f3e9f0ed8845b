package repository

import (
	"context"
	"fmt"
	appterrors "medibook/internal/appointments/errors"
	"medibook/pkg/config"
	mongotx "medibook/pkg/db/mongo"
	"medibook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const SlotLockCollectionName = "Slot_locks"

// SlotLockRepository stores advisory locks keyed by slot.
type SlotLockRepository interface {
	// Acquire returns ErrSlotLocked if an unexpired lock already exists.
	Acquire(ctx context.Context, lock *model.SlotLock) error
	Release(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollectionName),
	}
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, lock *model.SlotLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()

	// the TTL monitor runs about once a minute, so clear expired leftovers first
	_, _ = r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "expires_at": bson.M{"$lt": lock.CreatedAt}})

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appterrors.ErrSlotLocked
		}
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	return nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, lockID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID}); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}

// SlotLockID derives the lock key for a slot.
func SlotLockID(doctorID, date, slot string) string {
	return fmt.Sprintf("slot_lock_%s_%s_%s", doctorID, date, slot)
}
