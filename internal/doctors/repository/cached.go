package repository

import (
	"context"
	"medibook/internal/availability"
	"medibook/pkg/cache"
	"medibook/pkg/logger"
	"medibook/pkg/model"
	"time"
)

// cachedDoctorRepository is a read-through cache in front of a DoctorRepository.
// Cache failures are logged and the call falls through to the store.
type cachedDoctorRepository struct {
	next  DoctorRepository
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedDoctorRepository wraps next. A nil cache returns next unchanged.
func NewCachedDoctorRepository(next DoctorRepository, c cache.Cache, ttl time.Duration, log *logger.Logger) DoctorRepository {
	if c == nil {
		return next
	}
	return &cachedDoctorRepository{next: next, cache: c, ttl: ttl, log: log}
}

func byIDKey(id string) string        { return "doctor:id:" + id }
func byUserIDKey(userID string) string { return "doctor:user:" + userID }

func (r *cachedDoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	if err := r.next.Create(ctx, doctor); err != nil {
		return err
	}
	r.invalidate(ctx, doctor)
	return nil
}

func (r *cachedDoctorRepository) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	return r.readThrough(ctx, byIDKey(id), func() (*model.Doctor, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *cachedDoctorRepository) FindByUserID(ctx context.Context, userID string) (*model.Doctor, error) {
	return r.readThrough(ctx, byUserIDKey(userID), func() (*model.Doctor, error) {
		return r.next.FindByUserID(ctx, userID)
	})
}

func (r *cachedDoctorRepository) UpdateTimeslots(ctx context.Context, id string, template availability.Template) error {
	existing, findErr := r.next.FindByID(ctx, id)
	if err := r.next.UpdateTimeslots(ctx, id, template); err != nil {
		return err
	}
	if findErr == nil {
		r.invalidate(ctx, existing)
	} else {
		r.delete(ctx, byIDKey(id))
	}
	return nil
}

func (r *cachedDoctorRepository) readThrough(ctx context.Context, key string, load func() (*model.Doctor, error)) (*model.Doctor, error) {
	var cached model.Doctor
	found, err := r.cache.Get(ctx, key, &cached)
	if err != nil {
		r.log.Warn("Doctor cache read failed", "key", key, "error", err)
	}
	if found {
		return &cached, nil
	}

	doctor, err := load()
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, doctor, r.ttl); err != nil {
		r.log.Warn("Doctor cache write failed", "key", key, "error", err)
	}
	return doctor, nil
}

func (r *cachedDoctorRepository) invalidate(ctx context.Context, doctor *model.Doctor) {
	r.delete(ctx, byIDKey(doctor.ID), byUserIDKey(doctor.UserID))
}

func (r *cachedDoctorRepository) delete(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.Warn("Doctor cache invalidation failed", "keys", keys, "error", err)
	}
}
