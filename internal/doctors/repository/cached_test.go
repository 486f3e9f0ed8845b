package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"medibook/internal/availability"
	doctorserrors "medibook/internal/doctors/errors"
	"medibook/pkg/logger"
	"medibook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	items  map[string][]byte
	getErr error
}

func newMemCache() *memCache { return &memCache{items: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

type countingRepo struct {
	doctor *model.Doctor
	reads  int
}

func (r *countingRepo) Create(_ context.Context, d *model.Doctor) error {
	r.doctor = d
	return nil
}

func (r *countingRepo) FindByID(_ context.Context, id string) (*model.Doctor, error) {
	r.reads++
	if r.doctor == nil || r.doctor.ID != id {
		return nil, doctorserrors.ErrNotFound
	}
	copied := *r.doctor
	return &copied, nil
}

func (r *countingRepo) FindByUserID(_ context.Context, userID string) (*model.Doctor, error) {
	r.reads++
	if r.doctor == nil || r.doctor.UserID != userID {
		return nil, doctorserrors.ErrNotFound
	}
	copied := *r.doctor
	return &copied, nil
}

func (r *countingRepo) UpdateTimeslots(_ context.Context, id string, template availability.Template) error {
	if r.doctor == nil || r.doctor.ID != id {
		return doctorserrors.ErrNotFound
	}
	r.doctor.AvailableTimeslots = template
	return nil
}

func seeded() *countingRepo {
	return &countingRepo{doctor: &model.Doctor{
		ID:                 "665f1c2a9b1e8a00123456aa",
		UserID:             "665f1c2a9b1e8a00123456bb",
		AvailableTimeslots: availability.Template{availability.Monday: {"09:00-10:00"}},
	}}
}

func TestCachedDoctorRepository_ReadThrough(t *testing.T) {
	next := seeded()
	repo := NewCachedDoctorRepository(next, newMemCache(), time.Minute, logger.Discard())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := repo.FindByID(ctx, next.doctor.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00-10:00"}, d.AvailableTimeslots[availability.Monday])
	}
	assert.Equal(t, 1, next.reads)
}

func TestCachedDoctorRepository_UpdateInvalidates(t *testing.T) {
	next := seeded()
	repo := NewCachedDoctorRepository(next, newMemCache(), time.Minute, logger.Discard())
	ctx := context.Background()

	_, err := repo.FindByUserID(ctx, next.doctor.UserID)
	require.NoError(t, err)

	updated := availability.Template{availability.Friday: {"16:00-17:00"}}
	require.NoError(t, repo.UpdateTimeslots(ctx, next.doctor.ID, updated))

	d, err := repo.FindByUserID(ctx, next.doctor.UserID)
	require.NoError(t, err)
	assert.Equal(t, updated, d.AvailableTimeslots)
}

func TestCachedDoctorRepository_MissesAreNotCached(t *testing.T) {
	next := seeded()
	c := newMemCache()
	repo := NewCachedDoctorRepository(next, c, time.Minute, logger.Discard())

	_, err := repo.FindByID(context.Background(), "665f1c2a9b1e8a00123456ee")
	assert.ErrorIs(t, err, doctorserrors.ErrNotFound)
	assert.Empty(t, c.items)
}

func TestCachedDoctorRepository_CacheFailureFallsThrough(t *testing.T) {
	next := seeded()
	c := newMemCache()
	c.getErr = errors.New("connection refused")
	repo := NewCachedDoctorRepository(next, c, time.Minute, logger.Discard())

	d, err := repo.FindByID(context.Background(), next.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, next.doctor.ID, d.ID)
}

func TestNewCachedDoctorRepository_NilCache(t *testing.T) {
	next := seeded()
	assert.Same(t, DoctorRepository(next), NewCachedDoctorRepository(next, nil, time.Minute, logger.Discard()))
}
