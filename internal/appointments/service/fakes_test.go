package service

import (
	"context"
	appterrors "medibook/internal/appointments/errors"
	doctorserrors "medibook/internal/doctors/errors"
	userserrors "medibook/internal/users/errors"
	mongotx "medibook/pkg/db/mongo"
	"medibook/pkg/model"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memAppointmentRepo enforces the same unique active-slot rule as the
// partial index in MongoDB.
type memAppointmentRepo struct {
	mu    sync.Mutex
	items map[string]model.Appointment
	order []string

	findErr error
	// beforeWrite runs ahead of UpdateDetails and UpdateStatus without the
	// lock held, standing in for a concurrent writer.
	beforeWrite func(r *memAppointmentRepo, id string)
	// afterCreate runs once an insert has succeeded.
	afterCreate func()
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{items: map[string]model.Appointment{}}
}

func (r *memAppointmentRepo) slotTakenLocked(appt *model.Appointment) bool {
	if !appt.Status.IsActive() {
		return false
	}
	for id, other := range r.items {
		if id == appt.ID {
			continue
		}
		if other.Status.IsActive() &&
			other.DoctorID == appt.DoctorID &&
			other.AppointmentDate == appt.AppointmentDate &&
			other.AppointmentTime == appt.AppointmentTime {
			return true
		}
	}
	return false
}

func (r *memAppointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slotTakenLocked(appt) {
		return appterrors.ErrSlotTaken
	}
	appt.ID = primitive.NewObjectID().Hex()
	appt.CreatedAt = time.Now().UTC()
	appt.UpdatedAt = appt.CreatedAt
	appt.Active = appt.Status.IsActive()
	r.items[appt.ID] = *appt
	r.order = append(r.order, appt.ID)
	if r.afterCreate != nil {
		r.afterCreate()
	}
	return nil
}

func (r *memAppointmentRepo) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, appterrors.ErrInvalidID
	}
	appt, ok := r.items[id]
	if !ok {
		return nil, appterrors.ErrNotFound
	}
	return &appt, nil
}

func (r *memAppointmentRepo) FindActiveBySlot(_ context.Context, doctorID, date, slot, excludeID string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		appt := r.items[id]
		if id == excludeID {
			continue
		}
		if appt.Status.IsActive() && appt.DoctorID == doctorID && appt.AppointmentDate == date && appt.AppointmentTime == slot {
			return &appt, nil
		}
	}
	return nil, nil
}

func (r *memAppointmentRepo) FindActiveByDoctorAndDate(_ context.Context, doctorID, date string) ([]*model.Appointment, error) {
	return r.collect(func(a model.Appointment) bool {
		return a.Status.IsActive() && a.DoctorID == doctorID && a.AppointmentDate == date
	}), nil
}

func (r *memAppointmentRepo) FindByDateAndStatus(_ context.Context, date string, status model.AppointmentStatus) ([]*model.Appointment, error) {
	return r.collect(func(a model.Appointment) bool {
		return a.AppointmentDate == date && a.Status == status
	}), nil
}

func (r *memAppointmentRepo) Find(_ context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	all := r.collect(func(a model.Appointment) bool { return matches(a, filter) })
	start := int(filter.Offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return all[start:end], nil
}

func (r *memAppointmentRepo) Count(_ context.Context, filter model.AppointmentFilter) (int64, error) {
	return int64(len(r.collect(func(a model.Appointment) bool { return matches(a, filter) }))), nil
}

func (r *memAppointmentRepo) CountByStatus(_ context.Context, filter model.AppointmentFilter) (map[model.AppointmentStatus]int64, error) {
	counts := map[model.AppointmentStatus]int64{}
	for _, a := range r.collect(func(a model.Appointment) bool { return matches(a, filter) }) {
		counts[a.Status]++
	}
	return counts, nil
}

func (r *memAppointmentRepo) UpdateDetails(_ context.Context, appt *model.Appointment) error {
	if r.beforeWrite != nil {
		r.beforeWrite(r, appt.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[appt.ID]
	if !ok {
		return appterrors.ErrNotFound
	}
	if stored.Status != appt.Status {
		return appterrors.ErrStatusChanged
	}
	if r.slotTakenLocked(appt) {
		return appterrors.ErrSlotTaken
	}
	stored.AppointmentDate = appt.AppointmentDate
	stored.AppointmentTime = appt.AppointmentTime
	stored.Notes = appt.Notes
	stored.Symptoms = appt.Symptoms
	r.items[appt.ID] = stored
	return nil
}

func (r *memAppointmentRepo) UpdateStatus(_ context.Context, appt *model.Appointment, from model.AppointmentStatus) error {
	if r.beforeWrite != nil {
		r.beforeWrite(r, appt.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[appt.ID]
	if !ok {
		return appterrors.ErrNotFound
	}
	if stored.Status != from {
		return appterrors.ErrStatusChanged
	}
	stored.SetStatus(appt.Status)
	stored.DoctorNotes = appt.DoctorNotes
	stored.Prescription = appt.Prescription
	if r.slotTakenLocked(&stored) {
		return appterrors.ErrSlotTaken
	}
	r.items[appt.ID] = stored
	return nil
}

func (r *memAppointmentRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

// forceStatus overwrites the stored status, bypassing every check.
func (r *memAppointmentRepo) forceStatus(id string, status model.AppointmentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.items[id]
	stored.SetStatus(status)
	r.items[id] = stored
}

func (r *memAppointmentRepo) collect(keep func(model.Appointment) bool) []*model.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*model.Appointment{}
	for _, id := range r.order {
		appt := r.items[id]
		if keep(appt) {
			out = append(out, &appt)
		}
	}
	return out
}

func (r *memAppointmentRepo) activeFor(doctorID, date, slot string) int {
	return len(r.collect(func(a model.Appointment) bool {
		return a.Status.IsActive() && a.DoctorID == doctorID && a.AppointmentDate == date && a.AppointmentTime == slot
	}))
}

func matches(a model.Appointment, f model.AppointmentFilter) bool {
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.DateFrom != "" && a.AppointmentDate < f.DateFrom {
		return false
	}
	if f.DateTo != "" && a.AppointmentDate > f.DateTo {
		return false
	}
	return true
}

type memSlotLockRepo struct {
	mu    sync.Mutex
	locks map[string]time.Time

	releaseCtxErrs []error
}

func newMemSlotLockRepo() *memSlotLockRepo {
	return &memSlotLockRepo{locks: map[string]time.Time{}}
}

func (r *memSlotLockRepo) Acquire(_ context.Context, lock *model.SlotLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locks[lock.ID]; ok {
		return appterrors.ErrSlotLocked
	}
	r.locks[lock.ID] = lock.ExpiresAt
	return nil
}

// Release fails like a real store would when ctx is already done.
func (r *memSlotLockRepo) Release(ctx context.Context, lockID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseCtxErrs = append(r.releaseCtxErrs, ctx.Err())
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(r.locks, lockID)
	return nil
}

func (r *memSlotLockRepo) held() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

type fakeDoctors struct {
	byID map[string]*model.Doctor
}

func (f *fakeDoctors) FindByID(_ context.Context, id string) (*model.Doctor, error) {
	if d, ok := f.byID[id]; ok {
		return d, nil
	}
	return nil, doctorserrors.ErrNotFound
}

func (f *fakeDoctors) FindByUserID(_ context.Context, userID string) (*model.Doctor, error) {
	for _, d := range f.byID {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, doctorserrors.ErrNotFound
}

type fakeUsers struct {
	byID map[string]*model.User
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, userserrors.ErrNotFound
}

type sentEvent struct {
	kind string
	appt model.Appointment
	from model.AppointmentStatus
}

type fakeNotifier struct {
	events chan sentEvent
	err    error
}

func newFakeNotifier(err error) *fakeNotifier {
	return &fakeNotifier{events: make(chan sentEvent, 16), err: err}
}

func (n *fakeNotifier) AppointmentCreated(_ context.Context, appt *model.Appointment) error {
	n.events <- sentEvent{kind: "created", appt: *appt}
	return n.err
}

func (n *fakeNotifier) StatusChanged(_ context.Context, appt *model.Appointment, from model.AppointmentStatus) error {
	n.events <- sentEvent{kind: "status", appt: *appt, from: from}
	return n.err
}
