//go:build integration

package appointments

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"medibook/pkg/client"
	"medibook/pkg/model"
	"medibook/test/integration/testutil"
)

const (
	slotA = "10:00-11:00"
	slotB = "11:00-12:00"
)

type world struct {
	appointments *client.AppointmentClient
	doctors      *client.DoctorClient
	mongo        *testutil.MongoHelper

	adminID   string
	doctorUID string
	patientID string
	otherID   string
	doctorID  string
}

func TestAppointmentsFlow(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, appointments, doctors := env.Setup(t)
	defer env.Cleanup(t, mongo)

	w := &world{appointments: appointments, doctors: doctors, mongo: mongo}
	w.adminID = mongo.SeedUser(t, "Clinic Admin", "admin@example.com", model.RoleAdmin)
	w.doctorUID = mongo.SeedUser(t, "Dr. Rahima Khan", "rahima@example.com", model.RoleDoctor)
	w.patientID = mongo.SeedUser(t, "Karim Uddin", "karim@example.com", model.RolePatient)
	w.otherID = mongo.SeedUser(t, "Tom Lee", "tom@example.com", model.RolePatient)

	t.Run("register doctor", w.testRegisterDoctor)
	t.Run("strict registration rejects bad slot", w.testRegisterRejectsBadSlot)
	t.Run("book confirm complete", w.testLifecycle)
	t.Run("concurrent booking has one winner", w.testConcurrentBooking)
	t.Run("lenient schedule update", w.testLenientScheduleUpdate)
	t.Run("missing identity", w.testMissingIdentity)
}

func nextMonday() string {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(time.DateOnly)
}

func expectStatus(t *testing.T, resp *client.Response, err error, want int) {
	t.Helper()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(resp.Body))
	}
}

func (w *world) testRegisterDoctor(t *testing.T) {
	resp, err := w.doctors.As(w.adminID, "admin").Register(map[string]any{
		"user_id":          w.doctorUID,
		"license_number":   "bmdc-10001",
		"specialization":   "Cardiology",
		"experience_years": 10,
		"consultation_fee": 1200,
		"available_timeslots": map[string][]string{
			"Monday": {"09:00-10:00", slotA, slotB},
		},
	})
	expectStatus(t, resp, err, http.StatusCreated)

	var profile model.DoctorProfile
	if err := resp.DecodeData(&profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.LicenseNumber != "BMDC10001" {
		t.Errorf("license not normalized: %q", profile.LicenseNumber)
	}
	w.doctorID = profile.ID

	resp, err = w.doctors.As(w.adminID, "admin").Register(map[string]any{
		"user_id":             w.doctorUID,
		"license_number":      "BMDC10001",
		"specialization":      "Cardiology",
		"available_timeslots": map[string][]string{"monday": {slotA}},
	})
	expectStatus(t, resp, err, http.StatusConflict)
}

func (w *world) testRegisterRejectsBadSlot(t *testing.T) {
	other := w.mongo.SeedUser(t, "Dr. Second", "second@example.com", model.RoleDoctor)
	resp, err := w.doctors.As(w.adminID, "admin").Register(map[string]any{
		"user_id":             other,
		"license_number":      "BMDC20002",
		"specialization":      "Dermatology",
		"available_timeslots": map[string][]string{"monday": {slotA, "bad-slot"}},
	})
	expectStatus(t, resp, err, http.StatusUnprocessableEntity)
	if code := client.GetErrorCode(resp); code != "VALIDATION_ERROR" {
		t.Errorf("unexpected code %s", code)
	}
}

func (w *world) testLifecycle(t *testing.T) {
	date := nextMonday()
	patient := w.appointments.As(w.patientID, "patient")
	doctor := w.appointments.As(w.doctorUID, "doctor")

	resp, err := patient.Create(map[string]string{
		"doctor_id":        w.doctorID,
		"appointment_date": date,
		"appointment_time": slotA,
	})
	expectStatus(t, resp, err, http.StatusCreated)

	var appt model.Appointment
	if err := resp.DecodeData(&appt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if appt.Status != model.StatusPending || appt.DoctorName != "Dr. Rahima Khan" {
		t.Fatalf("unexpected appointment: %+v", appt)
	}

	resp, err = w.appointments.As(w.otherID, "patient").Create(map[string]string{
		"doctor_id":        w.doctorID,
		"appointment_date": date,
		"appointment_time": slotA,
	})
	expectStatus(t, resp, err, http.StatusConflict)

	resp, err = doctor.SetStatus(appt.ID, map[string]string{"status": "confirmed"})
	expectStatus(t, resp, err, http.StatusOK)

	resp, err = patient.Cancel(appt.ID)
	expectStatus(t, resp, err, http.StatusForbidden)

	resp, err = doctor.SetStatus(appt.ID, map[string]string{"status": "completed", "prescription": "Rest"})
	expectStatus(t, resp, err, http.StatusOK)

	resp, err = doctor.SetStatus(appt.ID, map[string]string{"status": "pending"})
	expectStatus(t, resp, err, http.StatusBadRequest)

	if n := w.mongo.CountActive(t, w.doctorID, date, slotA); n != 0 {
		t.Errorf("completed appointment still holds the slot: %d", n)
	}
}

func (w *world) testConcurrentBooking(t *testing.T) {
	date := nextMonday()
	patients := []string{w.patientID, w.otherID}

	var wg sync.WaitGroup
	statuses := make([]int, len(patients))
	for i, id := range patients {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			resp, err := w.appointments.As(id, "patient").Create(map[string]string{
				"doctor_id":        w.doctorID,
				"appointment_date": date,
				"appointment_time": slotB,
			})
			if err != nil {
				t.Errorf("request failed: %v", err)
				return
			}
			statuses[i] = resp.StatusCode
		}(i, id)
	}
	wg.Wait()

	created := 0
	for _, s := range statuses {
		if s == http.StatusCreated {
			created++
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one booking, got statuses %v", statuses)
	}
	if n := w.mongo.CountActive(t, w.doctorID, date, slotB); n != 1 {
		t.Fatalf("expected one active appointment, found %d", n)
	}
}

func (w *world) testLenientScheduleUpdate(t *testing.T) {
	doctor := w.doctors.As(w.doctorUID, "doctor")

	resp, err := doctor.UpdateSchedule([]byte(`{"monday":["10:00-11:00","bad-slot"],"funday":["09:00-10:00"]}`))
	expectStatus(t, resp, err, http.StatusOK)

	var schedule model.ScheduleResponse
	if err := resp.DecodeData(&schedule); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := schedule.AvailableTimeslots
	if len(got) != 1 || len(got["monday"]) != 1 || got["monday"][0] != slotA {
		t.Fatalf("unexpected schedule: %v", got)
	}
}

func (w *world) testMissingIdentity(t *testing.T) {
	resp, err := w.appointments.Create(map[string]string{"doctor_id": w.doctorID})
	expectStatus(t, resp, err, http.StatusUnauthorized)
}
