package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	query  string
	userID string
	role   string
	body   string
	ctype  string
}

func newServer(t *testing.T, got *captured, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = captured{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			userID: r.Header.Get("X-User-ID"),
			role:   r.Header.Get("X-User-Role"),
			body:   string(body),
			ctype:  r.Header.Get("Content-Type"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAs_SendsIdentityHeaders(t *testing.T) {
	var got captured
	srv := newServer(t, &got, http.StatusCreated, `{"data":{"id":"abc","status":"pending"}}`)

	base := NewAppointmentClient(srv.URL)
	resp, err := base.As("665f1c2a9b1e8a0012345678", "patient").Create(map[string]string{"doctor_id": "d"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "665f1c2a9b1e8a0012345678", got.userID)
	assert.Equal(t, "patient", got.role)
	assert.Equal(t, "application/json", got.ctype)
	assert.JSONEq(t, `{"doctor_id":"d"}`, got.body)

	var data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, resp.DecodeData(&data))
	assert.Equal(t, "abc", data.ID)

	_, err = base.GetByID("abc")
	require.NoError(t, err)
	assert.Empty(t, got.userID, "base client must stay anonymous")
}

func TestAppointmentClient_Paths(t *testing.T) {
	var got captured
	srv := newServer(t, &got, http.StatusOK, `{}`)
	c := NewAppointmentClient(srv.URL)

	_, err := c.CheckSlot("doc1", "2025-06-09", "10:00-11:00")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/doctors/id/doc1/slots/check", got.path)
	assert.Equal(t, "date=2025-06-09&time=10%3A00-11%3A00", got.query)

	_, err = c.SetStatus("a1", map[string]string{"status": "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/api/v1/appointments/id/a1/status", got.path)

	_, err = c.List("pending", "", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "limit=10&offset=0&status=pending", got.query)
}

func TestDoctorClient_UpdateScheduleSendsRawBody(t *testing.T) {
	var got captured
	srv := newServer(t, &got, http.StatusOK, `{}`)

	raw := []byte(`{"monday":["10:00-11:00","bad-slot"]}`)
	_, err := NewDoctorClient(srv.URL).As("u1", "doctor").UpdateSchedule(raw)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, string(raw), got.body)
}

func TestGetErrorHelpers(t *testing.T) {
	var got captured
	srv := newServer(t, &got, http.StatusConflict, `{"code":"TIME_SLOT_CONFLICT","message":"slot taken"}`)

	resp, err := NewHttpClient(srv.URL).GET("/x")
	require.NoError(t, err)
	assert.Equal(t, "TIME_SLOT_CONFLICT", GetErrorCode(resp))
	assert.Equal(t, "slot taken", GetErrorMessage(resp))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body, &raw))
}
