package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/pawstay/internal/db"
	"github.com/evcraddock/pawstay/internal/lifecycle"
)

// testServer creates a server over a fresh database.
func testServer(t *testing.T, opts Options) (*Server, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	if opts.SubmitBurst == 0 {
		opts.SubmitRate = 1000
		opts.SubmitBurst = 1000
	}
	coord := lifecycle.New(d)
	t.Cleanup(coord.Wait)

	return NewServer(d, coord, opts), d
}

func apiRequest(t *testing.T, srv *Server, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	reqBody := &bytes.Buffer{}
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		r.Header.Set(ActorHeader, actor)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, code, decodeBody[errorBody](t, w).Code)
}

func bookingBody() map[string]any {
	return map[string]any{
		"owner_name":  "Ana",
		"owner_email": "ana@example.com",
		"owner_phone": "555-0100",
		"pet_name":    "Rex",
		"pet_species": "dog",
		"drop_off":    "2025-06-01",
		"pick_up":     "2025-06-03",
		"walking":     true,
	}
}

type appointmentBody struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	Nights       int     `json:"nights"`
	DecidedBy    string  `json:"decided_by"`
	DecisionNote string  `json:"decision_note"`
	RejectedFrom *string `json:"rejected_from"`
}

type occupancyBody struct {
	ID            string     `json:"id"`
	AppointmentID string     `json:"appointment_id"`
	CheckedInBy   string     `json:"checked_in_by"`
	CheckedOutAt  *time.Time `json:"checked_out_at"`
}

// submit posts a booking and returns its id.
func submit(t *testing.T, srv *Server) string {
	t.Helper()
	w := apiRequest(t, srv, "POST", "/api/appointments", "", bookingBody())
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return decodeBody[appointmentBody](t, w).ID
}

// checkIn approves and checks in a new booking and returns the appointment
// and occupancy ids.
func checkIn(t *testing.T, srv *Server) (string, string) {
	t.Helper()
	id := submit(t, srv)
	w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/approve", "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	w = apiRequest(t, srv, "POST", "/api/appointments/"+id+"/check-in", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return id, decodeBody[occupancyBody](t, w).ID
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, Options{})

	w := apiRequest(t, srv, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])
}

func TestAPILifecycle(t *testing.T) {
	srv, _ := testServer(t, Options{})

	w := apiRequest(t, srv, "POST", "/api/appointments", "", bookingBody())
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	a := decodeBody[appointmentBody](t, w)
	assert.Equal(t, "pending", a.Status)
	assert.Equal(t, 2, a.Nights)

	w = apiRequest(t, srv, "POST", "/api/appointments/"+a.ID+"/approve", "maria", nil)
	require.Equal(t, http.StatusOK, w.Code)
	approved := decodeBody[appointmentBody](t, w)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "maria", approved.DecidedBy)

	w = apiRequest(t, srv, "POST", "/api/appointments/"+a.ID+"/check-in", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	occ := decodeBody[occupancyBody](t, w)
	assert.Equal(t, a.ID, occ.AppointmentID)
	assert.Equal(t, "staff", occ.CheckedInBy)

	w = apiRequest(t, srv, "POST", "/api/appointments/"+a.ID+"/logs", "", map[string]any{
		"log_date": "2025-06-01",
		"feeding":  "ate all breakfast",
		"mood":     "Playful",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "playful", decodeBody[map[string]any](t, w)["mood"])

	w = apiRequest(t, srv, "GET", "/api/appointments/"+a.ID+"/logs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, w), 1)

	at := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	w = apiRequest(t, srv, "POST", "/api/occupancies/"+occ.ID+"/check-out", "", map[string]any{
		"at": at.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	out := decodeBody[occupancyBody](t, w)
	require.NotNil(t, out.CheckedOutAt)
	assert.True(t, out.CheckedOutAt.Equal(at))

	w = apiRequest(t, srv, "GET", "/api/appointments/"+a.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeBody[struct {
		Appointment appointmentBody  `json:"appointment"`
		CheckedIn   bool             `json:"checked_in"`
		Occupancies []occupancyBody  `json:"occupancies"`
		Logs        []map[string]any `json:"logs"`
	}](t, w)
	assert.Equal(t, "completed", detail.Appointment.Status)
	assert.False(t, detail.CheckedIn)
	assert.Len(t, detail.Occupancies, 1)
	assert.Len(t, detail.Logs, 1)

	w = apiRequest(t, srv, "GET", "/api/dashboard/history?status=completed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeBody[[]map[string]any](t, w)
	require.Len(t, history, 1)
	assert.Equal(t, a.ID, history[0]["id"])
}

func TestAPISubmitValidation(t *testing.T) {
	srv, _ := testServer(t, Options{})

	tests := []struct {
		name  string
		patch map[string]any
		field string
	}{
		{"missing owner", map[string]any{"owner_name": ""}, "owner_name"},
		{"bad email", map[string]any{"owner_email": "not-an-email"}, "owner_email"},
		{"bad date", map[string]any{"drop_off": "June 1"}, "drop_off"},
		{"reversed stay", map[string]any{"pick_up": "2025-05-30"}, "pick_up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := bookingBody()
			for k, v := range tt.patch {
				body[k] = v
			}
			w := apiRequest(t, srv, "POST", "/api/appointments", "", body)
			requireError(t, w, http.StatusBadRequest, "validation")
			assert.True(t, strings.HasPrefix(decodeBody[errorBody](t, w).Error, tt.field))
		})
	}
}

func TestAPIInvalidJSON(t *testing.T) {
	srv, _ := testServer(t, Options{})

	r := httptest.NewRequest("POST", "/api/appointments", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	requireError(t, w, http.StatusBadRequest, "validation")

	w = apiRequest(t, srv, "POST", "/api/appointments", "", map[string]any{"surprise": 1})
	requireError(t, w, http.StatusBadRequest, "validation")
}

func TestAPIErrorMapping(t *testing.T) {
	srv, _ := testServer(t, Options{})
	unknown := "6f1c2a52-95a4-4d38-9c6b-1f1a8d3e0c11"

	t.Run("malformed id", func(t *testing.T) {
		w := apiRequest(t, srv, "POST", "/api/appointments/42/approve", "", nil)
		requireError(t, w, http.StatusBadRequest, "validation")
	})

	t.Run("unknown appointment", func(t *testing.T) {
		w := apiRequest(t, srv, "POST", "/api/appointments/"+unknown+"/approve", "", nil)
		requireError(t, w, http.StatusNotFound, "not_found")
		w = apiRequest(t, srv, "GET", "/api/appointments/"+unknown, "", nil)
		requireError(t, w, http.StatusNotFound, "not_found")
		w = apiRequest(t, srv, "GET", "/api/appointments/"+unknown+"/logs", "", nil)
		requireError(t, w, http.StatusNotFound, "not_found")
	})

	t.Run("unknown occupancy", func(t *testing.T) {
		w := apiRequest(t, srv, "POST", "/api/occupancies/"+unknown+"/check-out", "", nil)
		requireError(t, w, http.StatusNotFound, "not_found")
	})

	t.Run("approve twice", func(t *testing.T) {
		id := submit(t, srv)
		w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/approve", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = apiRequest(t, srv, "POST", "/api/appointments/"+id+"/approve", "", nil)
		requireError(t, w, http.StatusConflict, "invalid_transition")
	})

	t.Run("check in pending", func(t *testing.T) {
		id := submit(t, srv)
		w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/check-in", "", nil)
		requireError(t, w, http.StatusConflict, "invalid_transition")
	})

	t.Run("double check in", func(t *testing.T) {
		id, _ := checkIn(t, srv)
		w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/check-in", "", nil)
		requireError(t, w, http.StatusConflict, "conflict")
	})

	t.Run("reject while checked in", func(t *testing.T) {
		id, _ := checkIn(t, srv)
		w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/reject", "", map[string]any{"note": "changed plans"})
		requireError(t, w, http.StatusConflict, "invalid_transition")
	})

	t.Run("double check out", func(t *testing.T) {
		id, occID := checkIn(t, srv)
		w := apiRequest(t, srv, "POST", "/api/occupancies/"+occID+"/check-out", "", nil)
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
		first := decodeBody[map[string]any](t, w)

		w = apiRequest(t, srv, "POST", "/api/occupancies/"+occID+"/check-out", "",
			map[string]any{"at": "2099-01-01T10:00:00Z"})
		requireError(t, w, http.StatusConflict, "already_closed")

		w = apiRequest(t, srv, "GET", "/api/appointments/"+id, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decodeBody[struct {
			Occupancies []map[string]any `json:"occupancies"`
		}](t, w)
		require.Len(t, detail.Occupancies, 1)
		want, err := time.Parse(time.RFC3339Nano, first["checked_out_at"].(string))
		require.NoError(t, err)
		got, err := time.Parse(time.RFC3339Nano, detail.Occupancies[0]["checked_out_at"].(string))
		require.NoError(t, err)
		assert.True(t, got.Equal(want), "close time moved from %v to %v", want, got)
	})

	t.Run("bad check out time", func(t *testing.T) {
		_, occID := checkIn(t, srv)
		w := apiRequest(t, srv, "POST", "/api/occupancies/"+occID+"/check-out", "", map[string]any{"at": "tomorrow"})
		requireError(t, w, http.StatusBadRequest, "validation")
	})

	t.Run("log without check in", func(t *testing.T) {
		id := submit(t, srv)
		w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/logs", "", map[string]any{
			"log_date": "2025-06-01",
			"mood":     "calm",
		})
		requireError(t, w, http.StatusConflict, "not_checked_in")
	})

	t.Run("unknown route", func(t *testing.T) {
		w := apiRequest(t, srv, "GET", "/api/nope", "", nil)
		requireError(t, w, http.StatusNotFound, "not_found")
	})

	t.Run("wrong method", func(t *testing.T) {
		w := apiRequest(t, srv, "DELETE", "/api/dashboard/pending", "", nil)
		requireError(t, w, http.StatusMethodNotAllowed, "method_not_allowed")
	})
}

func TestAPIReject(t *testing.T) {
	srv, _ := testServer(t, Options{})

	tests := []struct {
		name    string
		approve bool
		from    string
	}{
		{"from pending", false, "pending"},
		{"from approved", true, "approved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := submit(t, srv)
			if tt.approve {
				w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/approve", "", nil)
				require.Equal(t, http.StatusOK, w.Code)
			}

			w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/reject", "lee", map[string]any{"note": "fully booked"})
			require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
			a := decodeBody[appointmentBody](t, w)
			assert.Equal(t, "rejected", a.Status)
			assert.Equal(t, "fully booked", a.DecisionNote)
			assert.Equal(t, "lee", a.DecidedBy)
			require.NotNil(t, a.RejectedFrom)
			assert.Equal(t, tt.from, *a.RejectedFrom)
		})
	}

	t.Run("empty body", func(t *testing.T) {
		id := submit(t, srv)
		w := apiRequest(t, srv, "POST", "/api/appointments/"+id+"/reject", "", nil)
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	})
}

func TestAPISubmitRateLimit(t *testing.T) {
	srv, _ := testServer(t, Options{SubmitRate: 0.001, SubmitBurst: 2})

	for i := 0; i < 2; i++ {
		w := apiRequest(t, srv, "POST", "/api/appointments", "", bookingBody())
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := apiRequest(t, srv, "POST", "/api/appointments", "", bookingBody())
	requireError(t, w, http.StatusTooManyRequests, "rate_limited")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// Staff operations are not limited.
	w = apiRequest(t, srv, "GET", "/api/dashboard/pending", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIDashboardViews(t *testing.T) {
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	srv, _ := testServer(t, Options{Now: func() time.Time { return now }})

	pendingID := submit(t, srv)
	upcomingID := submit(t, srv)
	w := apiRequest(t, srv, "POST", "/api/appointments/"+upcomingID+"/approve", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	presentID, occID := checkIn(t, srv)

	w = apiRequest(t, srv, "GET", "/api/dashboard/pending", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decodeBody[[]map[string]any](t, w)
	require.Len(t, pending, 1)
	assert.Equal(t, pendingID, pending[0]["id"])

	w = apiRequest(t, srv, "GET", "/api/dashboard/upcoming", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	upcoming := decodeBody[[]map[string]any](t, w)
	require.Len(t, upcoming, 1)
	assert.Equal(t, upcomingID, upcoming[0]["id"])

	w = apiRequest(t, srv, "GET", "/api/dashboard/upcoming?date=2025-06-02", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]map[string]any](t, w))

	w = apiRequest(t, srv, "GET", "/api/dashboard/upcoming?date=06/02/2025", "", nil)
	requireError(t, w, http.StatusBadRequest, "validation")

	w = apiRequest(t, srv, "GET", "/api/dashboard/occupants", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	occupants := decodeBody[[]map[string]any](t, w)
	require.Len(t, occupants, 1)
	assert.Equal(t, occID, occupants[0]["occupancy_id"])
	assert.Equal(t, presentID, occupants[0]["appointment_id"])

	w = apiRequest(t, srv, "GET", "/api/dashboard/history?status=pending", "", nil)
	requireError(t, w, http.StatusBadRequest, "validation")
	w = apiRequest(t, srv, "GET", "/api/dashboard/history?status=bogus", "", nil)
	requireError(t, w, http.StatusBadRequest, "validation")
}

func TestAPIReviews(t *testing.T) {
	srv, _ := testServer(t, Options{})
	apptID := submit(t, srv)

	w := apiRequest(t, srv, "POST", "/api/reviews", "", map[string]any{
		"appointment_id": apptID,
		"rating":         5,
		"comment":        "Rex came home happy, great staff",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	good := decodeBody[map[string]any](t, w)
	assert.Equal(t, "good", good["sentiment"])
	assert.Equal(t, "Ana", good["owner_name"])
	assert.Equal(t, true, good["walking"])

	w = apiRequest(t, srv, "POST", "/api/reviews", "", map[string]any{
		"owner_name": "Bo",
		"rating":     1,
		"comment":    "dirty and rude",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	bad := decodeBody[map[string]any](t, w)
	assert.Equal(t, "bad", bad["sentiment"])

	w = apiRequest(t, srv, "POST", "/api/reviews", "", map[string]any{"owner_name": "Cy", "rating": 9})
	requireError(t, w, http.StatusBadRequest, "validation")

	w = apiRequest(t, srv, "GET", "/api/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, w), 2)

	w = apiRequest(t, srv, "GET", "/api/reviews?sentiment=Good", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	filtered := decodeBody[[]map[string]any](t, w)
	require.Len(t, filtered, 1)
	assert.Equal(t, good["id"], filtered[0]["id"])

	w = apiRequest(t, srv, "GET", "/api/reviews?sentiment=meh", "", nil)
	requireError(t, w, http.StatusBadRequest, "validation")

	id := bad["id"].(string)
	w = apiRequest(t, srv, "DELETE", "/api/reviews/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody[map[string]any](t, w)["removed"])

	w = apiRequest(t, srv, "DELETE", "/api/reviews/"+id, "", nil)
	requireError(t, w, http.StatusNotFound, "not_found")
}

func TestAPIExportReviews(t *testing.T) {
	srv, _ := testServer(t, Options{})

	w := apiRequest(t, srv, "POST", "/api/reviews", "", map[string]any{
		"owner_name": "Ana",
		"pet_name":   "Rex",
		"rating":     5,
		"comment":    "wonderful",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	w = apiRequest(t, srv, "GET", "/api/reviews/export?format=csv&sentiment=good", "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pawstay-reviews-good.csv")
	assert.Contains(t, w.Body.String(), "Rex")

	w = apiRequest(t, srv, "GET", "/api/reviews/export", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	w = apiRequest(t, srv, "GET", "/api/reviews/export?format=pdf", "", nil)
	requireError(t, w, http.StatusBadRequest, "validation")
}

func TestCORS(t *testing.T) {
	srv, _ := testServer(t, Options{AllowedOrigins: []string{"https://desk.example.com"}})

	r := httptest.NewRequest("OPTIONS", "/api/dashboard/pending", nil)
	r.Header.Set("Origin", "https://desk.example.com")
	r.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	assert.Equal(t, "https://desk.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest("GET", "/api/dashboard/pending", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
