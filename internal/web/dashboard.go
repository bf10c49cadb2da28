package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/dashboard"
	"github.com/evcraddock/pawstay/internal/report"
	"github.com/evcraddock/pawstay/internal/review"
)

func (s *Server) apiPending(w http.ResponseWriter, r *http.Request) {
	rows, err := s.dash.Pending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, rows, http.StatusOK)
}

// apiUpcoming lists approved stays from ?date= onward. Without a date the
// server's current day is used.
func (s *Server) apiUpcoming(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.now().Format(appointment.DateLayout)
	}

	rows, err := s.dash.Upcoming(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, rows, http.StatusOK)
}

func (s *Server) apiOccupants(w http.ResponseWriter, r *http.Request) {
	rows, err := s.dash.Occupants(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, rows, http.StatusOK)
}

func (s *Server) apiHistory(w http.ResponseWriter, r *http.Request) {
	var f dashboard.HistoryFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := appointment.ParseStatus(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f.Status = st
	}

	rows, err := s.dash.History(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, rows, http.StatusOK)
}

func (s *Server) apiListReviews(w http.ResponseWriter, r *http.Request) {
	filter, err := review.ParseSentiment(r.URL.Query().Get("sentiment"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := s.dash.Reviews(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, rows, http.StatusOK)
}

func (s *Server) apiCreateReview(w http.ResponseWriter, r *http.Request) {
	var in review.Input
	if err := decode(r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}

	rv, err := s.reviews.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, rv, http.StatusCreated)
}

// apiDeleteReview removes a review. Staff may delete any review.
func (s *Server) apiDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.reviews.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"id": id, "removed": true}, http.StatusOK)
}

// apiExportReviews renders the filtered Reviews view as a downloadable
// report.
func (s *Server) apiExportReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := review.ParseSentiment(q.Get("sentiment"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := report.ForFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, &apperr.ValidationError{Field: "format", Message: err.Error()})
		return
	}

	art, err := s.dash.Export(r.Context(), filter, exp)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Body); err != nil {
		slog.Warn("writing export", "error", err)
	}
}
