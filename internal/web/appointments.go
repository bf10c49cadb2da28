package web

import (
	"net/http"
	"time"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/dailylog"
)

// apiSubmit accepts a public booking request.
func (s *Server) apiSubmit(w http.ResponseWriter, r *http.Request) {
	var in appointment.Input
	if err := decode(r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := s.coord.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, a, http.StatusCreated)
}

// apiGetAppointment returns an appointment with its stays and daily logs.
func (s *Server) apiGetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := s.coord.Detail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, d, http.StatusOK)
}

func (s *Server) apiApprove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	a, err := s.coord.Approve(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, a, http.StatusOK)
}

func (s *Server) apiReject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := decode(r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := s.coord.Reject(r.Context(), actor(r), id, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, a, http.StatusOK)
}

func (s *Server) apiCheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := s.coord.CheckIn(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, o, http.StatusCreated)
}

// apiCheckOut closes an occupancy. The body may carry an RFC 3339 "at";
// without it the stay closes now.
func (s *Server) apiCheckOut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		At string `json:"at"`
	}
	if err := decode(r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}

	var at time.Time
	if req.At != "" {
		at, err = time.Parse(time.RFC3339, req.At)
		if err != nil {
			writeError(w, r, &apperr.ValidationError{Field: "at", Message: "must be an RFC 3339 timestamp"})
			return
		}
	}

	o, err := s.coord.CheckOut(r.Context(), actor(r), id, at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, o, http.StatusOK)
}

func (s *Server) apiListLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logs, err := s.coord.Logs(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []*dailylog.Entry{}
	}
	apiJSON(w, logs, http.StatusOK)
}

func (s *Server) apiAddLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in dailylog.Input
	if err := decode(r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}

	e, err := s.coord.AddDailyLog(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, e, http.StatusCreated)
}
