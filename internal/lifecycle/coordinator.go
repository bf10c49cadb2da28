// Package lifecycle coordinates appointment status changes with the
// occupancy and daily log stores.
//
// The Coordinator is the only writer of appointment status and occupancy
// records. Every operation runs in one IMMEDIATE write transaction, so a
// precondition read and the write that depends on it cannot interleave with
// another writer. Status changes are additionally compare-and-set on the
// stored status.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/dailylog"
	"github.com/evcraddock/pawstay/internal/db"
	"github.com/evcraddock/pawstay/internal/notify"
	"github.com/evcraddock/pawstay/internal/occupancy"
)

// Actor is the staff member performing an operation.
type Actor struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

func (a Actor) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &apperr.ValidationError{Field: "actor", Message: "is required"}
	}
	return nil
}

// Coordinator enforces the appointment state machine.
type Coordinator struct {
	db      *sql.DB
	appts   *appointment.Repository
	occs    *occupancy.Repository
	logs    *dailylog.Repository
	notify  *notify.Dispatcher
	baseURL string
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNotifier sends owner notifications through d after each decision and
// check-out.
func WithNotifier(d *notify.Dispatcher) Option {
	return func(c *Coordinator) { c.notify = d }
}

// WithBaseURL sets the public URL used in notification links.
func WithBaseURL(u string) Option {
	return func(c *Coordinator) { c.baseURL = u }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) { c.tracer = tp.Tracer("pawstay/lifecycle") }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a Coordinator over an open database.
func New(d *sql.DB, opts ...Option) *Coordinator {
	c := &Coordinator{
		db:     d,
		appts:  appointment.NewRepository(d),
		occs:   occupancy.NewRepository(d),
		logs:   dailylog.NewRepository(d),
		tracer: otel.Tracer("pawstay/lifecycle"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wait blocks until pending notifications have been attempted.
func (c *Coordinator) Wait() {
	c.notify.Wait()
}

// Submit validates input and stores a new pending appointment.
func (c *Coordinator) Submit(ctx context.Context, in appointment.Input) (a *appointment.Appointment, err error) {
	ctx, span := c.start(ctx, "submit")
	defer func() { finish(span, err) }()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	a, err = appointment.Build(in, uuid.New(), c.now().UTC())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("appointment.id", a.ID.String()))

	if err := c.appts.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("submitting appointment: %w", err)
	}

	slog.Info("appointment submitted", "appointment_id", a.ID, "pet", a.PetName, "drop_off", a.DropOff, "pick_up", a.PickUp)
	return a, nil
}

// Approve moves a pending appointment to approved.
func (c *Coordinator) Approve(ctx context.Context, actor Actor, id uuid.UUID) (a *appointment.Appointment, err error) {
	ctx, span := c.start(ctx, "approve", attribute.String("appointment.id", id.String()))
	defer func() { finish(span, err) }()

	if err := actor.validate(); err != nil {
		return nil, err
	}

	err = db.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		appts := c.appts.WithTx(tx)
		cur, err := appts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status != appointment.Pending {
			return &apperr.InvalidTransitionError{ID: id.String(), Op: "approve", Status: string(cur.Status)}
		}

		a, err = c.transition(ctx, appts, cur, appointment.Change{
			From: appointment.Pending, To: appointment.Approved, By: actor.Name, At: c.now().UTC(),
		}, "approve")
		return err
	})
	if err != nil {
		return nil, err
	}

	logTransition(a.ID, actor, appointment.Pending, appointment.Approved)
	c.notify.Dispatch(notify.Approved(a))
	return a, nil
}

// Reject moves a pending or approved appointment to rejected and records the
// status it was rejected from. An approved appointment whose pet is already
// checked in cannot be rejected.
func (c *Coordinator) Reject(ctx context.Context, actor Actor, id uuid.UUID, note string) (a *appointment.Appointment, err error) {
	ctx, span := c.start(ctx, "reject", attribute.String("appointment.id", id.String()))
	defer func() { finish(span, err) }()

	if err := actor.validate(); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if len(note) > 2000 {
		return nil, &apperr.ValidationError{Field: "note", Message: "must not exceed 2000"}
	}

	var from appointment.Status
	err = db.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		appts := c.appts.WithTx(tx)
		cur, err := appts.GetByID(ctx, id)
		if err != nil {
			return err
		}

		switch cur.Status {
		case appointment.Pending:
		case appointment.Approved:
			open, err := c.occs.WithTx(tx).OpenFor(ctx, id)
			if err != nil {
				return err
			}
			if open != nil {
				return &apperr.InvalidTransitionError{ID: id.String(), Op: "reject", Status: "checked in"}
			}
		default:
			return &apperr.InvalidTransitionError{ID: id.String(), Op: "reject", Status: string(cur.Status)}
		}

		from = cur.Status
		a, err = c.transition(ctx, appts, cur, appointment.Change{
			From: cur.Status, To: appointment.Rejected, By: actor.Name, Note: note, At: c.now().UTC(),
		}, "reject")
		return err
	})
	if err != nil {
		return nil, err
	}

	logTransition(a.ID, actor, from, appointment.Rejected)
	c.notify.Dispatch(notify.Rejected(a))
	return a, nil
}

// CheckIn opens an occupancy record for an approved appointment. A second
// check-in while the first is open fails with *apperr.ConflictError.
func (c *Coordinator) CheckIn(ctx context.Context, actor Actor, id uuid.UUID) (o *occupancy.Occupancy, err error) {
	ctx, span := c.start(ctx, "check_in", attribute.String("appointment.id", id.String()))
	defer func() { finish(span, err) }()

	if err := actor.validate(); err != nil {
		return nil, err
	}

	err = db.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		cur, err := c.appts.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status != appointment.Approved {
			return &apperr.InvalidTransitionError{ID: id.String(), Op: "check in", Status: string(cur.Status)}
		}

		occs := c.occs.WithTx(tx)
		open, err := occs.OpenFor(ctx, id)
		if err != nil {
			return err
		}
		if open != nil {
			return &apperr.ConflictError{AppointmentID: id.String()}
		}

		o = &occupancy.Occupancy{
			ID:            uuid.New(),
			AppointmentID: id,
			CheckedInAt:   c.now().UTC(),
			CheckedInBy:   actor.Name,
		}
		// The partial unique index backs up the check above.
		return occs.Open(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("occupancy.id", o.ID.String()))
	slog.Info("pet checked in", "appointment_id", id, "occupancy_id", o.ID, "actor", actor.Name, "role", actor.Role)
	return o, nil
}

// CheckOut closes an open occupancy and completes its appointment in the
// same transaction. A zero at means now.
func (c *Coordinator) CheckOut(ctx context.Context, actor Actor, occupancyID uuid.UUID, at time.Time) (o *occupancy.Occupancy, err error) {
	ctx, span := c.start(ctx, "check_out", attribute.String("occupancy.id", occupancyID.String()))
	defer func() { finish(span, err) }()

	if err := actor.validate(); err != nil {
		return nil, err
	}
	// The stay closes at at; the appointment records when the change was made.
	now := c.now()
	if at.IsZero() {
		at = now
	}
	at = at.UTC()

	var a *appointment.Appointment
	err = db.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		occs := c.occs.WithTx(tx)
		cur, err := occs.GetByID(ctx, occupancyID)
		if err != nil {
			return err
		}
		if !cur.Open() {
			return &apperr.AlreadyClosedError{OccupancyID: occupancyID.String()}
		}
		if at.Before(cur.CheckedInAt) {
			return &apperr.ValidationError{Field: "at", Message: "must not be before check-in"}
		}

		if err := occs.Close(ctx, occupancyID, at, actor.Name); err != nil {
			return err
		}
		cur.CheckedOutAt = &at
		cur.CheckedOutBy = actor.Name
		o = cur

		appts := c.appts.WithTx(tx)
		parent, err := appts.GetByID(ctx, cur.AppointmentID)
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			slog.Warn("checked out occupancy of unknown appointment", "occupancy_id", occupancyID, "appointment_id", cur.AppointmentID)
			return nil
		}
		if err != nil {
			return err
		}
		if parent.Status != appointment.Approved {
			return &apperr.InvalidTransitionError{ID: parent.ID.String(), Op: "complete", Status: string(parent.Status)}
		}

		a, err = c.transition(ctx, appts, parent, appointment.Change{
			From: appointment.Approved, To: appointment.Completed, At: now,
		}, "complete")
		return err
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("appointment.id", o.AppointmentID.String()))
	slog.Info("pet checked out", "appointment_id", o.AppointmentID, "occupancy_id", o.ID, "actor", actor.Name, "role", actor.Role)
	if a != nil {
		logTransition(a.ID, actor, appointment.Approved, appointment.Completed)
		c.notify.Dispatch(notify.CheckedOut(a, c.baseURL))
	}
	return o, nil
}

// AddDailyLog appends a care entry for a checked-in pet. The open occupancy
// is checked in the same transaction as the insert.
func (c *Coordinator) AddDailyLog(ctx context.Context, actor Actor, id uuid.UUID, in dailylog.Input) (e *dailylog.Entry, err error) {
	ctx, span := c.start(ctx, "add_daily_log", attribute.String("appointment.id", id.String()))
	defer func() { finish(span, err) }()

	if err := actor.validate(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	err = db.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		open, err := c.occs.WithTx(tx).OpenFor(ctx, id)
		if err != nil {
			return err
		}
		if open == nil {
			if _, err := c.appts.WithTx(tx).GetByID(ctx, id); err != nil {
				return err
			}
			return &apperr.NotCheckedInError{AppointmentID: id.String()}
		}

		e = &dailylog.Entry{
			ID:            uuid.New(),
			AppointmentID: id,
			OccupancyID:   open.ID,
			LogDate:       in.LogDate,
			Feeding:       in.Feeding,
			Play:          in.Play,
			Walk:          in.Walk,
			Grooming:      in.Grooming,
			Mood:          dailylog.Mood(in.Mood),
			Note:          in.Note,
			Author:        actor.Name,
			CreatedAt:     c.now().UTC(),
		}
		return c.logs.WithTx(tx).Append(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("daily log added", "appointment_id", id, "log_id", e.ID, "mood", e.Mood, "actor", actor.Name)
	return e, nil
}

// Get returns an appointment.
func (c *Coordinator) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return c.appts.GetByID(ctx, id)
}

// Logs returns an appointment's daily log entries in log date order.
func (c *Coordinator) Logs(ctx context.Context, id uuid.UUID) ([]*dailylog.Entry, error) {
	if _, err := c.appts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return c.logs.ListByAppointment(ctx, id)
}

// Detail is an appointment with its stays and care log.
type Detail struct {
	Appointment *appointment.Appointment `json:"appointment"`
	CheckedIn   bool                     `json:"checked_in"`
	Occupancies []*occupancy.Occupancy   `json:"occupancies"`
	Logs        []*dailylog.Entry        `json:"logs"`
}

// Detail returns an appointment together with its occupancy records and
// daily logs.
func (c *Coordinator) Detail(ctx context.Context, id uuid.UUID) (d *Detail, err error) {
	ctx, span := c.start(ctx, "detail", attribute.String("appointment.id", id.String()))
	defer func() { finish(span, err) }()

	a, err := c.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	occs, err := c.occs.ListByAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := c.logs.ListByAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	d = &Detail{Appointment: a, Occupancies: occs, Logs: logs}
	for _, o := range occs {
		if o.Open() {
			d.CheckedIn = true
		}
	}
	return d, nil
}

// transition applies a compare-and-set status change and returns the
// updated appointment.
func (c *Coordinator) transition(ctx context.Context, appts *appointment.Repository, cur *appointment.Appointment, ch appointment.Change, op string) (*appointment.Appointment, error) {
	ok, err := appts.Transition(ctx, cur.ID, ch)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another writer; report what it left behind.
		latest, err := appts.GetByID(ctx, cur.ID)
		if err != nil {
			return nil, err
		}
		return nil, &apperr.InvalidTransitionError{ID: cur.ID.String(), Op: op, Status: string(latest.Status)}
	}
	return appts.GetByID(ctx, cur.ID)
}

func (c *Coordinator) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "lifecycle."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.Code(err))
	}
	span.End()
}

func logTransition(id uuid.UUID, actor Actor, from, to appointment.Status) {
	slog.Info("appointment transition",
		"appointment_id", id,
		"actor", actor.Name,
		"role", actor.Role,
		"from", from,
		"to", to,
	)
}
