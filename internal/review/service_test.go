package review

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/db"
	"github.com/evcraddock/pawstay/internal/sentiment"
)

type fixture struct {
	svc   *Service
	appts *appointment.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	appts := appointment.NewRepository(d)
	svc := NewService(NewRepository(d), appts)
	clock := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return &fixture{svc: svc, appts: appts}
}

func (f *fixture) appointment(t *testing.T) *appointment.Appointment {
	t.Helper()
	a, err := appointment.Build(appointment.Input{
		OwnerName:  "Ana",
		OwnerEmail: "ana@example.com",
		PetName:    "Rex",
		PetSpecies: "dog",
		DropOff:    "2025-06-01",
		PickUp:     "2025-06-03",
		Walking:    true,
	}, uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.appts.Insert(context.Background(), a))
	return a
}

func TestCreateClassifiesSentiment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	good, err := f.svc.Create(ctx, Input{OwnerName: "Ana", Rating: 5, Comment: "Wonderful, friendly staff!"})
	require.NoError(t, err)
	assert.Equal(t, sentiment.Good, good.Sentiment)

	bad, err := f.svc.Create(ctx, Input{OwnerName: "Ben", Rating: 1})
	require.NoError(t, err)
	assert.Equal(t, sentiment.Bad, bad.Sentiment)

	stored, err := f.svc.repo.GetByID(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, sentiment.Good, stored.Sentiment)
	assert.Equal(t, "Wonderful, friendly staff!", stored.Comment)
}

func TestCreateCopiesAppointmentFields(t *testing.T) {
	f := newFixture(t)
	a := f.appointment(t)

	rv, err := f.svc.Create(context.Background(), Input{AppointmentID: a.ID.String(), Rating: 4})
	require.NoError(t, err)

	require.NotNil(t, rv.AppointmentID)
	assert.Equal(t, a.ID, *rv.AppointmentID)
	assert.Equal(t, "Ana", rv.OwnerName)
	assert.Equal(t, "Rex", rv.PetName)
	assert.Equal(t, "dog", rv.PetSpecies)
	assert.True(t, rv.Walking)
	assert.False(t, rv.Grooming)
}

func TestCreateExplicitFieldsWin(t *testing.T) {
	f := newFixture(t)
	a := f.appointment(t)
	no := false

	rv, err := f.svc.Create(context.Background(), Input{
		AppointmentID: a.ID.String(),
		OwnerName:     "Ana Lopez",
		Walking:       &no,
		Rating:        3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", rv.OwnerName)
	assert.Equal(t, "Rex", rv.PetName)
	assert.False(t, rv.Walking)
}

func TestCreateUnknownAppointmentIsSoftReference(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()

	rv, err := f.svc.Create(context.Background(), Input{AppointmentID: missing.String(), OwnerName: "Ana", Rating: 3})
	require.NoError(t, err)
	require.NotNil(t, rv.AppointmentID)
	assert.Equal(t, missing, *rv.AppointmentID)
	assert.Empty(t, rv.PetName)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		wantField string
	}{
		{"rating zero", Input{OwnerName: "Ana", Rating: 0}, "rating"},
		{"rating six", Input{OwnerName: "Ana", Rating: 6}, "rating"},
		{"bad appointment id", Input{AppointmentID: "nope", OwnerName: "Ana", Rating: 3}, "appointment_id"},
		{"no owner and no appointment", Input{Rating: 3}, "owner_name"},
		{"no owner and unknown appointment", Input{AppointmentID: "6f1c2d3e-4a5b-4c6d-8e7f-901234567890", Rating: 3}, "owner_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), tt.in)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, Input{OwnerName: "Ana", Rating: 5})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, Input{OwnerName: "Ben", Rating: 1})
	require.NoError(t, err)
	third, err := f.svc.Create(ctx, Input{OwnerName: "Cy", Rating: 4})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, first.ID, all[2].ID)

	good, err := f.svc.List(ctx, sentiment.Good)
	require.NoError(t, err)
	require.Len(t, good, 2)

	require.NoError(t, f.svc.Delete(ctx, second.ID))
	bad, err := f.svc.List(ctx, sentiment.Bad)
	require.NoError(t, err)
	assert.Empty(t, bad)

	var nf *apperr.NotFoundError
	assert.ErrorAs(t, f.svc.Delete(ctx, second.ID), &nf)
}

func TestParseSentiment(t *testing.T) {
	got, err := ParseSentiment("")
	require.NoError(t, err)
	assert.Equal(t, sentiment.Sentiment(""), got)

	got, err = ParseSentiment("GOOD")
	require.NoError(t, err)
	assert.Equal(t, sentiment.Good, got)

	_, err = ParseSentiment("meh")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}
