// Package occupancy tracks the physical presence of a pet on the premises.
package occupancy

import (
	"time"

	"github.com/google/uuid"
)

// Occupancy is one stay on site, from check-in to check-out.
type Occupancy struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	CheckedInAt   time.Time  `json:"checked_in_at"`
	CheckedInBy   string     `json:"checked_in_by"`
	CheckedOutAt  *time.Time `json:"checked_out_at,omitempty"`
	CheckedOutBy  string     `json:"checked_out_by,omitempty"`
}

// Open reports whether the pet is still on site.
func (o *Occupancy) Open() bool {
	return o.CheckedOutAt == nil
}
