package notify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/evcraddock/pawstay/internal/appointment"
)

// Approved builds the owner message for an approved appointment.
func Approved(a *appointment.Appointment) Message {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", a.OwnerName)
	fmt.Fprintf(&buf, "Good news! %s's stay is confirmed.\n\n", a.PetName)
	writeStay(&buf, a)
	fmt.Fprintf(&buf, "\nSee you on %s!\n", a.DropOff)

	return Message{
		To:      a.OwnerEmail,
		ToName:  a.OwnerName,
		Subject: fmt.Sprintf("Pawstay: %s's stay is confirmed", a.PetName),
		Body:    buf.String(),
	}
}

// Rejected builds the owner message for a rejected appointment.
func Rejected(a *appointment.Appointment) Message {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", a.OwnerName)
	fmt.Fprintf(&buf, "Unfortunately we can't take %s for the requested stay.\n\n", a.PetName)
	writeStay(&buf, a)
	if a.DecisionNote != "" {
		fmt.Fprintf(&buf, "\nNote from our staff: %s\n", a.DecisionNote)
	}
	fmt.Fprintf(&buf, "\nWe hope to see you another time.\n")

	return Message{
		To:      a.OwnerEmail,
		ToName:  a.OwnerName,
		Subject: fmt.Sprintf("Pawstay: update on %s's stay", a.PetName),
		Body:    buf.String(),
	}
}

// CheckedOut builds the owner message sent when a stay ends. It invites a
// review at baseURL.
func CheckedOut(a *appointment.Appointment, baseURL string) Message {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", a.OwnerName)
	fmt.Fprintf(&buf, "%s has been checked out. Thanks for staying with us!\n\n", a.PetName)
	if baseURL != "" {
		fmt.Fprintf(&buf, "Tell us how it went:\n%s/reviews/new?appointment_id=%s\n",
			strings.TrimRight(baseURL, "/"), a.ID)
	}

	return Message{
		To:      a.OwnerEmail,
		ToName:  a.OwnerName,
		Subject: fmt.Sprintf("Pawstay: %s is on the way home", a.PetName),
		Body:    buf.String(),
	}
}

func writeStay(buf *bytes.Buffer, a *appointment.Appointment) {
	fmt.Fprintf(buf, "   Pet:      %s (%s)\n", a.PetName, a.PetSpecies)
	fmt.Fprintf(buf, "   Stay:     %s to %s (%d %s)\n", a.DropOff, a.PickUp, a.Nights, plural(a.Nights, "night", "nights"))

	var services []string
	if a.Grooming {
		services = append(services, "grooming")
	}
	if a.Walking {
		services = append(services, "walking")
	}
	if len(services) > 0 {
		fmt.Fprintf(buf, "   Services: %s\n", strings.Join(services, ", "))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
