package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/aapkitaxi/service-booking/internal/domain"
)

// Booking is the aggregate root for the booking domain. A booking is created
// pending by a customer request and moved to confirmed or rejected by an
// operator; it is never deleted.
type Booking struct {
	id        int64
	name      string
	phone     string
	pickup    string
	drop      string
	datetime  string
	seats     int
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// Seat count bounds for a single taxi.
const (
	MinSeats = 1
	MaxSeats = 6
)

// NewBooking creates a new pending Booking with the given allocator-assigned
// id. String fields are trimmed; datetime is stored verbatim and not
// validated for parseability.
func NewBooking(id int64, name, phone, pickup, drop, datetime string, seats int) (*Booking, error) {
	if id < 1 {
		return nil, domain.NewValidationError("booking id must be positive")
	}
	if missing := missingFields(name, phone, pickup, drop, datetime); len(missing) > 0 {
		return nil, domain.NewValidationError(
			fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
	}
	if seats < MinSeats || seats > MaxSeats {
		return nil, domain.NewValidationError(
			fmt.Sprintf("Seats must be between %d and %d", MinSeats, MaxSeats))
	}

	now := time.Now().UTC()
	return &Booking{
		id:        id,
		name:      strings.TrimSpace(name),
		phone:     strings.TrimSpace(phone),
		pickup:    strings.TrimSpace(pickup),
		drop:      strings.TrimSpace(drop),
		datetime:  datetime,
		seats:     seats,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func missingFields(name, phone, pickup, drop, datetime string) []string {
	var missing []string
	for _, f := range []struct {
		field string
		value string
	}{
		{"name", name},
		{"phone", phone},
		{"pickup", pickup},
		{"drop", drop},
		{"datetime", datetime},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.field)
		}
	}
	return missing
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id int64,
	name, phone, pickup, drop, datetime string,
	seats int,
	status Status,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		name:      name,
		phone:     phone,
		pickup:    pickup,
		drop:      drop,
		datetime:  datetime,
		seats:     seats,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the booking's sequential identifier.
func (b *Booking) ID() int64 { return b.id }

// Name returns the customer name.
func (b *Booking) Name() string { return b.name }

// Phone returns the customer phone number as submitted.
func (b *Booking) Phone() string { return b.phone }

// Pickup returns the pickup location.
func (b *Booking) Pickup() string { return b.pickup }

// Drop returns the drop location.
func (b *Booking) Drop() string { return b.drop }

// Datetime returns the requested ride time as submitted by the caller.
func (b *Booking) Datetime() string { return b.datetime }

// Seats returns the requested seat count.
func (b *Booking) Seats() int { return b.seats }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// ApplyStatus moves the booking to the given status and refreshes updatedAt.
// Any known status is reachable from any other; the operator dashboard relies
// on being able to re-decide a booking.
func (b *Booking) ApplyStatus(status Status) error {
	if !status.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("Invalid status: %s", status))
	}
	b.status = status
	b.updatedAt = time.Now().UTC()
	return nil
}
