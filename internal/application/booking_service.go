package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aapkitaxi/service-booking/internal/domain"
	bookingDomain "github.com/aapkitaxi/service-booking/internal/domain/booking"
	"github.com/aapkitaxi/service-booking/internal/events"
	"github.com/aapkitaxi/service-booking/internal/notification"
)

// CreateBookingRequest holds the data needed to create a new booking. Seats
// is a pointer so an absent field can be told apart from an explicit zero.
type CreateBookingRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Pickup   string `json:"pickup"`
	Drop     string `json:"drop"`
	Datetime string `json:"datetime"`
	Seats    *int   `json:"seats"`
}

// BookingDTO is the wire representation of a booking.
type BookingDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Pickup    string `json:"pickup"`
	Drop      string `json:"drop"`
	Datetime  string `json:"datetime"`
	Seats     int    `json:"seats"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateBookingResult is returned after a successful create.
type CreateBookingResult struct {
	BookingID int64
	Message   string
	SMSSent   bool
	Booking   BookingDTO
}

// UpdateStatusResult is returned after a successful status update.
type UpdateStatusResult struct {
	Message string
	SMSSent bool
}

// BookingService orchestrates validation, id allocation, persistence and
// customer notification for bookings.
type BookingService struct {
	repo      bookingDomain.Repository
	allocator *IDAllocator
	notifier  notification.Notifier
	producer  *events.Producer
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. producer may be nil when
// event publishing is not configured.
func NewBookingService(
	repo bookingDomain.Repository,
	allocator *IDAllocator,
	notifier notification.Notifier,
	producer *events.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		allocator: allocator,
		notifier:  notifier,
		producer:  producer,
		logger:    logger,
	}
}

// CreateBooking validates the request, persists a new pending booking and
// attempts a confirmation SMS. Notification failure never fails the create.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	if missing := missingRequestFields(req); len(missing) > 0 {
		return nil, domain.NewValidationError(
			fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
	}
	if *req.Seats < bookingDomain.MinSeats || *req.Seats > bookingDomain.MaxSeats {
		return nil, domain.NewValidationError(
			fmt.Sprintf("Seats must be between %d and %d", bookingDomain.MinSeats, bookingDomain.MaxSeats))
	}

	id := s.allocator.NextID(ctx)

	b, err := bookingDomain.NewBooking(id, req.Name, req.Phone, req.Pickup, req.Drop, req.Datetime, *req.Seats)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, b); err != nil {
		return nil, domain.NewUnavailableError("storage", err)
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", b.ID()),
		zap.String("pickup", b.Pickup()),
		zap.String("drop", b.Drop()),
	)

	smsSent := s.notifier.Send(b.Phone(), createdMessage(b))

	s.publishCreated(ctx, b, smsSent)

	return &CreateBookingResult{
		BookingID: b.ID(),
		Message:   "Booking created successfully",
		SMSSent:   smsSent,
		Booking:   toBookingDTO(b),
	}, nil
}

// ListBookings returns every booking, newest first.
func (s *BookingService) ListBookings(ctx context.Context) ([]BookingDTO, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewUnavailableError("storage", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos, nil
}

// UpdateStatus applies an operator decision to a booking and notifies the
// customer. Any of the known statuses is accepted regardless of the current
// one; a move back to pending sends no SMS.
func (s *BookingService) UpdateStatus(ctx context.Context, id int64, rawStatus string) (*UpdateStatusResult, error) {
	status, err := bookingDomain.ParseStatus(rawStatus)
	if err != nil {
		return nil, domain.NewValidationError("Invalid status")
	}

	modified, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, domain.NewUnavailableError("storage", err)
	}
	if !modified {
		return nil, domain.NewNotFoundError("Booking", fmt.Sprintf("%d", id))
	}

	s.logger.Info("booking status updated",
		zap.Int64("booking_id", id),
		zap.String("status", status.String()),
	)

	smsSent := false
	if msg := transitionMessage(id, status); msg != "" {
		if b, err := s.repo.FindByID(ctx, id); err == nil {
			smsSent = s.notifier.Send(b.Phone(), msg)
		} else {
			s.logger.Error("failed to load booking for notification",
				zap.Int64("booking_id", id),
				zap.Error(err),
			)
		}
	}

	s.publishStatusChanged(ctx, id, status, smsSent)

	return &UpdateStatusResult{
		Message: fmt.Sprintf("Booking %d updated to %s", id, status),
		SMSSent: smsSent,
	}, nil
}

// CheckStatus returns the booking with the given id only when the phone
// number matches exactly what was submitted at creation.
func (s *BookingService) CheckStatus(ctx context.Context, id int64, phone string) (*BookingDTO, error) {
	b, err := s.repo.FindByIDAndPhone(ctx, id, strings.TrimSpace(phone))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, domain.NewUnavailableError("storage", err)
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// PingStorage probes the backing store for the health endpoint.
func (s *BookingService) PingStorage(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// NotificationEnabled reports whether the SMS channel is live.
func (s *BookingService) NotificationEnabled() bool {
	return s.notifier.Enabled()
}

func missingRequestFields(req CreateBookingRequest) []string {
	var missing []string
	for _, f := range []struct {
		field string
		empty bool
	}{
		{"name", strings.TrimSpace(req.Name) == ""},
		{"phone", strings.TrimSpace(req.Phone) == ""},
		{"pickup", strings.TrimSpace(req.Pickup) == ""},
		{"drop", strings.TrimSpace(req.Drop) == ""},
		{"datetime", strings.TrimSpace(req.Datetime) == ""},
		{"seats", req.Seats == nil},
	} {
		if f.empty {
			missing = append(missing, f.field)
		}
	}
	return missing
}

// createdMessage composes the short confirmation sent right after a booking
// is stored. Kept terse for trial SMS limits.
func createdMessage(b *bookingDomain.Booking) string {
	return fmt.Sprintf("Taxi booked! ID:%d %s to %s %s Seats:%d Confirmation soon!",
		b.ID(), b.Pickup(), b.Drop(), formatRideTime(b.Datetime()), b.Seats())
}

// transitionMessage returns the customer-facing text for an operator
// decision, or "" when the transition carries no notification.
func transitionMessage(id int64, status bookingDomain.Status) string {
	switch status {
	case bookingDomain.StatusConfirmed:
		return fmt.Sprintf("Booking #%d CONFIRMED! Driver will contact you soon.", id)
	case bookingDomain.StatusRejected:
		return fmt.Sprintf("Booking #%d could not be confirmed. Please try again.", id)
	default:
		return ""
	}
}

// formatRideTime renders the caller-supplied datetime for the SMS body. The
// stored value is verbatim caller input, so an unparseable string is used
// as-is.
func formatRideTime(datetime string) string {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.Parse(layout, datetime); err == nil {
			return t.Format("02 Jan 03:04PM")
		}
	}
	return datetime
}

func (s *BookingService) publishCreated(ctx context.Context, b *bookingDomain.Booking, smsSent bool) {
	if s.producer == nil {
		return
	}
	s.producer.Publish(ctx, events.BookingCreated, fmt.Sprintf("%d", b.ID()), events.BookingCreatedEvent{
		BookingID:  b.ID(),
		Pickup:     b.Pickup(),
		Drop:       b.Drop(),
		Datetime:   b.Datetime(),
		Seats:      b.Seats(),
		SMSSent:    smsSent,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *BookingService) publishStatusChanged(ctx context.Context, id int64, status bookingDomain.Status, smsSent bool) {
	if s.producer == nil {
		return
	}
	s.producer.Publish(ctx, events.BookingStatusChanged, fmt.Sprintf("%d", id), events.BookingStatusChangedEvent{
		BookingID:  id,
		Status:     status.String(),
		SMSSent:    smsSent,
		OccurredAt: time.Now().UTC(),
	})
}

func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:        b.ID(),
		Name:      b.Name(),
		Phone:     b.Phone(),
		Pickup:    b.Pickup(),
		Drop:      b.Drop(),
		Datetime:  b.Datetime(),
		Seats:     b.Seats(),
		Status:    b.Status().String(),
		CreatedAt: b.CreatedAt().Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt().Format(time.RFC3339),
	}
}
