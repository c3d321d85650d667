package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/aapkitaxi/service-booking/internal/domain"
	bookingDomain "github.com/aapkitaxi/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table. DROP is a reserved
// word in SQL, so the drop location lives in the drop_location column; the
// external field name stays "drop" everywhere above this layer.
type BookingModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"not null;size:100"`
	Phone     string    `gorm:"not null;size:20;index"`
	Pickup    string    `gorm:"not null;size:200"`
	Drop      string    `gorm:"column:drop_location;not null;size:200"`
	Datetime  string    `gorm:"column:datetime;not null;size:40"`
	Seats     int       `gorm:"not null"`
	Status    string    `gorm:"not null;size:20;index"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the relational implementation of
// booking.Repository. It works unchanged over SQLite and PostgreSQL.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Insert persists a new booking under its pre-assigned id. The primary key
// constraint rejects a duplicate id from a concurrent create.
func (r *GormBookingRepository) Insert(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// ListAll retrieves every booking ordered by creation time descending.
func (r *GormBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings, nil
}

// FindByID retrieves a booking by its identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find booking by id: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByIDAndPhone retrieves a booking only when both id and phone match.
func (r *GormBookingRepository) FindByIDAndPhone(ctx context.Context, id int64, phone string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ? AND phone = ?", id, phone).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find booking by id and phone: %w", err)
	}
	return toDomainBooking(&model), nil
}

// UpdateStatus sets the booking's status and refreshes updated_at, reporting
// whether a row was changed.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id int64, status bookingDomain.Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status.String(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MaxID returns the highest stored booking id, or 0 on an empty table.
func (r *GormBookingRepository) MaxID(ctx context.Context) (int64, error) {
	var max int64
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("failed to read max booking id: %w", err)
	}
	return max, nil
}

// Ping probes the underlying database connection.
func (r *GormBookingRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --- Conversion Helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        b.ID(),
		Name:      b.Name(),
		Phone:     b.Phone(),
		Pickup:    b.Pickup(),
		Drop:      b.Drop(),
		Datetime:  b.Datetime(),
		Seats:     b.Seats(),
		Status:    b.Status().String(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		m.ID,
		m.Name,
		m.Phone,
		m.Pickup,
		m.Drop,
		m.Datetime,
		m.Seats,
		bookingDomain.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}
