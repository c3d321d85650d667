package application

import (
	"context"

	"go.uber.org/zap"

	bookingDomain "github.com/aapkitaxi/service-booking/internal/domain/booking"
)

// IDAllocator computes the next booking identifier from the current contents
// of the store: highest stored id plus one, or 1 when the store is empty or
// unreadable.
//
// The read and the subsequent insert are two separate operations, so two
// concurrent creates can compute the same id. The store's uniqueness
// constraint on id makes the second insert fail instead of corrupting the
// store.
type IDAllocator struct {
	repo   bookingDomain.Repository
	logger *zap.Logger
}

// NewIDAllocator creates an IDAllocator over the given repository.
func NewIDAllocator(repo bookingDomain.Repository, logger *zap.Logger) *IDAllocator {
	return &IDAllocator{repo: repo, logger: logger}
}

// NextID returns the next booking id.
func (a *IDAllocator) NextID(ctx context.Context) int64 {
	max, err := a.repo.MaxID(ctx)
	if err != nil {
		a.logger.Error("failed to read max booking id, falling back to 1", zap.Error(err))
		return 1
	}
	return max + 1
}
