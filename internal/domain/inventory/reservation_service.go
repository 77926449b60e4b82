package inventory

import (
	"context"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
)

// ReservationService coordinates multi-line stock reservations on top
// of a Ledger. It owns the all-or-nothing property: either every line
// is reserved or none is.
type ReservationService struct {
	ledger Ledger
}

// NewReservationService creates a new ReservationService
func NewReservationService(ledger Ledger) *ReservationService {
	return &ReservationService{ledger: ledger}
}

// ReserveAll reserves every line, in order. On the first failure it
// releases the lines already reserved and returns the failing error,
// so a failed reservation leaves stock balances untouched.
func (s *ReservationService) ReserveAll(ctx context.Context, lines []Line) error {
	if len(lines) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "At least one reservation line is required")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return shared.NewDomainError("VALIDATION_ERROR", "Reservation quantity must be positive")
		}
	}

	reserved := make([]Line, 0, len(lines))
	for _, line := range lines {
		if err := s.ledger.TryReserve(ctx, line.ProductID, line.Quantity); err != nil {
			s.rollback(ctx, reserved)
			return err
		}
		reserved = append(reserved, line)
	}

	return nil
}

// ReleaseAll returns every line's quantity to stock. Used when a
// pending order is cancelled or could not be persisted.
func (s *ReservationService) ReleaseAll(ctx context.Context, lines []Line) error {
	var firstErr error
	for _, line := range lines {
		if err := s.ledger.Release(ctx, line.ProductID, line.Quantity); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *ReservationService) rollback(ctx context.Context, reserved []Line) {
	// Best effort: a release can only fail if the product vanished,
	// and the reservation error is the one the caller needs to see.
	for _, line := range reserved {
		_ = s.ledger.Release(ctx, line.ProductID, line.Quantity)
	}
}
