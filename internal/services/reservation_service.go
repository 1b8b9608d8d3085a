package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/pkg/logger"
)

type CreateReservationInput struct {
	TableID      uint      `json:"table_id"`
	CustomerName string    `json:"customer_name"`
	PhoneNumber  string    `json:"phone_number"`
	ReservedFor  time.Time `json:"reservation_time"`
	PartySize    int       `json:"number_of_people"`
	Notes        string    `json:"notes"`
}

type ReservationService interface {
	// List returns reservations due in [from, to).
	List(ctx context.Context, caller Caller, from, to time.Time) ([]models.Reservation, error)
	// Create books an available table and marks it reserved.
	Create(ctx context.Context, caller Caller, input CreateReservationInput) (*models.Reservation, error)
	// Delete cancels the reservation. Its table goes back to available unless
	// the party has already been seated there.
	Delete(ctx context.Context, caller Caller, id uint) (*models.Reservation, error)
}

type reservationService struct {
	repos *repository.Repositories
	log   *logger.Logger
}

func NewReservationService(repos *repository.Repositories, log *logger.Logger) ReservationService {
	return &reservationService{repos: repos, log: log}
}

func (s *reservationService) List(ctx context.Context, caller Caller, from, to time.Time) ([]models.Reservation, error) {
	if !to.After(from) {
		return nil, validationf("reservation range end must be after its start")
	}
	return s.repos.Reservations.GetByRange(ctx, caller.StoreID, from, to)
}

func (s *reservationService) Create(ctx context.Context, caller Caller, input CreateReservationInput) (*models.Reservation, error) {
	name := strings.TrimSpace(input.CustomerName)
	switch {
	case len(name) < 2 || len(name) > 150:
		return nil, validationf("customer name must be between 2 and 150 characters")
	case input.PartySize <= 0:
		return nil, validationf("number of people must be positive")
	case input.ReservedFor.IsZero():
		return nil, validationf("reservation time is required")
	case input.TableID == 0:
		return nil, validationf("table_id is required")
	}

	reservation := &models.Reservation{
		StoreID:      caller.StoreID,
		TableID:      input.TableID,
		CustomerName: name,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		ReservedFor:  input.ReservedFor,
		PartySize:    input.PartySize,
		Notes:        input.Notes,
		Status:       models.ReservationConfirmed,
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		ok, err := tx.Tables.TransitionStatus(ctx, caller.StoreID, input.TableID, models.TableReserved, models.TableAvailable)
		if err != nil {
			return fmt.Errorf("failed to reserve table %d: %w", input.TableID, err)
		}
		if !ok {
			table, err := tx.Tables.GetByID(ctx, caller.StoreID, input.TableID)
			if err != nil {
				return lookupErr(err, "table", input.TableID)
			}
			return conflictf("table %s is not available for reservation (status: %s)", table.Number, table.Status)
		}
		return tx.Reservations.Create(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("reservation_created", "Table reserved",
		"store_id", caller.StoreID, "reservation_id", reservation.ID, "table_id", reservation.TableID)
	return s.get(ctx, caller, reservation.ID)
}

func (s *reservationService) Delete(ctx context.Context, caller Caller, id uint) (*models.Reservation, error) {
	var reservation *models.Reservation
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		reservation, err = tx.Reservations.GetByID(ctx, caller.StoreID, id)
		if err != nil {
			return lookupErr(err, "reservation", id)
		}

		freed, err := tx.Tables.TransitionStatus(ctx, caller.StoreID, reservation.TableID, models.TableAvailable, models.TableReserved)
		if err != nil {
			return fmt.Errorf("failed to free table %d: %w", reservation.TableID, err)
		}
		if freed && reservation.Table != nil {
			reservation.Table.Status = string(models.TableAvailable)
		}
		if !freed {
			s.log.Warn("reservation_deleted", "Table was no longer reserved",
				"reservation_id", id, "table_id", reservation.TableID)
		}
		return tx.Reservations.Delete(ctx, caller.StoreID, id)
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *reservationService) get(ctx context.Context, caller Caller, id uint) (*models.Reservation, error) {
	reservation, err := s.repos.Reservations.GetByID(ctx, caller.StoreID, id)
	if err != nil {
		return nil, lookupErr(err, "reservation", id)
	}
	return reservation, nil
}
