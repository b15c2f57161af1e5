package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-pilot/internal/domain"
	"github.com/spec-kit/parking-pilot/internal/events"
	"github.com/spec-kit/parking-pilot/internal/repository"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// VehicleService manages campus vehicle registrations. Ownership rules:
// regular users see and change only their own vehicles, admins see all.
type VehicleService struct {
	vehicles   repository.VehicleRepository
	dispatcher events.Dispatcher
}

// NewVehicleService builds the service.
func NewVehicleService(vehicles repository.VehicleRepository, dispatcher events.Dispatcher) *VehicleService {
	return &VehicleService{vehicles: vehicles, dispatcher: dispatcher}
}

// Register records a new vehicle for the owner account.
func (s *VehicleService) Register(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	if _, err := s.vehicles.GetByNumber(ctx, vehicle.VehicleNumber); err == nil {
		return nil, apperrors.NewConflict("vehicle already registered with this number", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventVehicleRegistered,
			AccountID: vehicle.OwnerAccountID,
			Timestamp: time.Now(),
			Payload: events.VehicleRegisteredPayload{
				VehicleID:     vehicle.ID,
				VehicleNumber: vehicle.VehicleNumber,
				OwnerEmail:    vehicle.Email,
			},
		})
	}
	return vehicle, nil
}

// Get loads one vehicle, enforcing ownership for non-admin callers.
func (s *VehicleService) Get(ctx context.Context, id, callerID string, callerRole domain.Role) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vehicle", nil)
		}
		return nil, err
	}
	if callerRole != domain.RoleAdmin && vehicle.OwnerAccountID != callerID {
		return nil, apperrors.NewForbidden("not the vehicle owner")
	}
	return vehicle, nil
}

// List returns the caller's vehicles, or every vehicle for admins.
func (s *VehicleService) List(ctx context.Context, callerID string, callerRole domain.Role) ([]*domain.Vehicle, error) {
	if callerRole == domain.RoleAdmin {
		return s.vehicles.ListAll(ctx)
	}
	return s.vehicles.ListByOwner(ctx, callerID)
}

// Update mutates a vehicle the caller may touch. A changed number must stay
// unique.
func (s *VehicleService) Update(ctx context.Context, updated *domain.Vehicle, callerID string, callerRole domain.Role) (*domain.Vehicle, error) {
	existing, err := s.Get(ctx, updated.ID, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	if updated.VehicleNumber != existing.VehicleNumber {
		if _, err := s.vehicles.GetByNumber(ctx, updated.VehicleNumber); err == nil {
			return nil, apperrors.NewConflict("vehicle already registered with this number", nil)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	updated.OwnerAccountID = existing.OwnerAccountID
	if err := s.vehicles.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a vehicle registration.
func (s *VehicleService) Delete(ctx context.Context, id string) error {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("vehicle", nil)
		}
		return err
	}

	if err := s.vehicles.Delete(ctx, id); err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventVehicleRemoved,
			AccountID: vehicle.OwnerAccountID,
			Timestamp: time.Now(),
			Payload:   events.VehicleRemovedPayload{VehicleID: vehicle.ID},
		})
	}
	return nil
}
