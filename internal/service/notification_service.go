package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-pilot/internal/events"
	"github.com/spec-kit/parking-pilot/internal/notification"
)

// NotificationService reacts to domain events with out-of-band messages.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     notification.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender notification.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAccountRegistered, n.handleAccountRegistered)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventVehicleRegistered, n.handleVehicleRegistered)
}

func (n *NotificationService) handleAccountRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountRegisteredPayload)
	if !ok {
		return nil
	}
	n.logger.Info("AccountRegistered", zap.String("account_id", event.AccountID))
	return n.sender.SendEmail(ctx, payload.Email,
		"Welcome to the Parking Pilot",
		fmt.Sprintf("Hi %s, your account has been created.", payload.Username))
}

func (n *NotificationService) handlePasswordResetRequested(_ context.Context, event events.Event) error {
	// Reset email goes out inline from the auth service; this is audit only.
	n.logger.Info("PasswordResetRequested", zap.String("account_id", event.AccountID))
	return nil
}

func (n *NotificationService) handleVehicleRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VehicleRegisteredPayload)
	if !ok {
		return nil
	}
	n.logger.Info("VehicleRegistered",
		zap.String("account_id", event.AccountID),
		zap.String("vehicle_id", payload.VehicleID))
	return n.sender.SendEmail(ctx, payload.OwnerEmail,
		"Parking Pilot - Vehicle Registered",
		fmt.Sprintf("Your vehicle %s has been registered for campus parking.", payload.VehicleNumber))
}
