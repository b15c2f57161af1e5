package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered      EventType = "account_registered"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
	EventVehicleRegistered      EventType = "vehicle_registered"
	EventVehicleRemoved         EventType = "vehicle_removed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	Email string `json:"email"`
}

// VehicleRegisteredPayload payload.
type VehicleRegisteredPayload struct {
	VehicleID     string `json:"vehicle_id"`
	VehicleNumber string `json:"vehicle_number"`
	OwnerEmail    string `json:"owner_email"`
}

// VehicleRemovedPayload payload.
type VehicleRemovedPayload struct {
	VehicleID string `json:"vehicle_id"`
}
