package dto

import (
	"time"

	"github.com/spec-kit/parking-pilot/internal/domain"
)

// VehicleRequest payload for creating or updating a vehicle.
type VehicleRequest struct {
	VehicleType       string `json:"vehicle_type"`
	VehicleNumber     string `json:"vehicle_number"`
	Model             string `json:"model"`
	Color             string `json:"color"`
	IsEV              bool   `json:"is_ev"`
	OwnerName         string `json:"owner_name"`
	Email             string `json:"email"`
	PhoneNumber       string `json:"phone_number"`
	EmployeeStudentID string `json:"employee_student_id"`
}

// VehicleResponse is the vehicle shape returned to clients.
type VehicleResponse struct {
	ID                string    `json:"id"`
	VehicleType       string    `json:"vehicle_type"`
	VehicleNumber     string    `json:"vehicle_number"`
	Model             string    `json:"model"`
	Color             string    `json:"color"`
	IsEV              bool      `json:"is_ev"`
	OwnerName         string    `json:"owner_name"`
	Email             string    `json:"email"`
	PhoneNumber       string    `json:"phone_number"`
	EmployeeStudentID string    `json:"employee_student_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewVehicleResponse maps the domain model.
func NewVehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                v.ID,
		VehicleType:       string(v.VehicleType),
		VehicleNumber:     v.VehicleNumber,
		Model:             v.Model,
		Color:             v.Color,
		IsEV:              v.IsEV,
		OwnerName:         v.OwnerName,
		Email:             v.Email,
		PhoneNumber:       v.PhoneNumber,
		EmployeeStudentID: v.EmployeeStudentID,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

// NewVehicleResponses maps a slice, always returning a non-nil slice so
// clients get [] instead of null.
func NewVehicleResponses(vehicles []*domain.Vehicle) []VehicleResponse {
	out := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, NewVehicleResponse(v))
	}
	return out
}
