package domain

import "time"

// VehicleType distinguishes two-wheelers from four-wheelers.
type VehicleType string

const (
	VehicleTypeTwoWheeler  VehicleType = "2-wheeler"
	VehicleTypeFourWheeler VehicleType = "4-wheeler"
)

// Vehicle is a registered campus vehicle.
type Vehicle struct {
	ID                string
	OwnerAccountID    string
	VehicleType       VehicleType
	VehicleNumber     string
	Model             string
	Color             string
	IsEV              bool
	OwnerName         string
	Email             string
	PhoneNumber       string
	EmployeeStudentID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
