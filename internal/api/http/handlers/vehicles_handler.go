package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-pilot/internal/api/dto"
	"github.com/spec-kit/parking-pilot/internal/auth"
	"github.com/spec-kit/parking-pilot/internal/domain"
	"github.com/spec-kit/parking-pilot/internal/service"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// VehiclesHandler exposes the registered-vehicle CRUD surface.
type VehiclesHandler struct {
	vehicles *service.VehicleService
}

// NewVehiclesHandler constructs handler.
func NewVehiclesHandler(vehicleService *service.VehicleService) *VehiclesHandler {
	return &VehiclesHandler{vehicles: vehicleService}
}

// Create handles POST /vehicles.
func (h *VehiclesHandler) Create(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("access token required")
	}

	vehicle, err := parseVehicleRequest(c)
	if err != nil {
		return err
	}
	vehicle.OwnerAccountID = claims.ID

	created, err := h.vehicles.Register(c.Context(), vehicle)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewVehicleResponse(created)})
}

// List handles GET /vehicles.
func (h *VehiclesHandler) List(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("access token required")
	}

	vehicles, err := h.vehicles.List(c.Context(), claims.ID, claims.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVehicleResponses(vehicles)})
}

// Get handles GET /vehicles/:id.
func (h *VehiclesHandler) Get(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("access token required")
	}

	vehicle, err := h.vehicles.Get(c.Context(), c.Params("id"), claims.ID, claims.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVehicleResponse(vehicle)})
}

// Update handles PUT /vehicles/:id.
func (h *VehiclesHandler) Update(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("access token required")
	}

	vehicle, err := parseVehicleRequest(c)
	if err != nil {
		return err
	}
	vehicle.ID = c.Params("id")

	updated, err := h.vehicles.Update(c.Context(), vehicle, claims.ID, claims.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVehicleResponse(updated)})
}

// Delete handles DELETE /vehicles/:id. Route-level guard restricts this to
// admins.
func (h *VehiclesHandler) Delete(c *fiber.Ctx) error {
	if err := h.vehicles.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "vehicle removed"})
}

func parseVehicleRequest(c *fiber.Ctx) (*domain.Vehicle, error) {
	var req dto.VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}

	req.VehicleNumber = sanitizeVehicleNumber(req.VehicleNumber)
	req.OwnerName = sanitizeString(req.OwnerName)
	req.Email = sanitizeEmail(req.Email)
	req.PhoneNumber = sanitizePhoneNumber(req.PhoneNumber)

	if req.VehicleNumber == "" {
		return nil, apperrors.NewValidationError("vehicle number is required", nil)
	}
	if req.OwnerName == "" {
		return nil, apperrors.NewValidationError("owner name is required", nil)
	}
	vehicleType := domain.VehicleType(req.VehicleType)
	if vehicleType != domain.VehicleTypeTwoWheeler && vehicleType != domain.VehicleTypeFourWheeler {
		return nil, apperrors.NewValidationError("vehicle type must be 2-wheeler or 4-wheeler", nil)
	}

	return &domain.Vehicle{
		VehicleType:       vehicleType,
		VehicleNumber:     req.VehicleNumber,
		Model:             sanitizeString(req.Model),
		Color:             sanitizeString(req.Color),
		IsEV:              req.IsEV,
		OwnerName:         req.OwnerName,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		EmployeeStudentID: sanitizeString(req.EmployeeStudentID),
	}, nil
}
