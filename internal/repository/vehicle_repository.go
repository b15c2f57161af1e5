package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-pilot/internal/domain"
)

// VehicleRepository defines persistence access for registered vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	GetByNumber(ctx context.Context, vehicleNumber string) (*domain.Vehicle, error)
	ListByOwner(ctx context.Context, ownerAccountID string) ([]*domain.Vehicle, error)
	ListAll(ctx context.Context) ([]*domain.Vehicle, error)
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository returns a Postgres-backed implementation.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

const vehicleColumns = `id, owner_account_id, vehicle_type, vehicle_number, model, color,
        is_ev, owner_name, email, phone_number, employee_student_id, created_at, updated_at`

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        INSERT INTO vehicles (owner_account_id, vehicle_type, vehicle_number, model, color,
            is_ev, owner_name, email, phone_number, employee_student_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		vehicle.OwnerAccountID,
		vehicle.VehicleType,
		vehicle.VehicleNumber,
		vehicle.Model,
		vehicle.Color,
		vehicle.IsEV,
		vehicle.OwnerName,
		vehicle.Email,
		vehicle.PhoneNumber,
		vehicle.EmployeeStudentID,
	).Scan(&vehicle.ID, &vehicle.CreatedAt, &vehicle.UpdatedAt)
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        UPDATE vehicles SET vehicle_type=$1, vehicle_number=$2, model=$3, color=$4,
            is_ev=$5, owner_name=$6, email=$7, phone_number=$8, employee_student_id=$9,
            updated_at=NOW()
        WHERE id=$10`

	cmd, err := r.pool.Exec(ctx, query,
		vehicle.VehicleType,
		vehicle.VehicleNumber,
		vehicle.Model,
		vehicle.Color,
		vehicle.IsEV,
		vehicle.OwnerName,
		vehicle.Email,
		vehicle.PhoneNumber,
		vehicle.EmployeeStudentID,
		vehicle.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	const query = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id=$1`
	return scanVehicle(r.pool.QueryRow(ctx, query, id))
}

func (r *vehicleRepository) GetByNumber(ctx context.Context, vehicleNumber string) (*domain.Vehicle, error) {
	const query = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE vehicle_number=$1`
	return scanVehicle(r.pool.QueryRow(ctx, query, vehicleNumber))
}

func (r *vehicleRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*domain.Vehicle, error) {
	const query = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE owner_account_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerAccountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (r *vehicleRepository) ListAll(ctx context.Context) ([]*domain.Vehicle, error) {
	const query = `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func collectVehicles(rows pgx.Rows) ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := row.Scan(
		&vehicle.ID,
		&vehicle.OwnerAccountID,
		&vehicle.VehicleType,
		&vehicle.VehicleNumber,
		&vehicle.Model,
		&vehicle.Color,
		&vehicle.IsEV,
		&vehicle.OwnerName,
		&vehicle.Email,
		&vehicle.PhoneNumber,
		&vehicle.EmployeeStudentID,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &vehicle, nil
}
