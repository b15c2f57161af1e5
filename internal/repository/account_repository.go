package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-pilot/internal/domain"
)

// AccountRepository defines persistence access for accounts. All query
// parameters are bound, never interpolated.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*domain.Account, error)
	GetByResetToken(ctx context.Context, token string) (*domain.Account, error)
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	ClearResetToken(ctx context.Context, id, passwordHash string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, username, email, password_hash, role, phone_number,
        employee_student_id, reset_token, reset_token_expiry, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, email, password_hash, role, phone_number, employee_student_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.PhoneNumber,
		account.EmployeeStudentID,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET username=$1, email=$2, password_hash=$3, role=$4,
            phone_number=$5, employee_student_id=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.PhoneNumber,
		account.EmployeeStudentID,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *accountRepository) GetByEmailOrUsername(ctx context.Context, email, username string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1 OR username=$2`
	return r.scanOne(r.pool.QueryRow(ctx, query, email, username))
}

func (r *accountRepository) GetByResetToken(ctx context.Context, token string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE reset_token=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, token))
}

func (r *accountRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	const query = `
        UPDATE accounts SET reset_token=$1, reset_token_expiry=$2, updated_at=NOW()
        WHERE id=$3`
	_, err := r.pool.Exec(ctx, query, token, expiry, id)
	return err
}

func (r *accountRepository) ClearResetToken(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE accounts SET password_hash=$1, reset_token=NULL, reset_token_expiry=NULL, updated_at=NOW()
        WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, passwordHash, id)
	return err
}

func (r *accountRepository) scanOne(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.PhoneNumber,
		&account.EmployeeStudentID,
		&account.ResetToken,
		&account.ResetTokenExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
