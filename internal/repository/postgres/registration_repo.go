package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"

	"lumaregistrar/internal/domain"
)

const registrationColumns = `id, email, first_name, last_name, event_api_id, status, verification_code, luma_response, error_message, created_at, updated_at`

type registrationRepository struct {
	DB *sql.DB
}

// NewRegistrationRepository returns a domain.RegistrationRepository implemented with Postgres.
func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	if reg.Status == "" {
		reg.Status = domain.StatusPending
	}
	query := `
		INSERT INTO registrations (email, first_name, last_name, event_api_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, query, reg.Email, reg.FirstName, reg.LastName, reg.EventID, string(reg.Status)).
		Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *registrationRepository) Update(ctx context.Context, id string, upd domain.RegistrationUpdate) error {
	// Rejected here so the only 22P02 the UPDATE can raise comes from the id.
	if upd.ProviderResponse != nil && !json.Valid(upd.ProviderResponse) {
		return fmt.Errorf("%w: provider response is not valid JSON", domain.ErrInvalidInput)
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", n))
		args = append(args, string(*upd.Status))
		n++
	}
	if upd.VerificationCode != nil {
		setClauses = append(setClauses, fmt.Sprintf("verification_code = $%d", n))
		args = append(args, *upd.VerificationCode)
		n++
	}
	if upd.ProviderResponse != nil {
		setClauses = append(setClauses, fmt.Sprintf("luma_response = $%d::jsonb", n))
		args = append(args, string(upd.ProviderResponse))
		n++
	}
	if upd.ErrorMessage != nil {
		setClauses = append(setClauses, fmt.Sprintf("error_message = $%d", n))
		args = append(args, *upd.ErrorMessage)
		n++
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE registrations SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), n)
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return mapIDError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapIDError(err)
	}
	return reg, nil
}

func (r *registrationRepository) List(ctx context.Context) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return regs, nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM registrations WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return mapIDError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var status string
	var codeNull, errNull sql.NullString
	var resp []byte
	err := row.Scan(
		&reg.ID, &reg.Email, &reg.FirstName, &reg.LastName, &reg.EventID, &status,
		&codeNull, &resp, &errNull, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.Status = domain.RegistrationStatus(status)
	if codeNull.Valid {
		reg.VerificationCode = &codeNull.String
	}
	if errNull.Valid {
		reg.ErrorMessage = &errNull.String
	}
	if len(resp) > 0 {
		reg.ProviderResponse = append([]byte(nil), resp...)
	}
	return reg, nil
}

// mapIDError treats a malformed uuid key as an absent record.
func mapIDError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
		return domain.ErrNotFound
	}
	return mapError(err)
}

// mapError wraps connectivity failures in domain.ErrStoreUnavailable; other errors pass through.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	var netErr *net.OpError
	switch {
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, driver.ErrBadConn):
	case errors.As(err, &pqErr) && pqErr.Code.Class() == "08":
	case errors.As(err, &netErr):
	default:
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
