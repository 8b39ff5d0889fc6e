package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psims/scholar-portal/internal/domain/entity"
	"github.com/psims/scholar-portal/internal/domain/repository"
)

const scholarColumns = `
	id, first_name, middle_name, last_name, birth_date, sex, student_id,
	address, contact_number, email, school_type, school_level, school_name,
	year_level, average_grade, enrollment_date, graduation_status, graduation_date,
	username, password_hash, initialization_code, reset_token, reset_token_expires,
	payroll_request_status, last_payroll_request_date, renewal_status, renewal_date,
	staged_school_year, staged_issued_date, staged_distributed_date, staged_payroll_number,
	created_at, updated_at`

type ScholarRepository struct {
	pool *pgxpool.Pool
}

func NewScholarRepository(pool *pgxpool.Pool) *ScholarRepository {
	return &ScholarRepository{pool: pool}
}

func scanScholar(row pgx.Row) (*entity.Scholar, error) {
	s := &entity.Scholar{}
	// username and enrollment_date are nullable columns backing non-pointer
	// entity fields; scan them through intermediates so an uninitialized row
	// (username still NULL) loads instead of failing the scan.
	var (
		middleName      *string
		username        *string
		enrollment      *time.Time
		status          *string
		stagedYear      *string
		stagedIssued    *time.Time
		stagedDistrib   *time.Time
		stagedPayrollNo *string
	)
	err := row.Scan(
		&s.ID, &s.FirstName, &middleName, &s.LastName, &s.BirthDate, &s.Sex, &s.StudentID,
		&s.Address, &s.ContactNumber, &s.Email, &s.SchoolType, &s.SchoolLevel, &s.SchoolName,
		&s.YearLevel, &s.AverageGrade, &enrollment, &s.GraduationStatus, &s.GraduationDate,
		&username, &s.PasswordHash, &s.InitializationCode, &s.ResetToken, &s.ResetTokenExpires,
		&status, &s.LastPayrollRequestDate, &s.RenewalStatus, &s.RenewalDate,
		&stagedYear, &stagedIssued, &stagedDistrib, &stagedPayrollNo,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if middleName != nil {
		s.MiddleName = *middleName
	}
	if username != nil {
		s.Username = *username
	}
	if enrollment != nil {
		s.EnrollmentDate = *enrollment
	}
	if status != nil && entity.PayrollRequestStatus(*status).Valid() {
		s.PayrollRequestStatus = entity.PayrollRequestStatus(*status)
	} else {
		s.PayrollRequestStatus = entity.PayrollNoRequest
	}
	if stagedYear != nil && stagedIssued != nil && stagedPayrollNo != nil {
		s.StagedPayroll = &entity.PayrollRecord{
			SchoolYear:      *stagedYear,
			IssuedDate:      *stagedIssued,
			DistributedDate: stagedDistrib,
			PayrollNumber:   *stagedPayrollNo,
		}
	}
	return s, nil
}

func (r *ScholarRepository) getBy(ctx context.Context, where string, arg any) (*entity.Scholar, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+scholarColumns+` FROM scholars WHERE `+where, arg)
	return scanScholar(row)
}

func (r *ScholarRepository) Create(ctx context.Context, s *entity.Scholar) error {
	var stagedYear, stagedPayrollNo *string
	var stagedIssued, stagedDistrib *time.Time
	if s.StagedPayroll != nil {
		stagedYear = &s.StagedPayroll.SchoolYear
		stagedIssued = &s.StagedPayroll.IssuedDate
		stagedDistrib = s.StagedPayroll.DistributedDate
		stagedPayrollNo = &s.StagedPayroll.PayrollNumber
	}
	var middleName *string
	if s.MiddleName != "" {
		middleName = &s.MiddleName
	}
	status := s.PayrollRequestStatus
	if !status.Valid() {
		status = entity.PayrollNoRequest
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO scholars (
			first_name, middle_name, last_name, birth_date, sex, student_id,
			address, contact_number, email, school_type, school_level, school_name,
			year_level, average_grade, enrollment_date, graduation_status, graduation_date,
			username, password_hash, initialization_code,
			payroll_request_status, last_payroll_request_date, renewal_status, renewal_date,
			staged_school_year, staged_issued_date, staged_distributed_date, staged_payroll_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING id, created_at, updated_at
	`,
		s.FirstName, middleName, s.LastName, s.BirthDate, s.Sex, s.StudentID,
		s.Address, s.ContactNumber, s.Email, s.SchoolType, s.SchoolLevel, s.SchoolName,
		s.YearLevel, s.AverageGrade, s.EnrollmentDate, s.GraduationStatus, s.GraduationDate,
		s.Username, s.PasswordHash, s.InitializationCode,
		string(status), s.LastPayrollRequestDate, s.RenewalStatus, s.RenewalDate,
		stagedYear, stagedIssued, stagedDistrib, stagedPayrollNo,
	)
	return row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *ScholarRepository) GetByID(ctx context.Context, id string) (*entity.Scholar, error) {
	return r.getBy(ctx, `id = $1`, id)
}

func (r *ScholarRepository) GetByUsername(ctx context.Context, username string) (*entity.Scholar, error) {
	return r.getBy(ctx, `username = $1`, username)
}

func (r *ScholarRepository) GetByEmail(ctx context.Context, email string) (*entity.Scholar, error) {
	return r.getBy(ctx, `email = $1`, email)
}

func (r *ScholarRepository) GetByInitializationCode(ctx context.Context, code string) (*entity.Scholar, error) {
	return r.getBy(ctx, `initialization_code = $1`, code)
}

func (r *ScholarRepository) CompleteInitialization(ctx context.Context, id, username, passwordHash, rotatedCode string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE scholars
		SET username = $2, password_hash = $3, initialization_code = $4, updated_at = now()
		WHERE id = $1 AND password_hash IS NULL
	`, id, username, passwordHash, rotatedCode)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *ScholarRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE scholars SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ScholarRepository) UpdateContact(ctx context.Context, id, contactNumber string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE scholars SET contact_number = $2, updated_at = now() WHERE id = $1
	`, id, contactNumber)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ScholarRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE scholars SET reset_token = $2, reset_token_expires = $3, updated_at = now() WHERE id = $1
	`, id, token, expires)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ScholarRepository) GetByResetToken(ctx context.Context, token string) (*entity.Scholar, error) {
	return r.getBy(ctx, `reset_token = $1`, token)
}

func (r *ScholarRepository) CompleteReset(ctx context.Context, token, passwordHash string, now time.Time) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE scholars
		SET password_hash = $2, reset_token = NULL, reset_token_expires = NULL, updated_at = now()
		WHERE reset_token = $1 AND reset_token_expires > $3
	`, token, passwordHash, now)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// MarkPayrollRequested re-asserts the renewal-period and pending gates in the
// WHERE clause so two concurrent requests cannot both transition to Pending.
func (r *ScholarRepository) MarkPayrollRequested(ctx context.Context, id string, requestedAt time.Time) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE scholars
		SET payroll_request_status = $2, last_payroll_request_date = $3, updated_at = now()
		WHERE id = $1
		  AND payroll_request_status <> $2
		  AND (last_payroll_request_date IS NULL
		       OR renewal_date IS NULL
		       OR last_payroll_request_date <= renewal_date)
	`, id, string(entity.PayrollPending), requestedAt)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *ScholarRepository) PayrollHistory(ctx context.Context, scholarID string) ([]entity.PayrollRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT school_year, issued_date, distributed_date, payroll_number
		FROM payroll_history
		WHERE scholar_id = $1
		ORDER BY position
	`, scholarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.PayrollRecord
	for rows.Next() {
		var rec entity.PayrollRecord
		if err := rows.Scan(&rec.SchoolYear, &rec.IssuedDate, &rec.DistributedDate, &rec.PayrollNumber); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ repository.ScholarRepository = (*ScholarRepository)(nil)
