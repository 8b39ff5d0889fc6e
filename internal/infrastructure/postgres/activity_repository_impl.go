package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psims/scholar-portal/internal/domain/entity"
	"github.com/psims/scholar-portal/internal/domain/repository"
)

const uniqueViolation = "23505"

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) CreateProgram(ctx context.Context, p *entity.ActivityProgram) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO activity_programs (scholar_id, title, description, image_data, image_media_type, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.ScholarID, p.Title, p.Description, p.ImageData, p.ImageMediaType, p.StartDate, p.EndDate)
	return row.Scan(&p.ID, &p.CreatedAt)
}

func (r *ActivityRepository) ListProgramsByScholar(ctx context.Context, scholarID string) ([]entity.ActivityProgram, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, scholar_id, title, description, image_data, image_media_type, start_date, end_date, created_at
		FROM activity_programs
		WHERE scholar_id = $1
		ORDER BY created_at DESC
	`, scholarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.ActivityProgram
	for rows.Next() {
		var p entity.ActivityProgram
		if err := rows.Scan(&p.ID, &p.ScholarID, &p.Title, &p.Description,
			&p.ImageData, &p.ImageMediaType, &p.StartDate, &p.EndDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ActivityRepository) ListEvents(ctx context.Context) ([]entity.ActivityEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, held_date, banner_data, banner_media_type, created_at
		FROM activity_events
		ORDER BY held_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.ActivityEvent
	for rows.Next() {
		var e entity.ActivityEvent
		if err := rows.Scan(&e.ID, &e.Title, &e.HeldDate, &e.BannerData, &e.BannerMediaType, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ActivityRepository) GetEvent(ctx context.Context, id string) (*entity.ActivityEvent, error) {
	e := &entity.ActivityEvent{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, held_date, banner_data, banner_media_type, created_at
		FROM activity_events
		WHERE id = $1
	`, id)
	if err := row.Scan(&e.ID, &e.Title, &e.HeldDate, &e.BannerData, &e.BannerMediaType, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// CreateUpload relies on the UNIQUE(event_id, scholar_id) index to keep one
// upload per scholar per event; a duplicate reports false instead of an error.
func (r *ActivityRepository) CreateUpload(ctx context.Context, u *entity.StudentUpload) (bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO student_uploads (event_id, scholar_id, photo_data, photo_media_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uploaded_at
	`, u.EventID, u.ScholarID, u.PhotoData, u.PhotoMediaType)
	if err := row.Scan(&u.ID, &u.UploadedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *ActivityRepository) ListUploadsByEvent(ctx context.Context, eventID string) ([]entity.StudentUpload, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, scholar_id, photo_data, photo_media_type, uploaded_at
		FROM student_uploads
		WHERE event_id = $1
		ORDER BY uploaded_at DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.StudentUpload
	for rows.Next() {
		var u entity.StudentUpload
		if err := rows.Scan(&u.ID, &u.EventID, &u.ScholarID, &u.PhotoData, &u.PhotoMediaType, &u.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var _ repository.ActivityRepository = (*ActivityRepository)(nil)
