package repository

import (
	"context"
	"errors"
	"time"

	"github.com/psims/scholar-portal/internal/domain/entity"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ScholarRepository defines persistence for scholar records.
//
// The Complete*/Mark* methods perform their read-check-write as a single
// conditional update against the store and report false when the guard did
// not hold, so concurrent callers cannot both win.
type ScholarRepository interface {
	Create(ctx context.Context, s *entity.Scholar) error
	GetByID(ctx context.Context, id string) (*entity.Scholar, error)
	GetByUsername(ctx context.Context, username string) (*entity.Scholar, error)
	GetByEmail(ctx context.Context, email string) (*entity.Scholar, error)
	GetByInitializationCode(ctx context.Context, code string) (*entity.Scholar, error)

	// CompleteInitialization sets username and password hash and rotates the
	// initialization code, guarded by the hash still being unset.
	CompleteInitialization(ctx context.Context, id, username, passwordHash, rotatedCode string) (bool, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateContact(ctx context.Context, id, contactNumber string) error

	// SetResetToken stores the token/expiry pair.
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	// GetByResetToken matches the stored token regardless of expiry; validity
	// is the caller's call via Scholar.HasValidResetToken.
	GetByResetToken(ctx context.Context, token string) (*entity.Scholar, error)
	// CompleteReset sets the new hash and clears the token pair, guarded by
	// the token still matching and being unexpired.
	CompleteReset(ctx context.Context, token, passwordHash string, now time.Time) (bool, error)

	// MarkPayrollRequested transitions the scholar to Pending, guarded by the
	// renewal-period and pending gates so a lost update is impossible.
	MarkPayrollRequested(ctx context.Context, id string, requestedAt time.Time) (bool, error)

	PayrollHistory(ctx context.Context, scholarID string) ([]entity.PayrollRecord, error)
}
