package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/psims/scholar-portal/internal/domain/entity"
	"github.com/psims/scholar-portal/internal/domain/repository"
	"github.com/psims/scholar-portal/pkg/helpers"
	"github.com/psims/scholar-portal/pkg/mailer"
)

const (
	sessionTTL = 24 * time.Hour

	resetTokenBytes = 32 // >= 160 bits of entropy
	rotatedCodeLen  = 12

	minPasswordLen = 8
	minContactLen  = 5
)

// EmailEnqueuer publishes email jobs for asynchronous delivery.
// *helpers.RabbitPublisher satisfies it.
type EmailEnqueuer interface {
	PublishJSON(ctx context.Context, body any) error
}

// ScholarService owns the credential lifecycle and the payroll request state
// machine. All mutations go through conditional repository updates; the
// service never applies a read-then-write pair for state transitions.
type ScholarService struct {
	Repo        repository.ScholarRepository
	JWT         *helpers.JWTManager
	Redis       *redis.Client
	Logger      *logrus.Logger
	Mail        EmailEnqueuer
	MailEnabled bool
	ResetURL    string
	ResetTTL    time.Duration

	// Now is the clock; tests may override it.
	Now func() time.Time
}

func NewScholarService(repo repository.ScholarRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, mail EmailEnqueuer, mailEnabled bool, resetURL string, resetTTL time.Duration) *ScholarService {
	return &ScholarService{
		Repo:        repo,
		JWT:         jwt,
		Redis:       rdb,
		Logger:      logger,
		Mail:        mail,
		MailEnabled: mailEnabled,
		ResetURL:    resetURL,
		ResetTTL:    resetTTL,
		Now:         time.Now,
	}
}

func sessionKey(scholarID string) string {
	return "scholar:session:" + scholarID
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Initialize activates an account with a one-time initialization code. On
// success the code is rotated to a fresh random value so it cannot be
// replayed, and the returned scholar is ready for session establishment.
func (s *ScholarService) Initialize(ctx context.Context, code, username, password, confirmPassword string) (*entity.Scholar, error) {
	if code == "" || username == "" || password == "" {
		return nil, ErrMissingField
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	sc, err := s.Repo.GetByInitializationCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if sc.Initialized() {
		return nil, ErrAlreadyInitialized
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	rotated, err := helpers.GenToken(rotatedCodeLen)
	if err != nil {
		return nil, err
	}

	ok, err := s.Repo.CompleteInitialization(ctx, sc.ID, username, hash, rotated)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a concurrent initialization.
		return nil, ErrAlreadyInitialized
	}

	sc.Username = username
	sc.PasswordHash = &hash
	sc.InitializationCode = rotated
	s.Logger.WithField("scholar_id", sc.ID).Info("account initialized")
	return sc, nil
}

// Authenticate validates username/password. Unknown usernames and accounts
// that never completed initialization fail identically so the caller cannot
// tell the cases apart.
func (s *ScholarService) Authenticate(ctx context.Context, username, password string) (*entity.Scholar, error) {
	sc, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !sc.Initialized() {
		// Indistinguishable from an unknown username on purpose.
		return nil, ErrAccountNotFound
	}
	if !helpers.CompareHashAndPassword(*sc.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return sc, nil
}

// IssueTokens generates an access/refresh pair and records a session hash in
// Redis keyed by scholar id.
func (s *ScholarService) IssueTokens(ctx context.Context, sc *entity.Scholar) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(sc.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(sc.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(sc.ID)
		fields := map[string]any{
			"scholar_id": sc.ID,
			"username":   sc.Username,
			"name":       sc.FullName(),
			"ssn":        sid,
			"created_at": s.Now().UTC().Format(time.RFC3339Nano),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *ScholarService) Login(ctx context.Context, username, password string) (*entity.Scholar, TokenPair, error) {
	sc, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, sc)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return sc, pair, nil
}

// Refresh rotates the session id and both tokens after validating the refresh
// token against the live session.
func (s *ScholarService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	sc, err := s.Repo.GetByID(ctx, claims.ScholarID)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(sc.ID)).Result()
		if rErr != nil || len(data) == 0 || data["ssn"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, sc)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, sc.ID, nil
}

// Logout destroys the scholar's server-side session.
func (s *ScholarService) Logout(ctx context.Context, scholarID string) {
	if s.Redis == nil || scholarID == "" {
		return
	}
	if err := s.Redis.Del(ctx, sessionKey(scholarID)).Err(); err != nil {
		s.Logger.WithError(err).WithField("scholar_id", scholarID).Warn("session delete failed")
	}
}

func (s *ScholarService) Profile(ctx context.Context, scholarID string) (*entity.Scholar, error) {
	sc, err := s.Repo.GetByID(ctx, scholarID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScholarNotFound
		}
		return nil, err
	}
	return sc, nil
}

// PayrollOverview returns the scholar with the fulfilled payroll history
// loaded, for the payroll page.
func (s *ScholarService) PayrollOverview(ctx context.Context, scholarID string) (*entity.Scholar, error) {
	sc, err := s.Profile(ctx, scholarID)
	if err != nil {
		return nil, err
	}
	history, err := s.Repo.PayrollHistory(ctx, scholarID)
	if err != nil {
		return nil, err
	}
	sc.PayrollHistory = history
	return sc, nil
}

// RequestPayroll runs the payroll request state machine: staging gate first,
// then the renewal-period gate, then the pending gate. The final transition is
// a single conditional update so two concurrent requests for the same scholar
// yield exactly one Pending transition.
func (s *ScholarService) RequestPayroll(ctx context.Context, scholarID string) error {
	sc, err := s.Repo.GetByID(ctx, scholarID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScholarNotFound
		}
		return err
	}

	now := s.Now()
	switch sc.PayrollRequestGate(entity.SchoolYearAt(now), now) {
	case entity.GateNotStaged:
		return ErrNotStaged
	case entity.GateAlreadyRequested:
		return ErrAlreadyRequested
	case entity.GateAlreadyPending:
		return ErrAlreadyPending
	}

	ok, err := s.Repo.MarkPayrollRequested(ctx, scholarID, now)
	if err != nil {
		return err
	}
	if !ok {
		// A concurrent request won the conditional update.
		return ErrAlreadyPending
	}
	s.Logger.WithField("scholar_id", scholarID).Info("payroll request submitted")
	return nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *ScholarService) ChangePassword(ctx context.Context, scholarID, current, newPassword, confirmNew string) error {
	if current == "" || newPassword == "" || confirmNew == "" {
		return ErrMissingField
	}
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if newPassword != confirmNew {
		return ErrPasswordMismatch
	}

	sc, err := s.Repo.GetByID(ctx, scholarID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScholarNotFound
		}
		return err
	}
	if !sc.Initialized() || !helpers.CompareHashAndPassword(*sc.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, scholarID, hash)
}

// UpdateContact stores a trimmed contact number.
func (s *ScholarService) UpdateContact(ctx context.Context, scholarID, contactNumber string) error {
	contactNumber = strings.TrimSpace(contactNumber)
	if len(contactNumber) < minContactLen {
		return ErrInvalidContact
	}
	err := s.Repo.UpdateContact(ctx, scholarID, contactNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrScholarNotFound
	}
	return err
}

// RequestReset issues a time-boxed reset token for the given email and then
// enqueues the reset mail best-effort. It never reports whether the email
// matched an account; the caller always shows the same acknowledgement. The
// token is persisted before any delivery attempt and stays valid even when
// delivery fails.
func (s *ScholarService) RequestReset(ctx context.Context, email string) error {
	sc, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Logger.Debug("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := helpers.GenToken(resetTokenBytes)
	if err != nil {
		return err
	}
	expires := s.Now().Add(s.ResetTTL)
	if err := s.Repo.SetResetToken(ctx, sc.ID, token, expires); err != nil {
		return err
	}

	if s.Mail != nil && s.MailEnabled {
		job := mailer.NewResetJob(sc.Email, s.ResetURL+"/"+token)
		if pubErr := s.Mail.PublishJSON(ctx, job); pubErr != nil {
			// Delivery is best-effort: the persisted token stays valid.
			s.Logger.WithError(pubErr).WithField("scholar_id", sc.ID).Error("failed to enqueue password reset email")
		}
	}
	return nil
}

// ResolveReset returns the scholar holding the token if it has not expired.
func (s *ScholarService) ResolveReset(ctx context.Context, token string) (*entity.Scholar, error) {
	if token == "" {
		return nil, ErrInvalidResetToken
	}
	sc, err := s.Repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}
	if !sc.HasValidResetToken(token, s.Now()) {
		return nil, ErrInvalidResetToken
	}
	return sc, nil
}

// CompleteReset stores the new password and clears the token pair in one
// conditional update guarded by the token still being valid.
func (s *ScholarService) CompleteReset(ctx context.Context, token, password, confirmPassword string) error {
	if token == "" || password == "" || confirmPassword == "" {
		return ErrMissingField
	}
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	ok, err := s.Repo.CompleteReset(ctx, token, hash, s.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}
	s.Logger.Info("password reset completed")
	return nil
}
