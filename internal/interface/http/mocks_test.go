package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/psims/scholar-portal/internal/application"
	"github.com/psims/scholar-portal/internal/domain/entity"
	"github.com/psims/scholar-portal/internal/domain/repository"
	"github.com/psims/scholar-portal/pkg/helpers"
	"github.com/psims/scholar-portal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// stubScholarRepo implements repository.ScholarRepository with overridable
// function fields; unset methods report ErrNotFound or no-op.
type stubScholarRepo struct {
	getByID         func(ctx context.Context, id string) (*entity.Scholar, error)
	getByUsername   func(ctx context.Context, username string) (*entity.Scholar, error)
	getByEmail      func(ctx context.Context, email string) (*entity.Scholar, error)
	getByCode       func(ctx context.Context, code string) (*entity.Scholar, error)
	completeInit    func(ctx context.Context, id, username, passwordHash, rotatedCode string) (bool, error)
	markRequested   func(ctx context.Context, id string, requestedAt time.Time) (bool, error)
	completeReset   func(ctx context.Context, token, passwordHash string, now time.Time) (bool, error)
	setResetToken   func(ctx context.Context, id, token string, expires time.Time) error
	getByResetToken func(ctx context.Context, token string) (*entity.Scholar, error)
	history         func(ctx context.Context, scholarID string) ([]entity.PayrollRecord, error)
}

func (s *stubScholarRepo) Create(context.Context, *entity.Scholar) error { return nil }

func (s *stubScholarRepo) GetByID(ctx context.Context, id string) (*entity.Scholar, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (s *stubScholarRepo) GetByUsername(ctx context.Context, username string) (*entity.Scholar, error) {
	if s.getByUsername != nil {
		return s.getByUsername(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (s *stubScholarRepo) GetByEmail(ctx context.Context, email string) (*entity.Scholar, error) {
	if s.getByEmail != nil {
		return s.getByEmail(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (s *stubScholarRepo) GetByInitializationCode(ctx context.Context, code string) (*entity.Scholar, error) {
	if s.getByCode != nil {
		return s.getByCode(ctx, code)
	}
	return nil, repository.ErrNotFound
}

func (s *stubScholarRepo) CompleteInitialization(ctx context.Context, id, username, passwordHash, rotatedCode string) (bool, error) {
	if s.completeInit != nil {
		return s.completeInit(ctx, id, username, passwordHash, rotatedCode)
	}
	return true, nil
}

func (s *stubScholarRepo) UpdatePassword(context.Context, string, string) error { return nil }
func (s *stubScholarRepo) UpdateContact(context.Context, string, string) error  { return nil }

func (s *stubScholarRepo) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	if s.setResetToken != nil {
		return s.setResetToken(ctx, id, token, expires)
	}
	return nil
}

func (s *stubScholarRepo) GetByResetToken(ctx context.Context, token string) (*entity.Scholar, error) {
	if s.getByResetToken != nil {
		return s.getByResetToken(ctx, token)
	}
	return nil, repository.ErrNotFound
}

func (s *stubScholarRepo) CompleteReset(ctx context.Context, token, passwordHash string, now time.Time) (bool, error) {
	if s.completeReset != nil {
		return s.completeReset(ctx, token, passwordHash, now)
	}
	return false, nil
}

func (s *stubScholarRepo) MarkPayrollRequested(ctx context.Context, id string, requestedAt time.Time) (bool, error) {
	if s.markRequested != nil {
		return s.markRequested(ctx, id, requestedAt)
	}
	return true, nil
}

func (s *stubScholarRepo) PayrollHistory(ctx context.Context, scholarID string) ([]entity.PayrollRecord, error) {
	if s.history != nil {
		return s.history(ctx, scholarID)
	}
	return nil, nil
}

var _ repository.ScholarRepository = (*stubScholarRepo)(nil)

// stubActivityRepo implements repository.ActivityRepository the same way.
type stubActivityRepo struct {
	createProgram func(ctx context.Context, p *entity.ActivityProgram) error
	listPrograms  func(ctx context.Context, scholarID string) ([]entity.ActivityProgram, error)
	listEvents    func(ctx context.Context) ([]entity.ActivityEvent, error)
	getEvent      func(ctx context.Context, id string) (*entity.ActivityEvent, error)
	createUpload  func(ctx context.Context, u *entity.StudentUpload) (bool, error)
	listUploads   func(ctx context.Context, eventID string) ([]entity.StudentUpload, error)
}

func (s *stubActivityRepo) CreateProgram(ctx context.Context, p *entity.ActivityProgram) error {
	if s.createProgram != nil {
		return s.createProgram(ctx, p)
	}
	p.ID = "program-1"
	p.CreatedAt = time.Now()
	return nil
}

func (s *stubActivityRepo) ListProgramsByScholar(ctx context.Context, scholarID string) ([]entity.ActivityProgram, error) {
	if s.listPrograms != nil {
		return s.listPrograms(ctx, scholarID)
	}
	return nil, nil
}

func (s *stubActivityRepo) ListEvents(ctx context.Context) ([]entity.ActivityEvent, error) {
	if s.listEvents != nil {
		return s.listEvents(ctx)
	}
	return nil, nil
}

func (s *stubActivityRepo) GetEvent(ctx context.Context, id string) (*entity.ActivityEvent, error) {
	if s.getEvent != nil {
		return s.getEvent(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (s *stubActivityRepo) CreateUpload(ctx context.Context, u *entity.StudentUpload) (bool, error) {
	if s.createUpload != nil {
		return s.createUpload(ctx, u)
	}
	u.ID = "upload-1"
	u.UploadedAt = time.Now()
	return true, nil
}

func (s *stubActivityRepo) ListUploadsByEvent(ctx context.Context, eventID string) ([]entity.StudentUpload, error) {
	if s.listUploads != nil {
		return s.listUploads(ctx, eventID)
	}
	return nil, nil
}

var _ repository.ActivityRepository = (*stubActivityRepo)(nil)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newScholarService(repo repository.ScholarRepository) *application.ScholarService {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return application.NewScholarService(repo, jwt, nil, quietLogger(), nil, false, "https://portal.example.com/reset-password", time.Hour)
}

// asScholar injects the authenticated scholar id the way the auth middleware
// does.
func asScholar(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("scholarID", id)
		c.Next()
	}
}

func perform(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
