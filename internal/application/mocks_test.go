package application

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psims/scholar-portal/internal/domain/entity"
	"github.com/psims/scholar-portal/internal/domain/repository"
)

// memScholarRepo is an in-memory ScholarRepository. The conditional methods
// mirror the guards the Postgres implementation puts in its WHERE clauses.
type memScholarRepo struct {
	mu       sync.Mutex
	nextID   int
	scholars map[string]*entity.Scholar
	history  map[string][]entity.PayrollRecord
}

func newMemScholarRepo() *memScholarRepo {
	return &memScholarRepo{
		scholars: map[string]*entity.Scholar{},
		history:  map[string][]entity.PayrollRecord{},
	}
}

func (m *memScholarRepo) add(s *entity.Scholar) *entity.Scholar {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		m.nextID++
		s.ID = "scholar-" + strconv.Itoa(m.nextID)
	}
	cp := *s
	m.scholars[s.ID] = &cp
	return s
}

func (m *memScholarRepo) get(id string) *entity.Scholar {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.scholars[id]; ok {
		cp := *s
		return &cp
	}
	return nil
}

func (m *memScholarRepo) Create(_ context.Context, s *entity.Scholar) error {
	m.add(s)
	return nil
}

func (m *memScholarRepo) findBy(match func(*entity.Scholar) bool) (*entity.Scholar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scholars {
		if match(s) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memScholarRepo) GetByID(_ context.Context, id string) (*entity.Scholar, error) {
	return m.findBy(func(s *entity.Scholar) bool { return s.ID == id })
}

func (m *memScholarRepo) GetByUsername(_ context.Context, username string) (*entity.Scholar, error) {
	return m.findBy(func(s *entity.Scholar) bool { return s.Username == username })
}

func (m *memScholarRepo) GetByEmail(_ context.Context, email string) (*entity.Scholar, error) {
	return m.findBy(func(s *entity.Scholar) bool { return s.Email == email })
}

func (m *memScholarRepo) GetByInitializationCode(_ context.Context, code string) (*entity.Scholar, error) {
	return m.findBy(func(s *entity.Scholar) bool { return s.InitializationCode == code })
}

func (m *memScholarRepo) CompleteInitialization(_ context.Context, id, username, passwordHash, rotatedCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scholars[id]
	if !ok || s.PasswordHash != nil {
		return false, nil
	}
	s.Username = username
	s.PasswordHash = &passwordHash
	s.InitializationCode = rotatedCode
	return true, nil
}

func (m *memScholarRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scholars[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.PasswordHash = &passwordHash
	return nil
}

func (m *memScholarRepo) UpdateContact(_ context.Context, id, contactNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scholars[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.ContactNumber = contactNumber
	return nil
}

func (m *memScholarRepo) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scholars[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.ResetToken = &token
	s.ResetTokenExpires = &expires
	return nil
}

func (m *memScholarRepo) GetByResetToken(_ context.Context, token string) (*entity.Scholar, error) {
	return m.findBy(func(s *entity.Scholar) bool {
		return s.ResetToken != nil && *s.ResetToken == token
	})
}

func (m *memScholarRepo) CompleteReset(_ context.Context, token, passwordHash string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scholars {
		if s.ResetToken != nil && *s.ResetToken == token &&
			s.ResetTokenExpires != nil && s.ResetTokenExpires.After(now) {
			s.PasswordHash = &passwordHash
			s.ResetToken = nil
			s.ResetTokenExpires = nil
			return true, nil
		}
	}
	return false, nil
}

func (m *memScholarRepo) MarkPayrollRequested(_ context.Context, id string, requestedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scholars[id]
	if !ok {
		return false, nil
	}
	if s.PayrollRequestStatus == entity.PayrollPending {
		return false, nil
	}
	if s.LastPayrollRequestDate != nil && s.RenewalDate != nil &&
		s.LastPayrollRequestDate.After(*s.RenewalDate) {
		return false, nil
	}
	s.PayrollRequestStatus = entity.PayrollPending
	s.LastPayrollRequestDate = &requestedAt
	return true, nil
}

func (m *memScholarRepo) PayrollHistory(_ context.Context, scholarID string) ([]entity.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.PayrollRecord(nil), m.history[scholarID]...), nil
}

var _ repository.ScholarRepository = (*memScholarRepo)(nil)

// memActivityRepo is an in-memory ActivityRepository.
type memActivityRepo struct {
	mu       sync.Mutex
	nextID   int
	programs []entity.ActivityProgram
	events   map[string]entity.ActivityEvent
	uploads  []entity.StudentUpload
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{events: map[string]entity.ActivityEvent{}}
}

func (m *memActivityRepo) addEvent(e entity.ActivityEvent) entity.ActivityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		m.nextID++
		e.ID = "event-" + strconv.Itoa(m.nextID)
	}
	m.events[e.ID] = e
	return e
}

func (m *memActivityRepo) CreateProgram(_ context.Context, p *entity.ActivityProgram) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = "program-" + strconv.Itoa(m.nextID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	}
	m.programs = append(m.programs, *p)
	return nil
}

func (m *memActivityRepo) ListProgramsByScholar(_ context.Context, scholarID string) ([]entity.ActivityProgram, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ActivityProgram
	for _, p := range m.programs {
		if p.ScholarID == scholarID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memActivityRepo) ListEvents(_ context.Context) ([]entity.ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ActivityEvent
	for _, e := range m.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HeldDate.After(out[j].HeldDate) })
	return out, nil
}

func (m *memActivityRepo) GetEvent(_ context.Context, id string) (*entity.ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; ok {
		return &e, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memActivityRepo) CreateUpload(_ context.Context, u *entity.StudentUpload) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.uploads {
		if existing.EventID == u.EventID && existing.ScholarID == u.ScholarID {
			return false, nil
		}
	}
	m.nextID++
	u.ID = "upload-" + strconv.Itoa(m.nextID)
	u.UploadedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	m.uploads = append(m.uploads, *u)
	return true, nil
}

func (m *memActivityRepo) ListUploadsByEvent(_ context.Context, eventID string) ([]entity.StudentUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.StudentUpload
	for _, u := range m.uploads {
		if u.EventID == eventID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

var _ repository.ActivityRepository = (*memActivityRepo)(nil)

// captureEnqueuer records published email jobs and can simulate broker
// failures.
type captureEnqueuer struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (c *captureEnqueuer) PublishJSON(_ context.Context, body any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.jobs = append(c.jobs, body)
	return nil
}

func (c *captureEnqueuer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
