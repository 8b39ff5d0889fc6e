package application

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psims/scholar-portal/internal/domain/entity"
	"github.com/psims/scholar-portal/internal/domain/repository"
)

// MaxImageBytes caps activity images and event photos at 5 MiB.
const MaxImageBytes = 5 << 20

// ActivityService validates and persists activity-program submissions and
// per-event photo uploads. Records are immutable once stored.
type ActivityService struct {
	Repo   repository.ActivityRepository
	Logger *logrus.Logger
}

func NewActivityService(repo repository.ActivityRepository, logger *logrus.Logger) *ActivityService {
	return &ActivityService{Repo: repo, Logger: logger}
}

// SubmitProgramInput carries a program submission. Image and ImageMediaType
// are optional but must be provided together.
type SubmitProgramInput struct {
	Title          string
	Description    string
	StartDate      string // 2006-01-02
	EndDate        string
	Image          []byte
	ImageMediaType string
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

func checkImage(data []byte, mediaType string) error {
	if !strings.HasPrefix(mediaType, "image/") {
		return ErrNotAnImage
	}
	if int64(len(data)) > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// SubmitProgram appends a new immutable activity record for the scholar.
// EndDate must not precede StartDate; equal dates are accepted.
func (s *ActivityService) SubmitProgram(ctx context.Context, scholarID string, in SubmitProgramInput) (*entity.ActivityProgram, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.StartDate == "" || in.EndDate == "" {
		return nil, ErrMissingField
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		return nil, ErrMissingField
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		return nil, ErrMissingField
	}
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}

	p := &entity.ActivityProgram{
		ScholarID:   scholarID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		StartDate:   start,
		EndDate:     end,
	}
	if len(in.Image) > 0 {
		if err := checkImage(in.Image, in.ImageMediaType); err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(in.Image)
		mediaType := in.ImageMediaType
		p.ImageData = &encoded
		p.ImageMediaType = &mediaType
	}

	if err := s.Repo.CreateProgram(ctx, p); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"scholar_id": scholarID, "program_id": p.ID}).Info("activity program submitted")
	return p, nil
}

// ListPrograms returns the scholar's records, most recent first.
func (s *ActivityService) ListPrograms(ctx context.Context, scholarID string) ([]entity.ActivityProgram, error) {
	return s.Repo.ListProgramsByScholar(ctx, scholarID)
}

// ListEvents returns published events, newest held date first.
func (s *ActivityService) ListEvents(ctx context.Context) ([]entity.ActivityEvent, error) {
	return s.Repo.ListEvents(ctx)
}

// EventDetail returns one event together with the photos scholars have
// uploaded for it, newest upload first.
func (s *ActivityService) EventDetail(ctx context.Context, eventID string) (*entity.ActivityEvent, []entity.StudentUpload, error) {
	e, err := s.Repo.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}
	uploads, err := s.Repo.ListUploadsByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return e, uploads, nil
}

// UploadEventPhoto stores a scholar's photo for an event. The photo is
// required and a scholar may upload at most one per event.
func (s *ActivityService) UploadEventPhoto(ctx context.Context, eventID, scholarID string, photo []byte, mediaType string) (*entity.StudentUpload, error) {
	if len(photo) == 0 {
		return nil, ErrMissingField
	}
	if err := checkImage(photo, mediaType); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	u := &entity.StudentUpload{
		EventID:        eventID,
		ScholarID:      scholarID,
		PhotoData:      base64.StdEncoding.EncodeToString(photo),
		PhotoMediaType: mediaType,
	}
	ok, err := s.Repo.CreateUpload(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyUploaded
	}
	return u, nil
}
