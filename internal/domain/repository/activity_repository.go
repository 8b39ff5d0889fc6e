package repository

import (
	"context"

	"github.com/psims/scholar-portal/internal/domain/entity"
)

// ActivityRepository defines persistence for activity programs, events and
// per-event student uploads.
type ActivityRepository interface {
	CreateProgram(ctx context.Context, p *entity.ActivityProgram) error
	// ListProgramsByScholar returns the scholar's records most-recent-first.
	ListProgramsByScholar(ctx context.Context, scholarID string) ([]entity.ActivityProgram, error)

	ListEvents(ctx context.Context) ([]entity.ActivityEvent, error)
	GetEvent(ctx context.Context, id string) (*entity.ActivityEvent, error)

	// CreateUpload inserts a photo for (event, scholar) and reports false when
	// the scholar already uploaded one for that event.
	CreateUpload(ctx context.Context, u *entity.StudentUpload) (bool, error)
	ListUploadsByEvent(ctx context.Context, eventID string) ([]entity.StudentUpload, error)
}
