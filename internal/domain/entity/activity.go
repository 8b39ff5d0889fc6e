package entity

import "time"

// ActivityProgram is a scholar-submitted activity record. It is immutable
// once created; there is no edit or delete path. ImageData holds the
// base64-encoded image and is set together with ImageMediaType or not at all.
type ActivityProgram struct {
	ID             string
	ScholarID      string
	Title          string
	Description    string
	ImageData      *string
	ImageMediaType *string
	StartDate      time.Time
	EndDate        time.Time
	CreatedAt      time.Time
}

// HasImage reports whether an image was attached at submission time.
func (p *ActivityProgram) HasImage() bool {
	return p.ImageData != nil && p.ImageMediaType != nil
}

// ActivityEvent is an event published for scholars, with an optional banner.
type ActivityEvent struct {
	ID              string
	Title           string
	HeldDate        time.Time
	BannerData      *string
	BannerMediaType *string
	CreatedAt       time.Time
}

// StudentUpload is a scholar's photo for an activity event. A scholar may
// upload at most one photo per event.
type StudentUpload struct {
	ID             string
	EventID        string
	ScholarID      string
	PhotoData      string
	PhotoMediaType string
	UploadedAt     time.Time
}
