package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/psims/scholar-portal/internal/application"
	"github.com/psims/scholar-portal/internal/domain/entity"
	"github.com/psims/scholar-portal/pkg/response"
)

// ActivityHandler serves activity programs, events and event photo uploads.
// Submissions arrive as multipart forms; attachments are memory-buffered and
// capped before they reach the service.
type ActivityHandler struct {
	Svc    *application.ActivityService
	Logger *logrus.Logger
}

func NewActivityHandler(svc *application.ActivityService, logger *logrus.Logger) *ActivityHandler {
	return &ActivityHandler{Svc: svc, Logger: logger}
}

// readAttachment buffers an optional form file. A missing file yields nil
// data and no error; an oversized one fails before the whole body is read.
func readAttachment(c *gin.Context, field string) ([]byte, string, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	if header.Size > application.MaxImageBytes {
		return nil, "", application.ErrImageTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, application.MaxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > application.MaxImageBytes {
		return nil, "", application.ErrImageTooLarge
	}
	return data, header.Header.Get("Content-Type"), nil
}

func programJSON(p entity.ActivityProgram) gin.H {
	out := gin.H{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"start_date":  p.StartDate.Format(dateLayout),
		"end_date":    p.EndDate.Format(dateLayout),
		"has_image":   p.HasImage(),
		"created_at":  p.CreatedAt,
	}
	if p.HasImage() {
		out["image_data"] = *p.ImageData
		out["image_media_type"] = *p.ImageMediaType
	}
	return out
}

// ListPrograms GET /api/activities
func (h *ActivityHandler) ListPrograms(c *gin.Context) {
	programs, err := h.Svc.ListPrograms(c.Request.Context(), c.GetString("scholarID"))
	if err != nil {
		h.Logger.WithError(err).Error("activity listing failed")
		response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		return
	}
	out := make([]gin.H, 0, len(programs))
	for _, p := range programs {
		out = append(out, programJSON(p))
	}
	response.Success(c, http.StatusOK, out, "activity programs", nil)
}

// SubmitProgram POST /api/activities (multipart; optional "image" file)
func (h *ActivityHandler) SubmitProgram(c *gin.Context) {
	image, mediaType, err := readAttachment(c, "image")
	if err != nil {
		h.writeActivityError(c, err)
		return
	}

	in := application.SubmitProgramInput{
		Title:          c.PostForm("title"),
		Description:    c.PostForm("description"),
		StartDate:      c.PostForm("start_date"),
		EndDate:        c.PostForm("end_date"),
		Image:          image,
		ImageMediaType: mediaType,
	}
	p, err := h.Svc.SubmitProgram(c.Request.Context(), c.GetString("scholarID"), in)
	if err != nil {
		h.writeActivityError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, programJSON(*p), "activity program submitted", nil)
}

func eventJSON(e entity.ActivityEvent) gin.H {
	item := gin.H{
		"id":         e.ID,
		"title":      e.Title,
		"held_date":  e.HeldDate.Format(dateLayout),
		"has_banner": e.BannerData != nil,
	}
	if e.BannerData != nil && e.BannerMediaType != nil {
		item["banner_data"] = *e.BannerData
		item["banner_media_type"] = *e.BannerMediaType
	}
	return item
}

// ListEvents GET /api/events
func (h *ActivityHandler) ListEvents(c *gin.Context) {
	events, err := h.Svc.ListEvents(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("event listing failed")
		response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		return
	}
	out := make([]gin.H, 0, len(events))
	for _, e := range events {
		out = append(out, eventJSON(e))
	}
	response.Success(c, http.StatusOK, out, "activity events", nil)
}

// GetEvent GET /api/events/:id
func (h *ActivityHandler) GetEvent(c *gin.Context) {
	e, uploads, err := h.Svc.EventDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeActivityError(c, err)
		return
	}
	ups := make([]gin.H, 0, len(uploads))
	for _, u := range uploads {
		ups = append(ups, gin.H{
			"id":               u.ID,
			"scholar_id":       u.ScholarID,
			"photo_data":       u.PhotoData,
			"photo_media_type": u.PhotoMediaType,
			"uploaded_at":      u.UploadedAt,
		})
	}
	item := eventJSON(*e)
	item["uploads"] = ups
	response.Success(c, http.StatusOK, item, "activity event", nil)
}

// UploadEventPhoto POST /api/events/:id/upload (multipart; required "photo" file)
func (h *ActivityHandler) UploadEventPhoto(c *gin.Context) {
	photo, mediaType, err := readAttachment(c, "photo")
	if err != nil {
		h.writeActivityError(c, err)
		return
	}

	u, err := h.Svc.UploadEventPhoto(c.Request.Context(), c.Param("id"), c.GetString("scholarID"), photo, mediaType)
	if err != nil {
		h.writeActivityError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":          u.ID,
		"event_id":    u.EventID,
		"uploaded_at": u.UploadedAt,
	}, "photo uploaded", nil)
}

func (h *ActivityHandler) writeActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrMissingField):
		response.Error[any](c, http.StatusBadRequest, "Title, start date and end date are required.", nil)
	case errors.Is(err, application.ErrEndBeforeStart):
		response.Error[any](c, http.StatusBadRequest, "End Date cannot be before Start Date.", nil)
	case errors.Is(err, application.ErrNotAnImage):
		response.Error[any](c, http.StatusBadRequest, "Only image files are allowed!", nil)
	case errors.Is(err, application.ErrImageTooLarge):
		response.Error[any](c, http.StatusRequestEntityTooLarge, "Image must be 5MB or smaller.", nil)
	case errors.Is(err, application.ErrEventNotFound):
		response.Error[any](c, http.StatusNotFound, "Event not found.", nil)
	case errors.Is(err, application.ErrAlreadyUploaded):
		response.Error[any](c, http.StatusConflict, "You have already uploaded a photo for this event.", nil)
	default:
		h.Logger.WithError(err).Error("activity request failed")
		response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
	}
}
