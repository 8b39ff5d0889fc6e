package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/psims/scholar-portal/internal/application"
	"github.com/psims/scholar-portal/internal/domain/entity"
	"github.com/psims/scholar-portal/pkg/response"
	"github.com/psims/scholar-portal/pkg/validation"
)

// ScholarHandler serves the profile, payroll and settings pages.
type ScholarHandler struct {
	Svc    *application.ScholarService
	Logger *logrus.Logger
}

func NewScholarHandler(svc *application.ScholarService, logger *logrus.Logger) *ScholarHandler {
	return &ScholarHandler{Svc: svc, Logger: logger}
}

const dateLayout = "2006-01-02"

func payrollRecordJSON(r entity.PayrollRecord) gin.H {
	out := gin.H{
		"school_year":    r.SchoolYear,
		"issued_date":    r.IssuedDate.Format(dateLayout),
		"payroll_number": r.PayrollNumber,
	}
	if r.DistributedDate != nil {
		out["distributed_date"] = r.DistributedDate.Format(dateLayout)
	}
	return out
}

func scholarJSON(s *entity.Scholar) gin.H {
	out := gin.H{
		"id":                     s.ID,
		"first_name":             s.FirstName,
		"middle_name":            s.MiddleName,
		"last_name":              s.LastName,
		"birth_date":             s.BirthDate.Format(dateLayout),
		"sex":                    s.Sex,
		"student_id":             s.StudentID,
		"address":                s.Address,
		"contact_number":         s.ContactNumber,
		"email":                  s.Email,
		"school_type":            s.SchoolType,
		"school_level":           s.SchoolLevel,
		"school_name":            s.SchoolName,
		"year_level":             s.YearLevel,
		"average_grade":          s.AverageGrade,
		"enrollment_date":        s.EnrollmentDate.Format(dateLayout),
		"graduation_status":      s.GraduationStatus,
		"username":               s.Username,
		"payroll_request_status": s.PayrollRequestStatus,
		"renewal_status":         s.RenewalStatus,
	}
	if s.GraduationDate != nil {
		out["graduation_date"] = s.GraduationDate.Format(dateLayout)
	}
	if s.RenewalDate != nil {
		out["renewal_date"] = s.RenewalDate.Format(time.RFC3339)
	}
	if s.LastPayrollRequestDate != nil {
		out["last_payroll_request_date"] = s.LastPayrollRequestDate.Format(time.RFC3339)
	}
	if s.StagedPayroll != nil {
		out["staged_payroll"] = payrollRecordJSON(*s.StagedPayroll)
	}
	return out
}

// GetProfile GET /api/profile
func (h *ScholarHandler) GetProfile(c *gin.Context) {
	sc, err := h.Svc.Profile(c.Request.Context(), c.GetString("scholarID"))
	if err != nil {
		if errors.Is(err, application.ErrScholarNotFound) {
			response.Error[any](c, http.StatusNotFound, "scholar not found", nil)
			return
		}
		h.Logger.WithError(err).Error("profile lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		return
	}
	response.Success(c, http.StatusOK, scholarJSON(sc), "profile",
		gin.H{"current_school_year": entity.CurrentSchoolYear()})
}

// GetPayroll GET /api/payroll
func (h *ScholarHandler) GetPayroll(c *gin.Context) {
	sc, err := h.Svc.PayrollOverview(c.Request.Context(), c.GetString("scholarID"))
	if err != nil {
		if errors.Is(err, application.ErrScholarNotFound) {
			response.Error[any](c, http.StatusNotFound, "scholar not found", nil)
			return
		}
		h.Logger.WithError(err).Error("payroll lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		return
	}
	history := make([]gin.H, 0, len(sc.PayrollHistory))
	for _, rec := range sc.PayrollHistory {
		history = append(history, payrollRecordJSON(rec))
	}
	data := scholarJSON(sc)
	data["payroll_history"] = history
	response.Success(c, http.StatusOK, data, "payroll",
		gin.H{"current_school_year": entity.CurrentSchoolYear()})
}

// RequestPayroll POST /api/payroll/request
func (h *ScholarHandler) RequestPayroll(c *gin.Context) {
	err := h.Svc.RequestPayroll(c.Request.Context(), c.GetString("scholarID"))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotStaged):
			response.Error[any](c, http.StatusConflict, "Payroll is still not available.", nil)
		case errors.Is(err, application.ErrAlreadyRequested):
			response.Error[any](c, http.StatusConflict, "Payroll already requested for this renewal period.", nil)
		case errors.Is(err, application.ErrAlreadyPending):
			response.Error[any](c, http.StatusConflict, "Payroll request already pending.", nil)
		case errors.Is(err, application.ErrScholarNotFound):
			response.Error[any](c, http.StatusNotFound, "scholar not found", nil)
		default:
			h.Logger.WithError(err).Error("payroll request failed")
			response.Error[any](c, http.StatusInternalServerError, "An error occurred. Please try again.", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"status": entity.PayrollPending}, "Payroll request submitted successfully.", nil)
}

type updateContactRequest struct {
	ContactNumber string `json:"contact_number" binding:"required"`
}

// UpdateContact PUT /api/settings/contact
func (h *ScholarHandler) UpdateContact(c *gin.Context) {
	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.UpdateContact(c.Request.Context(), c.GetString("scholarID"), req.ContactNumber)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidContact):
			response.Error[any](c, http.StatusBadRequest, "Please enter a valid contact number.", nil)
		case errors.Is(err, application.ErrScholarNotFound):
			response.Error[any](c, http.StatusNotFound, "scholar not found", nil)
		default:
			h.Logger.WithError(err).Error("contact update failed")
			response.Error[any](c, http.StatusInternalServerError, "Failed to update contact number. Please try again.", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "Contact number updated successfully!", nil)
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"current_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
}

// ChangePassword PUT /api/settings/password
func (h *ScholarHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Please fill in all password fields.", validation.ToDetails(err))
		return
	}
	err := h.Svc.ChangePassword(c.Request.Context(), c.GetString("scholarID"),
		req.CurrentPassword, req.NewPassword, req.ConfirmNewPassword)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrPasswordTooShort):
			response.Error[any](c, http.StatusBadRequest, "New password must be at least 8 characters long.", nil)
		case errors.Is(err, application.ErrPasswordMismatch):
			response.Error[any](c, http.StatusBadRequest, "New passwords do not match.", nil)
		case errors.Is(err, application.ErrMissingField):
			response.Error[any](c, http.StatusBadRequest, "Please fill in all password fields.", nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error[any](c, http.StatusUnauthorized, "Incorrect current password.", nil)
		case errors.Is(err, application.ErrScholarNotFound):
			response.Error[any](c, http.StatusNotFound, "scholar not found", nil)
		default:
			h.Logger.WithError(err).Error("password change failed")
			response.Error[any](c, http.StatusInternalServerError, "An error occurred while changing the password. Please try again.", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "Password changed successfully!", nil)
}
