package entity

import (
	"fmt"
	"time"
)

// PayrollRequestStatus is the scholar's position in the payroll request cycle.
// Transitions happen only through ScholarService.RequestPayroll; Fulfilled is
// reached by the external disbursement process that appends to the history.
type PayrollRequestStatus string

const (
	PayrollNoRequest PayrollRequestStatus = "NoRequest"
	PayrollPending   PayrollRequestStatus = "Pending"
	PayrollFulfilled PayrollRequestStatus = "Fulfilled"
)

// Valid reports whether s is one of the known states. The zero value is
// treated as NoRequest when loading legacy rows.
func (s PayrollRequestStatus) Valid() bool {
	switch s {
	case PayrollNoRequest, PayrollPending, PayrollFulfilled:
		return true
	}
	return false
}

// PayrollRecord is a staged or fulfilled payroll entry.
type PayrollRecord struct {
	SchoolYear      string
	IssuedDate      time.Time
	DistributedDate *time.Time
	PayrollNumber   string
}

// Scholar is the aggregate root for a scholarship recipient.
// PasswordHash is nil until the account completes initialization and is never
// unset afterwards. ResetToken and ResetTokenExpires are set and cleared
// together.
type Scholar struct {
	ID               string
	FirstName        string
	MiddleName       string
	LastName         string
	BirthDate        time.Time
	Sex              string
	StudentID        string
	Address          string
	ContactNumber    string
	Email            string
	SchoolType       string
	SchoolLevel      string
	SchoolName       string
	YearLevel        string
	AverageGrade     float64
	EnrollmentDate   time.Time
	GraduationStatus string
	GraduationDate   *time.Time

	Username           string
	PasswordHash       *string
	InitializationCode string
	ResetToken         *string
	ResetTokenExpires  *time.Time

	PayrollRequestStatus   PayrollRequestStatus
	LastPayrollRequestDate *time.Time
	RenewalStatus          string
	RenewalDate            *time.Time
	StagedPayroll          *PayrollRecord
	PayrollHistory         []PayrollRecord

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Initialized reports whether the account has completed initialization.
func (s *Scholar) Initialized() bool {
	return s.PasswordHash != nil
}

// FullName joins the name parts, skipping an empty middle name.
func (s *Scholar) FullName() string {
	if s.MiddleName == "" {
		return s.FirstName + " " + s.LastName
	}
	return s.FirstName + " " + s.MiddleName + " " + s.LastName
}

// HasValidResetToken reports whether the reset token matches and has not
// expired at instant now. Expired tokens are treated as absent.
func (s *Scholar) HasValidResetToken(token string, now time.Time) bool {
	if s.ResetToken == nil || s.ResetTokenExpires == nil || token == "" {
		return false
	}
	return *s.ResetToken == token && s.ResetTokenExpires.After(now)
}

// RequestGate is the reason a payroll request is rejected, or GateOpen.
type RequestGate int

const (
	GateOpen RequestGate = iota
	GateNotStaged
	GateAlreadyRequested
	GateAlreadyPending
)

// PayrollRequestGate evaluates the payroll request checks in order:
// staging first, then the renewal-period gate, then the pending gate.
func (s *Scholar) PayrollRequestGate(schoolYear string, _ time.Time) RequestGate {
	if s.StagedPayroll == nil || s.StagedPayroll.SchoolYear != schoolYear {
		return GateNotStaged
	}
	if s.LastPayrollRequestDate != nil && s.RenewalDate != nil &&
		s.LastPayrollRequestDate.After(*s.RenewalDate) {
		return GateAlreadyRequested
	}
	if s.PayrollRequestStatus == PayrollPending {
		return GateAlreadyPending
	}
	return GateOpen
}

// SchoolYearAt returns the school year containing t. School years run
// July through June and are identified as "Y-(Y+1)".
func SchoolYearAt(t time.Time) string {
	year := t.Year()
	if t.Month() < time.July {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}

// CurrentSchoolYear returns the school year containing the present moment.
func CurrentSchoolYear() string {
	return SchoolYearAt(time.Now())
}
