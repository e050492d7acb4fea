package models

// EnrollmentStatus represents the lifecycle of a career enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusInactive  EnrollmentStatus = "inactive"
	EnrollmentStatusSuspended EnrollmentStatus = "suspended"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusAbandoned EnrollmentStatus = "abandoned"
)

// ValidEnrollmentStatuses is the closed set accepted by status transitions.
var ValidEnrollmentStatuses = map[EnrollmentStatus]bool{
	EnrollmentStatusActive:    true,
	EnrollmentStatusInactive:  true,
	EnrollmentStatusSuspended: true,
	EnrollmentStatusCompleted: true,
	EnrollmentStatusAbandoned: true,
}

// Valid reports whether the status belongs to the closed set.
func (s EnrollmentStatus) Valid() bool {
	return ValidEnrollmentStatuses[s]
}

// CareerEnrollment captures a student's registration to one career.
// The (student, career) pair is the identity. Among a student's active
// enrollments at most one may carry the principal flag; that invariant is
// checked by the enrollment service, not by a store constraint.
type CareerEnrollment struct {
	StudentID       int64            `db:"student_id" json:"student_id"`
	CareerID        int64            `db:"career_id" json:"career_id"`
	Status          EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt      string           `db:"enrolled_at" json:"enrolled_at"`
	StartDate       *string          `db:"start_date" json:"start_date,omitempty"`
	EndDate         *string          `db:"end_date" json:"end_date,omitempty"`
	Principal       bool             `db:"principal" json:"principal"`
	AdmissionPeriod *string          `db:"admission_period" json:"admission_period,omitempty"`
	Notes           *string          `db:"notes" json:"notes,omitempty"`
}
