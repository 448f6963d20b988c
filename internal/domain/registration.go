package domain

import "time"

type RegistrationStatus string

const (
	RegistrationStatusUnderReview       RegistrationStatus = "UNDER_REVIEW"
	RegistrationStatusResubmitRequested RegistrationStatus = "RESUBMIT_REQUESTED"
	RegistrationStatusApproved          RegistrationStatus = "APPROVED"
	RegistrationStatusRejected          RegistrationStatus = "REJECTED"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// Registration is a franchise-partner application. Rows are never deleted;
// rejection is a terminal-but-reversible state, not erasure.
type Registration struct {
	ID              string             `json:"id"` // assigned at submission, immutable
	CompanyName     string             `json:"company_name"`
	ContactName     string             `json:"contact_name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Region          string             `json:"region"`
	Note            string             `json:"note"`
	Status          RegistrationStatus `json:"status"`
	ApprovalStatus  ApprovalStatus     `json:"approval_status"`
	ApproverName    string             `json:"approver_name"`
	RejectionReason string             `json:"rejection_reason"`
	SubmittedOn     time.Time          `json:"submitted_on"`
	DecidedOn       *time.Time         `json:"decided_on,omitempty"`
	UpdatedOn       time.Time          `json:"updated_on"`
}
