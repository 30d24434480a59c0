package models

import "time"

type PrescriptionStatus string

const (
	PrescriptionPending  PrescriptionStatus = "pending"
	PrescriptionApproved PrescriptionStatus = "approved"
	PrescriptionRejected PrescriptionStatus = "rejected"
)

// Prescription is an uploaded document gating restricted products.
type Prescription struct {
	ID                string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string             `json:"user_id" gorm:"index;type:varchar(36)"`
	ImageURL          string             `json:"image_url"`
	DoctorName        string             `json:"doctor_name" gorm:"index"`
	DoctorContact     string             `json:"doctor_contact"`
	HospitalName      string             `json:"hospital_name"`
	PatientName       string             `json:"patient_name"`
	IssueDate         *time.Time         `json:"issue_date,omitempty"`
	ExpiryDate        *time.Time         `json:"expiry_date,omitempty"`
	Status            PrescriptionStatus `json:"status" gorm:"index;type:varchar(16)"`
	ProductIDs        []string           `json:"product_ids" gorm:"type:text;serializer:json"`
	VerifiedBy        *string            `json:"verified_by,omitempty" gorm:"type:varchar(36)"`
	VerificationDate  *time.Time         `json:"verification_date,omitempty"`
	VerificationNotes string             `json:"verification_notes"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Usable reports whether the prescription can back a purchase at now.
func (p *Prescription) Usable(now time.Time) bool {
	if p.Status != PrescriptionApproved {
		return false
	}
	return p.ExpiryDate == nil || p.ExpiryDate.After(now)
}

// PrescriptionFilter narrows prescription listings.
type PrescriptionFilter struct {
	UserID   string
	Status   PrescriptionStatus
	Doctor   string // case-insensitive substring of DoctorName
	From     *time.Time
	To       *time.Time
	Verified *bool
}
