package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/metrics"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"

	log "github.com/sirupsen/logrus"
)

const maxPrescriptionImageBytes = 5 << 20

// Uploader stores an uploaded file and returns the URL naming it. Open reads
// a stored file back by that URL.
type Uploader interface {
	Upload(name string, data []byte) (string, error)
	Open(url string) (io.ReadCloser, error)
}

// PrescriptionService handles prescription upload and admin verification.
type PrescriptionService struct {
	repo     repositories.PrescriptionRepository
	products repositories.ProductRepository
	uploader Uploader
	notifier *Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewPrescriptionService(
	repo repositories.PrescriptionRepository,
	products repositories.ProductRepository,
	uploader Uploader,
	notifier *Notifier,
	m *metrics.Metrics,
) *PrescriptionService {
	return &PrescriptionService{
		repo:     repo,
		products: products,
		uploader: uploader,
		notifier: notifier,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UploadPrescriptionRequest carries the image as base64, optionally as a data URL.
type UploadPrescriptionRequest struct {
	Image         string     `json:"image" validate:"required"`
	DoctorName    string     `json:"doctor_name" validate:"required,max=100"`
	DoctorContact string     `json:"doctor_contact" validate:"max=100"`
	HospitalName  string     `json:"hospital_name" validate:"max=150"`
	PatientName   string     `json:"patient_name" validate:"max=100"`
	IssueDate     *time.Time `json:"issue_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}

type VerifyPrescriptionRequest struct {
	Status models.PrescriptionStatus `json:"status"`
	Notes  string                    `json:"notes"`
}

// PrescriptionEvent is the payload of prescription.* events.
type PrescriptionEvent struct {
	PrescriptionID string                    `json:"prescription_id"`
	UserID         string                    `json:"user_id"`
	Status         models.PrescriptionStatus `json:"status"`
	VerifiedBy     string                    `json:"verified_by,omitempty"`
}

// Upload stores the image and creates a pending prescription for the caller.
func (s *PrescriptionService) Upload(p models.Principal, req UploadPrescriptionRequest) (*models.Prescription, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.IssueDate != nil && req.ExpiryDate != nil && req.ExpiryDate.Before(*req.IssueDate) {
		return nil, apperr.Validation("expiry date must not be before issue date")
	}
	if req.ExpiryDate != nil && !req.ExpiryDate.After(s.now()) {
		return nil, apperr.Validation("prescription has already expired")
	}

	data, contentType, err := decodeImage(req.Image)
	if err != nil {
		return nil, err
	}
	url, err := s.uploader.Upload("prescription"+extensionFor(contentType), data)
	if err != nil {
		return nil, apperr.Internal(err, "failed to upload prescription image")
	}

	rx := &models.Prescription{
		UserID:        p.UserID,
		ImageURL:      url,
		DoctorName:    req.DoctorName,
		DoctorContact: req.DoctorContact,
		HospitalName:  req.HospitalName,
		PatientName:   req.PatientName,
		IssueDate:     req.IssueDate,
		ExpiryDate:    req.ExpiryDate,
		Status:        models.PrescriptionPending,
		ProductIDs:    []string{},
	}
	if err := s.repo.Create(rx); err != nil {
		return nil, err
	}
	s.notifier.Emit(EventPrescriptionUploaded, PrescriptionEvent{PrescriptionID: rx.ID, UserID: rx.UserID, Status: rx.Status})
	log.WithFields(log.Fields{"prescription_id": rx.ID, "user_id": p.UserID}).Info("prescription uploaded")
	return rx, nil
}

// LinkProducts replaces the products the prescription covers.
func (s *PrescriptionService) LinkProducts(p models.Principal, id string, productIDs []string) (*models.Prescription, error) {
	rx, err := s.visible(p, id)
	if err != nil {
		return nil, err
	}
	ids := dedupeAndTrim(productIDs)
	for _, productID := range ids {
		if _, err := s.products.GetByID(productID); err != nil {
			return nil, err
		}
	}
	rx.ProductIDs = ids
	if err := s.repo.Update(rx); err != nil {
		return nil, err
	}
	return rx, nil
}

// Verify records an admin decision. It overwrites any earlier decision.
func (s *PrescriptionService) Verify(p models.Principal, id string, req VerifyPrescriptionRequest) (*models.Prescription, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if req.Status != models.PrescriptionApproved && req.Status != models.PrescriptionRejected {
		return nil, apperr.Validation("status must be %s or %s", models.PrescriptionApproved, models.PrescriptionRejected)
	}
	rx, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	verifier := p.UserID
	rx.Status = req.Status
	rx.VerificationNotes = req.Notes
	rx.VerifiedBy = &verifier
	rx.VerificationDate = &now
	if err := s.repo.Update(rx); err != nil {
		return nil, err
	}

	s.metrics.IncPrescriptionVerified(string(req.Status))
	s.notifier.Emit(EventPrescriptionVerified, PrescriptionEvent{PrescriptionID: rx.ID, UserID: rx.UserID, Status: rx.Status, VerifiedBy: verifier})
	log.WithFields(log.Fields{"prescription_id": rx.ID, "status": rx.Status, "verified_by": verifier}).Info("prescription verified")
	return rx, nil
}

// Get returns a prescription visible to the caller.
func (s *PrescriptionService) Get(p models.Principal, id string) (*models.Prescription, error) {
	return s.visible(p, id)
}

// Image opens the stored image of a prescription visible to the caller.
// The caller closes the reader.
func (s *PrescriptionService) Image(p models.Principal, id string) (*models.Prescription, io.ReadCloser, error) {
	rx, err := s.visible(p, id)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.uploader.Open(rx.ImageURL)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, apperr.NotFound("image of prescription %s not found", id)
		}
		return nil, nil, fmt.Errorf("failed to open image of prescription %s: %w", id, err)
	}
	return rx, r, nil
}

// ListUser returns the caller's prescriptions, newest first.
func (s *PrescriptionService) ListUser(p models.Principal) ([]models.Prescription, error) {
	return s.repo.GetAll(models.PrescriptionFilter{UserID: p.UserID})
}

// ListAll returns prescriptions matching filter. Admin only.
func (s *PrescriptionService) ListAll(p models.Principal, filter models.PrescriptionFilter) ([]models.Prescription, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	switch filter.Status {
	case "", models.PrescriptionPending, models.PrescriptionApproved, models.PrescriptionRejected:
	default:
		return nil, apperr.Validation("invalid prescription status: %s", filter.Status)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperr.Validation("'to' must not be before 'from'")
	}
	return s.repo.GetAll(filter)
}

func (s *PrescriptionService) visible(p models.Principal, id string) (*models.Prescription, error) {
	rx, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !p.Owns(rx.UserID) {
		return nil, apperr.Forbidden("not allowed to access prescription %s", id)
	}
	return rx, nil
}

// decodeImage accepts raw base64 or a data URL and returns the bytes and their
// sniffed content type.
func decodeImage(encoded string) ([]byte, string, error) {
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, "", apperr.Validation("image is not valid base64: %v", err)
	}
	if len(data) == 0 {
		return nil, "", apperr.Validation("image is empty")
	}
	if len(data) > maxPrescriptionImageBytes {
		return nil, "", apperr.Validation("image exceeds %d bytes", maxPrescriptionImageBytes)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		return nil, "", apperr.Validation("unsupported image type %s", contentType)
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	}
	return fmt.Sprintf(".%s", strings.TrimPrefix(contentType, "image/"))
}

// dedupeAndTrim drops blanks and duplicates, preserving order.
func dedupeAndTrim(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
