package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
)

// MockPrescriptionRepository is an in-memory implementation of PrescriptionRepository.
type MockPrescriptionRepository struct {
	prescriptions map[string]models.Prescription
	mu            sync.RWMutex
}

func NewMockPrescriptionRepository() *MockPrescriptionRepository {
	return &MockPrescriptionRepository{
		prescriptions: make(map[string]models.Prescription),
	}
}

func (r *MockPrescriptionRepository) Create(p *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.prescriptions[p.ID] = clonePrescription(*p)
	return nil
}

func (r *MockPrescriptionRepository) GetByID(id string) (*models.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prescriptions[id]
	if !ok {
		return nil, apperr.NotFound("prescription with ID %s not found", id)
	}
	p = clonePrescription(p)
	return &p, nil
}

func (r *MockPrescriptionRepository) Update(p *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prescriptions[p.ID]; !ok {
		return apperr.NotFound("prescription with ID %s not found for update", p.ID)
	}
	p.UpdatedAt = time.Now().UTC()
	r.prescriptions[p.ID] = clonePrescription(*p)
	return nil
}

func (r *MockPrescriptionRepository) GetAll(filter models.PrescriptionFilter) ([]models.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doctor := strings.ToLower(filter.Doctor)
	var list []models.Prescription
	for _, p := range r.prescriptions {
		switch {
		case filter.UserID != "" && p.UserID != filter.UserID:
			continue
		case filter.Status != "" && p.Status != filter.Status:
			continue
		case doctor != "" && !strings.Contains(strings.ToLower(p.DoctorName), doctor):
			continue
		case filter.From != nil && p.CreatedAt.Before(*filter.From):
			continue
		case filter.To != nil && p.CreatedAt.After(*filter.To):
			continue
		case filter.Verified != nil && (p.VerifiedBy != nil) != *filter.Verified:
			continue
		}
		list = append(list, clonePrescription(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func clonePrescription(p models.Prescription) models.Prescription {
	p.ProductIDs = append([]string(nil), p.ProductIDs...)
	return p
}
