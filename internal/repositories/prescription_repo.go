package repositories

import "pharmacy/internal/models"

// PrescriptionRepository defines the interface for prescription data access.
type PrescriptionRepository interface {
	Create(p *models.Prescription) error
	GetByID(id string) (*models.Prescription, error)
	Update(p *models.Prescription) error
	GetAll(filter models.PrescriptionFilter) ([]models.Prescription, error)
}
