package repositories

import (
	"errors"
	"fmt"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPrescriptionRepository is a GORM implementation of PrescriptionRepository.
type GORMPrescriptionRepository struct {
	db *gorm.DB
}

func NewGORMPrescriptionRepository(db *gorm.DB) *GORMPrescriptionRepository {
	return &GORMPrescriptionRepository{db: db}
}

func (r *GORMPrescriptionRepository) Create(p *models.Prescription) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := r.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *GORMPrescriptionRepository) GetByID(id string) (*models.Prescription, error) {
	var p models.Prescription
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("prescription with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get prescription by ID %s: %w", id, err)
	}
	return &p, nil
}

func (r *GORMPrescriptionRepository) Update(p *models.Prescription) error {
	res := r.db.Model(p).Select("*").Omit("created_at").Updates(p)
	if res.Error != nil {
		return fmt.Errorf("failed to update prescription %s: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("prescription with ID %s not found for update", p.ID)
	}
	return nil
}

// GetAll returns the prescriptions matching filter, newest first.
func (r *GORMPrescriptionRepository) GetAll(filter models.PrescriptionFilter) ([]models.Prescription, error) {
	q := r.db.Model(&models.Prescription{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Doctor != "" {
		q = q.Where(`LOWER(doctor_name) LIKE ? ESCAPE '\'`, containsPattern(filter.Doctor))
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.Verified != nil {
		if *filter.Verified {
			q = q.Where("verified_by IS NOT NULL")
		} else {
			q = q.Where("verified_by IS NULL")
		}
	}

	var list []models.Prescription
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to get prescriptions: %w", err)
	}
	return list, nil
}
