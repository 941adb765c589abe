package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/service"
)

// ReservationRepository implements service.ReservationStore. The number
// assignment, its duplicate checks and the counter bump run in one
// transaction keyed on the counter row.
type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Reserve(ctx context.Context, res *model.SerialReservation, grant service.SerialGrant) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := claimSerial(tx, res.OrganizationID, grant, time.Now())
		if err != nil {
			return err
		}
		res.ControlNumber = number
		return tx.Create(res).Error
	})
	return translate(err)
}

func (r *ReservationRepository) List(ctx context.Context, orgID uuid.UUID, kind model.DocumentKind) ([]model.SerialReservation, error) {
	var rows []model.SerialReservation
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND kind = ?", orgID, kind).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}
