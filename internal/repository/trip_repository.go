package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/service"
)

// TripRepository implements service.TripStore.
type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create persists a new ticket. A reserved number is only accepted when an
// active reservation backs it: reservations are the step that bumped the
// counter, so an unbacked number would sidestep the allocator entirely.
func (r *TripRepository) Create(ctx context.Context, t *model.TripTicket) error {
	t.Version = 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.SerialNumberReserved != nil {
			var count int64
			err := tx.Model(&model.SerialReservation{}).
				Where("organization_id = ? AND kind = ? AND control_number = ? AND status = ?",
					t.OrganizationID, model.KindDTT, *t.SerialNumberReserved, model.ReservationReserved).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: no held reservation for %s", service.ErrNotFound, *t.SerialNumberReserved)
			}
		}
		return tx.Create(t).Error
	})
	return translate(err)
}

func (r *TripRepository) Get(ctx context.Context, id uuid.UUID) (*model.TripTicket, error) {
	var t model.TripTicket
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TripRepository) Update(ctx context.Context, id uuid.UUID, version int64, apply func(*model.TripTicket) error) (*model.TripTicket, error) {
	var out *model.TripTicket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := r.lockChecked(tx, id, version)
		if err != nil {
			return err
		}
		if err := apply(t); err != nil {
			return err
		}
		if err := r.save(tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Approve stamps the DTT serial. A held reservation matching the ticket's
// reserved number becomes used and linked instead of minting a new number.
func (r *TripRepository) Approve(ctx context.Context, id uuid.UUID, version int64, grant service.SerialGrant, apply func(*model.TripTicket, string) error) (*model.TripTicket, error) {
	var out *model.TripTicket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := r.lockChecked(tx, id, version)
		if err != nil {
			return err
		}

		number, err := r.consumeReservation(tx, t)
		if err != nil {
			return err
		}
		if number == "" {
			number, err = claimSerial(tx, t.OrganizationID, grant, time.Now())
			if err != nil {
				return err
			}
		}

		if err := apply(t, number); err != nil {
			return err
		}
		if err := r.save(tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *TripRepository) consumeReservation(tx *gorm.DB, t *model.TripTicket) (string, error) {
	if t.SerialNumberReserved == nil {
		return "", nil
	}
	var res model.SerialReservation
	err := tx.Clauses(lockForUpdate()).
		First(&res, "organization_id = ? AND kind = ? AND control_number = ? AND status = ?",
			t.OrganizationID, model.KindDTT, *t.SerialNumberReserved, model.ReservationReserved).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	res.Status = model.ReservationUsed
	res.TicketID = &t.ID
	res.UpdatedAt = time.Now()
	if err := tx.Save(&res).Error; err != nil {
		return "", err
	}
	return res.ControlNumber, nil
}

func (r *TripRepository) lockChecked(tx *gorm.DB, id uuid.UUID, version int64) (*model.TripTicket, error) {
	var t model.TripTicket
	if err := tx.Clauses(lockForUpdate()).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if t.Version != version {
		return nil, &service.ConflictError{
			CurrentStatus:  string(t.Status),
			CurrentVersion: t.Version,
		}
	}
	return &t, nil
}

func (r *TripRepository) save(tx *gorm.DB, t *model.TripTicket) error {
	t.Version++
	t.UpdatedAt = time.Now()
	return tx.Save(t).Error
}
