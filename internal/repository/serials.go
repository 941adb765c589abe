package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/serial"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/service"
)

func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// lockCounter returns the (kind, scope, org) counter row locked FOR UPDATE,
// creating it at seed first if it does not exist. Every competing claim and
// allocation serializes on this lock.
func lockCounter(tx *gorm.DB, kind model.DocumentKind, scope string, orgID uuid.UUID, seed int64) (*model.SequenceCounter, error) {
	err := tx.Exec(`
		INSERT INTO sequence_counters (id, kind, scope, organization_id, counter, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW())
		ON CONFLICT (kind, scope, organization_id) DO NOTHING
	`, uuid.New(), kind, scope, orgID, seed).Error
	if err != nil {
		return nil, err
	}

	var counter model.SequenceCounter
	err = tx.Clauses(lockForUpdate()).
		First(&counter, "kind = ? AND scope = ? AND organization_id = ?", kind, scope, orgID).Error
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

// serialTaken runs the duplicate checks for a manually entered number:
// already a document serial, already reserved on a document, or an active
// standalone reservation of the same kind.
func serialTaken(tx *gorm.DB, kind model.DocumentKind, orgID uuid.UUID, number string) (bool, error) {
	var count int64
	switch kind {
	case model.KindRIS:
		err := tx.Model(&model.Requisition{}).
			Where("organization_id = ? AND ris_number = ?", orgID, number).
			Count(&count).Error
		if err != nil {
			return false, err
		}
	case model.KindDTT:
		err := tx.Model(&model.TripTicket{}).
			Where("organization_id = ? AND (serial_number = ? OR serial_number_reserved = ?)", orgID, number, number).
			Count(&count).Error
		if err != nil {
			return false, err
		}
	}
	if count > 0 {
		return true, nil
	}

	err := tx.Model(&model.SerialReservation{}).
		Where("organization_id = ? AND kind = ? AND control_number = ? AND status = ?",
			orgID, kind, number, model.ReservationReserved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// claimSerial obtains a control number inside the caller's transaction. The
// automatic path takes counter+1; the manual path runs the duplicate checks
// and bumps the counter to at least the claimed ordinal so automatic
// allocation can never reissue it. Both paths hold the counter row lock for
// the rest of the transaction.
func claimSerial(tx *gorm.DB, orgID uuid.UUID, grant service.SerialGrant, now time.Time) (string, error) {
	if grant.Manual != nil {
		n := grant.Manual
		counter, err := lockCounter(tx, grant.Kind, n.Scope, orgID, grant.Seed)
		if err != nil {
			return "", err
		}
		taken, err := serialTaken(tx, grant.Kind, orgID, n.Value)
		if err != nil {
			return "", err
		}
		if taken {
			return "", fmt.Errorf("%w: %s", service.ErrAlreadyInUse, n.Value)
		}
		if n.Ordinal > counter.Counter {
			counter.Counter = n.Ordinal
			counter.UpdatedAt = now
			if err := tx.Save(counter).Error; err != nil {
				return "", err
			}
		}
		return n.Value, nil
	}

	counter, err := lockCounter(tx, grant.Kind, grant.Scope, orgID, grant.Seed)
	if err != nil {
		return "", err
	}
	counter.Counter++
	counter.UpdatedAt = now
	if err := tx.Save(counter).Error; err != nil {
		return "", err
	}
	return serial.Format(grant.Kind, grant.Prefix, grant.Scope, counter.Counter), nil
}

// translate maps store errors onto the service taxonomy. Serialization
// failures and deadlocks surface as transient; unique-index violations are
// the backstop for control-number races.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", service.ErrTransientStore, err)
		case "23505":
			return fmt.Errorf("%w: %v", service.ErrAlreadyInUse, err)
		}
	}
	return err
}
