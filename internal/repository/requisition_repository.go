package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/serial"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/service"
)

// RequisitionRepository implements service.RequisitionStore on PostgreSQL.
// Every mutation runs inside one gorm transaction: the document row is
// locked FOR UPDATE, the caller's version is checked against the stored one,
// and the version is bumped on commit.
type RequisitionRepository struct {
	db *gorm.DB
}

func NewRequisitionRepository(db *gorm.DB) *RequisitionRepository {
	return &RequisitionRepository{db: db}
}

func (r *RequisitionRepository) Create(ctx context.Context, req *model.Requisition) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := serial.ScopeFor(model.KindRef, req.CreatedAt)
		counter, err := lockCounter(tx, model.KindRef, scope, req.OrganizationID, 0)
		if err != nil {
			return err
		}
		counter.Counter++
		counter.UpdatedAt = req.CreatedAt
		if err := tx.Save(counter).Error; err != nil {
			return err
		}
		req.RefNumber = counter.Counter
		req.Version = 1
		return tx.Create(req).Error
	})
	return translate(err)
}

func (r *RequisitionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Requisition, error) {
	var req model.Requisition
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *RequisitionRepository) Update(ctx context.Context, id uuid.UUID, version int64, apply func(*model.Requisition) error) (*model.Requisition, error) {
	var out *model.Requisition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := r.lockChecked(tx, id, version)
		if err != nil {
			return err
		}
		if err := apply(req); err != nil {
			return err
		}
		if err := r.save(tx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *RequisitionRepository) Issue(ctx context.Context, id uuid.UUID, version int64, grant service.SerialGrant, apply func(*model.Requisition, string) error) (*model.Requisition, error) {
	var out *model.Requisition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := r.lockChecked(tx, id, version)
		if err != nil {
			return err
		}
		number, err := claimSerial(tx, req.OrganizationID, grant, time.Now())
		if err != nil {
			return err
		}
		if err := apply(req, number); err != nil {
			return err
		}
		if err := r.save(tx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *RequisitionRepository) Verify(ctx context.Context, id uuid.UUID, version int64, deduct service.Deduction, apply func(*model.Requisition) error) (*model.Requisition, error) {
	var out *model.Requisition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := r.lockChecked(tx, id, version)
		if err != nil {
			return err
		}
		// Guards run before the contract row is even read, so a stale
		// version can never leave a partial ledger mutation behind.
		if err := apply(req); err != nil {
			return err
		}

		var contract model.Contract
		if err := tx.Clauses(lockForUpdate()).First(&contract, "id = ?", deduct.ContractID).Error; err != nil {
			return err
		}
		row := contract.ApplyDeduction(deduct.Amount, &req.ID, deduct.ActorID, deduct.Remarks, time.Now())
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := r.save(tx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *RequisitionRepository) lockChecked(tx *gorm.DB, id uuid.UUID, version int64) (*model.Requisition, error) {
	var req model.Requisition
	if err := tx.Clauses(lockForUpdate()).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if req.Version != version {
		return nil, &service.ConflictError{
			CurrentStatus:  string(req.Status),
			CurrentVersion: req.Version,
		}
	}
	return &req, nil
}

func (r *RequisitionRepository) save(tx *gorm.DB, req *model.Requisition) error {
	req.Version++
	req.UpdatedAt = time.Now()
	return tx.Save(req).Error
}
