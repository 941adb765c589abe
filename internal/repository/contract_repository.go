package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

// ContractRepository implements service.ContractStore. Balance mutations
// lock the contract row FOR UPDATE and append their ledger row in the same
// transaction; ledger rows are never edited or deleted.
type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, c *model.Contract, initial model.ContractTransaction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Create(&initial).Error
	})
	return translate(err)
}

func (r *ContractRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ContractRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Contract) (model.ContractTransaction, error)) (*model.Contract, *model.ContractTransaction, error) {
	var (
		contract model.Contract
		row      model.ContractTransaction
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate()).First(&contract, "id = ?", id).Error; err != nil {
			return err
		}
		var err error
		row, err = fn(&contract)
		if err != nil {
			return err
		}
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, nil, translate(err)
	}
	return &contract, &row, nil
}

func (r *ContractRepository) Transactions(ctx context.Context, contractID uuid.UUID) ([]model.ContractTransaction, error) {
	var rows []model.ContractTransaction
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}
