package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

// LedgerService maintains supply-contract balances and their append-only
// transaction logs. Corrections are never edits: they are new ADJUSTMENT
// rows, so replaying the log always reproduces the balance.
type LedgerService struct {
	contracts ContractStore
	now       func() time.Time
}

func NewLedgerService(contracts ContractStore) *LedgerService {
	return &LedgerService{contracts: contracts, now: time.Now}
}

type OpenContractInput struct {
	ContractNumber string
	SupplierID     uuid.UUID
	TotalAmount    decimal.Decimal
}

func (s *LedgerService) Open(ctx context.Context, p model.Principal, in OpenContractInput) (*model.Contract, error) {
	if err := checkAction(opOpenContract, p); err != nil {
		return nil, err
	}
	if in.ContractNumber == "" || in.SupplierID == uuid.Nil {
		return nil, fmt.Errorf("%w: contract number and supplier are required", ErrInvalidInput)
	}
	if !in.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: total amount must be positive", ErrInvalidInput)
	}

	now := s.now()
	c := &model.Contract{
		ID:               uuid.New(),
		ContractNumber:   in.ContractNumber,
		SupplierID:       in.SupplierID,
		OrganizationID:   p.OrgID,
		TotalAmount:      in.TotalAmount,
		RemainingBalance: in.TotalAmount,
		Status:           model.ContractActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	initial := model.ContractTransaction{
		ID:            uuid.New(),
		ContractID:    c.ID,
		Type:          model.TransactionInitial,
		Amount:        in.TotalAmount,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  in.TotalAmount,
		Remarks:       "contract opened",
		ActorID:       p.UserID,
		CreatedAt:     now,
	}
	if err := s.contracts.Create(ctx, c, initial); err != nil {
		return nil, err
	}
	return c, nil
}

// Deduct draws amount from the contract. There is no floor check: overdraft
// goes negative and stays visible in the ledger.
func (s *LedgerService) Deduct(ctx context.Context, p model.Principal, contractID uuid.UUID, amount decimal.Decimal, requisitionID *uuid.UUID, remarks string) (*model.Contract, *model.ContractTransaction, error) {
	if err := checkAction(opDeductContract, p); err != nil {
		return nil, nil, err
	}
	if !amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: deduction amount must be positive", ErrInvalidInput)
	}
	now := s.now()
	return s.contracts.Mutate(ctx, contractID, func(c *model.Contract) (model.ContractTransaction, error) {
		if c.OrganizationID != p.OrgID {
			return model.ContractTransaction{}, ErrNotFound
		}
		return c.ApplyDeduction(amount, requisitionID, p.UserID, remarks, now), nil
	})
}

// Adjust applies a signed correction and rejects any adjustment that would
// take the balance below zero.
func (s *LedgerService) Adjust(ctx context.Context, p model.Principal, contractID uuid.UUID, signed decimal.Decimal, remarks string) (*model.Contract, *model.ContractTransaction, error) {
	if err := checkAction(opAdjustContract, p); err != nil {
		return nil, nil, err
	}
	if signed.IsZero() {
		return nil, nil, fmt.Errorf("%w: adjustment amount must not be zero", ErrInvalidInput)
	}
	if remarks == "" {
		return nil, nil, fmt.Errorf("%w: adjustment remarks are required", ErrInvalidInput)
	}
	now := s.now()
	return s.contracts.Mutate(ctx, contractID, func(c *model.Contract) (model.ContractTransaction, error) {
		if c.OrganizationID != p.OrgID {
			return model.ContractTransaction{}, ErrNotFound
		}
		if c.RemainingBalance.Add(signed).IsNegative() {
			return model.ContractTransaction{}, fmt.Errorf("%w: balance %s with adjustment %s",
				ErrInvalidAdjustment, c.RemainingBalance, signed)
		}
		return c.ApplyAdjustment(signed, p.UserID, remarks, now), nil
	})
}

func (s *LedgerService) Get(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	c, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != p.OrgID {
		return nil, ErrNotFound
	}
	return c, nil
}

// Statement returns the contract with its full transaction log in append
// order.
func (s *LedgerService) Statement(ctx context.Context, p model.Principal, contractID uuid.UUID) (*model.Contract, []model.ContractTransaction, error) {
	if err := checkAction(opStatementExport, p); err != nil {
		return nil, nil, err
	}
	c, err := s.Get(ctx, p, contractID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.contracts.Transactions(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	return c, rows, nil
}
