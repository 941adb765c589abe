package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "ACTIVE"
	ContractExhausted ContractStatus = "EXHAUSTED"
)

type ContractTransactionType string

const (
	TransactionInitial    ContractTransactionType = "INITIAL"
	TransactionDeduction  ContractTransactionType = "DEDUCTION"
	TransactionAdjustment ContractTransactionType = "ADJUSTMENT"
)

// Contract is a fuel supply contract carrying a drawable balance.
type Contract struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ContractNumber   string          `gorm:"uniqueIndex"`
	SupplierID       uuid.UUID       `gorm:"type:uuid;index"`
	OrganizationID   uuid.UUID       `gorm:"type:uuid;index"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(18,2)"`
	RemainingBalance decimal.Decimal `gorm:"type:numeric(18,2)"`
	Status           ContractStatus
	ExhaustedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Contract) TableName() string { return "contracts" }

// ContractTransaction is one append-only ledger row. Amount is the signed
// delta applied to the balance, so replaying all rows in order reproduces
// RemainingBalance exactly.
type ContractTransaction struct {
	ID            uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ContractID    uuid.UUID               `gorm:"type:uuid;index"`
	RequisitionID *uuid.UUID              `gorm:"type:uuid"`
	Type          ContractTransactionType `gorm:"column:type"`
	Amount        decimal.Decimal         `gorm:"type:numeric(18,2)"`
	BalanceBefore decimal.Decimal         `gorm:"type:numeric(18,2)"`
	BalanceAfter  decimal.Decimal         `gorm:"type:numeric(18,2)"`
	Remarks       string
	ActorID       uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (ContractTransaction) TableName() string { return "contract_transactions" }

// ApplyDeduction draws amount from the balance and returns the ledger row.
// There is deliberately no floor: overdraft stays visible in the ledger
// instead of being blocked, and the contract flips to EXHAUSTED at zero.
func (c *Contract) ApplyDeduction(amount decimal.Decimal, requisitionID *uuid.UUID, actorID uuid.UUID, remarks string, now time.Time) ContractTransaction {
	before := c.RemainingBalance
	c.RemainingBalance = before.Sub(amount)
	if c.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		c.Status = ContractExhausted
		if c.ExhaustedAt == nil {
			t := now
			c.ExhaustedAt = &t
		}
	} else {
		c.Status = ContractActive
	}
	c.UpdatedAt = now
	return ContractTransaction{
		ID:            uuid.New(),
		ContractID:    c.ID,
		RequisitionID: requisitionID,
		Type:          TransactionDeduction,
		Amount:        amount.Neg(),
		BalanceBefore: before,
		BalanceAfter:  c.RemainingBalance,
		Remarks:       remarks,
		ActorID:       actorID,
		CreatedAt:     now,
	}
}

// ApplyAdjustment applies a signed correction. Callers must have rejected
// adjustments that would take the balance below zero.
func (c *Contract) ApplyAdjustment(signed decimal.Decimal, actorID uuid.UUID, remarks string, now time.Time) ContractTransaction {
	before := c.RemainingBalance
	c.RemainingBalance = before.Add(signed)
	if c.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		c.Status = ContractExhausted
		if c.ExhaustedAt == nil {
			t := now
			c.ExhaustedAt = &t
		}
	} else {
		c.Status = ContractActive
		c.ExhaustedAt = nil
	}
	c.UpdatedAt = now
	return ContractTransaction{
		ID:            uuid.New(),
		ContractID:    c.ID,
		Type:          TransactionAdjustment,
		Amount:        signed,
		BalanceBefore: before,
		BalanceAfter:  c.RemainingBalance,
		Remarks:       remarks,
		ActorID:       actorID,
		CreatedAt:     now,
	}
}
