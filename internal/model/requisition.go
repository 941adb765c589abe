package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RequisitionStatus string

const (
	RequisitionPendingEMD       RequisitionStatus = "PENDING_EMD"
	RequisitionReturned         RequisitionStatus = "RETURNED"
	RequisitionRejected         RequisitionStatus = "REJECTED"
	RequisitionEMDValidated     RequisitionStatus = "EMD_VALIDATED"
	RequisitionRISIssued        RequisitionStatus = "RIS_ISSUED"
	RequisitionAwaitingReceipt  RequisitionStatus = "AWAITING_RECEIPT"
	RequisitionReceiptSubmitted RequisitionStatus = "RECEIPT_SUBMITTED"
	RequisitionReceiptReturned  RequisitionStatus = "RECEIPT_RETURNED"
	RequisitionCompleted        RequisitionStatus = "COMPLETED"
	RequisitionCancelled        RequisitionStatus = "CANCELLED"
	RequisitionVoided           RequisitionStatus = "VOIDED"
)

// Terminal reports whether no further transition may leave the status.
func (s RequisitionStatus) Terminal() bool {
	switch s {
	case RequisitionRejected, RequisitionCompleted, RequisitionCancelled, RequisitionVoided:
		return true
	}
	return false
}

type Requisition struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	RefNumber      int64     `gorm:"column:ref_number"` // dense per-(org, year) counter, not a control number
	OrganizationID uuid.UUID `gorm:"type:uuid;index"`
	RequesterID    uuid.UUID `gorm:"type:uuid;index"`
	VehicleID      uuid.UUID `gorm:"type:uuid"`
	DriverID       uuid.UUID `gorm:"type:uuid"`
	Purpose        string
	Destination    string

	RequestedLiters decimal.Decimal `gorm:"type:numeric(18,3)"`
	ValidatedLiters decimal.Decimal `gorm:"type:numeric(18,3)"`
	ActualLiters    decimal.Decimal `gorm:"type:numeric(18,3)"`

	ContractID *uuid.UUID `gorm:"type:uuid"`
	SupplierID *uuid.UUID `gorm:"type:uuid"`
	RISNumber  *string    `gorm:"column:ris_number"`

	Status RequisitionStatus `gorm:"index"`

	PriceAtIssuance decimal.Decimal `gorm:"type:numeric(18,4)"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(18,4)"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(18,2)"`
	ValidUntil      *time.Time

	ValidatedBy      *uuid.UUID `gorm:"type:uuid"`
	ValidatedAt      *time.Time
	ValidationRemark *string
	IssuedBy         *uuid.UUID `gorm:"type:uuid"`
	IssuedAt         *time.Time
	VerifiedBy       *uuid.UUID `gorm:"type:uuid"`
	VerifiedAt       *time.Time
	VerifyRemark     *string

	InvoiceNumber *string
	InvoiceDate   *time.Time

	ReturnRemark *string
	ReturnedBy   *uuid.UUID `gorm:"type:uuid"`
	ReturnedAt   *time.Time
	VoidReason   *string
	VoidedBy     *uuid.UUID `gorm:"type:uuid"`
	VoidedAt     *time.Time
	CancelledBy  *uuid.UUID `gorm:"type:uuid"`
	CancelledAt  *time.Time

	// Version is a monotonic counter bumped on every write; callers of
	// mutating operations must present the version they last read.
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastEditedAt time.Time
}

func (Requisition) TableName() string { return "requisitions" }

// RequisitionSlip is the read-only snapshot handed to document rendering
// once a RIS number exists. No state flows back from it.
type RequisitionSlip struct {
	Requisition Requisition
	Contract    *Contract
}
