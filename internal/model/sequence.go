package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentKind string

const (
	KindRIS DocumentKind = "RIS"
	KindDTT DocumentKind = "DTT"
	// KindRef backs the dense per-year requisition reference counter. It
	// never appears in a human-readable control number.
	KindRef DocumentKind = "REF"
)

// SequenceCounter tracks the highest ordinal issued or reserved for one
// (kind, scope, organization) triple. Scope is "YYYY" for year-scoped kinds
// and "YYYY-MM" for the month-scoped RIS numbers.
type SequenceCounter struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Kind           DocumentKind `gorm:"uniqueIndex:uq_sequence_counter_key"`
	Scope          string       `gorm:"uniqueIndex:uq_sequence_counter_key"`
	OrganizationID uuid.UUID    `gorm:"type:uuid;uniqueIndex:uq_sequence_counter_key"`
	Counter        int64
	UpdatedAt      time.Time
}

func (SequenceCounter) TableName() string { return "sequence_counters" }

type ReservationStatus string

const (
	ReservationReserved ReservationStatus = "reserved"
	ReservationUsed     ReservationStatus = "used"
)

// SerialReservation pins a control number ahead of document approval.
// It moves reserved -> used exactly once, when the owning document consumes it.
type SerialReservation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind           DocumentKind
	ControlNumber  string            `gorm:"uniqueIndex:uq_reservation_number"`
	Status         ReservationStatus `gorm:"index"`
	OrganizationID uuid.UUID         `gorm:"type:uuid;uniqueIndex:uq_reservation_number"`
	TicketID       *uuid.UUID        `gorm:"type:uuid"`
	ReservedBy     uuid.UUID         `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SerialReservation) TableName() string { return "serial_reservations" }
