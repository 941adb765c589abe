package model

import (
	"time"

	"github.com/google/uuid"
)

type TripTicketStatus string

const (
	TripPendingApproval TripTicketStatus = "PENDING_APPROVAL"
	TripReturned        TripTicketStatus = "RETURNED"
	TripRejected        TripTicketStatus = "REJECTED"
	TripApproved        TripTicketStatus = "APPROVED"
	TripCancelled       TripTicketStatus = "CANCELLED"
)

func (s TripTicketStatus) Terminal() bool {
	switch s {
	case TripRejected, TripApproved, TripCancelled:
		return true
	}
	return false
}

// TripTicket authorizes a vehicle trip and, once approved, carries a DTT
// control number. SerialNumberReserved holds a pre-reserved number that
// approval consumes instead of minting a new one.
type TripTicket struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index"`
	RequesterID    uuid.UUID `gorm:"type:uuid;index"`
	DriverID       uuid.UUID `gorm:"type:uuid"`
	VehicleID      uuid.UUID `gorm:"type:uuid"`
	Office         string
	Destination    string
	Purposes       []string `gorm:"serializer:json"`
	Passengers     []string `gorm:"serializer:json"`
	PeriodStart    time.Time
	PeriodEnd      time.Time

	Status               TripTicketStatus `gorm:"index"`
	SerialNumber         *string
	SerialNumberReserved *string

	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt   *time.Time
	ReturnRemark *string
	RejectRemark *string
	CancelledBy  *uuid.UUID `gorm:"type:uuid"`
	CancelledAt  *time.Time

	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastEditedAt time.Time
}

func (TripTicket) TableName() string { return "trip_tickets" }
