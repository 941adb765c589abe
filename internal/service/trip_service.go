package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/config"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/serial"
)

// TripService drives the trip-ticket approval workflow. It mirrors the
// requisition approval phase and shares the sequence allocator for the
// year-scoped DTT numbers.
type TripService struct {
	trips TripStore
	cfg   *config.Config
	now   func() time.Time
}

func NewTripService(trips TripStore, cfg *config.Config) *TripService {
	return &TripService{trips: trips, cfg: cfg, now: time.Now}
}

type SubmitTripInput struct {
	DriverID    uuid.UUID
	VehicleID   uuid.UUID
	Office      string
	Destination string
	Purposes    []string
	Passengers  []string
	PeriodStart time.Time
	PeriodEnd   time.Time
	// ReservedNumber is a pre-reserved DTT number the ticket should consume
	// on approval instead of minting a new one. It must name an active
	// reservation; the store rejects unbacked numbers.
	ReservedNumber string
}

func (s *TripService) Submit(ctx context.Context, p model.Principal, in SubmitTripInput) (*model.TripTicket, error) {
	if _, err := checkRule(tripRules, opSubmit, p, ""); err != nil {
		return nil, err
	}
	if in.DriverID == uuid.Nil || in.VehicleID == uuid.Nil {
		return nil, fmt.Errorf("%w: driver and vehicle are required", ErrInvalidInput)
	}
	if in.Destination == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrInvalidInput)
	}
	if in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() || in.PeriodEnd.Before(in.PeriodStart) {
		return nil, fmt.Errorf("%w: trip period is invalid", ErrInvalidInput)
	}

	now := s.now()
	t := &model.TripTicket{
		ID:             uuid.New(),
		OrganizationID: p.OrgID,
		RequesterID:    p.UserID,
		DriverID:       in.DriverID,
		VehicleID:      in.VehicleID,
		Office:         in.Office,
		Destination:    in.Destination,
		Purposes:       in.Purposes,
		Passengers:     in.Passengers,
		PeriodStart:    in.PeriodStart,
		PeriodEnd:      in.PeriodEnd,
		Status:         model.TripPendingApproval,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastEditedAt:   now,
	}
	if in.ReservedNumber != "" {
		if _, err := serial.Parse(model.KindDTT, s.cfg.Sequence.DTTPrefix, in.ReservedNumber); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		rn := in.ReservedNumber
		t.SerialNumberReserved = &rn
	}
	if err := s.trips.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Approve stamps the DTT serial number and finalizes the ticket. A held
// reservation matching SerialNumberReserved is consumed; otherwise the
// manual number is claimed or the next automatic ordinal allocated, all in
// one store transaction with the status write.
func (s *TripService) Approve(ctx context.Context, p model.Principal, id uuid.UUID, version int64, manual string) (*model.TripTicket, error) {
	now := s.now()
	grant := SerialGrant{
		Kind:   model.KindDTT,
		Prefix: s.cfg.Sequence.DTTPrefix,
		Scope:  serial.ScopeFor(model.KindDTT, now),
	}
	if manual != "" {
		n, err := serial.Parse(model.KindDTT, s.cfg.Sequence.DTTPrefix, manual)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		grant.Manual = &n
	}

	return s.trips.Approve(ctx, id, version, grant, func(t *model.TripTicket, number string) error {
		if t.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(tripRules, opApprove, p, string(t.Status))
		if err != nil {
			return err
		}
		t.Status = model.TripTicketStatus(rule.to)
		t.SerialNumber = &number
		ab := p.UserID
		t.ApprovedBy = &ab
		t.ApprovedAt = &now
		t.LastEditedAt = now
		return nil
	})
}

func (s *TripService) Return(ctx context.Context, p model.Principal, id uuid.UUID, version int64, remarks string) (*model.TripTicket, error) {
	now := s.now()
	return s.trips.Update(ctx, id, version, func(t *model.TripTicket) error {
		if t.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(tripRules, opReturn, p, string(t.Status))
		if err != nil {
			return err
		}
		t.Status = model.TripTicketStatus(rule.to)
		if remarks != "" {
			t.ReturnRemark = &remarks
		}
		t.LastEditedAt = now
		return nil
	})
}

func (s *TripService) Reject(ctx context.Context, p model.Principal, id uuid.UUID, version int64, remarks string) (*model.TripTicket, error) {
	if remarks == "" {
		return nil, fmt.Errorf("%w: rejection remarks are required", ErrInvalidInput)
	}
	now := s.now()
	return s.trips.Update(ctx, id, version, func(t *model.TripTicket) error {
		if t.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(tripRules, opReject, p, string(t.Status))
		if err != nil {
			return err
		}
		t.Status = model.TripTicketStatus(rule.to)
		t.RejectRemark = &remarks
		t.LastEditedAt = now
		return nil
	})
}

func (s *TripService) Resubmit(ctx context.Context, p model.Principal, id uuid.UUID, version int64, in SubmitTripInput) (*model.TripTicket, error) {
	now := s.now()
	return s.trips.Update(ctx, id, version, func(t *model.TripTicket) error {
		if t.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		if p.IsRequester() && t.RequesterID != p.UserID {
			return &PreconditionError{Operation: opResubmit, Role: p.Role, Status: string(t.Status)}
		}
		rule, err := checkRule(tripRules, opResubmit, p, string(t.Status))
		if err != nil {
			return err
		}
		t.Status = model.TripTicketStatus(rule.to)
		if in.Destination != "" {
			t.Destination = in.Destination
		}
		if len(in.Purposes) > 0 {
			t.Purposes = in.Purposes
		}
		if len(in.Passengers) > 0 {
			t.Passengers = in.Passengers
		}
		if !in.PeriodStart.IsZero() && !in.PeriodEnd.IsZero() && !in.PeriodEnd.Before(in.PeriodStart) {
			t.PeriodStart = in.PeriodStart
			t.PeriodEnd = in.PeriodEnd
		}
		t.LastEditedAt = now
		return nil
	})
}

func (s *TripService) Cancel(ctx context.Context, p model.Principal, id uuid.UUID, version int64) (*model.TripTicket, error) {
	now := s.now()
	return s.trips.Update(ctx, id, version, func(t *model.TripTicket) error {
		if t.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		if p.IsRequester() && t.RequesterID != p.UserID {
			return &PreconditionError{Operation: opCancel, Role: p.Role, Status: string(t.Status)}
		}
		rule, err := checkRule(tripRules, opCancel, p, string(t.Status))
		if err != nil {
			return err
		}
		t.Status = model.TripTicketStatus(rule.to)
		cb := p.UserID
		t.CancelledBy = &cb
		t.CancelledAt = &now
		t.LastEditedAt = now
		return nil
	})
}

func (s *TripService) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.TripTicket, error) {
	t, err := s.trips.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OrganizationID != p.OrgID {
		return nil, ErrNotFound
	}
	return t, nil
}
