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

// AllocatorService exposes standalone control-number pre-reservation. The
// reserved number is later consumed when the owning document is approved.
type AllocatorService struct {
	reservations ReservationStore
	cfg          *config.Config
	now          func() time.Time
}

func NewAllocatorService(reservations ReservationStore, cfg *config.Config) *AllocatorService {
	return &AllocatorService{reservations: reservations, cfg: cfg, now: time.Now}
}

// Reserve claims a control number without a document. With a manual number
// the claim checks duplicates and bumps the counter to at least its ordinal;
// with an empty number the next automatic ordinal is reserved.
func (s *AllocatorService) Reserve(ctx context.Context, p model.Principal, kind model.DocumentKind, manual string) (*model.SerialReservation, error) {
	if err := checkAction(opReserveSerial, p); err != nil {
		return nil, err
	}
	if kind != model.KindRIS && kind != model.KindDTT {
		return nil, fmt.Errorf("%w: unknown document kind %q", ErrInvalidInput, kind)
	}

	now := s.now()
	grant := SerialGrant{
		Kind:  kind,
		Scope: serial.ScopeFor(kind, now),
	}
	if kind == model.KindRIS {
		grant.Seed = s.cfg.Sequence.RISSeed
	} else {
		grant.Prefix = s.cfg.Sequence.DTTPrefix
	}
	if manual != "" {
		n, err := serial.Parse(kind, grant.Prefix, manual)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		grant.Manual = &n
	}

	res := &model.SerialReservation{
		ID:             uuid.New(),
		Kind:           kind,
		Status:         model.ReservationReserved,
		OrganizationID: p.OrgID,
		ReservedBy:     p.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.reservations.Reserve(ctx, res, grant); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AllocatorService) List(ctx context.Context, p model.Principal, kind model.DocumentKind) ([]model.SerialReservation, error) {
	return s.reservations.List(ctx, p.OrgID, kind)
}
