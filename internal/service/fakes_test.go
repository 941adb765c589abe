package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/serial"
)

// memWorld is an in-memory stand-in for the SQL store. It implements the
// same transactional contract the repositories do: version checks, serial
// claims and ledger appends either all land or none do.
type memWorld struct {
	mu           sync.Mutex
	requisitions map[uuid.UUID]*model.Requisition
	contracts    map[uuid.UUID]*model.Contract
	ledger       []model.ContractTransaction
	trips        map[uuid.UUID]*model.TripTicket
	reservations []*model.SerialReservation
	counters     map[counterKey]int64
	refCounter   int64
}

type counterKey struct {
	kind  model.DocumentKind
	scope string
	org   uuid.UUID
}

func newMemWorld() *memWorld {
	return &memWorld{
		requisitions: map[uuid.UUID]*model.Requisition{},
		contracts:    map[uuid.UUID]*model.Contract{},
		trips:        map[uuid.UUID]*model.TripTicket{},
		counters:     map[counterKey]int64{},
	}
}

func (w *memWorld) serialTaken(orgID uuid.UUID, kind model.DocumentKind, number string) bool {
	switch kind {
	case model.KindRIS:
		for _, r := range w.requisitions {
			if r.OrganizationID == orgID && r.RISNumber != nil && *r.RISNumber == number {
				return true
			}
		}
	case model.KindDTT:
		for _, t := range w.trips {
			if t.OrganizationID != orgID {
				continue
			}
			if t.SerialNumber != nil && *t.SerialNumber == number {
				return true
			}
			if t.SerialNumberReserved != nil && *t.SerialNumberReserved == number {
				return true
			}
		}
	}
	for _, res := range w.reservations {
		if res.OrganizationID == orgID && res.Kind == kind &&
			res.ControlNumber == number && res.Status == model.ReservationReserved {
			return true
		}
	}
	return false
}

// claim mirrors the repository: manual numbers run the duplicate checks and
// bump the counter to at least their ordinal, automatic ones take counter+1.
func (w *memWorld) claim(orgID uuid.UUID, g SerialGrant) (string, error) {
	if g.Manual != nil {
		if w.serialTaken(orgID, g.Kind, g.Manual.Value) {
			return "", fmt.Errorf("%w: %s", ErrAlreadyInUse, g.Manual.Value)
		}
		key := counterKey{g.Kind, g.Manual.Scope, orgID}
		if _, ok := w.counters[key]; !ok {
			w.counters[key] = g.Seed
		}
		if g.Manual.Ordinal > w.counters[key] {
			w.counters[key] = g.Manual.Ordinal
		}
		return g.Manual.Value, nil
	}
	key := counterKey{g.Kind, g.Scope, orgID}
	if _, ok := w.counters[key]; !ok {
		w.counters[key] = g.Seed
	}
	w.counters[key]++
	return serial.Format(g.Kind, g.Prefix, g.Scope, w.counters[key]), nil
}

func (w *memWorld) snapshotCounters() map[counterKey]int64 {
	snap := make(map[counterKey]int64, len(w.counters))
	for k, v := range w.counters {
		snap[k] = v
	}
	return snap
}

func cloneRequisition(r *model.Requisition) *model.Requisition {
	c := *r
	return &c
}

func cloneTrip(t *model.TripTicket) *model.TripTicket {
	c := *t
	return &c
}

func cloneContract(c *model.Contract) *model.Contract {
	cp := *c
	return &cp
}

type memRequisitions struct{ w *memWorld }

func (s *memRequisitions) Create(_ context.Context, r *model.Requisition) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.refCounter++
	r.RefNumber = s.w.refCounter
	r.Version = 1
	s.w.requisitions[r.ID] = cloneRequisition(r)
	return nil
}

func (s *memRequisitions) Get(_ context.Context, id uuid.UUID) (*model.Requisition, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	r, ok := s.w.requisitions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRequisition(r), nil
}

func (s *memRequisitions) locked(id uuid.UUID, version int64) (*model.Requisition, error) {
	stored, ok := s.w.requisitions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if stored.Version != version {
		return nil, &ConflictError{CurrentStatus: string(stored.Status), CurrentVersion: stored.Version}
	}
	return cloneRequisition(stored), nil
}

func (s *memRequisitions) Update(_ context.Context, id uuid.UUID, version int64, apply func(*model.Requisition) error) (*model.Requisition, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	r, err := s.locked(id, version)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	r.Version++
	s.w.requisitions[id] = cloneRequisition(r)
	return r, nil
}

func (s *memRequisitions) Issue(_ context.Context, id uuid.UUID, version int64, grant SerialGrant, apply func(*model.Requisition, string) error) (*model.Requisition, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	r, err := s.locked(id, version)
	if err != nil {
		return nil, err
	}
	snap := s.w.snapshotCounters()
	number, err := s.w.claim(r.OrganizationID, grant)
	if err != nil {
		s.w.counters = snap
		return nil, err
	}
	if err := apply(r, number); err != nil {
		s.w.counters = snap
		return nil, err
	}
	r.Version++
	s.w.requisitions[id] = cloneRequisition(r)
	return r, nil
}

func (s *memRequisitions) Verify(_ context.Context, id uuid.UUID, version int64, deduct Deduction, apply func(*model.Requisition) error) (*model.Requisition, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	r, err := s.locked(id, version)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	contract, ok := s.w.contracts[deduct.ContractID]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneContract(contract)
	reqID := id
	row := c.ApplyDeduction(deduct.Amount, &reqID, deduct.ActorID, deduct.Remarks, time.Now())
	s.w.contracts[c.ID] = c
	s.w.ledger = append(s.w.ledger, row)
	r.Version++
	s.w.requisitions[id] = cloneRequisition(r)
	return r, nil
}

type memContracts struct{ w *memWorld }

func (s *memContracts) Create(_ context.Context, c *model.Contract, initial model.ContractTransaction) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.contracts[c.ID] = cloneContract(c)
	s.w.ledger = append(s.w.ledger, initial)
	return nil
}

func (s *memContracts) Get(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	c, ok := s.w.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneContract(c), nil
}

func (s *memContracts) Mutate(_ context.Context, id uuid.UUID, fn func(*model.Contract) (model.ContractTransaction, error)) (*model.Contract, *model.ContractTransaction, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	stored, ok := s.w.contracts[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	c := cloneContract(stored)
	row, err := fn(c)
	if err != nil {
		return nil, nil, err
	}
	s.w.contracts[id] = cloneContract(c)
	s.w.ledger = append(s.w.ledger, row)
	return c, &row, nil
}

func (s *memContracts) Transactions(_ context.Context, contractID uuid.UUID) ([]model.ContractTransaction, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var rows []model.ContractTransaction
	for _, row := range s.w.ledger {
		if row.ContractID == contractID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type memTrips struct{ w *memWorld }

func (s *memTrips) Create(_ context.Context, t *model.TripTicket) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if t.SerialNumberReserved != nil {
		backed := false
		for _, res := range s.w.reservations {
			if res.OrganizationID == t.OrganizationID && res.Kind == model.KindDTT &&
				res.ControlNumber == *t.SerialNumberReserved && res.Status == model.ReservationReserved {
				backed = true
				break
			}
		}
		if !backed {
			return fmt.Errorf("%w: no held reservation for %s", ErrNotFound, *t.SerialNumberReserved)
		}
	}
	t.Version = 1
	s.w.trips[t.ID] = cloneTrip(t)
	return nil
}

func (s *memTrips) Get(_ context.Context, id uuid.UUID) (*model.TripTicket, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	t, ok := s.w.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTrip(t), nil
}

func (s *memTrips) locked(id uuid.UUID, version int64) (*model.TripTicket, error) {
	stored, ok := s.w.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	if stored.Version != version {
		return nil, &ConflictError{CurrentStatus: string(stored.Status), CurrentVersion: stored.Version}
	}
	return cloneTrip(stored), nil
}

func (s *memTrips) Update(_ context.Context, id uuid.UUID, version int64, apply func(*model.TripTicket) error) (*model.TripTicket, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	t, err := s.locked(id, version)
	if err != nil {
		return nil, err
	}
	if err := apply(t); err != nil {
		return nil, err
	}
	t.Version++
	s.w.trips[id] = cloneTrip(t)
	return t, nil
}

func (s *memTrips) Approve(_ context.Context, id uuid.UUID, version int64, grant SerialGrant, apply func(*model.TripTicket, string) error) (*model.TripTicket, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	t, err := s.locked(id, version)
	if err != nil {
		return nil, err
	}

	var held *model.SerialReservation
	if t.SerialNumberReserved != nil {
		for _, res := range s.w.reservations {
			if res.OrganizationID == t.OrganizationID && res.Kind == model.KindDTT &&
				res.ControlNumber == *t.SerialNumberReserved && res.Status == model.ReservationReserved {
				held = res
				break
			}
		}
	}

	snap := s.w.snapshotCounters()
	var number string
	if held != nil {
		number = held.ControlNumber
	} else {
		number, err = s.w.claim(t.OrganizationID, grant)
		if err != nil {
			s.w.counters = snap
			return nil, err
		}
	}
	if err := apply(t, number); err != nil {
		s.w.counters = snap
		return nil, err
	}
	if held != nil {
		held.Status = model.ReservationUsed
		ticketID := id
		held.TicketID = &ticketID
	}
	t.Version++
	s.w.trips[id] = cloneTrip(t)
	return t, nil
}

type memReservations struct{ w *memWorld }

func (s *memReservations) Reserve(_ context.Context, res *model.SerialReservation, grant SerialGrant) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	snap := s.w.snapshotCounters()
	number, err := s.w.claim(res.OrganizationID, grant)
	if err != nil {
		s.w.counters = snap
		return err
	}
	res.ControlNumber = number
	s.w.reservations = append(s.w.reservations, res)
	return nil
}

func (s *memReservations) List(_ context.Context, orgID uuid.UUID, kind model.DocumentKind) ([]model.SerialReservation, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var out []model.SerialReservation
	for _, res := range s.w.reservations {
		if res.OrganizationID == orgID && res.Kind == kind {
			out = append(out, *res)
		}
	}
	return out, nil
}
