package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/serial"
)

// SerialGrant describes how a store transaction obtains a control number:
// either claim the manually entered number (duplicate checks + counter bump)
// or draw the next ordinal from the (kind, scope, org) counter. Seed is the
// counter's initial value when the scope row does not exist yet.
type SerialGrant struct {
	Kind   model.DocumentKind
	Prefix string
	Scope  string
	Seed   int64
	Manual *serial.Number
}

// Deduction is the ledger draw committed inside a verify transaction.
type Deduction struct {
	ContractID uuid.UUID
	Amount     decimal.Decimal
	ActorID    uuid.UUID
	Remarks    string
}

// RequisitionStore persists requisitions. Update, Issue and Verify run their
// read-check-write sequence inside one store transaction: they re-read the
// row, fail with *ConflictError when the stored version differs from the
// caller's, apply the mutation, bump Version and commit. Issue additionally
// claims or allocates the RIS number, Verify additionally applies the
// contract deduction; in both cases everything commits or nothing does.
type RequisitionStore interface {
	Create(ctx context.Context, r *model.Requisition) error
	Get(ctx context.Context, id uuid.UUID) (*model.Requisition, error)
	Update(ctx context.Context, id uuid.UUID, version int64, apply func(*model.Requisition) error) (*model.Requisition, error)
	Issue(ctx context.Context, id uuid.UUID, version int64, grant SerialGrant, apply func(r *model.Requisition, number string) error) (*model.Requisition, error)
	Verify(ctx context.Context, id uuid.UUID, version int64, deduct Deduction, apply func(*model.Requisition) error) (*model.Requisition, error)
}

// ContractStore persists contracts and their append-only transaction log.
// Mutate locks the contract row, applies fn and appends the ledger row it
// returns in the same transaction.
type ContractStore interface {
	Create(ctx context.Context, c *model.Contract, initial model.ContractTransaction) error
	Get(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Contract) (model.ContractTransaction, error)) (*model.Contract, *model.ContractTransaction, error)
	Transactions(ctx context.Context, contractID uuid.UUID) ([]model.ContractTransaction, error)
}

// TripStore persists trip tickets. Create rejects a ticket whose reserved
// number has no active reservation backing it, so every number a ticket
// carries went through the allocator. Approve consumes the ticket's matching
// held reservation when one exists, otherwise obtains a number per the grant;
// the chosen number is passed to apply inside the same transaction.
type TripStore interface {
	Create(ctx context.Context, t *model.TripTicket) error
	Get(ctx context.Context, id uuid.UUID) (*model.TripTicket, error)
	Update(ctx context.Context, id uuid.UUID, version int64, apply func(*model.TripTicket) error) (*model.TripTicket, error)
	Approve(ctx context.Context, id uuid.UUID, version int64, grant SerialGrant, apply func(t *model.TripTicket, number string) error) (*model.TripTicket, error)
}

// ReservationStore records standalone pre-reservations. Reserve assigns
// res.ControlNumber per the grant atomically with the duplicate checks and
// the counter bump.
type ReservationStore interface {
	Reserve(ctx context.Context, res *model.SerialReservation, grant SerialGrant) error
	List(ctx context.Context, orgID uuid.UUID, kind model.DocumentKind) ([]model.SerialReservation, error)
}
