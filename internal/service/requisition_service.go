package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/config"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/serial"
)

// RequisitionService drives the fuel-requisition state machine. Every
// mutating operation except Submit takes the version the caller last read;
// the store aborts with *ConflictError when it no longer matches.
type RequisitionService struct {
	reqs      RequisitionStore
	contracts ContractStore
	cfg       *config.Config
	now       func() time.Time
}

func NewRequisitionService(reqs RequisitionStore, contracts ContractStore, cfg *config.Config) *RequisitionService {
	return &RequisitionService{reqs: reqs, contracts: contracts, cfg: cfg, now: time.Now}
}

type SubmitRequisitionInput struct {
	VehicleID       uuid.UUID
	DriverID        uuid.UUID
	Purpose         string
	Destination     string
	RequestedLiters decimal.Decimal
}

func (s *RequisitionService) Submit(ctx context.Context, p model.Principal, in SubmitRequisitionInput) (*model.Requisition, error) {
	if _, err := checkRule(requisitionRules, opSubmit, p, ""); err != nil {
		return nil, err
	}
	if in.VehicleID == uuid.Nil || in.DriverID == uuid.Nil {
		return nil, fmt.Errorf("%w: vehicle and driver are required", ErrInvalidInput)
	}
	if !in.RequestedLiters.IsPositive() {
		return nil, fmt.Errorf("%w: requested liters must be positive", ErrInvalidInput)
	}

	now := s.now()
	r := &model.Requisition{
		ID:              uuid.New(),
		OrganizationID:  p.OrgID,
		RequesterID:     p.UserID,
		VehicleID:       in.VehicleID,
		DriverID:        in.DriverID,
		Purpose:         in.Purpose,
		Destination:     in.Destination,
		RequestedLiters: in.RequestedLiters,
		Status:          model.RequisitionPendingEMD,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastEditedAt:    now,
	}
	if err := s.reqs.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

type ValidateRequisitionInput struct {
	ContractID      uuid.UUID
	ValidatedLiters decimal.Decimal
	ValidUntil      *time.Time
	Remarks         *string
}

// Validate moves a request to EMD_VALIDATED. The first call stamps
// ValidatedAt; repeat calls while the document is still EMD_VALIDATED only
// touch LastEditedAt.
func (s *RequisitionService) Validate(ctx context.Context, p model.Principal, id uuid.UUID, version int64, in ValidateRequisitionInput) (*model.Requisition, error) {
	if !in.ValidatedLiters.IsPositive() {
		return nil, fmt.Errorf("%w: validated liters must be positive", ErrInvalidInput)
	}
	contract, err := s.contracts.Get(ctx, in.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.OrganizationID != p.OrgID {
		return nil, ErrNotFound
	}

	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(requisitionRules, opValidate, p, string(r.Status))
		if err != nil {
			return err
		}
		if r.Status != model.RequisitionEMDValidated {
			r.ValidatedAt = &now
		}
		r.Status = model.RequisitionStatus(rule.to)
		r.ContractID = &contract.ID
		r.SupplierID = &contract.SupplierID
		r.ValidatedLiters = in.ValidatedLiters
		r.ValidUntil = in.ValidUntil
		r.ValidationRemark = in.Remarks
		vb := p.UserID
		r.ValidatedBy = &vb
		r.LastEditedAt = now
		return nil
	})
}

func (s *RequisitionService) ReturnToRequester(ctx context.Context, p model.Principal, id uuid.UUID, version int64, remarks string) (*model.Requisition, error) {
	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(requisitionRules, opReturn, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		if remarks != "" {
			r.ReturnRemark = &remarks
		}
		rb := p.UserID
		r.ReturnedBy = &rb
		r.ReturnedAt = &now
		r.LastEditedAt = now
		return nil
	})
}

func (s *RequisitionService) Reject(ctx context.Context, p model.Principal, id uuid.UUID, version int64, remarks string) (*model.Requisition, error) {
	if remarks == "" {
		return nil, fmt.Errorf("%w: rejection remarks are required", ErrInvalidInput)
	}
	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(requisitionRules, opReject, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		r.ReturnRemark = &remarks
		rb := p.UserID
		r.ReturnedBy = &rb
		r.ReturnedAt = &now
		r.LastEditedAt = now
		return nil
	})
}

// Resubmit loops a RETURNED request back to PENDING_EMD.
func (s *RequisitionService) Resubmit(ctx context.Context, p model.Principal, id uuid.UUID, version int64, in SubmitRequisitionInput) (*model.Requisition, error) {
	if !in.RequestedLiters.IsPositive() {
		return nil, fmt.Errorf("%w: requested liters must be positive", ErrInvalidInput)
	}
	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		if p.IsRequester() && r.RequesterID != p.UserID {
			return &PreconditionError{Operation: opResubmit, Role: p.Role, Status: string(r.Status)}
		}
		rule, err := checkRule(requisitionRules, opResubmit, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		if in.VehicleID != uuid.Nil {
			r.VehicleID = in.VehicleID
		}
		if in.DriverID != uuid.Nil {
			r.DriverID = in.DriverID
		}
		if in.Purpose != "" {
			r.Purpose = in.Purpose
		}
		if in.Destination != "" {
			r.Destination = in.Destination
		}
		r.RequestedLiters = in.RequestedLiters
		r.LastEditedAt = now
		return nil
	})
}

type IssueRequisitionInput struct {
	// RISNumber is a manually entered control number; empty means automatic
	// allocation from the month's counter.
	RISNumber       string
	PriceAtIssuance decimal.Decimal
}

// Issue allocates the RIS control number and moves the document to
// RIS_ISSUED. The number grant and the status write commit in one store
// transaction.
func (s *RequisitionService) Issue(ctx context.Context, p model.Principal, id uuid.UUID, version int64, in IssueRequisitionInput) (*model.Requisition, error) {
	if !in.PriceAtIssuance.IsPositive() {
		return nil, fmt.Errorf("%w: price at issuance must be positive", ErrInvalidInput)
	}

	now := s.now()
	grant := SerialGrant{
		Kind:  model.KindRIS,
		Scope: serial.ScopeFor(model.KindRIS, now),
		Seed:  s.cfg.Sequence.RISSeed,
	}
	if in.RISNumber != "" {
		n, err := serial.Parse(model.KindRIS, "", in.RISNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		grant.Manual = &n
	}

	return s.reqs.Issue(ctx, id, version, grant, func(r *model.Requisition, number string) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(requisitionRules, opIssue, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		r.RISNumber = &number
		r.PriceAtIssuance = in.PriceAtIssuance
		ib := p.UserID
		r.IssuedBy = &ib
		r.IssuedAt = &now
		r.LastEditedAt = now
		return nil
	})
}

// MarkAwaitingReceipt records that fuel was released against the slip and
// the purchase receipt is outstanding.
func (s *RequisitionService) MarkAwaitingReceipt(ctx context.Context, p model.Principal, id uuid.UUID, version int64) (*model.Requisition, error) {
	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(requisitionRules, opMarkAwaiting, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		r.LastEditedAt = now
		return nil
	})
}

type SubmitReceiptInput struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	ActualLiters  decimal.Decimal
}

func (s *RequisitionService) SubmitReceipt(ctx context.Context, p model.Principal, id uuid.UUID, version int64, in SubmitReceiptInput) (*model.Requisition, error) {
	if in.InvoiceNumber == "" || in.InvoiceDate.IsZero() {
		return nil, fmt.Errorf("%w: invoice number and date are required", ErrInvalidInput)
	}
	if !in.ActualLiters.IsPositive() {
		return nil, fmt.Errorf("%w: actual liters must be positive", ErrInvalidInput)
	}
	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		if p.IsRequester() && r.RequesterID != p.UserID {
			return &PreconditionError{Operation: opSubmitReceipt, Role: p.Role, Status: string(r.Status)}
		}
		rule, err := checkRule(requisitionRules, opSubmitReceipt, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		r.InvoiceNumber = &in.InvoiceNumber
		d := in.InvoiceDate
		r.InvoiceDate = &d
		r.ActualLiters = in.ActualLiters
		r.LastEditedAt = now
		return nil
	})
}

type VerifyRequisitionInput struct {
	ActualLiters    decimal.Decimal
	PriceAtPurchase decimal.Decimal
	Remarks         *string
}

// Verify closes the requisition: it fixes TotalAmount = actualLiters x
// priceAtPurchase and draws it from the contract in the same store
// transaction as the COMPLETED status write.
func (s *RequisitionService) Verify(ctx context.Context, p model.Principal, id uuid.UUID, version int64, in VerifyRequisitionInput) (*model.Requisition, error) {
	if !in.ActualLiters.IsPositive() {
		return nil, fmt.Errorf("%w: actual liters must be positive", ErrInvalidInput)
	}
	if !in.PriceAtPurchase.IsPositive() {
		return nil, fmt.Errorf("%w: price at purchase must be positive", ErrInvalidInput)
	}

	current, err := s.reqs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.OrganizationID != p.OrgID {
		return nil, ErrNotFound
	}
	if current.ContractID == nil {
		return nil, fmt.Errorf("%w: requisition has no contract bound", ErrInvalidInput)
	}

	now := s.now()
	total := in.ActualLiters.Mul(in.PriceAtPurchase)
	ref := "verification"
	if current.RISNumber != nil {
		ref = "RIS " + *current.RISNumber
	}
	deduct := Deduction{
		ContractID: *current.ContractID,
		Amount:     total,
		ActorID:    p.UserID,
		Remarks:    ref,
	}

	return s.reqs.Verify(ctx, id, version, deduct, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(requisitionRules, opVerify, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		r.ActualLiters = in.ActualLiters
		r.PriceAtPurchase = in.PriceAtPurchase
		r.TotalAmount = total
		vb := p.UserID
		r.VerifiedBy = &vb
		r.VerifiedAt = &now
		r.VerifyRemark = in.Remarks
		r.LastEditedAt = now
		return nil
	})
}

func (s *RequisitionService) ReturnReceipt(ctx context.Context, p model.Principal, id uuid.UUID, version int64, remarks string) (*model.Requisition, error) {
	if remarks == "" {
		return nil, fmt.Errorf("%w: return remarks are required", ErrInvalidInput)
	}
	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(requisitionRules, opReturnReceipt, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		r.ReturnRemark = &remarks
		rb := p.UserID
		r.ReturnedBy = &rb
		r.ReturnedAt = &now
		r.LastEditedAt = now
		return nil
	})
}

func (s *RequisitionService) Cancel(ctx context.Context, p model.Principal, id uuid.UUID, version int64) (*model.Requisition, error) {
	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		if p.IsRequester() && r.RequesterID != p.UserID {
			return &PreconditionError{Operation: opCancel, Role: p.Role, Status: string(r.Status)}
		}
		rule, err := checkRule(requisitionRules, opCancel, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		cb := p.UserID
		r.CancelledBy = &cb
		r.CancelledAt = &now
		r.LastEditedAt = now
		return nil
	})
}

// Void kills an already issued slip. Privileged: SPMS or admin only.
func (s *RequisitionService) Void(ctx context.Context, p model.Principal, id uuid.UUID, version int64, reason string) (*model.Requisition, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: void reason is required", ErrInvalidInput)
	}
	now := s.now()
	return s.reqs.Update(ctx, id, version, func(r *model.Requisition) error {
		if r.OrganizationID != p.OrgID {
			return ErrNotFound
		}
		rule, err := checkRule(requisitionRules, opVoid, p, string(r.Status))
		if err != nil {
			return err
		}
		r.Status = model.RequisitionStatus(rule.to)
		r.VoidReason = &reason
		vb := p.UserID
		r.VoidedBy = &vb
		r.VoidedAt = &now
		r.LastEditedAt = now
		return nil
	})
}

func (s *RequisitionService) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Requisition, error) {
	r, err := s.reqs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.OrganizationID != p.OrgID {
		return nil, ErrNotFound
	}
	return r, nil
}

// Slip returns the finalized snapshot consumed by document rendering. It is
// only available once a RIS number has been allocated.
func (s *RequisitionService) Slip(ctx context.Context, p model.Principal, id uuid.UUID) (*model.RequisitionSlip, error) {
	r, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if r.RISNumber == nil {
		return nil, fmt.Errorf("%w: no RIS number allocated yet", ErrInvalidInput)
	}
	slip := &model.RequisitionSlip{Requisition: *r}
	if r.ContractID != nil {
		contract, err := s.contracts.Get(ctx, *r.ContractID)
		if err != nil {
			return nil, err
		}
		slip.Contract = contract
	}
	return slip, nil
}
