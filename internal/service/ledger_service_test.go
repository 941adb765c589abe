package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

func TestContractLedgerRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spms := principal(model.RoleSPMS, uuid.New())

	c := e.openContract(t, spms, "100000")
	if !c.RemainingBalance.Equal(c.TotalAmount) {
		t.Fatalf("opened contract balance %s, want %s", c.RemainingBalance, c.TotalAmount)
	}

	c, row, err := e.ledger.Deduct(ctx, spms, c.ID, decimal.RequireFromString("30000"), nil, "bulk draw")
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if !c.RemainingBalance.Equal(decimal.RequireFromString("70000")) {
		t.Fatalf("balance after deduct %s", c.RemainingBalance)
	}
	if !row.Amount.Equal(decimal.RequireFromString("-30000")) {
		t.Fatalf("deduction row amount %s, want -30000", row.Amount)
	}

	c, row, err = e.ledger.Adjust(ctx, spms, c.ID, decimal.RequireFromString("5000"), "supplier credit note")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if !c.RemainingBalance.Equal(decimal.RequireFromString("75000")) {
		t.Fatalf("balance after adjust %s", c.RemainingBalance)
	}
	if row.Type != model.TransactionAdjustment {
		t.Fatalf("adjustment row type %s", row.Type)
	}

	_, rows, err := e.ledger.Statement(ctx, spms, c.ID)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("statement rows %d, want 3", len(rows))
	}

	// Replaying the signed amounts from zero must land exactly on the
	// stored balance, and each row must chain onto the previous one.
	replayed := decimal.Zero
	for i, tx := range rows {
		if !tx.BalanceBefore.Equal(replayed) {
			t.Fatalf("row %d BalanceBefore %s, replay says %s", i, tx.BalanceBefore, replayed)
		}
		replayed = replayed.Add(tx.Amount)
		if !tx.BalanceAfter.Equal(replayed) {
			t.Fatalf("row %d BalanceAfter %s, replay says %s", i, tx.BalanceAfter, replayed)
		}
	}
	if !replayed.Equal(c.RemainingBalance) {
		t.Fatalf("replay ended at %s, stored balance %s", replayed, c.RemainingBalance)
	}
}

func TestOverdraftFlipsToExhausted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spms := principal(model.RoleSPMS, uuid.New())

	c := e.openContract(t, spms, "100")
	c, _, err := e.ledger.Deduct(ctx, spms, c.ID, decimal.RequireFromString("150"), nil, "overdraft draw")
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if !c.RemainingBalance.Equal(decimal.RequireFromString("-50")) {
		t.Fatalf("overdraft balance %s, want -50", c.RemainingBalance)
	}
	if c.Status != model.ContractExhausted || c.ExhaustedAt == nil {
		t.Fatalf("overdraft status %s exhausted_at %v", c.Status, c.ExhaustedAt)
	}

	// An adjustment that still leaves the balance negative is refused.
	if _, _, err := e.ledger.Adjust(ctx, spms, c.ID, decimal.RequireFromString("20"), "partial refund"); !errors.Is(err, ErrInvalidAdjustment) {
		t.Fatalf("insufficient adjustment returned %v, want ErrInvalidAdjustment", err)
	}

	c, _, err = e.ledger.Adjust(ctx, spms, c.ID, decimal.RequireFromString("60"), "full refund")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if c.Status != model.ContractActive || c.ExhaustedAt != nil {
		t.Fatalf("recovered contract status %s exhausted_at %v", c.Status, c.ExhaustedAt)
	}
	if !c.RemainingBalance.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("recovered balance %s, want 10", c.RemainingBalance)
	}
}

func TestAdjustValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spms := principal(model.RoleSPMS, uuid.New())
	c := e.openContract(t, spms, "1000")

	if _, _, err := e.ledger.Adjust(ctx, spms, c.ID, decimal.Zero, "noop"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero adjustment returned %v, want ErrInvalidInput", err)
	}
	if _, _, err := e.ledger.Adjust(ctx, spms, c.ID, decimal.RequireFromString("-10"), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("adjustment without remarks returned %v, want ErrInvalidInput", err)
	}
	if _, _, err := e.ledger.Adjust(ctx, spms, c.ID, decimal.RequireFromString("-2000"), "clerical fix"); !errors.Is(err, ErrInvalidAdjustment) {
		t.Fatalf("over-negative adjustment returned %v, want ErrInvalidAdjustment", err)
	}

	// Failed attempts must not have appended ledger rows.
	_, rows, err := e.ledger.Statement(ctx, spms, c.ID)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rejected adjustments left %d rows, want only INITIAL", len(rows))
	}
}

func TestLedgerRoleGating(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org := uuid.New()
	requester := principal(model.RoleRequester, org)
	emd := principal(model.RoleEMD, org)
	admin := principal(model.RoleAdmin, org)

	if _, err := e.ledger.Open(ctx, requester, OpenContractInput{
		ContractNumber: "FC-001",
		SupplierID:     uuid.New(),
		TotalAmount:    decimal.RequireFromString("500"),
	}); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("requester open returned %v, want precondition failure", err)
	}

	c, err := e.ledger.Open(ctx, admin, OpenContractInput{
		ContractNumber: "FC-002",
		SupplierID:     uuid.New(),
		TotalAmount:    decimal.RequireFromString("500"),
	})
	if err != nil {
		t.Fatalf("admin open: %v", err)
	}

	if _, _, err := e.ledger.Deduct(ctx, emd, c.ID, decimal.RequireFromString("10"), nil, "x"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("EMD deduct returned %v, want precondition failure", err)
	}

	if _, _, err := e.ledger.Statement(ctx, requester, c.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("requester statement returned %v, want precondition failure", err)
	}
	if _, _, err := e.ledger.Statement(ctx, emd, c.ID); err != nil {
		t.Fatalf("EMD statement: %v", err)
	}
}

func TestDeductValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spms := principal(model.RoleSPMS, uuid.New())
	c := e.openContract(t, spms, "1000")

	if _, _, err := e.ledger.Deduct(ctx, spms, c.ID, decimal.Zero, nil, "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero deduction returned %v, want ErrInvalidInput", err)
	}
	if _, _, err := e.ledger.Deduct(ctx, spms, c.ID, decimal.RequireFromString("-5"), nil, "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative deduction returned %v, want ErrInvalidInput", err)
	}
	if _, _, err := e.ledger.Deduct(ctx, spms, uuid.New(), decimal.RequireFromString("5"), nil, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown contract returned %v, want ErrNotFound", err)
	}
}
