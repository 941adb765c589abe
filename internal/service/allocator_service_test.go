package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

func TestReserveAutomaticSequence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spms := principal(model.RoleSPMS, uuid.New())

	first, err := e.allocator.Reserve(ctx, spms, model.KindRIS, "")
	if err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	second, err := e.allocator.Reserve(ctx, spms, model.KindRIS, "")
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}

	// The month counter starts at the configured seed, so the first two
	// automatic numbers are seed+1 and seed+2.
	if first.ControlNumber != "2025-03-8001" || second.ControlNumber != "2025-03-8002" {
		t.Fatalf("reserved %s then %s", first.ControlNumber, second.ControlNumber)
	}
	if first.Status != model.ReservationReserved {
		t.Fatalf("fresh reservation status %s", first.Status)
	}
}

func TestConcurrentReservesGetDistinctNumbers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spms := principal(model.RoleSPMS, uuid.New())

	const n = 16
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.allocator.Reserve(ctx, spms, model.KindDTT, "")
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			numbers <- res.ControlNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for number := range numbers {
		if seen[number] {
			t.Fatalf("number %s allocated twice", number)
		}
		seen[number] = true
	}
	if len(seen) != n {
		t.Fatalf("allocated %d distinct numbers, want %d", len(seen), n)
	}
}

func TestReserveManualDuplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spms := principal(model.RoleSPMS, uuid.New())

	if _, err := e.allocator.Reserve(ctx, spms, model.KindDTT, "DTT-2025-0007"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := e.allocator.Reserve(ctx, spms, model.KindDTT, "DTT-2025-0007"); !errors.Is(err, ErrAlreadyInUse) {
		t.Fatalf("duplicate reserve returned %v, want ErrAlreadyInUse", err)
	}
}

func TestReserveSameNumberDifferentOrgs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := principal(model.RoleSPMS, uuid.New())
	b := principal(model.RoleSPMS, uuid.New())

	if _, err := e.allocator.Reserve(ctx, a, model.KindDTT, "DTT-2025-0007"); err != nil {
		t.Fatalf("org A reserve: %v", err)
	}
	if _, err := e.allocator.Reserve(ctx, b, model.KindDTT, "DTT-2025-0007"); err != nil {
		t.Fatalf("org B reserve: %v", err)
	}
}

func TestReserveValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org := uuid.New()
	spms := principal(model.RoleSPMS, org)
	requester := principal(model.RoleRequester, org)

	if _, err := e.allocator.Reserve(ctx, requester, model.KindDTT, ""); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("requester reserve returned %v, want precondition failure", err)
	}
	if _, err := e.allocator.Reserve(ctx, spms, model.KindRef, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("reserve of internal kind returned %v, want ErrInvalidInput", err)
	}
	if _, err := e.allocator.Reserve(ctx, spms, model.KindRIS, "2025-00-0001"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("malformed manual reserve returned %v, want ErrInvalidFormat", err)
	}
}

func TestListFiltersByKindAndOrg(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spms := principal(model.RoleSPMS, uuid.New())
	other := principal(model.RoleSPMS, uuid.New())

	if _, err := e.allocator.Reserve(ctx, spms, model.KindRIS, ""); err != nil {
		t.Fatalf("reserve RIS: %v", err)
	}
	if _, err := e.allocator.Reserve(ctx, spms, model.KindDTT, ""); err != nil {
		t.Fatalf("reserve DTT: %v", err)
	}
	if _, err := e.allocator.Reserve(ctx, other, model.KindDTT, ""); err != nil {
		t.Fatalf("reserve other org: %v", err)
	}

	got, err := e.allocator.List(ctx, spms, model.KindDTT)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Kind != model.KindDTT || got[0].OrganizationID != spms.OrgID {
		t.Fatalf("list returned %+v", got)
	}
}
