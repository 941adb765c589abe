package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

func (e *env) submitTrip(t *testing.T, p model.Principal, reserved string) *model.TripTicket {
	t.Helper()
	trip, err := e.trips.Submit(context.Background(), p, SubmitTripInput{
		DriverID:       uuid.New(),
		VehicleID:      uuid.New(),
		Office:         "motor pool",
		Destination:    "regional depot",
		Purposes:       []string{"deliver supplies"},
		Passengers:     []string{"J. Cruz"},
		PeriodStart:    e.clock,
		PeriodEnd:      e.clock.Add(8 * time.Hour),
		ReservedNumber: reserved,
	})
	if err != nil {
		t.Fatalf("submit trip: %v", err)
	}
	return trip
}

func TestTripLifecycleAutomaticSerial(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org := uuid.New()
	requester := principal(model.RoleRequester, org)
	spms := principal(model.RoleSPMS, org)

	trip := e.submitTrip(t, requester, "")
	if trip.Status != model.TripPendingApproval || trip.Version != 1 {
		t.Fatalf("after submit: status %s version %d", trip.Status, trip.Version)
	}

	trip, err := e.trips.Approve(ctx, spms, trip.ID, trip.Version, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if trip.Status != model.TripApproved {
		t.Fatalf("after approve: status %s", trip.Status)
	}
	if trip.SerialNumber == nil || *trip.SerialNumber != "DTT-2025-0001" {
		t.Fatalf("approve allocated %v, want DTT-2025-0001", trip.SerialNumber)
	}
	if trip.ApprovedBy == nil || trip.ApprovedAt == nil {
		t.Fatal("approve did not stamp approver")
	}

	second := e.submitTrip(t, requester, "")
	second, err = e.trips.Approve(ctx, spms, second.ID, second.Version, "")
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if *second.SerialNumber != "DTT-2025-0002" {
		t.Fatalf("consecutive approvals allocated %s after DTT-2025-0001", *second.SerialNumber)
	}
}

func TestTripConsumesHeldReservation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org := uuid.New()
	requester := principal(model.RoleRequester, org)
	spms := principal(model.RoleSPMS, org)

	res, err := e.allocator.Reserve(ctx, spms, model.KindDTT, "DTT-2025-0042")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	trip := e.submitTrip(t, requester, res.ControlNumber)
	trip, err = e.trips.Approve(ctx, spms, trip.ID, trip.Version, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if *trip.SerialNumber != "DTT-2025-0042" {
		t.Fatalf("approve stamped %s, want the reserved DTT-2025-0042", *trip.SerialNumber)
	}

	held, err := e.allocator.List(ctx, spms, model.KindDTT)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(held) != 1 || held[0].Status != model.ReservationUsed {
		t.Fatalf("reservation not consumed: %+v", held)
	}
	if held[0].TicketID == nil || *held[0].TicketID != trip.ID {
		t.Fatal("consumed reservation does not point at the ticket")
	}

	// The reserved ordinal bumped the counter, so the next automatic
	// allocation continues past it.
	next := e.submitTrip(t, requester, "")
	next, err = e.trips.Approve(ctx, spms, next.ID, next.Version, "")
	if err != nil {
		t.Fatalf("next approve: %v", err)
	}
	if *next.SerialNumber != "DTT-2025-0043" {
		t.Fatalf("post-reservation automatic allocated %s, want DTT-2025-0043", *next.SerialNumber)
	}
}

func TestTripSubmitRejectsUnbackedReservedNumber(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org := uuid.New()
	requester := principal(model.RoleRequester, org)
	spms := principal(model.RoleSPMS, org)

	_, err := e.trips.Submit(ctx, requester, SubmitTripInput{
		DriverID:       uuid.New(),
		VehicleID:      uuid.New(),
		Destination:    "depot",
		PeriodStart:    e.clock,
		PeriodEnd:      e.clock.Add(time.Hour),
		ReservedNumber: "DTT-2025-0001",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unbacked reserved number returned %v, want ErrNotFound", err)
	}

	// The rejected squat left no durable claim behind: the number can still
	// be reserved manually, and the counter it bumps keeps automatic
	// allocation from reissuing it.
	if _, err := e.allocator.Reserve(ctx, spms, model.KindDTT, "DTT-2025-0001"); err != nil {
		t.Fatalf("manual reserve after rejected squat: %v", err)
	}
	next, err := e.allocator.Reserve(ctx, spms, model.KindDTT, "")
	if err != nil {
		t.Fatalf("automatic reserve: %v", err)
	}
	if next.ControlNumber != "DTT-2025-0002" {
		t.Fatalf("automatic reserve allocated %s, want DTT-2025-0002", next.ControlNumber)
	}
}

func TestTripSubmitValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	requester := principal(model.RoleRequester, uuid.New())

	cases := []struct {
		name string
		in   SubmitTripInput
		want error
	}{
		{
			name: "missing destination",
			in: SubmitTripInput{
				DriverID:    uuid.New(),
				VehicleID:   uuid.New(),
				PeriodStart: e.clock,
				PeriodEnd:   e.clock.Add(time.Hour),
			},
			want: ErrInvalidInput,
		},
		{
			name: "inverted period",
			in: SubmitTripInput{
				DriverID:    uuid.New(),
				VehicleID:   uuid.New(),
				Destination: "depot",
				PeriodStart: e.clock,
				PeriodEnd:   e.clock.Add(-time.Hour),
			},
			want: ErrInvalidInput,
		},
		{
			name: "malformed reserved number",
			in: SubmitTripInput{
				DriverID:       uuid.New(),
				VehicleID:      uuid.New(),
				Destination:    "depot",
				PeriodStart:    e.clock,
				PeriodEnd:      e.clock.Add(time.Hour),
				ReservedNumber: "TT-2025-001",
			},
			want: ErrInvalidFormat,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.trips.Submit(ctx, requester, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("submit returned %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTripReturnRejectAndResubmit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org := uuid.New()
	requester := principal(model.RoleRequester, org)
	spms := principal(model.RoleSPMS, org)

	trip := e.submitTrip(t, requester, "")
	trip, err := e.trips.Return(ctx, spms, trip.ID, trip.Version, "passengers list incomplete")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if trip.Status != model.TripReturned {
		t.Fatalf("after return: status %s", trip.Status)
	}

	owner := model.Principal{UserID: trip.RequesterID, OrgID: org, Role: model.RoleRequester}
	trip, err = e.trips.Resubmit(ctx, owner, trip.ID, trip.Version, SubmitTripInput{
		Passengers: []string{"J. Cruz", "M. Santos"},
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if trip.Status != model.TripPendingApproval || len(trip.Passengers) != 2 {
		t.Fatalf("after resubmit: status %s passengers %v", trip.Status, trip.Passengers)
	}

	if _, err := e.trips.Reject(ctx, spms, trip.ID, trip.Version, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("reject without remarks returned %v, want ErrInvalidInput", err)
	}
	trip, err = e.trips.Reject(ctx, spms, trip.ID, trip.Version, "no vehicle available")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if !trip.Status.Terminal() {
		t.Fatalf("REJECTED should be terminal, got %s", trip.Status)
	}
}

func TestTripApproveStaleVersion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org := uuid.New()
	requester := principal(model.RoleRequester, org)
	spms := principal(model.RoleSPMS, org)

	trip := e.submitTrip(t, requester, "")
	if _, err := e.trips.Return(ctx, spms, trip.ID, trip.Version, "hold"); err != nil {
		t.Fatalf("return: %v", err)
	}

	_, err := e.trips.Approve(ctx, spms, trip.ID, trip.Version, "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("stale approve returned %v, want ConflictError", err)
	}
	if conflict.CurrentStatus != string(model.TripReturned) {
		t.Fatalf("conflict carries status %s", conflict.CurrentStatus)
	}
}

func TestTripCancelOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org := uuid.New()
	requester := principal(model.RoleRequester, org)
	stranger := principal(model.RoleRequester, org)

	trip := e.submitTrip(t, requester, "")
	if _, err := e.trips.Cancel(ctx, stranger, trip.ID, trip.Version); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("foreign cancel returned %v, want precondition failure", err)
	}

	owner := model.Principal{UserID: trip.RequesterID, OrgID: org, Role: model.RoleRequester}
	trip, err := e.trips.Cancel(ctx, owner, trip.ID, trip.Version)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if trip.Status != model.TripCancelled || trip.CancelledAt == nil {
		t.Fatalf("after cancel: status %s", trip.Status)
	}
}
