package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'requisition_status') THEN
			CREATE TYPE requisition_status AS ENUM (
				'PENDING_EMD', 'RETURNED', 'REJECTED', 'EMD_VALIDATED',
				'RIS_ISSUED', 'AWAITING_RECEIPT', 'RECEIPT_SUBMITTED',
				'RECEIPT_RETURNED', 'COMPLETED', 'CANCELLED', 'VOIDED'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'trip_ticket_status') THEN
			CREATE TYPE trip_ticket_status AS ENUM (
				'PENDING_APPROVAL', 'RETURNED', 'REJECTED', 'APPROVED', 'CANCELLED'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('ACTIVE', 'EXHAUSTED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_transaction_type') THEN
			CREATE TYPE contract_transaction_type AS ENUM ('INITIAL', 'DEDUCTION', 'ADJUSTMENT');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY,
		contract_number VARCHAR(64) NOT NULL,
		supplier_id UUID NOT NULL,
		organization_id UUID NOT NULL,
		total_amount NUMERIC(18,2) NOT NULL,
		remaining_balance NUMERIC(18,2) NOT NULL,
		status contract_status NOT NULL DEFAULT 'ACTIVE',
		exhausted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_organization_id ON contracts (organization_id);`,
	`CREATE TABLE IF NOT EXISTS contract_transactions (
		id UUID PRIMARY KEY,
		contract_id UUID NOT NULL REFERENCES contracts(id),
		requisition_id UUID,
		type contract_transaction_type NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		balance_before NUMERIC(18,2) NOT NULL,
		balance_after NUMERIC(18,2) NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		actor_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_transactions_contract_id ON contract_transactions (contract_id, created_at);`,
	`CREATE TABLE IF NOT EXISTS requisitions (
		id UUID PRIMARY KEY,
		ref_number BIGINT NOT NULL,
		organization_id UUID NOT NULL,
		requester_id UUID NOT NULL,
		vehicle_id UUID NOT NULL,
		driver_id UUID NOT NULL,
		purpose TEXT NOT NULL DEFAULT '',
		destination TEXT NOT NULL DEFAULT '',
		requested_liters NUMERIC(18,3) NOT NULL DEFAULT 0,
		validated_liters NUMERIC(18,3) NOT NULL DEFAULT 0,
		actual_liters NUMERIC(18,3) NOT NULL DEFAULT 0,
		contract_id UUID REFERENCES contracts(id),
		supplier_id UUID,
		ris_number VARCHAR(32),
		status requisition_status NOT NULL DEFAULT 'PENDING_EMD',
		price_at_issuance NUMERIC(18,4) NOT NULL DEFAULT 0,
		price_at_purchase NUMERIC(18,4) NOT NULL DEFAULT 0,
		total_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		valid_until TIMESTAMPTZ,
		validated_by UUID,
		validated_at TIMESTAMPTZ,
		validation_remark TEXT,
		issued_by UUID,
		issued_at TIMESTAMPTZ,
		verified_by UUID,
		verified_at TIMESTAMPTZ,
		verify_remark TEXT,
		invoice_number VARCHAR(64),
		invoice_date TIMESTAMPTZ,
		return_remark TEXT,
		returned_by UUID,
		returned_at TIMESTAMPTZ,
		void_reason TEXT,
		voided_by UUID,
		voided_at TIMESTAMPTZ,
		cancelled_by UUID,
		cancelled_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_edited_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_requisitions_ris_number ON requisitions (organization_id, ris_number) WHERE ris_number IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_requisitions_organization_id ON requisitions (organization_id);`,
	`CREATE INDEX IF NOT EXISTS idx_requisitions_requester_id ON requisitions (requester_id);`,
	`CREATE INDEX IF NOT EXISTS idx_requisitions_status ON requisitions (status);`,
	`CREATE TABLE IF NOT EXISTS trip_tickets (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL,
		requester_id UUID NOT NULL,
		driver_id UUID NOT NULL,
		vehicle_id UUID NOT NULL,
		office TEXT NOT NULL DEFAULT '',
		destination TEXT NOT NULL DEFAULT '',
		purposes JSONB,
		passengers JSONB,
		period_start TIMESTAMPTZ NOT NULL,
		period_end TIMESTAMPTZ NOT NULL,
		status trip_ticket_status NOT NULL DEFAULT 'PENDING_APPROVAL',
		serial_number VARCHAR(32),
		serial_number_reserved VARCHAR(32),
		approved_by UUID,
		approved_at TIMESTAMPTZ,
		return_remark TEXT,
		reject_remark TEXT,
		cancelled_by UUID,
		cancelled_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_edited_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_trip_tickets_serial_number ON trip_tickets (organization_id, serial_number) WHERE serial_number IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_trip_tickets_organization_id ON trip_tickets (organization_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_tickets_status ON trip_tickets (status);`,
	`CREATE TABLE IF NOT EXISTS serial_reservations (
		id UUID PRIMARY KEY,
		kind VARCHAR(8) NOT NULL,
		control_number VARCHAR(32) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'reserved',
		organization_id UUID NOT NULL,
		ticket_id UUID,
		reserved_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_reservation_number ON serial_reservations (organization_id, control_number);`,
	`CREATE TABLE IF NOT EXISTS sequence_counters (
		id UUID PRIMARY KEY,
		kind VARCHAR(8) NOT NULL,
		scope VARCHAR(16) NOT NULL,
		organization_id UUID NOT NULL,
		counter BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_sequence_counter_key UNIQUE (kind, scope, organization_id)
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
