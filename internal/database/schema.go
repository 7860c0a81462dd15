package database

import "fmt"

// schemaFor returns the DDL for the given driver. The two schemas differ only
// in key/timestamp column types; all runtime SQL in the repositories is
// shared between drivers ($n placeholders and RETURNING).
func schemaFor(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return postgresSchema, nil
	case DriverSQLite:
		return sqliteSchema, nil
	}
	return "", fmt.Errorf("no schema for driver %q", driver)
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS warehouses (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	address TEXT,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS employees (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	department TEXT,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS providers (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	contact_email TEXT,
	phone TEXT,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS tools (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'available',
	condition TEXT,
	warehouse_id BIGINT REFERENCES warehouses(id),
	location_id BIGINT,
	requires_calibration BOOLEAN NOT NULL DEFAULT FALSE,
	calibration_interval_days INTEGER,
	last_calibration_date TIMESTAMPTZ,
	next_calibration_date TIMESTAMPTZ,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS tool_status_history (
	id BIGSERIAL PRIMARY KEY,
	tool_id BIGINT NOT NULL REFERENCES tools(id),
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	reason TEXT,
	actor_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_status_history_tool ON tool_status_history(tool_id, id);

CREATE TABLE IF NOT EXISTS movement_sequences (
	scope TEXT PRIMARY KEY,
	value BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS movements (
	id BIGSERIAL PRIMARY KEY,
	number TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	purpose TEXT,
	source_warehouse_id BIGINT REFERENCES warehouses(id),
	destination_warehouse_id BIGINT REFERENCES warehouses(id),
	destination_location_id BIGINT,
	notes TEXT,
	cancel_reason TEXT,
	created_by TEXT NOT NULL,
	movement_date TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS movement_items (
	id BIGSERIAL PRIMARY KEY,
	movement_id BIGINT NOT NULL REFERENCES movements(id),
	tool_id BIGINT NOT NULL REFERENCES tools(id),
	quantity INTEGER NOT NULL,
	notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_movement_items_movement ON movement_items(movement_id);

CREATE TABLE IF NOT EXISTS calibration_records (
	id BIGSERIAL PRIMARY KEY,
	tool_id BIGINT NOT NULL REFERENCES tools(id),
	provider_id BIGINT NOT NULL REFERENCES providers(id),
	status TEXT NOT NULL DEFAULT 'sent',
	result TEXT,
	certificate_number TEXT,
	send_date TIMESTAMPTZ NOT NULL,
	expected_return_date TIMESTAMPTZ,
	received_date TIMESTAMPTZ,
	next_calibration_date TIMESTAMPTZ,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_calibration_open_per_tool
	ON calibration_records(tool_id) WHERE status IN ('pending', 'sent', 'in_process');

CREATE TABLE IF NOT EXISTS maintenance_records (
	id BIGSERIAL PRIMARY KEY,
	tool_id BIGINT NOT NULL REFERENCES tools(id),
	provider_id BIGINT NOT NULL REFERENCES providers(id),
	type TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'sent',
	send_date TIMESTAMPTZ NOT NULL,
	expected_return_date TIMESTAMPTZ,
	received_date TIMESTAMPTZ,
	work_performed TEXT,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_maintenance_open_per_tool
	ON maintenance_records(tool_id) WHERE status IN ('pending', 'sent', 'in_process');

CREATE TABLE IF NOT EXISTS quarantine_records (
	id BIGSERIAL PRIMARY KEY,
	tool_id BIGINT NOT NULL REFERENCES tools(id),
	status TEXT NOT NULL DEFAULT 'active',
	reason TEXT NOT NULL,
	description TEXT,
	resolution TEXT,
	action_taken TEXT,
	opened_by TEXT NOT NULL,
	opened_at TIMESTAMPTZ NOT NULL,
	closed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_quarantine_active_per_tool
	ON quarantine_records(tool_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS decommission_records (
	id BIGSERIAL PRIMARY KEY,
	tool_id BIGINT NOT NULL REFERENCES tools(id),
	status TEXT NOT NULL DEFAULT 'pending',
	reason TEXT NOT NULL,
	rejection_reason TEXT,
	requested_by TEXT NOT NULL,
	resolved_by TEXT,
	requested_at TIMESTAMPTZ NOT NULL,
	resolved_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS kits (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS kit_items (
	id BIGSERIAL PRIMARY KEY,
	kit_id BIGINT NOT NULL REFERENCES kits(id),
	tool_id BIGINT NOT NULL REFERENCES tools(id),
	quantity INTEGER NOT NULL,
	required BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_kit_items_kit ON kit_items(kit_id);

CREATE TABLE IF NOT EXISTS roster_assignments (
	id BIGSERIAL PRIMARY KEY,
	tool_id BIGINT REFERENCES tools(id),
	kit_id BIGINT REFERENCES kits(id),
	employee_id BIGINT NOT NULL REFERENCES employees(id),
	shift TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	assignment_date TIMESTAMPTZ NOT NULL,
	expected_return_date TIMESTAMPTZ NOT NULL,
	actual_return_date TIMESTAMPTZ,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CHECK ((tool_id IS NULL) <> (kit_id IS NULL))
);
CREATE INDEX IF NOT EXISTS idx_roster_assignments_employee ON roster_assignments(employee_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_roster_open_per_tool
	ON roster_assignments(tool_id) WHERE status IN ('active', 'overdue', 'extended');
CREATE UNIQUE INDEX IF NOT EXISTS idx_roster_open_per_kit
	ON roster_assignments(kit_id) WHERE status IN ('active', 'overdue', 'extended');
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS warehouses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	address TEXT,
	active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS employees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	department TEXT,
	active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS providers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	contact_email TEXT,
	phone TEXT,
	active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tools (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'available',
	condition TEXT,
	warehouse_id INTEGER REFERENCES warehouses(id),
	location_id INTEGER,
	requires_calibration BOOLEAN NOT NULL DEFAULT 0,
	calibration_interval_days INTEGER,
	last_calibration_date TIMESTAMP,
	next_calibration_date TIMESTAMP,
	active BOOLEAN NOT NULL DEFAULT 1,
	version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tool_status_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_id INTEGER NOT NULL REFERENCES tools(id),
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	reason TEXT,
	actor_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_status_history_tool ON tool_status_history(tool_id, id);

CREATE TABLE IF NOT EXISTS movement_sequences (
	scope TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS movements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	number TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	purpose TEXT,
	source_warehouse_id INTEGER REFERENCES warehouses(id),
	destination_warehouse_id INTEGER REFERENCES warehouses(id),
	destination_location_id INTEGER,
	notes TEXT,
	cancel_reason TEXT,
	created_by TEXT NOT NULL,
	movement_date TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS movement_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	movement_id INTEGER NOT NULL REFERENCES movements(id),
	tool_id INTEGER NOT NULL REFERENCES tools(id),
	quantity INTEGER NOT NULL,
	notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_movement_items_movement ON movement_items(movement_id);

CREATE TABLE IF NOT EXISTS calibration_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_id INTEGER NOT NULL REFERENCES tools(id),
	provider_id INTEGER NOT NULL REFERENCES providers(id),
	status TEXT NOT NULL DEFAULT 'sent',
	result TEXT,
	certificate_number TEXT,
	send_date TIMESTAMP NOT NULL,
	expected_return_date TIMESTAMP,
	received_date TIMESTAMP,
	next_calibration_date TIMESTAMP,
	notes TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_calibration_open_per_tool
	ON calibration_records(tool_id) WHERE status IN ('pending', 'sent', 'in_process');

CREATE TABLE IF NOT EXISTS maintenance_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_id INTEGER NOT NULL REFERENCES tools(id),
	provider_id INTEGER NOT NULL REFERENCES providers(id),
	type TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'sent',
	send_date TIMESTAMP NOT NULL,
	expected_return_date TIMESTAMP,
	received_date TIMESTAMP,
	work_performed TEXT,
	notes TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_maintenance_open_per_tool
	ON maintenance_records(tool_id) WHERE status IN ('pending', 'sent', 'in_process');

CREATE TABLE IF NOT EXISTS quarantine_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_id INTEGER NOT NULL REFERENCES tools(id),
	status TEXT NOT NULL DEFAULT 'active',
	reason TEXT NOT NULL,
	description TEXT,
	resolution TEXT,
	action_taken TEXT,
	opened_by TEXT NOT NULL,
	opened_at TIMESTAMP NOT NULL,
	closed_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_quarantine_active_per_tool
	ON quarantine_records(tool_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS decommission_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_id INTEGER NOT NULL REFERENCES tools(id),
	status TEXT NOT NULL DEFAULT 'pending',
	reason TEXT NOT NULL,
	rejection_reason TEXT,
	requested_by TEXT NOT NULL,
	resolved_by TEXT,
	requested_at TIMESTAMP NOT NULL,
	resolved_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS kits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT,
	active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS kit_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kit_id INTEGER NOT NULL REFERENCES kits(id),
	tool_id INTEGER NOT NULL REFERENCES tools(id),
	quantity INTEGER NOT NULL,
	required BOOLEAN NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_kit_items_kit ON kit_items(kit_id);

CREATE TABLE IF NOT EXISTS roster_assignments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_id INTEGER REFERENCES tools(id),
	kit_id INTEGER REFERENCES kits(id),
	employee_id INTEGER NOT NULL REFERENCES employees(id),
	shift TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	assignment_date TIMESTAMP NOT NULL,
	expected_return_date TIMESTAMP NOT NULL,
	actual_return_date TIMESTAMP,
	notes TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	CHECK ((tool_id IS NULL) <> (kit_id IS NULL))
);
CREATE INDEX IF NOT EXISTS idx_roster_assignments_employee ON roster_assignments(employee_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_roster_open_per_tool
	ON roster_assignments(tool_id) WHERE status IN ('active', 'overdue', 'extended');
CREATE UNIQUE INDEX IF NOT EXISTS idx_roster_open_per_kit
	ON roster_assignments(kit_id) WHERE status IN ('active', 'overdue', 'extended');
`
