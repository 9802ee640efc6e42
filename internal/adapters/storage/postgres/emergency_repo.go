package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/emergency"

	"github.com/jackc/pgx/v5/pgconn"
)

// ---- Contactos ----

type EmergencyContactsRepo struct {
	db *sql.DB
}

func NewEmergencyContactsRepo(db *sql.DB) *EmergencyContactsRepo {
	return &EmergencyContactsRepo{db: db}
}

// Create confía en la PK (owner, contact): si ya hay fila (activa o no)
// el insert viola unicidad y devolvemos ErrDuplicateContact.
func (r *EmergencyContactsRepo) Create(ctx context.Context, c emergency.Contact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO emergency_contacts (
			owner, contact, contact_type, relationship,
			can_access_all, added_at, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		c.Owner,
		c.Contact,
		c.ContactType,
		c.Relationship,
		c.CanAccessAll,
		c.AddedAt,
		c.IsActive,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return emergency.ErrDuplicateContact
		}
		return err
	}
	return nil
}

func (r *EmergencyContactsRepo) Get(ctx context.Context, owner, contact string) (emergency.Contact, error) {
	if owner == "" || contact == "" {
		return emergency.Contact{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT owner, contact, contact_type, relationship,
		       can_access_all, added_at, is_active
		FROM emergency_contacts
		WHERE owner = $1 AND contact = $2
	`, owner, contact)

	var c emergency.Contact
	if err := row.Scan(
		&c.Owner,
		&c.Contact,
		&c.ContactType,
		&c.Relationship,
		&c.CanAccessAll,
		&c.AddedAt,
		&c.IsActive,
	); err != nil {
		if err == sql.ErrNoRows {
			return emergency.Contact{}, ErrNotFound
		}
		return emergency.Contact{}, err
	}

	return c, nil
}

func (r *EmergencyContactsRepo) ListByOwner(ctx context.Context, owner string) ([]emergency.Contact, error) {
	if owner == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT owner, contact, contact_type, relationship,
		       can_access_all, added_at, is_active
		FROM emergency_contacts
		WHERE owner = $1
		ORDER BY added_at ASC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]emergency.Contact, 0)
	for rows.Next() {
		var c emergency.Contact
		if err := rows.Scan(
			&c.Owner,
			&c.Contact,
			&c.ContactType,
			&c.Relationship,
			&c.CanAccessAll,
			&c.AddedAt,
			&c.IsActive,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

// Deactivate es soft-delete; la fila queda para auditoría.
func (r *EmergencyContactsRepo) Deactivate(ctx context.Context, owner, contact string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE emergency_contacts
		SET is_active = FALSE
		WHERE owner = $1 AND contact = $2
	`, owner, contact)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Log de accesos ----

type EmergencyLogRepo struct {
	db *sql.DB
}

func NewEmergencyLogRepo(db *sql.DB) *EmergencyLogRepo {
	return &EmergencyLogRepo{db: db}
}

// Append asigna el sequence con una tabla de contadores por clave
// compuesta, en la misma transacción que el insert: el upsert toma el
// row lock del contador, así que dos appends concurrentes sobre la misma
// clave se serializan y nunca comparten sequence.
func (r *EmergencyLogRepo) Append(ctx context.Context, e emergency.LogEntry) (emergency.LogEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return emergency.LogEntry{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var seq uint64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO emergency_log_seq (record_id, contact, next_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (record_id, contact) DO UPDATE
		SET next_seq = emergency_log_seq.next_seq + 1
		RETURNING next_seq
	`, e.RecordID, e.Contact).Scan(&seq)
	if err != nil {
		return emergency.LogEntry{}, err
	}
	e.Sequence = seq

	_, err = tx.ExecContext(ctx, `
		INSERT INTO emergency_access_log (
			record_id, contact, sequence, access_id,
			record_owner, access_reason, ts, is_valid
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.RecordID,
		e.Contact,
		e.Sequence,
		e.AccessID,
		e.RecordOwner,
		e.AccessReason,
		e.Timestamp,
		e.IsValid,
	)
	if err != nil {
		return emergency.LogEntry{}, err
	}

	if err := tx.Commit(); err != nil {
		return emergency.LogEntry{}, err
	}
	return e, nil
}

func (r *EmergencyLogRepo) Get(ctx context.Context, recordID uint64, contact string, sequence uint64) (emergency.LogEntry, error) {
	if recordID == 0 || contact == "" || sequence == 0 {
		return emergency.LogEntry{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT record_id, contact, sequence, access_id,
		       record_owner, access_reason, ts, is_valid
		FROM emergency_access_log
		WHERE record_id = $1 AND contact = $2 AND sequence = $3
	`, recordID, contact, sequence)

	var e emergency.LogEntry
	if err := row.Scan(
		&e.RecordID,
		&e.Contact,
		&e.Sequence,
		&e.AccessID,
		&e.RecordOwner,
		&e.AccessReason,
		&e.Timestamp,
		&e.IsValid,
	); err != nil {
		if err == sql.ErrNoRows {
			return emergency.LogEntry{}, ErrNotFound
		}
		return emergency.LogEntry{}, err
	}

	return e, nil
}

func (r *EmergencyLogRepo) ListByRecord(ctx context.Context, recordID uint64) ([]emergency.LogEntry, error) {
	if recordID == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT record_id, contact, sequence, access_id,
		       record_owner, access_reason, ts, is_valid
		FROM emergency_access_log
		WHERE record_id = $1
		ORDER BY contact ASC, sequence ASC
	`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]emergency.LogEntry, 0)
	for rows.Next() {
		var e emergency.LogEntry
		if err := rows.Scan(
			&e.RecordID,
			&e.Contact,
			&e.Sequence,
			&e.AccessID,
			&e.RecordOwner,
			&e.AccessReason,
			&e.Timestamp,
			&e.IsValid,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

// ---- Settings ----

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// EmergencyEnabled lee el singleton; sin fila => habilitado (default
// del contrato).
func (r *SettingsRepo) EmergencyEnabled(ctx context.Context) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT emergency_access_enabled
		FROM system_settings
		WHERE id = 1
	`)

	var enabled bool
	if err := row.Scan(&enabled); err != nil {
		if err == sql.ErrNoRows {
			return true, nil
		}
		return false, err
	}
	return enabled, nil
}

// ToggleEmergency invierte el flag de forma atómica y devuelve el nuevo.
func (r *SettingsRepo) ToggleEmergency(ctx context.Context) (bool, error) {
	var enabled bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO system_settings (id, emergency_access_enabled)
		VALUES (1, FALSE)
		ON CONFLICT (id) DO UPDATE
		SET emergency_access_enabled = NOT system_settings.emergency_access_enabled
		RETURNING emergency_access_enabled
	`).Scan(&enabled)
	if err != nil {
		return false, err
	}
	return enabled, nil
}
