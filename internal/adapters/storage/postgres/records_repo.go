package postgres

import (
	"context"
	"database/sql"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/records"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

// Create deja que la secuencia de la tabla asigne el ID (BIGSERIAL):
// monotónico y único también con creates concurrentes.
func (r *RecordsRepo) Create(ctx context.Context, rec records.Record) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO health_records (
			owner, title, record_type, pointer, created_at
		) VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`,
		rec.Owner,
		rec.Title,
		rec.RecordType,
		rec.Pointer,
		rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *RecordsRepo) GetByID(ctx context.Context, id uint64) (records.Record, error) {
	if id == 0 {
		return records.Record{}, records.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner, title, record_type, pointer, created_at
		FROM health_records
		WHERE id = $1
	`, id)

	var rec records.Record
	if err := row.Scan(
		&rec.ID,
		&rec.Owner,
		&rec.Title,
		&rec.RecordType,
		&rec.Pointer,
		&rec.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			// Sentinel del dominio: los handlers hacen switch sobre él.
			return records.Record{}, records.ErrNotFound
		}
		return records.Record{}, err
	}

	return rec, nil
}

func (r *RecordsRepo) ListByOwner(ctx context.Context, owner string) ([]records.Record, error) {
	if owner == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, title, record_type, pointer, created_at
		FROM health_records
		WHERE owner = $1
		ORDER BY id ASC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Record, 0)
	for rows.Next() {
		var rec records.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Owner,
			&rec.Title,
			&rec.RecordType,
			&rec.Pointer,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}
