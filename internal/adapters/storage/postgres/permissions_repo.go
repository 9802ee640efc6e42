package postgres

import (
	"context"
	"database/sql"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/permissions"
)

type PermissionsRepo struct {
	db *sql.DB
}

func NewPermissionsRepo(db *sql.DB) *PermissionsRepo {
	return &PermissionsRepo{db: db}
}

// Upsert con overwrite: un nuevo grant pisa los flags anteriores.
func (r *PermissionsRepo) Upsert(ctx context.Context, p permissions.Permission) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO record_permissions (
			record_id, grantee, can_read, can_write, granted_at
		) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (record_id, grantee) DO UPDATE
		SET can_read = EXCLUDED.can_read,
		    can_write = EXCLUDED.can_write,
		    granted_at = EXCLUDED.granted_at
	`,
		p.RecordID,
		p.Grantee,
		p.CanRead,
		p.CanWrite,
		p.GrantedAt,
	)
	return err
}

func (r *PermissionsRepo) Get(ctx context.Context, recordID uint64, grantee string) (permissions.Permission, error) {
	if recordID == 0 || grantee == "" {
		return permissions.Permission{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT record_id, grantee, can_read, can_write, granted_at
		FROM record_permissions
		WHERE record_id = $1 AND grantee = $2
	`, recordID, grantee)

	var p permissions.Permission
	if err := row.Scan(
		&p.RecordID,
		&p.Grantee,
		&p.CanRead,
		&p.CanWrite,
		&p.GrantedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return permissions.Permission{}, ErrNotFound
		}
		return permissions.Permission{}, err
	}

	return p, nil
}

func (r *PermissionsRepo) ListByRecord(ctx context.Context, recordID uint64) ([]permissions.Permission, error) {
	if recordID == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT record_id, grantee, can_read, can_write, granted_at
		FROM record_permissions
		WHERE record_id = $1
		ORDER BY grantee ASC
	`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]permissions.Permission, 0)
	for rows.Next() {
		var p permissions.Permission
		if err := rows.Scan(
			&p.RecordID,
			&p.Grantee,
			&p.CanRead,
			&p.CanWrite,
			&p.GrantedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}
