package permissions

import "context"

type Repository interface {
	Upsert(ctx context.Context, p Permission) error
	Get(ctx context.Context, recordID uint64, grantee string) (Permission, error)
	ListByRecord(ctx context.Context, recordID uint64) ([]Permission, error)
}
