package records

import "context"

// Repository asigna el ID secuencial en Create (bajo el mismo lock/tx que
// el insert) para que dos creates concurrentes nunca compartan ID.
type Repository interface {
	Create(ctx context.Context, r Record) (uint64, error)
	GetByID(ctx context.Context, id uint64) (Record, error)
	ListByOwner(ctx context.Context, owner string) ([]Record, error)
}
