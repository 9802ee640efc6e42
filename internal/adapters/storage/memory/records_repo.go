package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/records"
)

var (
	ErrNotFound = errors.New("not found")
)

type recordRepo struct {
	mu     sync.RWMutex
	byID   map[uint64]records.Record
	lastID uint64
}

func NewRecordsRepo() records.Repository {
	return &recordRepo{
		byID: make(map[uint64]records.Record),
	}
}

// Create asigna el siguiente ID bajo el mismo lock que el insert:
// dos creates concurrentes nunca comparten ID ni dejan huecos.
func (r *recordRepo) Create(ctx context.Context, rec records.Record) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	rec.ID = r.lastID
	r.byID[rec.ID] = rec
	return rec.ID, nil
}

func (r *recordRepo) GetByID(ctx context.Context, id uint64) (records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		// Sentinel del dominio: los handlers hacen switch sobre él.
		return records.Record{}, records.ErrNotFound
	}
	return rec, nil
}

func (r *recordRepo) ListByOwner(ctx context.Context, owner string) ([]records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.Record, 0)
	for _, rec := range r.byID {
		if rec.Owner == owner {
			out = append(out, rec)
		}
	}

	// Orden estable por ID asc (los IDs ya son monotónicos de creación)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}
