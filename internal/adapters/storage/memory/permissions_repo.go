package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/permissions"
)

type permKey struct {
	recordID uint64
	grantee  string
}

type permissionsRepo struct {
	mu    sync.RWMutex
	byKey map[permKey]permissions.Permission
}

func NewPermissionsRepo() permissions.Repository {
	return &permissionsRepo{
		byKey: make(map[permKey]permissions.Permission),
	}
}

// Upsert pisa la entrada anterior si existe (overwrite, no merge).
func (r *permissionsRepo) Upsert(ctx context.Context, p permissions.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byKey[permKey{recordID: p.RecordID, grantee: p.Grantee}] = p
	return nil
}

func (r *permissionsRepo) Get(ctx context.Context, recordID uint64, grantee string) (permissions.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byKey[permKey{recordID: recordID, grantee: grantee}]
	if !ok {
		return permissions.Permission{}, ErrNotFound
	}
	return p, nil
}

func (r *permissionsRepo) ListByRecord(ctx context.Context, recordID uint64) ([]permissions.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]permissions.Permission, 0)
	for k, p := range r.byKey {
		if k.recordID == recordID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Grantee < out[j].Grantee
	})

	return out, nil
}
