package permissions

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo + lookup
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type permKey struct {
	recordID uint64
	grantee  string
}

type testRepo struct {
	byKey map[permKey]Permission
}

func newTestRepo() *testRepo {
	return &testRepo{byKey: map[permKey]Permission{}}
}

func (r *testRepo) Upsert(ctx context.Context, p Permission) error {
	r.byKey[permKey{p.RecordID, p.Grantee}] = p
	return nil
}

func (r *testRepo) Get(ctx context.Context, recordID uint64, grantee string) (Permission, error) {
	p, ok := r.byKey[permKey{recordID, grantee}]
	if !ok {
		return Permission{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) ListByRecord(ctx context.Context, recordID uint64) ([]Permission, error) {
	out := make([]Permission, 0)
	for k, p := range r.byKey {
		if k.recordID == recordID {
			out = append(out, p)
		}
	}
	return out, nil
}

type testOwners struct {
	byID map[uint64]string
}

func (o *testOwners) OwnerOf(ctx context.Context, recordID uint64) (string, error) {
	owner, ok := o.byID[recordID]
	if !ok {
		return "", errRepoNotFound
	}
	return owner, nil
}

func newSvc() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, &testOwners{byID: map[uint64]string{1: "owner-1"}})
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestService_Grant_RecordNotFound(t *testing.T) {
	svc, _ := newSvc()

	_, err := svc.Grant(context.Background(), "owner-1", GrantInput{
		RecordID: 999,
		Grantee:  "user-1",
		CanRead:  true,
	})
	if err != ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestService_Grant_NonOwnerUnauthorized(t *testing.T) {
	svc, repo := newSvc()

	_, err := svc.Grant(context.Background(), "user-2", GrantInput{
		RecordID: 1,
		Grantee:  "user-1",
		CanRead:  true,
	})
	if err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(repo.byKey) != 0 {
		t.Fatalf("expected no mutation on failure")
	}
}

func TestService_Grant_VisibleToCanAccess(t *testing.T) {
	svc, _ := newSvc()

	_, err := svc.Grant(context.Background(), "owner-1", GrantInput{
		RecordID: 1,
		Grantee:  "user-1",
		CanRead:  true,
		CanWrite: false,
	})
	if err != nil {
		t.Fatalf("Grant error: %v", err)
	}

	ok, err := svc.CanAccess(context.Background(), 1, "user-1")
	if err != nil || !ok {
		t.Fatalf("CanAccess(user-1) = (%v, %v), expected true", ok, err)
	}
}

func TestService_Grant_OverwritesNotMerges(t *testing.T) {
	svc, _ := newSvc()

	if _, err := svc.Grant(context.Background(), "owner-1", GrantInput{RecordID: 1, Grantee: "user-1", CanRead: true, CanWrite: true}); err != nil {
		t.Fatalf("Grant #1 error: %v", err)
	}
	// Segundo grant pisa los flags: read queda en false.
	if _, err := svc.Grant(context.Background(), "owner-1", GrantInput{RecordID: 1, Grantee: "user-1", CanRead: false, CanWrite: true}); err != nil {
		t.Fatalf("Grant #2 error: %v", err)
	}

	ok, err := svc.CanAccess(context.Background(), 1, "user-1")
	if err != nil {
		t.Fatalf("CanAccess error: %v", err)
	}
	if ok {
		t.Fatalf("expected can_read=false after overwrite")
	}
}

func TestService_CanAccess_OwnerAlways(t *testing.T) {
	svc, _ := newSvc()

	ok, err := svc.CanAccess(context.Background(), 1, "owner-1")
	if err != nil || !ok {
		t.Fatalf("expected owner access, got (%v, %v)", ok, err)
	}
}

func TestService_CanAccess_FalseWithoutGrantOrRecord(t *testing.T) {
	svc, _ := newSvc()

	// Sin grant
	ok, err := svc.CanAccess(context.Background(), 1, "user-9")
	if err != nil || ok {
		t.Fatalf("expected false without grant, got (%v, %v)", ok, err)
	}

	// Record inexistente: false, nunca error
	ok, err = svc.CanAccess(context.Background(), 999, "owner-1")
	if err != nil || ok {
		t.Fatalf("expected false for missing record, got (%v, %v)", ok, err)
	}
}

func TestService_ListByRecord_OwnerOnly(t *testing.T) {
	svc, _ := newSvc()

	if _, err := svc.Grant(context.Background(), "owner-1", GrantInput{RecordID: 1, Grantee: "user-1", CanRead: true}); err != nil {
		t.Fatalf("Grant error: %v", err)
	}

	items, err := svc.ListByRecord(context.Background(), "owner-1", 1)
	if err != nil {
		t.Fatalf("ListByRecord error: %v", err)
	}
	if len(items) != 1 || items[0].Grantee != "user-1" {
		t.Fatalf("unexpected items %#v", items)
	}

	if _, err := svc.ListByRecord(context.Background(), "user-1", 1); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for non-owner, got %v", err)
	}
}
