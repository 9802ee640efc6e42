package emergency

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Fakes in-memory
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type contactKey struct{ owner, contact string }

type testContacts struct {
	byKey map[contactKey]Contact
}

func newTestContacts() *testContacts {
	return &testContacts{byKey: map[contactKey]Contact{}}
}

func (r *testContacts) Create(ctx context.Context, c Contact) error {
	k := contactKey{c.Owner, c.Contact}
	if _, exists := r.byKey[k]; exists {
		return ErrDuplicateContact
	}
	r.byKey[k] = c
	return nil
}

func (r *testContacts) Get(ctx context.Context, owner, contact string) (Contact, error) {
	c, ok := r.byKey[contactKey{owner, contact}]
	if !ok {
		return Contact{}, errRepoNotFound
	}
	return c, nil
}

func (r *testContacts) ListByOwner(ctx context.Context, owner string) ([]Contact, error) {
	out := make([]Contact, 0)
	for k, c := range r.byKey {
		if k.owner == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testContacts) Deactivate(ctx context.Context, owner, contact string) error {
	k := contactKey{owner, contact}
	c, ok := r.byKey[k]
	if !ok {
		return errRepoNotFound
	}
	c.IsActive = false
	r.byKey[k] = c
	return nil
}

type logKey struct {
	recordID uint64
	contact  string
}

type entryKey struct {
	recordID uint64
	contact  string
	sequence uint64
}

type testLog struct {
	counter map[logKey]uint64
	byKey   map[entryKey]LogEntry
}

func newTestLog() *testLog {
	return &testLog{
		counter: map[logKey]uint64{},
		byKey:   map[entryKey]LogEntry{},
	}
}

func (r *testLog) Append(ctx context.Context, e LogEntry) (LogEntry, error) {
	k := logKey{e.RecordID, e.Contact}
	r.counter[k]++
	e.Sequence = r.counter[k]
	r.byKey[entryKey{e.RecordID, e.Contact, e.Sequence}] = e
	return e, nil
}

func (r *testLog) Get(ctx context.Context, recordID uint64, contact string, sequence uint64) (LogEntry, error) {
	e, ok := r.byKey[entryKey{recordID, contact, sequence}]
	if !ok {
		return LogEntry{}, errRepoNotFound
	}
	return e, nil
}

func (r *testLog) ListByRecord(ctx context.Context, recordID uint64) ([]LogEntry, error) {
	out := make([]LogEntry, 0)
	for k, e := range r.byKey {
		if k.recordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

type testSettings struct {
	enabled bool
}

func (r *testSettings) EmergencyEnabled(ctx context.Context) (bool, error) {
	return r.enabled, nil
}

func (r *testSettings) ToggleEmergency(ctx context.Context) (bool, error) {
	r.enabled = !r.enabled
	return r.enabled, nil
}

type testRecords struct {
	byID map[uint64]RecordRef
}

func (r *testRecords) RefOf(ctx context.Context, recordID uint64) (RecordRef, error) {
	ref, ok := r.byID[recordID]
	if !ok {
		return RecordRef{}, errRepoNotFound
	}
	return ref, nil
}

type fixture struct {
	svc      *Service
	contacts *testContacts
	log      *testLog
	settings *testSettings
}

func newFixture() fixture {
	contacts := newTestContacts()
	log := newTestLog()
	settings := &testSettings{enabled: true}
	recs := &testRecords{byID: map[uint64]RecordRef{
		1: {Owner: "owner-1", Pointer: "gaia://hub/1234"},
	}}

	svc := NewService(contacts, log, settings, recs, "deployer")
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC) }

	return fixture{svc: svc, contacts: contacts, log: log, settings: settings}
}

func addActiveContact(t *testing.T, f fixture, owner, contact string, all bool) {
	t.Helper()
	_, err := f.svc.AddContact(context.Background(), owner, AddContactInput{
		Contact:      contact,
		ContactType:  "familiar",
		Relationship: "hermana",
		CanAccessAll: all,
	})
	if err != nil {
		t.Fatalf("AddContact error: %v", err)
	}
}

// -------------------------
// Contactos
// -------------------------

func TestService_AddContact_DuplicateBlocked(t *testing.T) {
	f := newFixture()
	addActiveContact(t, f, "owner-1", "contact-1", true)

	_, err := f.svc.AddContact(context.Background(), "owner-1", AddContactInput{
		Contact:      "contact-1",
		ContactType:  "medico",
		Relationship: "cardiologo",
	})
	if err != ErrDuplicateContact {
		t.Fatalf("expected ErrDuplicateContact, got %v", err)
	}
}

func TestService_AddContact_BlockedEvenAfterRemove(t *testing.T) {
	f := newFixture()
	addActiveContact(t, f, "owner-1", "contact-1", true)

	if err := f.svc.RemoveContact(context.Background(), "owner-1", "contact-1"); err != nil {
		t.Fatalf("RemoveContact error: %v", err)
	}

	// La fila inactiva sigue bloqueando el re-alta.
	_, err := f.svc.AddContact(context.Background(), "owner-1", AddContactInput{
		Contact:      "contact-1",
		ContactType:  "familiar",
		Relationship: "hermana",
	})
	if err != ErrDuplicateContact {
		t.Fatalf("expected ErrDuplicateContact after remove, got %v", err)
	}
}

func TestService_AddContact_RejectsSelf(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AddContact(context.Background(), "owner-1", AddContactInput{
		Contact:      "owner-1",
		ContactType:  "familiar",
		Relationship: "yo",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_RemoveContact_SoftDeleteAndIdempotent(t *testing.T) {
	f := newFixture()
	addActiveContact(t, f, "owner-1", "contact-1", true)

	if err := f.svc.RemoveContact(context.Background(), "owner-1", "contact-1"); err != nil {
		t.Fatalf("RemoveContact error: %v", err)
	}

	active, err := f.svc.IsContact(context.Background(), "owner-1", "contact-1")
	if err != nil || active {
		t.Fatalf("expected inactive after remove, got (%v, %v)", active, err)
	}

	// La fila sigue existiendo para auditoría
	c, err := f.svc.GetContact(context.Background(), "owner-1", "contact-1")
	if err != nil {
		t.Fatalf("GetContact error: %v", err)
	}
	if c.IsActive {
		t.Fatalf("expected IsActive=false")
	}

	// Repetir la baja es inofensivo
	if err := f.svc.RemoveContact(context.Background(), "owner-1", "contact-1"); err != nil {
		t.Fatalf("second RemoveContact error: %v", err)
	}

	// Y también sobre una clave que nunca existió
	if err := f.svc.RemoveContact(context.Background(), "owner-1", "ghost"); err != nil {
		t.Fatalf("RemoveContact on missing row error: %v", err)
	}
}

// -------------------------
// Camino break-glass
// -------------------------

func TestService_AccessRecord_DisabledSystemWins(t *testing.T) {
	f := newFixture()
	addActiveContact(t, f, "owner-1", "contact-1", true)
	f.settings.enabled = false

	// Contacto válido, pero el kill switch cierra todo el camino.
	_, err := f.svc.AccessRecord(context.Background(), "contact-1", 1, "er visit")
	if err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized with system disabled, got %v", err)
	}
	if len(f.log.byKey) != 0 {
		t.Fatalf("expected no log entry on denial")
	}
}

func TestService_AccessRecord_RecordNotFound(t *testing.T) {
	f := newFixture()
	addActiveContact(t, f, "owner-1", "contact-1", true)

	_, err := f.svc.AccessRecord(context.Background(), "contact-1", 999, "er visit")
	if err != ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestService_AccessRecord_RequiresActiveContactWithCanAccessAll(t *testing.T) {
	f := newFixture()

	// No es contacto
	if _, err := f.svc.AccessRecord(context.Background(), "stranger", 1, "er"); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for stranger, got %v", err)
	}

	// Contacto sin can_access_all no califica (solo all-or-nothing)
	addActiveContact(t, f, "owner-1", "limited", false)
	if _, err := f.svc.AccessRecord(context.Background(), "limited", 1, "er"); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized without can_access_all, got %v", err)
	}

	// Contacto dado de baja tampoco
	addActiveContact(t, f, "owner-1", "removed", true)
	if err := f.svc.RemoveContact(context.Background(), "owner-1", "removed"); err != nil {
		t.Fatalf("RemoveContact error: %v", err)
	}
	if _, err := f.svc.AccessRecord(context.Background(), "removed", 1, "er"); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for inactive contact, got %v", err)
	}

	if len(f.log.byKey) != 0 {
		t.Fatalf("expected no log entries on denials")
	}
}

func TestService_AccessRecord_SuccessLogsWithIncrementingSequence(t *testing.T) {
	f := newFixture()
	addActiveContact(t, f, "owner-1", "contact-1", true)

	res1, err := f.svc.AccessRecord(context.Background(), "contact-1", 1, "er visit")
	if err != nil {
		t.Fatalf("AccessRecord #1 error: %v", err)
	}
	if res1.Pointer != "gaia://hub/1234" {
		t.Fatalf("expected pointer, got %q", res1.Pointer)
	}
	if res1.Entry.Sequence != 1 || !res1.Entry.IsValid {
		t.Fatalf("unexpected entry %#v", res1.Entry)
	}
	if res1.Entry.RecordOwner != "owner-1" {
		t.Fatalf("expected record_owner=owner-1, got %q", res1.Entry.RecordOwner)
	}
	if res1.Entry.AccessID == "" {
		t.Fatalf("expected access id")
	}

	res2, err := f.svc.AccessRecord(context.Background(), "contact-1", 1, "followup")
	if err != nil {
		t.Fatalf("AccessRecord #2 error: %v", err)
	}
	if res2.Entry.Sequence != 2 {
		t.Fatalf("expected sequence 2, got %d", res2.Entry.Sequence)
	}

	// Lookup crudo por clave compuesta
	e, err := f.svc.GetLogEntry(context.Background(), 1, "contact-1", 1)
	if err != nil {
		t.Fatalf("GetLogEntry error: %v", err)
	}
	if e.AccessReason != "er visit" || !e.IsValid {
		t.Fatalf("unexpected entry %#v", e)
	}

	if _, err := f.svc.GetLogEntry(context.Background(), 1, "contact-1", 3); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing sequence, got %v", err)
	}
}

// -------------------------
// Kill switch
// -------------------------

func TestService_Toggle_OnlyContractOwner(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Toggle(context.Background(), "owner-1"); err != ErrNotContractOwner {
		t.Fatalf("expected ErrNotContractOwner, got %v", err)
	}

	enabled, err := f.svc.Toggle(context.Background(), "deployer")
	if err != nil {
		t.Fatalf("Toggle error: %v", err)
	}
	if enabled {
		t.Fatalf("expected disabled after first toggle")
	}

	enabled, err = f.svc.Toggle(context.Background(), "deployer")
	if err != nil || !enabled {
		t.Fatalf("expected enabled after second toggle, got (%v, %v)", enabled, err)
	}
}

func TestService_Toggle_WithoutConfiguredOwnerAlwaysFails(t *testing.T) {
	f := newFixture()
	f.svc.contractOwner = ""

	if _, err := f.svc.Toggle(context.Background(), "deployer"); err != ErrNotContractOwner {
		t.Fatalf("expected ErrNotContractOwner with empty owner, got %v", err)
	}
}
