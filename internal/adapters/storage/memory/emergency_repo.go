package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/emergency"
)

// ---- Contactos ----

type contactKey struct {
	owner   string
	contact string
}

type contactsRepo struct {
	mu    sync.RWMutex
	byKey map[contactKey]emergency.Contact
}

func NewEmergencyContactsRepo() emergency.ContactRepository {
	return &contactsRepo{
		byKey: make(map[contactKey]emergency.Contact),
	}
}

// Create falla si existe fila para la clave, activa o inactiva:
// la baja es soft-delete y bloquea el re-alta.
func (r *contactsRepo) Create(ctx context.Context, c emergency.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := contactKey{owner: c.Owner, contact: c.Contact}
	if _, exists := r.byKey[k]; exists {
		return emergency.ErrDuplicateContact
	}
	r.byKey[k] = c
	return nil
}

func (r *contactsRepo) Get(ctx context.Context, owner, contact string) (emergency.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byKey[contactKey{owner: owner, contact: contact}]
	if !ok {
		return emergency.Contact{}, ErrNotFound
	}
	return c, nil
}

func (r *contactsRepo) ListByOwner(ctx context.Context, owner string) ([]emergency.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]emergency.Contact, 0)
	for k, c := range r.byKey {
		if k.owner == owner {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].AddedAt.Before(out[j].AddedAt)
	})

	return out, nil
}

func (r *contactsRepo) Deactivate(ctx context.Context, owner, contact string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := contactKey{owner: owner, contact: contact}
	c, ok := r.byKey[k]
	if !ok {
		return ErrNotFound
	}
	c.IsActive = false
	r.byKey[k] = c
	return nil
}

// ---- Log de accesos ----

type logKey struct {
	recordID uint64
	contact  string
}

type logEntryKey struct {
	recordID uint64
	contact  string
	sequence uint64
}

type accessLogRepo struct {
	mu      sync.Mutex
	counter map[logKey]uint64
	byKey   map[logEntryKey]emergency.LogEntry
}

func NewEmergencyLogRepo() emergency.LogRepository {
	return &accessLogRepo{
		counter: make(map[logKey]uint64),
		byKey:   make(map[logEntryKey]emergency.LogEntry),
	}
}

// Append asigna el siguiente sequence por (recordID, contact) bajo el
// mismo lock que el insert: estrictamente creciente, arranca en 1.
func (r *accessLogRepo) Append(ctx context.Context, e emergency.LogEntry) (emergency.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := logKey{recordID: e.RecordID, contact: e.Contact}
	r.counter[k]++
	e.Sequence = r.counter[k]

	r.byKey[logEntryKey{recordID: e.RecordID, contact: e.Contact, sequence: e.Sequence}] = e
	return e, nil
}

func (r *accessLogRepo) Get(ctx context.Context, recordID uint64, contact string, sequence uint64) (emergency.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byKey[logEntryKey{recordID: recordID, contact: contact, sequence: sequence}]
	if !ok {
		return emergency.LogEntry{}, ErrNotFound
	}
	return e, nil
}

func (r *accessLogRepo) ListByRecord(ctx context.Context, recordID uint64) ([]emergency.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]emergency.LogEntry, 0)
	for k, e := range r.byKey {
		if k.recordID == recordID {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Contact != out[j].Contact {
			return out[i].Contact < out[j].Contact
		}
		return out[i].Sequence < out[j].Sequence
	})

	return out, nil
}

// ---- Settings ----

type settingsRepo struct {
	mu      sync.Mutex
	enabled bool
}

// NewSettingsRepo arranca con el sistema de emergencia habilitado,
// como el estado inicial del contrato.
func NewSettingsRepo() emergency.SettingsRepository {
	return &settingsRepo{enabled: true}
}

func (r *settingsRepo) EmergencyEnabled(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled, nil
}

func (r *settingsRepo) ToggleEmergency(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = !r.enabled
	return r.enabled, nil
}
