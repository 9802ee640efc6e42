package emergency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotContractOwner = errors.New("not contract owner")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateContact = errors.New("duplicate contact")
	ErrNotFound         = errors.New("not found")
)

// Longitudes máximas según el contrato original.
const (
	MaxContactTypeLen  = 50
	MaxRelationshipLen = 50
	MaxAccessReasonLen = 200
)

// RecordLookup evita importar el paquete records (rompe ciclos).
type RecordLookup interface {
	RefOf(ctx context.Context, recordID uint64) (RecordRef, error)
}

// RecordRef es lo que el motor necesita de un record: quién es el owner
// (para resolver sus contactos) y el puntero a devolver.
type RecordRef struct {
	Owner   string
	Pointer string
}

// Service combina registro de contactos, log de accesos y el motor de
// decisión del camino break-glass. contractOwner es fijo desde el deploy
// y es el único principal que puede togglear el sistema.
type Service struct {
	contacts ContactRepository
	log      LogRepository
	settings SettingsRepository
	records  RecordLookup

	contractOwner string
	now           func() time.Time
}

func NewService(
	contacts ContactRepository,
	log LogRepository,
	settings SettingsRepository,
	records RecordLookup,
	contractOwner string,
) *Service {
	return &Service{
		contacts:      contacts,
		log:           log,
		settings:      settings,
		records:       records,
		contractOwner: strings.TrimSpace(contractOwner),
		now:           time.Now,
	}
}

type AddContactInput struct {
	Contact      string
	ContactType  string
	Relationship string
	CanAccessAll bool
}

// AddContact registra un contacto de emergencia para el propio owner.
func (s *Service) AddContact(ctx context.Context, owner string, in AddContactInput) (Contact, error) {
	owner = strings.TrimSpace(owner)
	contact := strings.TrimSpace(in.Contact)
	contactType := strings.TrimSpace(in.ContactType)
	relationship := strings.TrimSpace(in.Relationship)

	if owner == "" || contact == "" || contactType == "" || relationship == "" {
		return Contact{}, ErrInvalidInput
	}
	if owner == contact {
		return Contact{}, ErrInvalidInput
	}
	if len(contactType) > MaxContactTypeLen || len(relationship) > MaxRelationshipLen {
		return Contact{}, ErrInvalidInput
	}

	// La unicidad es sobre la clave (owner, contact) sin importar IsActive:
	// un contacto dado de baja no puede volver a registrarse.
	// TODO: revisar si conviene permitir re-alta tras remove; hoy se
	// preserva el bloqueo permanente del contrato original.
	c := Contact{
		Owner:        owner,
		Contact:      contact,
		ContactType:  contactType,
		Relationship: relationship,
		CanAccessAll: in.CanAccessAll,
		AddedAt:      s.now(),
		IsActive:     true,
	}

	if err := s.contacts.Create(ctx, c); err != nil {
		// El repo devuelve ErrDuplicateContact si ya hay fila para la clave.
		return Contact{}, err
	}
	return c, nil
}

// RemoveContact desactiva el contacto (soft-delete). Es idempotente y
// siempre devuelve ok: la ausencia de la fila no se distingue como error.
func (s *Service) RemoveContact(ctx context.Context, owner, contact string) error {
	owner = strings.TrimSpace(owner)
	contact = strings.TrimSpace(contact)
	if owner == "" || contact == "" {
		return ErrInvalidInput
	}

	_ = s.contacts.Deactivate(ctx, owner, contact)
	return nil
}

// IsContact responde si (owner, contact) tiene una entrada activa.
func (s *Service) IsContact(ctx context.Context, owner, contact string) (bool, error) {
	c, err := s.contacts.Get(ctx, strings.TrimSpace(owner), strings.TrimSpace(contact))
	if err != nil {
		return false, nil
	}
	return c.IsActive, nil
}

// GetContact es lookup crudo, con o sin flag activo.
func (s *Service) GetContact(ctx context.Context, owner, contact string) (Contact, error) {
	c, err := s.contacts.Get(ctx, strings.TrimSpace(owner), strings.TrimSpace(contact))
	if err != nil {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) ListContacts(ctx context.Context, owner string) ([]Contact, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, ErrInvalidInput
	}
	return s.contacts.ListByOwner(ctx, owner)
}

type AccessResult struct {
	Pointer string
	Entry   LogEntry
}

// AccessRecord es el camino break-glass. Orden de guards documentado y
// fijo: sistema habilitado -> record existe -> caller es contacto activo
// con can_access_all del owner del record. La primera falla determina el
// error y no se muta nada; el log solo se escribe en el acceso exitoso.
func (s *Service) AccessRecord(ctx context.Context, caller string, recordID uint64, reason string) (AccessResult, error) {
	caller = strings.TrimSpace(caller)
	reason = strings.TrimSpace(reason)

	if caller == "" || recordID == 0 || reason == "" {
		return AccessResult{}, ErrInvalidInput
	}
	if len(reason) > MaxAccessReasonLen {
		return AccessResult{}, ErrInvalidInput
	}

	enabled, err := s.settings.EmergencyEnabled(ctx)
	if err != nil {
		return AccessResult{}, err
	}
	if !enabled {
		return AccessResult{}, ErrUnauthorized
	}

	ref, err := s.records.RefOf(ctx, recordID)
	if err != nil || strings.TrimSpace(ref.Owner) == "" {
		return AccessResult{}, ErrRecordNotFound
	}

	c, err := s.contacts.Get(ctx, ref.Owner, caller)
	if err != nil || !c.IsActive || !c.CanAccessAll {
		// Este motor solo soporta acceso all-or-nothing: un contacto
		// sin can_access_all no califica para el camino por record.
		return AccessResult{}, ErrUnauthorized
	}

	entry, err := s.log.Append(ctx, LogEntry{
		RecordID:     recordID,
		Contact:      caller,
		AccessID:     uuid.NewString(),
		RecordOwner:  ref.Owner,
		AccessReason: reason,
		Timestamp:    s.now(),
		IsValid:      true,
	})
	if err != nil {
		return AccessResult{}, err
	}

	return AccessResult{Pointer: ref.Pointer, Entry: entry}, nil
}

// GetLogEntry es lookup indexado crudo, sin control de acceso.
// Quien necesite confidencialidad del log debe gatearlo afuera.
func (s *Service) GetLogEntry(ctx context.Context, recordID uint64, contact string, sequence uint64) (LogEntry, error) {
	e, err := s.log.Get(ctx, recordID, strings.TrimSpace(contact), sequence)
	if err != nil {
		return LogEntry{}, ErrNotFound
	}
	return e, nil
}

func (s *Service) ListLog(ctx context.Context, recordID uint64) ([]LogEntry, error) {
	if recordID == 0 {
		return nil, ErrInvalidInput
	}
	return s.log.ListByRecord(ctx, recordID)
}

// Toggle invierte el kill switch global y devuelve el valor nuevo.
// Mientras está apagado el camino de emergencia queda cerrado entero;
// los permisos normales otorgados por el owner no se ven afectados.
func (s *Service) Toggle(ctx context.Context, caller string) (bool, error) {
	if s.contractOwner == "" || strings.TrimSpace(caller) != s.contractOwner {
		return false, ErrNotContractOwner
	}
	return s.settings.ToggleEmergency(ctx)
}

func (s *Service) Enabled(ctx context.Context) (bool, error) {
	return s.settings.EmergencyEnabled(ctx)
}
