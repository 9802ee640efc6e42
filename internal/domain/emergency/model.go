package emergency

import "time"

// Contact es un contacto break-glass registrado por un owner.
// La baja es soft-delete (IsActive=false): la fila se conserva por
// auditoría pero deja de habilitar acceso.
type Contact struct {
	Owner   string
	Contact string

	ContactType  string // familiar, médico, tutor legal, ...
	Relationship string
	CanAccessAll bool // requerido para el camino de emergencia por record

	AddedAt  time.Time
	IsActive bool
}

// LogEntry es una entrada append-only del log de accesos de emergencia.
// Clave: (RecordID, Contact, Sequence), Sequence arranca en 1 y es
// estrictamente creciente por par.
type LogEntry struct {
	RecordID uint64
	Contact  string
	Sequence uint64

	AccessID     string // uuid por entrada, para correlación de auditoría
	RecordOwner  string
	AccessReason string
	Timestamp    time.Time

	// Fijado al momento del acceso. En este diseño solo se loguea el
	// acceso exitoso, así que siempre queda en true.
	IsValid bool
}
