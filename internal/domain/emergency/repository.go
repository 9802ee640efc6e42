package emergency

import "context"

// ContactRepository indexa por clave compuesta (owner, contact).
// Create falla si existe una fila para la clave, activa o no.
type ContactRepository interface {
	Create(ctx context.Context, c Contact) error
	Get(ctx context.Context, owner, contact string) (Contact, error)
	ListByOwner(ctx context.Context, owner string) ([]Contact, error)
	Deactivate(ctx context.Context, owner, contact string) error
}

// LogRepository materializa el log append-only: un contador monotónico
// por (recordID, contact) más el índice (clave, sequence) -> entrada.
// Append asigna Sequence de forma atómica y devuelve la entrada final.
type LogRepository interface {
	Append(ctx context.Context, e LogEntry) (LogEntry, error)
	Get(ctx context.Context, recordID uint64, contact string, sequence uint64) (LogEntry, error)
	ListByRecord(ctx context.Context, recordID uint64) ([]LogEntry, error)
}

// SettingsRepository guarda el singleton de configuración del sistema.
// Toggle invierte el flag de forma atómica y devuelve el valor nuevo.
type SettingsRepository interface {
	EmergencyEnabled(ctx context.Context) (bool, error)
	ToggleEmergency(ctx context.Context) (bool, error)
}
