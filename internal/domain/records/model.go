package records

import "time"

// Longitudes máximas según el contrato original (string-ascii acotados).
const (
	MaxTitleLen      = 100
	MaxRecordTypeLen = 50
	MaxPointerLen    = 200
)

// Record representa la metadata on-ledger de un registro de salud.
// El contenido real vive en un storage externo: acá solo guardamos
// el puntero opaco (nunca se parsea).
type Record struct {
	ID    uint64
	Owner string // principal que lo creó; inmutable

	Title      string
	RecordType string // vocabulario libre del caller (general, lab-results, imaging, ...)
	Pointer    string // referencia opaca al storage externo

	CreatedAt time.Time
}
