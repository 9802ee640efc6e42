package records

import "context"

// Ref expone lo mínimo que otros módulos necesitan de un registro.
// Se usa para evitar ciclos de imports (records <-> permissions/emergency).
type Ref struct {
	Owner   string
	Pointer string
}

// OwnerOf expone el owner de un registro.
func (s *Service) OwnerOf(ctx context.Context, id uint64) (string, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return r.Owner, nil
}

// RefOf expone owner + puntero (lo consume el camino de emergencia).
func (s *Service) RefOf(ctx context.Context, id uint64) (Ref, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return Ref{}, err
	}
	return Ref{Owner: r.Owner, Pointer: r.Pointer}, nil
}
