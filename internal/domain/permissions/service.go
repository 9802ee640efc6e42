package permissions

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRecordNotFound = errors.New("record not found")
)

// RecordOwnerLookup evita importar el paquete records (rompe ciclos).
type RecordOwnerLookup interface {
	OwnerOf(ctx context.Context, recordID uint64) (string, error)
}

type Service struct {
	repo         Repository
	recordOwners RecordOwnerLookup
	now          func() time.Time
}

func NewService(repo Repository, recordOwners RecordOwnerLookup) *Service {
	return &Service{
		repo:         repo,
		recordOwners: recordOwners,
		now:          time.Now,
	}
}

type GrantInput struct {
	RecordID uint64
	Grantee  string
	CanRead  bool
	CanWrite bool
}

// Grant es el upsert de permisos del owner.
// Orden de guards: record existe -> caller es owner. Primera falla gana,
// sin mutación en caso de error.
func (s *Service) Grant(ctx context.Context, caller string, in GrantInput) (Permission, error) {
	caller = strings.TrimSpace(caller)
	grantee := strings.TrimSpace(in.Grantee)

	if caller == "" || grantee == "" || in.RecordID == 0 {
		return Permission{}, ErrInvalidInput
	}

	owner, err := s.recordOwners.OwnerOf(ctx, in.RecordID)
	if err != nil || strings.TrimSpace(owner) == "" {
		return Permission{}, ErrRecordNotFound
	}
	if owner != caller {
		return Permission{}, ErrUnauthorized
	}

	p := Permission{
		RecordID:  in.RecordID,
		Grantee:   grantee,
		CanRead:   in.CanRead,
		CanWrite:  in.CanWrite,
		GrantedAt: s.now(),
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return Permission{}, err
	}
	return p, nil
}

// CanAccess responde si principal puede leer el record: owner siempre,
// grantee solo con can_read. Record inexistente => false, nunca error
// (query de descubrimiento barata y sin efectos).
func (s *Service) CanAccess(ctx context.Context, recordID uint64, principal string) (bool, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" || recordID == 0 {
		return false, nil
	}

	owner, err := s.recordOwners.OwnerOf(ctx, recordID)
	if err != nil {
		// Record inexistente: no es un error para esta query.
		return false, nil
	}
	if owner == principal {
		return true, nil
	}

	p, err := s.repo.Get(ctx, recordID, principal)
	if err != nil {
		// Sin entrada => sin acceso. La query no distingue causas.
		return false, nil
	}
	return p.CanRead, nil
}

// ListByRecord lista los grants de un record; solo el owner puede verlos.
func (s *Service) ListByRecord(ctx context.Context, caller string, recordID uint64) ([]Permission, error) {
	caller = strings.TrimSpace(caller)
	if caller == "" || recordID == 0 {
		return nil, ErrInvalidInput
	}

	owner, err := s.recordOwners.OwnerOf(ctx, recordID)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	if owner != caller {
		return nil, ErrUnauthorized
	}

	return s.repo.ListByRecord(ctx, recordID)
}
