package records

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("record not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Title      string
	RecordType string
	Pointer    string
}

// Create registra metadata y devuelve el Record con su ID asignado.
// No hay control de acceso sobre la creación: cualquier principal
// autenticado puede crear registros propios.
func (s *Service) Create(ctx context.Context, owner string, in CreateInput) (Record, error) {
	owner = strings.TrimSpace(owner)
	title := strings.TrimSpace(in.Title)
	recordType := strings.TrimSpace(in.RecordType)
	pointer := strings.TrimSpace(in.Pointer)

	if owner == "" || title == "" || recordType == "" || pointer == "" {
		return Record{}, ErrInvalidInput
	}
	if len(title) > MaxTitleLen || len(recordType) > MaxRecordTypeLen || len(pointer) > MaxPointerLen {
		return Record{}, ErrInvalidInput
	}

	r := Record{
		Owner:      owner,
		Title:      title,
		RecordType: recordType,
		Pointer:    pointer,
		CreatedAt:  s.now(),
	}

	id, err := s.repo.Create(ctx, r)
	if err != nil {
		return Record{}, err
	}
	r.ID = id
	return r, nil
}

// GetByID es lookup puro, sin check de acceso.
// La metadata es pública a propósito: el puntero solo sirve junto con
// el control de acceso del storage externo.
func (s *Service) GetByID(ctx context.Context, id uint64) (Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, owner string) ([]Record, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, owner)
}
