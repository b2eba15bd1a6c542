package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/repository"
	apperrors "github.com/spec-kit/expedition-service/pkg/util"
)

// CarrierService owns the carrier registry and the free-text resolution policy
// applied to carrier names coming from the ERP.
type CarrierService struct {
	carriers repository.CarrierRepository
}

// NewCarrierService builds the service.
func NewCarrierService(carriers repository.CarrierRepository) *CarrierService {
	return &CarrierService{carriers: carriers}
}

// Resolution is the outcome of matching a raw carrier name. Carrier is nil when
// nothing matched; DisplayName always carries a usable label.
type Resolution struct {
	Carrier     *domain.Carrier
	DisplayName string
}

// Resolve maps a free-text carrier name onto the registry. Three tiers applied
// in strict order, first match wins: exact canonical name, alias equality,
// bidirectional substring against name and aliases. Carriers are scanned in
// creation order; for overlapping partial matches the first-created carrier
// wins, which existing data depends on.
func (s *CarrierService) Resolve(ctx context.Context, rawName string) (*Resolution, error) {
	normalized := strings.ToUpper(strings.TrimSpace(rawName))
	if normalized == "" {
		return &Resolution{DisplayName: domain.CarrierUndefinedLabel}, nil
	}

	carriers, err := s.carriers.List(ctx)
	if err != nil {
		return nil, err
	}

	// tier 1: exact canonical name
	for i := range carriers {
		if carriers[i].Nome == normalized {
			return &Resolution{Carrier: &carriers[i], DisplayName: displayName(&carriers[i])}, nil
		}
	}

	// tier 2: alias equality, active carriers only
	for i := range carriers {
		if !carriers[i].IsActive {
			continue
		}
		for _, alias := range carriers[i].Aliases {
			if strings.ToUpper(strings.TrimSpace(alias)) == normalized {
				return &Resolution{Carrier: &carriers[i], DisplayName: displayName(&carriers[i])}, nil
			}
		}
	}

	// tier 3: bidirectional containment against name and aliases
	for i := range carriers {
		if !carriers[i].IsActive {
			continue
		}
		if containsEither(normalized, carriers[i].Nome) {
			return &Resolution{Carrier: &carriers[i], DisplayName: displayName(&carriers[i])}, nil
		}
		for _, alias := range carriers[i].Aliases {
			if containsEither(normalized, strings.ToUpper(strings.TrimSpace(alias))) {
				return &Resolution{Carrier: &carriers[i], DisplayName: displayName(&carriers[i])}, nil
			}
		}
	}

	// no match: preserve the original input as the label
	return &Resolution{DisplayName: rawName}, nil
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func displayName(c *domain.Carrier) string {
	if c.NomeDisplay != "" {
		return c.NomeDisplay
	}
	return c.Nome
}

// CarrierInput describes registry create/update payloads.
type CarrierInput struct {
	Nome        string
	NomeDisplay string
	Aliases     []string
	IsActive    *bool
}

// CreateCarrier registers a canonical carrier. Names are stored uppercase.
func (s *CarrierService) CreateCarrier(ctx context.Context, input CarrierInput) (*domain.Carrier, error) {
	nome := strings.ToUpper(strings.TrimSpace(input.Nome))
	if nome == "" {
		return nil, apperrors.NewValidationError("nome is required", nil)
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	carrier := &domain.Carrier{
		Nome:        nome,
		NomeDisplay: strings.TrimSpace(input.NomeDisplay),
		Aliases:     input.Aliases,
		IsActive:    active,
	}
	if carrier.NomeDisplay == "" {
		carrier.NomeDisplay = nome
	}
	if err := s.carriers.Create(ctx, carrier); err != nil {
		return nil, err
	}
	return carrier, nil
}

// UpdateCarrier edits a registry record.
func (s *CarrierService) UpdateCarrier(ctx context.Context, id int64, input CarrierInput) (*domain.Carrier, error) {
	carrier, err := s.carriers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("carrier", map[string]any{"id": id})
		}
		return nil, err
	}

	if strings.TrimSpace(input.Nome) != "" {
		carrier.Nome = strings.ToUpper(strings.TrimSpace(input.Nome))
	}
	if strings.TrimSpace(input.NomeDisplay) != "" {
		carrier.NomeDisplay = strings.TrimSpace(input.NomeDisplay)
	}
	if input.Aliases != nil {
		carrier.Aliases = input.Aliases
	}
	if input.IsActive != nil {
		carrier.IsActive = *input.IsActive
	}

	if err := s.carriers.Update(ctx, carrier); err != nil {
		return nil, err
	}
	return carrier, nil
}

// ListCarriers returns the registry in creation order.
func (s *CarrierService) ListCarriers(ctx context.Context) ([]domain.Carrier, error) {
	return s.carriers.List(ctx)
}
