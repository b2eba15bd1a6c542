package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/events"
	"github.com/spec-kit/expedition-service/internal/repository"
	apperrors "github.com/spec-kit/expedition-service/pkg/util"
)

// PickupService manages pickups and the open/close lifecycle of their timeline
// entries and occurrences.
type PickupService struct {
	pickups     repository.PickupRepository
	timeline    repository.TimelineRepository
	occurrences repository.OccurrenceRepository
	dispatcher  events.Dispatcher
}

// PickupDependencies bundles repositories for the pickup service.
type PickupDependencies struct {
	PickupRepo     repository.PickupRepository
	TimelineRepo   repository.TimelineRepository
	OccurrenceRepo repository.OccurrenceRepository
	Dispatcher     events.Dispatcher
}

// NewPickupService constructs the service.
func NewPickupService(deps PickupDependencies) *PickupService {
	return &PickupService{
		pickups:     deps.PickupRepo,
		timeline:    deps.TimelineRepo,
		occurrences: deps.OccurrenceRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// PickupCreateInput describes pickup creation payload.
type PickupCreateInput struct {
	Code        string
	CarrierName string
}

// CreatePickup registers a pickup in the workspace.
func (s *PickupService) CreatePickup(ctx context.Context, workspaceID, actorID string, input PickupCreateInput) (*domain.Pickup, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, apperrors.NewValidationError("code is required", nil)
	}

	pickup := &domain.Pickup{
		WorkspaceID: workspaceID,
		Code:        code,
		CarrierName: strings.TrimSpace(input.CarrierName),
		Status:      domain.PickupStatusPending,
	}
	if err := s.pickups.Create(ctx, pickup); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventPickupCreated,
		Subject: pickup.ID,
		Actor:   actorID,
		Payload: events.PickupCreatedPayload{
			WorkspaceID: workspaceID,
			Code:        pickup.Code,
			CarrierName: pickup.CarrierName,
		},
	})
	return pickup, nil
}

// GetPickup loads a pickup with its children.
func (s *PickupService) GetPickup(ctx context.Context, workspaceID, pickupID string) (*domain.Pickup, []domain.TimelineEntry, []domain.Occurrence, error) {
	pickup, err := s.loadPickup(ctx, workspaceID, pickupID)
	if err != nil {
		return nil, nil, nil, err
	}

	entries, err := s.timeline.ListByPickup(ctx, pickup.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	occurrences, err := s.occurrences.ListByPickup(ctx, pickup.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return pickup, entries, occurrences, nil
}

// ListPickups returns the workspace's pickups, newest first.
func (s *PickupService) ListPickups(ctx context.Context, workspaceID string, limit, offset int) ([]domain.Pickup, error) {
	return s.pickups.ListByWorkspace(ctx, workspaceID, limit, offset)
}

// UpdatePickupStatus moves a pickup between its own lifecycle states.
func (s *PickupService) UpdatePickupStatus(ctx context.Context, workspaceID, pickupID string, status domain.PickupStatus) (*domain.Pickup, error) {
	switch status {
	case domain.PickupStatusPending, domain.PickupStatusCollected, domain.PickupStatusCancelled:
	default:
		return nil, apperrors.NewValidationError("invalid pickup status", map[string]any{"status": status})
	}

	pickup, err := s.loadPickup(ctx, workspaceID, pickupID)
	if err != nil {
		return nil, err
	}
	pickup.Status = status
	if err := s.pickups.Update(ctx, pickup); err != nil {
		return nil, err
	}
	return pickup, nil
}

// DeletePickup removes a pickup; timeline entries and occurrences go with it.
func (s *PickupService) DeletePickup(ctx context.Context, workspaceID, pickupID string) error {
	pickup, err := s.loadPickup(ctx, workspaceID, pickupID)
	if err != nil {
		return err
	}
	return s.pickups.Delete(ctx, pickup.ID)
}

// DeleteAllPickups wipes the workspace's pickups. Restricted to ADMIN.
func (s *PickupService) DeleteAllPickups(ctx context.Context, operator *domain.Operator, workspaceID string) (int64, error) {
	if operator == nil || operator.Role != domain.RoleAdmin {
		return 0, apperrors.NewForbidden("bulk delete requires ADMIN role")
	}
	return s.pickups.DeleteAllByWorkspace(ctx, workspaceID)
}

// AddTimelineEntry opens a new ABERTA entry on the pickup.
func (s *PickupService) AddTimelineEntry(ctx context.Context, workspaceID, pickupID, description string) (*domain.TimelineEntry, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	pickup, err := s.loadPickup(ctx, workspaceID, pickupID)
	if err != nil {
		return nil, err
	}

	entry := &domain.TimelineEntry{
		PickupID:    pickup.ID,
		Description: strings.TrimSpace(description),
		Status:      domain.TimelineStatusOpen,
	}
	if err := s.timeline.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CloseTimelineEntry moves an entry to ENCERRADA, stamping time and actor
// together. Re-closing an already closed entry is allowed and re-stamps both
// fields; the overwrite semantics are intentional (matches the data this
// system inherited).
func (s *PickupService) CloseTimelineEntry(ctx context.Context, workspaceID, pickupID, entryID string, closedBy *string) (*domain.TimelineEntry, error) {
	pickup, err := s.loadPickup(ctx, workspaceID, pickupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.timeline.Close(ctx, pickup.ID, entryID, now, closedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("timeline entry", map[string]any{"pickup_id": pickupID, "entry_id": entryID})
		}
		return nil, err
	}

	entry, err := s.timeline.GetByPickup(ctx, pickup.ID, entryID)
	if err != nil {
		return nil, err
	}

	actor := ""
	if closedBy != nil {
		actor = *closedBy
	}
	s.publish(ctx, events.Event{
		Type:    events.EventTimelineEntryClosed,
		Subject: pickup.ID,
		Actor:   actor,
		Payload: events.TimelineEntryClosedPayload{EntryID: entryID, ClosedBy: actor},
	})
	return entry, nil
}

// AddOccurrence opens a new ABERTO occurrence on the pickup.
func (s *PickupService) AddOccurrence(ctx context.Context, workspaceID, pickupID, description string) (*domain.Occurrence, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	pickup, err := s.loadPickup(ctx, workspaceID, pickupID)
	if err != nil {
		return nil, err
	}

	occurrence := &domain.Occurrence{
		PickupID:    pickup.ID,
		Description: strings.TrimSpace(description),
		Status:      domain.OccurrenceStatusOpen,
	}
	if err := s.occurrences.Create(ctx, occurrence); err != nil {
		return nil, err
	}
	return occurrence, nil
}

// ResolveOccurrence moves an occurrence to RESOLVIDO; same stamping and
// overwrite semantics as CloseTimelineEntry.
func (s *PickupService) ResolveOccurrence(ctx context.Context, workspaceID, pickupID, occurrenceID string, resolvedBy *string) (*domain.Occurrence, error) {
	pickup, err := s.loadPickup(ctx, workspaceID, pickupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.occurrences.Resolve(ctx, pickup.ID, occurrenceID, now, resolvedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("occurrence", map[string]any{"pickup_id": pickupID, "occurrence_id": occurrenceID})
		}
		return nil, err
	}

	occurrence, err := s.occurrences.GetByPickup(ctx, pickup.ID, occurrenceID)
	if err != nil {
		return nil, err
	}

	actor := ""
	if resolvedBy != nil {
		actor = *resolvedBy
	}
	s.publish(ctx, events.Event{
		Type:    events.EventOccurrenceResolved,
		Subject: pickup.ID,
		Actor:   actor,
		Payload: events.OccurrenceResolvedPayload{OccurrenceID: occurrenceID, ResolvedBy: actor},
	})
	return occurrence, nil
}

// loadPickup fetches the pickup and checks workspace ownership; a pickup from
// another workspace is indistinguishable from a missing one.
func (s *PickupService) loadPickup(ctx context.Context, workspaceID, pickupID string) (*domain.Pickup, error) {
	pickup, err := s.pickups.GetByID(ctx, pickupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("pickup", map[string]any{"id": pickupID})
		}
		return nil, err
	}
	if workspaceID != "" && pickup.WorkspaceID != workspaceID {
		return nil, apperrors.NewNotFound("pickup", map[string]any{"id": pickupID})
	}
	return pickup, nil
}

func (s *PickupService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
