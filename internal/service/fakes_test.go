package service

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/expedition-service/internal/domain"
)

func errNoRows() error { return pgx.ErrNoRows }

type fakeWorkspaceRepo struct {
	workspaces map[string]*domain.Workspace
	nextID     int
}

func newFakeWorkspaceRepo() *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{workspaces: map[string]*domain.Workspace{}}
}

func (f *fakeWorkspaceRepo) Create(_ context.Context, workspace *domain.Workspace) error {
	f.nextID++
	workspace.ID = "ws-" + strconv.Itoa(f.nextID)
	workspace.CreatedAt = time.Now()
	copied := *workspace
	f.workspaces[workspace.ID] = &copied
	return nil
}

func (f *fakeWorkspaceRepo) GetByID(_ context.Context, id string) (*domain.Workspace, error) {
	if ws, ok := f.workspaces[id]; ok {
		copied := *ws
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeWorkspaceRepo) GetByName(_ context.Context, name string) (*domain.Workspace, error) {
	for _, ws := range f.workspaces {
		if ws.Name == name {
			copied := *ws
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeSettingsRepo struct {
	settings map[string]*domain.TinySettings
	nextID   int
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: map[string]*domain.TinySettings{}}
}

func (f *fakeSettingsRepo) GetByWorkspaceID(_ context.Context, workspaceID string) (*domain.TinySettings, error) {
	if s, ok := f.settings[workspaceID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, settings *domain.TinySettings) error {
	if existing, ok := f.settings[settings.WorkspaceID]; ok {
		settings.ID = existing.ID
	} else {
		f.nextID++
		settings.ID = "settings-" + strconv.Itoa(f.nextID)
	}
	settings.UpdatedAt = time.Now()
	copied := *settings
	f.settings[settings.WorkspaceID] = &copied
	return nil
}

func (f *fakeSettingsRepo) UpdateEnvironment(_ context.Context, workspaceID string, env domain.TinyEnvironment) error {
	s, ok := f.settings[workspaceID]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Environment = env
	return nil
}

type fakePickupRepo struct {
	pickups map[string]*domain.Pickup
	nextID  int
}

func newFakePickupRepo() *fakePickupRepo {
	return &fakePickupRepo{pickups: map[string]*domain.Pickup{}}
}

func (f *fakePickupRepo) Create(_ context.Context, pickup *domain.Pickup) error {
	f.nextID++
	pickup.ID = "pickup-" + strconv.Itoa(f.nextID)
	pickup.CreatedAt = time.Now()
	pickup.UpdatedAt = pickup.CreatedAt
	copied := *pickup
	f.pickups[pickup.ID] = &copied
	return nil
}

func (f *fakePickupRepo) Update(_ context.Context, pickup *domain.Pickup) error {
	if _, ok := f.pickups[pickup.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *pickup
	f.pickups[pickup.ID] = &copied
	return nil
}

func (f *fakePickupRepo) GetByID(_ context.Context, id string) (*domain.Pickup, error) {
	if p, ok := f.pickups[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePickupRepo) ListByWorkspace(_ context.Context, workspaceID string, _, _ int) ([]domain.Pickup, error) {
	var out []domain.Pickup
	for _, p := range f.pickups {
		if p.WorkspaceID == workspaceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePickupRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.pickups[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.pickups, id)
	return nil
}

func (f *fakePickupRepo) DeleteAllByWorkspace(_ context.Context, workspaceID string) (int64, error) {
	var deleted int64
	for id, p := range f.pickups {
		if p.WorkspaceID == workspaceID {
			delete(f.pickups, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeTimelineRepo struct {
	entries map[string]*domain.TimelineEntry
	nextID  int
}

func newFakeTimelineRepo() *fakeTimelineRepo {
	return &fakeTimelineRepo{entries: map[string]*domain.TimelineEntry{}}
}

func (f *fakeTimelineRepo) Create(_ context.Context, entry *domain.TimelineEntry) error {
	f.nextID++
	entry.ID = "entry-" + strconv.Itoa(f.nextID)
	entry.CreatedAt = time.Now()
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeTimelineRepo) GetByPickup(_ context.Context, pickupID, entryID string) (*domain.TimelineEntry, error) {
	e, ok := f.entries[entryID]
	if !ok || e.PickupID != pickupID {
		return nil, pgx.ErrNoRows
	}
	copied := *e
	return &copied, nil
}

func (f *fakeTimelineRepo) ListByPickup(_ context.Context, pickupID string) ([]domain.TimelineEntry, error) {
	var out []domain.TimelineEntry
	for _, e := range f.entries {
		if e.PickupID == pickupID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeTimelineRepo) Close(_ context.Context, pickupID, entryID string, closedAt time.Time, closedBy *string) error {
	e, ok := f.entries[entryID]
	if !ok || e.PickupID != pickupID {
		return pgx.ErrNoRows
	}
	e.Status = domain.TimelineStatusClosed
	e.ClosedAt = &closedAt
	e.ClosedBy = closedBy
	return nil
}

type fakeOccurrenceRepo struct {
	occurrences map[string]*domain.Occurrence
	nextID      int
}

func newFakeOccurrenceRepo() *fakeOccurrenceRepo {
	return &fakeOccurrenceRepo{occurrences: map[string]*domain.Occurrence{}}
}

func (f *fakeOccurrenceRepo) Create(_ context.Context, occurrence *domain.Occurrence) error {
	f.nextID++
	occurrence.ID = "occurrence-" + strconv.Itoa(f.nextID)
	occurrence.CreatedAt = time.Now()
	copied := *occurrence
	f.occurrences[occurrence.ID] = &copied
	return nil
}

func (f *fakeOccurrenceRepo) GetByPickup(_ context.Context, pickupID, occurrenceID string) (*domain.Occurrence, error) {
	o, ok := f.occurrences[occurrenceID]
	if !ok || o.PickupID != pickupID {
		return nil, pgx.ErrNoRows
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOccurrenceRepo) ListByPickup(_ context.Context, pickupID string) ([]domain.Occurrence, error) {
	var out []domain.Occurrence
	for _, o := range f.occurrences {
		if o.PickupID == pickupID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOccurrenceRepo) Resolve(_ context.Context, pickupID, occurrenceID string, resolvedAt time.Time, resolvedBy *string) error {
	o, ok := f.occurrences[occurrenceID]
	if !ok || o.PickupID != pickupID {
		return pgx.ErrNoRows
	}
	o.Status = domain.OccurrenceStatusResolved
	o.ResolvedAt = &resolvedAt
	o.ResolvedBy = resolvedBy
	return nil
}
