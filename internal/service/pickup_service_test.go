package service

import (
	"context"
	"testing"

	"github.com/spec-kit/expedition-service/internal/domain"
)

func newPickupFixture() (*PickupService, *fakePickupRepo, *fakeTimelineRepo, *fakeOccurrenceRepo) {
	pickups := newFakePickupRepo()
	timeline := newFakeTimelineRepo()
	occurrences := newFakeOccurrenceRepo()
	svc := NewPickupService(PickupDependencies{
		PickupRepo:     pickups,
		TimelineRepo:   timeline,
		OccurrenceRepo: occurrences,
	})
	return svc, pickups, timeline, occurrences
}

func mustCreatePickup(t *testing.T, svc *PickupService, workspaceID, code string) *domain.Pickup {
	t.Helper()
	pickup, err := svc.CreatePickup(context.Background(), workspaceID, "op-1", PickupCreateInput{Code: code})
	if err != nil {
		t.Fatalf("CreatePickup: %v", err)
	}
	return pickup
}

func TestCreatePickupRequiresCode(t *testing.T) {
	svc, _, _, _ := newPickupFixture()

	_, err := svc.CreatePickup(context.Background(), "ws-1", "op-1", PickupCreateInput{Code: "   "})
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}
}

func TestCloseTimelineEntryStampsTimeAndActor(t *testing.T) {
	svc, _, _, _ := newPickupFixture()
	ctx := context.Background()
	pickup := mustCreatePickup(t, svc, "ws-1", "COL-001")

	entry, err := svc.AddTimelineEntry(ctx, "ws-1", pickup.ID, "aguardando coleta")
	if err != nil {
		t.Fatalf("AddTimelineEntry: %v", err)
	}
	if entry.Status != domain.TimelineStatusOpen {
		t.Fatalf("new entry status = %s, want ABERTA", entry.Status)
	}
	if entry.ClosedAt != nil || entry.ClosedBy != nil {
		t.Fatal("open entry must carry no closure stamp")
	}

	actor := "operador@example.com"
	closed, err := svc.CloseTimelineEntry(ctx, "ws-1", pickup.ID, entry.ID, &actor)
	if err != nil {
		t.Fatalf("CloseTimelineEntry: %v", err)
	}
	if closed.Status != domain.TimelineStatusClosed {
		t.Fatalf("status = %s, want ENCERRADA", closed.Status)
	}
	if closed.ClosedAt == nil || closed.ClosedBy == nil {
		t.Fatal("closure must stamp time and actor together")
	}
	if *closed.ClosedBy != actor {
		t.Fatalf("closed by %q", *closed.ClosedBy)
	}
}

func TestCloseTimelineEntryReCloseOverwritesStamp(t *testing.T) {
	svc, _, _, _ := newPickupFixture()
	ctx := context.Background()
	pickup := mustCreatePickup(t, svc, "ws-1", "COL-001")

	entry, err := svc.AddTimelineEntry(ctx, "ws-1", pickup.ID, "aguardando coleta")
	if err != nil {
		t.Fatalf("AddTimelineEntry: %v", err)
	}

	first := "primeiro@example.com"
	closedOnce, err := svc.CloseTimelineEntry(ctx, "ws-1", pickup.ID, entry.ID, &first)
	if err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := "segundo@example.com"
	closedTwice, err := svc.CloseTimelineEntry(ctx, "ws-1", pickup.ID, entry.ID, &second)
	if err != nil {
		t.Fatalf("second close: %v", err)
	}
	if *closedTwice.ClosedBy != second {
		t.Fatalf("re-close kept old actor %q", *closedTwice.ClosedBy)
	}
	if closedTwice.ClosedAt.Before(*closedOnce.ClosedAt) {
		t.Fatal("re-close must re-stamp the closure time")
	}
}

func TestCloseTimelineEntryWrongPickupPair(t *testing.T) {
	svc, _, _, _ := newPickupFixture()
	ctx := context.Background()
	first := mustCreatePickup(t, svc, "ws-1", "COL-001")
	second := mustCreatePickup(t, svc, "ws-1", "COL-002")

	entry, err := svc.AddTimelineEntry(ctx, "ws-1", first.ID, "aguardando coleta")
	if err != nil {
		t.Fatalf("AddTimelineEntry: %v", err)
	}

	// the entry exists, but under the other pickup
	_, err = svc.CloseTimelineEntry(ctx, "ws-1", second.ID, entry.ID, nil)
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND for mismatched pair", code)
	}
}

func TestResolveOccurrenceWrongPickupPair(t *testing.T) {
	svc, _, _, _ := newPickupFixture()
	ctx := context.Background()
	first := mustCreatePickup(t, svc, "ws-1", "COL-001")
	second := mustCreatePickup(t, svc, "ws-1", "COL-002")

	occurrence, err := svc.AddOccurrence(ctx, "ws-1", first.ID, "volume avariado")
	if err != nil {
		t.Fatalf("AddOccurrence: %v", err)
	}

	_, err = svc.ResolveOccurrence(ctx, "ws-1", second.ID, occurrence.ID, nil)
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND for mismatched pair", code)
	}
}

func TestResolveOccurrence(t *testing.T) {
	svc, _, _, _ := newPickupFixture()
	ctx := context.Background()
	pickup := mustCreatePickup(t, svc, "ws-1", "COL-001")

	occurrence, err := svc.AddOccurrence(ctx, "ws-1", pickup.ID, "volume avariado")
	if err != nil {
		t.Fatalf("AddOccurrence: %v", err)
	}
	if occurrence.Status != domain.OccurrenceStatusOpen {
		t.Fatalf("new occurrence status = %s, want ABERTO", occurrence.Status)
	}

	actor := "operador@example.com"
	resolved, err := svc.ResolveOccurrence(ctx, "ws-1", pickup.ID, occurrence.ID, &actor)
	if err != nil {
		t.Fatalf("ResolveOccurrence: %v", err)
	}
	if resolved.Status != domain.OccurrenceStatusResolved {
		t.Fatalf("status = %s, want RESOLVIDO", resolved.Status)
	}
	if resolved.ResolvedAt == nil || resolved.ResolvedBy == nil {
		t.Fatal("resolution must stamp time and actor together")
	}
}

func TestUpdatePickupStatusValidation(t *testing.T) {
	svc, _, _, _ := newPickupFixture()
	ctx := context.Background()
	pickup := mustCreatePickup(t, svc, "ws-1", "COL-001")

	// an unknown enum value fails before the pickup is even looked up
	_, err := svc.UpdatePickupStatus(ctx, "ws-1", "no-such-pickup", "EM_ROTA")
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}

	updated, err := svc.UpdatePickupStatus(ctx, "ws-1", pickup.ID, domain.PickupStatusCollected)
	if err != nil {
		t.Fatalf("UpdatePickupStatus: %v", err)
	}
	if updated.Status != domain.PickupStatusCollected {
		t.Fatalf("status = %s", updated.Status)
	}
}

func TestPickupWorkspaceIsolation(t *testing.T) {
	svc, _, _, _ := newPickupFixture()
	ctx := context.Background()
	pickup := mustCreatePickup(t, svc, "ws-1", "COL-001")

	// the pickup is invisible from another workspace
	_, _, _, err := svc.GetPickup(ctx, "ws-2", pickup.ID)
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND across workspaces", code)
	}
}

func TestDeleteAllPickupsRequiresAdmin(t *testing.T) {
	svc, _, _, _ := newPickupFixture()
	ctx := context.Background()
	mustCreatePickup(t, svc, "ws-1", "COL-001")
	mustCreatePickup(t, svc, "ws-1", "COL-002")

	operator := &domain.Operator{ID: "op-1", Role: domain.RoleOperator}
	_, err := svc.DeleteAllPickups(ctx, operator, "ws-1")
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}

	operator.Role = domain.RoleAdmin
	deleted, err := svc.DeleteAllPickups(ctx, operator, "ws-1")
	if err != nil {
		t.Fatalf("DeleteAllPickups: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
}
