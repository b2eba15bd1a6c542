package domain

import "time"

// PickupStatus represents lifecycle states for a pickup.
type PickupStatus string

const (
	PickupStatusPending   PickupStatus = "PENDENTE"
	PickupStatusCollected PickupStatus = "COLETADA"
	PickupStatusCancelled PickupStatus = "CANCELADA"
)

// Pickup is one physical retrieval event, the aggregate root for timeline
// entries and occurrences. Children are cascade-deleted with the pickup.
type Pickup struct {
	ID          string
	WorkspaceID string
	Code        string
	CarrierName string
	Status      PickupStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimelineStatus represents the open/closed lifecycle of a timeline entry.
type TimelineStatus string

const (
	TimelineStatusOpen   TimelineStatus = "ABERTA"
	TimelineStatusClosed TimelineStatus = "ENCERRADA"
)

// Valid reports whether the status is a known value.
func (s TimelineStatus) Valid() bool {
	return s == TimelineStatusOpen || s == TimelineStatusClosed
}

// TimelineEntry is a bounded interval of activity on a pickup, open until
// explicitly closed. ClosedAt/ClosedBy are non-null iff status is ENCERRADA.
type TimelineEntry struct {
	ID          string
	PickupID    string
	Description string
	Status      TimelineStatus
	ClosedAt    *time.Time
	ClosedBy    *string
	CreatedAt   time.Time
}

// OccurrenceStatus represents the open/resolved lifecycle of an occurrence.
type OccurrenceStatus string

const (
	OccurrenceStatusOpen     OccurrenceStatus = "ABERTO"
	OccurrenceStatusResolved OccurrenceStatus = "RESOLVIDO"
)

// Valid reports whether the status is a known value.
func (s OccurrenceStatus) Valid() bool {
	return s == OccurrenceStatusOpen || s == OccurrenceStatusResolved
}

// Occurrence is an incident record on a pickup. ResolvedAt/ResolvedBy are
// non-null iff status is RESOLVIDO.
type Occurrence struct {
	ID          string
	PickupID    string
	Description string
	Status      OccurrenceStatus
	ResolvedAt  *time.Time
	ResolvedBy  *string
	CreatedAt   time.Time
}
