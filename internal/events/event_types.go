package events

// EventType identifies a domain event.
type EventType string

const (
	EventPickupCreated       EventType = "PickupCreated"
	EventTimelineEntryClosed EventType = "TimelineEntryClosed"
	EventOccurrenceResolved  EventType = "OccurrenceResolved"
	EventOrderMarkedShipped  EventType = "OrderMarkedShipped"
)

// Event is the envelope published on the dispatcher.
type Event struct {
	Type    EventType
	Subject string // pickup id or ERP order id
	Actor   string // operator id or email, empty for system actions
	Payload any
}

// PickupCreatedPayload describes a new pickup.
type PickupCreatedPayload struct {
	WorkspaceID string
	Code        string
	CarrierName string
}

// TimelineEntryClosedPayload describes a closed timeline entry.
type TimelineEntryClosedPayload struct {
	EntryID  string
	ClosedBy string
}

// OccurrenceResolvedPayload describes a resolved occurrence.
type OccurrenceResolvedPayload struct {
	OccurrenceID string
	ResolvedBy   string
}

// OrderMarkedShippedPayload describes a live status mutation against the ERP.
type OrderMarkedShippedPayload struct {
	WorkspaceID    string
	OrderID        string
	UpstreamStatus int
}
