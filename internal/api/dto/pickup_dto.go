package dto

import "time"

// PickupCreateRequest payload for new pickups.
type PickupCreateRequest struct {
	Code        string `json:"code"`
	CarrierName string `json:"carrier_name"`
}

// PickupStatusRequest payload for pickup status updates.
type PickupStatusRequest struct {
	Status string `json:"status"`
}

// TimelineEntryCreateRequest payload for opening a timeline entry.
type TimelineEntryCreateRequest struct {
	Description string `json:"description"`
}

// OccurrenceCreateRequest payload for opening an occurrence.
type OccurrenceCreateRequest struct {
	Description string `json:"description"`
}

// PickupResponse is the serialized pickup.
type PickupResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	CarrierName string    `json:"carrier_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TimelineEntryResponse is the serialized timeline entry.
type TimelineEntryResponse struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ClosedAt    *time.Time `json:"encerrado_em,omitempty"`
	ClosedBy    *string    `json:"encerrado_por,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// OccurrenceResponse is the serialized occurrence.
type OccurrenceResponse struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ResolvedAt  *time.Time `json:"resolvido_em,omitempty"`
	ResolvedBy  *string    `json:"resolvido_por,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
