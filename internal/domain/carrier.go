package domain

import "time"

// CarrierUndefinedLabel is the sentinel display name used when resolution
// receives a blank input.
const CarrierUndefinedLabel = "Não definida"

// Carrier (transportadora) is a shipping company identified by a canonical
// uppercase name plus an ordered list of aliases used for free-text matching.
// Registry records are workspace-global and never mutated during matching.
type Carrier struct {
	ID          int64
	Nome        string
	NomeDisplay string
	Aliases     []string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
