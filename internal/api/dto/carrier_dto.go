package dto

// CarrierRequest payload for registry create/update.
type CarrierRequest struct {
	Nome        string   `json:"nome"`
	NomeDisplay string   `json:"nome_display"`
	Aliases     []string `json:"aliases"`
	IsActive    *bool    `json:"is_active"`
}

// CarrierResponse is the serialized carrier.
type CarrierResponse struct {
	ID          int64    `json:"id"`
	Nome        string   `json:"nome"`
	NomeDisplay string   `json:"nome_display"`
	Aliases     []string `json:"aliases"`
	IsActive    bool     `json:"is_active"`
}

// CarrierResolveResponse is the resolution outcome. Carrier is null when no
// tier matched; display_name always carries a usable label.
type CarrierResolveResponse struct {
	Carrier     *CarrierResponse `json:"carrier"`
	DisplayName string           `json:"display_name"`
}
