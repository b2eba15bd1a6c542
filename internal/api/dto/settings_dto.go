package dto

// TokenUpdateRequest stores a new ERP token for one environment. The plaintext
// never appears in responses or logs.
type TokenUpdateRequest struct {
	Environment string `json:"environment"`
	Token       string `json:"token"`
}

// EnvironmentUpdateRequest switches the active environment.
type EnvironmentUpdateRequest struct {
	Environment string `json:"environment"`
}

// TinySettingsResponse is the masked settings view: token columns are reduced
// to configured flags.
type TinySettingsResponse struct {
	Environment               string `json:"environment"`
	ProductionTokenConfigured bool   `json:"production_token_configured"`
	TestTokenConfigured       bool   `json:"test_token_configured"`
	IsActive                  bool   `json:"is_active"`
}
