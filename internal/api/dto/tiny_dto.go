package dto

// MarkShippedRequest carries the optional per-call dry-run override. Absent
// means "use the deployment default", which is dry-run on.
type MarkShippedRequest struct {
	DryRun *bool `json:"dry_run"`
}

// OAuthExchangeRequest triggers a client-credentials exchange. Empty fields
// fall back to the configured client.
type OAuthExchangeRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}
