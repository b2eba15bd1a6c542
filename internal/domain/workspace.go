package domain

import "time"

// DefaultWorkspaceName is the workspace bootstrapped lazily on first access.
const DefaultWorkspaceName = "Default"

// Workspace is the tenant boundary. Each workspace owns at most one TinySettings.
type Workspace struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// TinyEnvironment selects which encrypted token column is used for outbound calls.
type TinyEnvironment string

const (
	TinyEnvironmentProduction TinyEnvironment = "production"
	TinyEnvironmentTest       TinyEnvironment = "test"
)

// Valid reports whether the environment is a known value.
func (e TinyEnvironment) Valid() bool {
	return e == TinyEnvironmentProduction || e == TinyEnvironmentTest
}

// TinySettings holds the per-workspace ERP integration settings. Token columns
// store ciphertext only; plaintext exists in memory for the duration of the
// request that needs it.
type TinySettings struct {
	ID                    string
	WorkspaceID           string
	Environment           TinyEnvironment
	APITokenEncrypted     string
	APITokenTestEncrypted string
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// EncryptedTokenFor returns the ciphertext column matching the environment.
func (s *TinySettings) EncryptedTokenFor(env TinyEnvironment) string {
	if env == TinyEnvironmentTest {
		return s.APITokenTestEncrypted
	}
	return s.APITokenEncrypted
}
