package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore keeps short-lived OAuth material in Redis: access tokens obtained
// through either flow, and the one-shot state nonces for the authorization-code
// redirect. Tokens are not refreshed here; callers re-authenticate on expiry.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

const (
	accessTokenKeyPrefix = "tiny:access_token:"
	oauthStateKeyPrefix  = "tiny:oauth_state:"
	oauthStateTTL        = 10 * time.Minute
)

// NewTokenStore builds the store; ttl bounds how long an access token is served
// before callers must obtain a fresh one.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = 55 * time.Minute
	}
	return &TokenStore{client: client, ttl: ttl}
}

// SaveAccessToken stores the workspace's bearer token. expiresIn, when
// positive, caps the TTL to the upstream expiry.
func (s *TokenStore) SaveAccessToken(ctx context.Context, workspaceID, token string, expiresIn int) error {
	ttl := s.ttl
	if expiresIn > 0 {
		upstream := time.Duration(expiresIn) * time.Second
		if upstream < ttl {
			ttl = upstream
		}
	}
	return s.client.Set(ctx, accessTokenKeyPrefix+workspaceID, token, ttl).Err()
}

// AccessToken returns the stored bearer token, or "" when none is present.
func (s *TokenStore) AccessToken(ctx context.Context, workspaceID string) (string, error) {
	val, err := s.client.Get(ctx, accessTokenKeyPrefix+workspaceID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// IssueState creates a one-shot state nonce for the authorization-code flow.
func (s *TokenStore) IssueState(ctx context.Context, workspaceID string) (string, error) {
	state := uuid.NewString()
	if err := s.client.Set(ctx, oauthStateKeyPrefix+state, workspaceID, oauthStateTTL).Err(); err != nil {
		return "", err
	}
	return state, nil
}

// ConsumeState validates and deletes a state nonce, returning the workspace it
// was issued for. A missing nonce returns "".
func (s *TokenStore) ConsumeState(ctx context.Context, state string) (string, error) {
	key := oauthStateKeyPrefix + state
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	_ = s.client.Del(ctx, key).Err()
	return val, nil
}
