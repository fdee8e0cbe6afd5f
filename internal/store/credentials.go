package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ServiceClio is the api_configs row holding the Clio OAuth credentials.
const ServiceClio = "clio"

// ErrNoCredentials means no usable token is stored for the service.
var ErrNoCredentials = errors.New("no stored credentials")

// GetAccessToken returns the active OAuth access token for a service.
// Returns ErrNoCredentials when no active row with a token exists.
func (s *Store) GetAccessToken(ctx context.Context, service string) (string, error) {
	var token *string
	err := s.pool.QueryRow(ctx, `
		SELECT oauth_token FROM api_configs
		WHERE service = $1 AND is_active AND oauth_token IS NOT NULL
		LIMIT 1`,
		service,
	).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoCredentials
	}
	if err != nil {
		return "", fmt.Errorf("query access token: %w", err)
	}
	if token == nil || *token == "" {
		return "", ErrNoCredentials
	}
	return *token, nil
}

// ClioToken returns the stored Clio access token.
func (s *Store) ClioToken(ctx context.Context) (string, error) {
	return s.GetAccessToken(ctx, ServiceClio)
}

// SaveTokens stores the access and refresh tokens for a service, creating
// the config row on first authorization.
func (s *Store) SaveTokens(ctx context.Context, service, clientID, clientSecret, baseURL, accessToken, refreshToken string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO api_configs (id, service, client_id, client_secret, base_url, oauth_token, refresh_token, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, now(), now())
		ON CONFLICT (service)
		DO UPDATE SET
			oauth_token = $6,
			refresh_token = $7,
			is_active = TRUE,
			updated_at = now()`,
		uuid.New(), service, clientID, clientSecret, baseURL, accessToken, refreshToken,
	)
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}
