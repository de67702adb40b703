package service

import (
	"context"
	"fmt"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/pkg/config"
)

// CredentialProvider resolves the credential used for brokerage calls.
type CredentialProvider interface {
	Credential(ctx context.Context) (broker.Credential, error)
	// WithToken builds a credential for a caller supplied access token, falling
	// back to Credential when token is empty.
	WithToken(ctx context.Context, token string) (broker.Credential, error)
}

type credentialProvider struct {
	cfg    config.Broker
	client broker.Client
}

// NewCredentialProvider uses the configured access token when present and issues one otherwise.
func NewCredentialProvider(cfg config.Broker, client broker.Client) CredentialProvider {
	return &credentialProvider{cfg: cfg, client: client}
}

func (p *credentialProvider) Credential(ctx context.Context) (broker.Credential, error) {
	if p.cfg.AccessToken != "" {
		return p.WithToken(ctx, p.cfg.AccessToken)
	}
	token, err := p.client.IssueToken(ctx, p.cfg.AppKey, p.cfg.AppSecret)
	if err != nil {
		return broker.Credential{}, fmt.Errorf("failed to issue access token: %w", err)
	}
	return broker.Credential{
		AccessToken: token.AccessToken,
		AppKey:      p.cfg.AppKey,
		AppSecret:   p.cfg.AppSecret,
	}, nil
}

func (p *credentialProvider) WithToken(ctx context.Context, token string) (broker.Credential, error) {
	if token == "" {
		return p.Credential(ctx)
	}
	return broker.Credential{
		AccessToken: token,
		AppKey:      p.cfg.AppKey,
		AppSecret:   p.cfg.AppSecret,
	}, nil
}
