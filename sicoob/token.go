package sicoob

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Token é um access token com o instante em que deixa de valer
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid retorna true se now é estritamente anterior a ExpiresAt.
// Um token que expira exatamente agora já é inválido.
func (t Token) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// tokenSource é satisfeita por *clientcredentials.Config
type tokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// TokenManager obtém e cacheia tokens OAuth2 (client credentials).
// É thread-safe: chamadas concorrentes com token expirado fazem uma única troca.
type TokenManager struct {
	source      tokenSource
	sandbox     bool
	staticToken string
	now         func() time.Time
	logger      *zap.Logger
	metrics     *metrics

	mu     sync.RWMutex
	token  *Token
	header string // Authorization padrão: "Bearer <accessToken>"
}

// NewTokenManager cria um gerenciador de tokens para a configuração informada.
// NewClient já cria o seu; use este apenas para compartilhar tokens fora do cliente.
func NewTokenManager(cfg Config, opts ...Option) *TokenManager {
	s := newSettings(opts)
	return newTokenManager(cfg, s, newMetrics(s.registerer))
}

func newTokenManager(cfg Config, s *settings, m *metrics) *TokenManager {
	tm := &TokenManager{
		sandbox: cfg.IsSandbox(),
		now:     s.now,
		logger:  s.logger,
		metrics: m,
	}

	if tm.sandbox {
		tm.staticToken = cfg.StaticToken
		tm.header = sandboxHeader(cfg.StaticToken)
		return tm
	}

	tm.source = &clientcredentials.Config{
		ClientID:  cfg.ClientID,
		TokenURL:  s.tokenURL,
		Scopes:    s.scopes,
		AuthStyle: oauth2.AuthStyleInParams, // sem client_secret: o client_id vai no corpo
	}
	return tm
}

// EnsureToken retorna um token válido, renovando se necessário.
// No sandbox o token estático é devolvido sem checar expiração nem acessar a rede.
// A troca usa o *http.Client presente em ctx sob a chave oauth2.HTTPClient.
func (tm *TokenManager) EnsureToken(ctx context.Context) (Token, error) {
	if tm.sandbox {
		return Token{AccessToken: tm.staticToken}, nil
	}

	tm.mu.RLock()
	if tm.token != nil && tm.token.Valid(tm.now()) {
		token := *tm.token
		tm.mu.RUnlock()
		return token, nil
	}
	tm.mu.RUnlock()

	// Token expirado ou inexistente, precisa renovar
	return tm.refresh(ctx)
}

// refresh obtém um novo token do provedor de identidade
func (tm *TokenManager) refresh(ctx context.Context) (Token, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	// Double-check: outra goroutine pode ter renovado enquanto esperávamos o lock
	if tm.token != nil && tm.token.Valid(tm.now()) {
		return *tm.token, nil
	}

	raw, err := tm.source.Token(ctx)
	if err != nil {
		tm.metrics.observeTokenRefresh(false)
		tm.logger.Warn("falha na troca client-credentials", zap.Error(err))
		return Token{}, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}

	token := Token{
		AccessToken: raw.AccessToken,
		ExpiresAt:   tm.now().Add(advertisedLifetime(raw)),
	}
	tm.token = &token
	tm.header = bearerPrefix + token.AccessToken

	tm.metrics.observeTokenRefresh(true)
	tm.logger.Info("novo access token obtido", zap.Time("expires_at", token.ExpiresAt))

	return token, nil
}

// Invalidate força a renovação do token na próxima chamada.
// O dispatcher chama quando a API responde 401.
func (tm *TokenManager) Invalidate() {
	if tm.sandbox {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.token = nil
	tm.logger.Debug("token invalidado")
}

// Current retorna o token em cache, se houver
func (tm *TokenManager) Current() (Token, bool) {
	if tm.sandbox {
		return Token{AccessToken: tm.staticToken}, true
	}
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if tm.token == nil {
		return Token{}, false
	}
	return *tm.token, true
}

// AuthorizationHeader retorna o valor padrão do cabeçalho Authorization
func (tm *TokenManager) AuthorizationHeader() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.header
}

// advertisedLifetime lê expires_in da resposta bruta do token.
// Sem expires_in o token vale só para a chamada corrente.
func advertisedLifetime(raw *oauth2.Token) time.Duration {
	var seconds float64
	switch v := raw.Extra("expires_in").(type) {
	case float64:
		seconds = v
	case int64:
		seconds = float64(v)
	case json.Number:
		seconds, _ = v.Float64()
	case string:
		seconds, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func sandboxHeader(static string) string {
	if strings.HasPrefix(static, bearerPrefix) {
		return static
	}
	return bearerPrefix + static
}
