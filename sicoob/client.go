package sicoob

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Surface identifica uma das duas APIs sob o mesmo host
type Surface int

const (
	SurfaceBilling Surface = iota
	SurfaceCurrentAccount
)

func (s Surface) String() string {
	if s == SurfaceCurrentAccount {
		return "conta_corrente"
	}
	return "cobranca"
}

func (s Surface) path() string {
	if s == SurfaceCurrentAccount {
		return currentAccountPath
	}
	return billingPath
}

type settings struct {
	timeout    time.Duration
	scopes     []string
	baseURL    string
	tokenURL   string
	rootCAs    *x509.CertPool
	transport  http.RoundTripper
	logger     *zap.Logger
	registerer prometheus.Registerer
	now        func() time.Time
}

// Option configura o cliente
type Option func(*settings)

// WithTimeout define o timeout de cada requisição. Padrão: 30s.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithScopes substitui DefaultScopes na troca client-credentials
func WithScopes(scopes ...string) Option {
	return func(s *settings) {
		s.scopes = scopes
	}
}

// WithBaseURL substitui o host derivado de Config.Environment
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = baseURL
	}
}

// WithTokenURL substitui o endpoint de token do provedor de identidade
func WithTokenURL(tokenURL string) Option {
	return func(s *settings) {
		s.tokenURL = tokenURL
	}
}

// WithRootCAs define as CAs usadas para verificar o servidor
func WithRootCAs(pool *x509.CertPool) Option {
	return func(s *settings) {
		s.rootCAs = pool
	}
}

// WithTransport define o transporte base. Se for *http.Transport ele é
// clonado e recebe a identidade TLS; caso contrário é usado como está.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) {
		s.transport = rt
	}
}

// WithLogger define o logger estruturado. Padrão: zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegisterer registra as métricas Prometheus do cliente
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = reg
	}
}

func withClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		timeout:  30 * time.Second,
		scopes:   DefaultScopes,
		tokenURL: TokenURLProduction,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// clientState é a identidade TLS em uso e o *http.Client construído com ela.
// É trocado inteiro a cada provisionamento; requisições em andamento mantêm o seu.
type clientState struct {
	httpClient  *http.Client
	bundle      *CertificateBundle
	hasIdentity bool
}

// Client é o cliente das APIs de cobrança bancária e conta corrente do Sicoob.
// É seguro para uso concorrente.
type Client struct {
	cfg      Config
	settings *settings
	baseURL  string
	tokens   *TokenManager
	metrics  *metrics
	logger   *zap.Logger

	state atomic.Pointer[clientState]

	mu      sync.Mutex
	bundles []*CertificateBundle
}

// NewClient valida a configuração, carrega o certificado PEM (se informado)
// e cria o gerenciador de tokens
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = EnvironmentProduction
	}

	s := newSettings(opts)

	baseURL := s.baseURL
	if baseURL == "" {
		baseURL = cfg.baseURL()
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	var certs []tls.Certificate
	if cfg.HasCertificate() {
		pair, err := loadKeyPair(cfg.CertificatePath, cfg.CertificateKeyPath)
		if err != nil {
			return nil, err
		}
		certs = append(certs, pair)
	}

	m := newMetrics(s.registerer)
	c := &Client{
		cfg:      cfg,
		settings: s,
		baseURL:  baseURL,
		tokens:   newTokenManager(cfg, s, m),
		metrics:  m,
		logger:   s.logger.With(zap.String("environment", string(cfg.Environment))),
	}
	c.state.Store(c.newState(certs, nil))

	return c, nil
}

func (c *Client) newState(certs []tls.Certificate, bundle *CertificateBundle) *clientState {
	tlsConfig := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: certs,
		RootCAs:      c.settings.rootCAs,
	}

	var transport http.RoundTripper
	switch base := c.settings.transport.(type) {
	case nil:
		if def, ok := http.DefaultTransport.(*http.Transport); ok {
			cloned := def.Clone()
			cloned.TLSClientConfig = tlsConfig
			transport = cloned
		} else {
			transport = &http.Transport{Proxy: http.ProxyFromEnvironment, TLSClientConfig: tlsConfig}
		}
	case *http.Transport:
		cloned := base.Clone()
		cloned.TLSClientConfig = tlsConfig
		transport = cloned
	default:
		transport = base
	}

	return &clientState{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   c.settings.timeout,
		},
		bundle:      bundle,
		hasIdentity: len(certs) > 0,
	}
}

// ProvisionCertificate converte o PKCS#12 em PEM e passa a usá-lo em todas as
// chamadas seguintes. Se falhar, o cliente continua com a identidade anterior.
func (c *Client) ProvisionCertificate(pfx []byte, password string) (*CertificateBundle, error) {
	bundle, pair, err := ProvisionCertificate(c.cfg.ClientID, pfx, password)
	if err != nil {
		c.logger.Warn("falha ao provisionar certificado", zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.bundles = append(c.bundles, bundle)
	previous := c.state.Swap(c.newState([]tls.Certificate{pair}, bundle))
	c.mu.Unlock()

	if previous != nil {
		previous.httpClient.CloseIdleConnections()
	}

	c.logger.Info("certificado provisionado",
		zap.String("certificate_path", bundle.CertificatePath),
		zap.String("private_key_path", bundle.PrivateKeyPath),
	)
	return bundle, nil
}

// Certificate retorna o bundle em uso; nil se não houver identidade TLS
func (c *Client) Certificate() *CertificateBundle {
	st := c.state.Load()
	if st.bundle != nil {
		return st.bundle
	}
	if !st.hasIdentity {
		return nil
	}
	return &CertificateBundle{
		CertificatePath: c.cfg.CertificatePath,
		PrivateKeyPath:  c.cfg.CertificateKeyPath,
	}
}

// TokenManager retorna o gerenciador de tokens do cliente
func (c *Client) TokenManager() *TokenManager {
	return c.tokens
}

// Token retorna um token válido, obtendo um novo se necessário
func (c *Client) Token(ctx context.Context) (Token, error) {
	st := c.state.Load()
	return c.tokens.EnsureToken(context.WithValue(ctx, oauth2.HTTPClient, st.httpClient))
}

// Close apaga os certificados provisionados e fecha conexões ociosas
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Load().httpClient.CloseIdleConnections()

	var firstErr error
	for _, b := range c.bundles {
		if err := b.Remove(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.bundles = nil
	return firstErr
}
