package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gopkcs12 "software.sslmate.com/src/go-pkcs12"
)

// listenIPv4 abre um listener só em IPv4.
// O sandbox bloqueia listeners IPv6, então forçamos tcp4.
func listenIPv4(tb testing.TB) net.Listener {
	tb.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create IPv4 listener: %v", err)
	}
	return listener
}

// NewLocalHTTPServer inicia um servidor HTTP em 127.0.0.1, fechado no Cleanup
func NewLocalHTTPServer(tb testing.TB, handler http.Handler) *httptest.Server {
	tb.Helper()

	server := httptest.NewUnstartedServer(handler)
	_ = server.Listener.Close()
	server.Listener = listenIPv4(tb)
	server.Start()
	tb.Cleanup(server.Close)

	return server
}

// NewLocalTLSServer inicia um servidor HTTPS em 127.0.0.1 com a política de
// certificado de cliente informada
func NewLocalTLSServer(tb testing.TB, handler http.Handler, clientAuth tls.ClientAuthType) *httptest.Server {
	tb.Helper()

	server := httptest.NewUnstartedServer(handler)
	_ = server.Listener.Close()
	server.Listener = listenIPv4(tb)
	server.TLS = &tls.Config{
		ClientAuth: clientAuth,
		MinVersion: tls.VersionTLS12,
	}
	server.StartTLS()
	tb.Cleanup(server.Close)

	return server
}

// ServerCAs retorna um pool com o certificado do servidor de teste
func ServerCAs(server *httptest.Server) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(server.Certificate())
	return pool
}

// RoundTripFunc permite implementar http.RoundTripper inline
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip chama a função
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// TokenServer simula o endpoint client-credentials do provedor de identidade.
// Cada troca devolve um token novo ("token-1", "token-2"...).
type TokenServer struct {
	*httptest.Server

	mu        sync.Mutex
	hits      int
	expiresIn int
	status    int
	lastForm  url.Values
}

// NewTokenServer cria o endpoint; expiresIn é o expires_in anunciado em segundos
func NewTokenServer(tb testing.TB, expiresIn int) *TokenServer {
	tb.Helper()

	ts := &TokenServer{expiresIn: expiresIn, status: http.StatusOK}
	ts.Server = NewLocalHTTPServer(tb, http.HandlerFunc(ts.handle))
	return ts
}

func (ts *TokenServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ts.mu.Lock()
	ts.hits++
	hits := ts.hits
	status := ts.status
	expiresIn := ts.expiresIn
	ts.lastForm = r.PostForm
	ts.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if status != http.StatusOK {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_client",
			"error_description": "client not allowed",
		})
		return
	}
	if r.PostForm.Get("grant_type") != "client_credentials" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unsupported_grant_type"})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": fmt.Sprintf("token-%d", hits),
		"token_type":   "Bearer",
		"expires_in":   expiresIn,
	})
}

// TokenURL retorna a URL do endpoint
func (ts *TokenServer) TokenURL() string {
	return ts.URL + "/token"
}

// Hits retorna quantas trocas foram recebidas
func (ts *TokenServer) Hits() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits
}

// LastForm retorna o corpo da última troca
func (ts *TokenServer) LastForm() url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.lastForm
}

// FailWith faz as próximas trocas responderem com o status informado
func (ts *TokenServer) FailWith(status int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.status = status
}

// Identity é um par chave/certificado de teste
type Identity struct {
	Key  *rsa.PrivateKey
	Cert *x509.Certificate
}

// NewCA gera uma CA autoassinada
func NewCA(tb testing.TB, commonName string) *Identity {
	tb.Helper()

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		Subject:               pkix.Name{CommonName: commonName},
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	return issue(tb, template, nil)
}

// NewIdentity gera um certificado de cliente; com issuer nil é autoassinado
func NewIdentity(tb testing.TB, commonName string, issuer *Identity) *Identity {
	tb.Helper()

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		Subject:      pkix.Name{CommonName: commonName},
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	return issue(tb, template, issuer)
}

func issue(tb testing.TB, template *x509.Certificate, issuer *Identity) *Identity {
	tb.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		tb.Fatalf("failed to generate key: %v", err)
	}

	parent, signer := template, key
	if issuer != nil {
		parent, signer = issuer.Cert, issuer.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, signer)
	if err != nil {
		tb.Fatalf("failed to create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		tb.Fatalf("failed to parse certificate: %v", err)
	}

	return &Identity{Key: key, Cert: cert}
}

// WriteCertAndKey grava o certificado e a chave em PEM dentro de dir
func WriteCertAndKey(tb testing.TB, id *Identity, dir string) (certPath, keyPath string) {
	tb.Helper()

	certPath = filepath.Join(dir, "client.crt")
	keyPath = filepath.Join(dir, "client.key")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: id.Cert.Raw})
	if err := os.WriteFile(certPath, certPEM, 0o600); err != nil {
		tb.Fatalf("failed to write certificate: %v", err)
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(id.Key)})
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		tb.Fatalf("failed to write key: %v", err)
	}

	return certPath, keyPath
}

// EncodePKCS12 empacota a identidade (e a cadeia opcional) num .pfx protegido por senha
func EncodePKCS12(tb testing.TB, id *Identity, password string, chain ...*x509.Certificate) []byte {
	tb.Helper()

	pfx, err := gopkcs12.Encode(rand.Reader, id.Key, id.Cert, chain, password)
	if err != nil {
		tb.Fatalf("failed to encode PKCS12: %v", err)
	}
	return pfx
}
