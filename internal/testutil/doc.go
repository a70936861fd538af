// Package testutil fornece helpers de teste para os pacotes do SDK.
//
// Inclui servidores HTTP/TLS locais presos ao IPv4 (evitando IPv6 em sandboxes),
// um endpoint de token OAuth2 que conta as trocas, e geração de certificados
// autoassinados em PEM e PKCS#12 para testes de mTLS.
//
// # Utilitários
//
//   - NewLocalHTTPServer / NewLocalTLSServer: httptest em 127.0.0.1
//   - TokenServer: endpoint client-credentials com contador de requisições
//   - RoundTripFunc: implementações inline de http.RoundTripper
//   - NewIdentity, WriteCertAndKey, EncodePKCS12: material de certificado para mTLS
package testutil
