package sicoob

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

const (
	certificateFileName = "certificate.pem"
	privateKeyFileName  = "private-key.pem"
)

// CertificateBundle aponta para o certificado e a chave PEM derivados de um PKCS#12.
// É imutável; um novo provisionamento gera outro bundle.
type CertificateBundle struct {
	CertificatePath string
	PrivateKeyPath  string

	dir string
}

// Remove apaga o material gravado em disco
func (b *CertificateBundle) Remove() error {
	if b == nil || b.dir == "" {
		return nil
	}
	return os.RemoveAll(b.dir)
}

// ProvisionCertificate decodifica o PKCS#12 com a senha informada, grava o
// certificado folha e a chave privada em PEM num diretório temporário
// (0700, arquivos 0600) e retorna os caminhos junto com o par TLS carregado.
// Em caso de erro nada fica gravado.
func ProvisionCertificate(clientID string, pfx []byte, password string) (*CertificateBundle, tls.Certificate, error) {
	key, leaf, err := decodePKCS12(pfx, password)
	if err != nil {
		return nil, tls.Certificate{}, certificateError("erro ao decodificar certificado PKCS12", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, tls.Certificate{}, certificateError("erro ao serializar chave privada", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leaf.Raw})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, tls.Certificate{}, certificateError("certificado e chave não formam um par", err)
	}

	bundle, err := writeBundle(clientID, certPEM, keyPEM)
	if err != nil {
		return nil, tls.Certificate{}, certificateError("erro ao gravar certificado", err)
	}

	return bundle, pair, nil
}

// loadKeyPair carrega o par PEM configurado em Config
func loadKeyPair(certPath, keyPath string) (tls.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, certificateError("erro ao carregar certificado", err)
	}
	return pair, nil
}

// decodePKCS12 extrai a chave privada e o certificado folha
func decodePKCS12(pfx []byte, password string) (crypto.PrivateKey, *x509.Certificate, error) {
	key, cert, err := pkcs12.Decode(pfx, password)
	if err == nil {
		return key, cert, nil
	}
	if errors.Is(err, pkcs12.ErrIncorrectPassword) {
		return nil, nil, err
	}

	// Decode só aceita exatamente um certificado e uma chave; bundles com a
	// cadeia da CA passam por ToPEM
	blocks, pemErr := pkcs12.ToPEM(pfx, password)
	if pemErr != nil {
		return nil, nil, err
	}
	return leafFromBlocks(blocks)
}

// leafFromBlocks escolhe o certificado cuja chave pública corresponde à chave privada
func leafFromBlocks(blocks []*pem.Block) (crypto.PrivateKey, *x509.Certificate, error) {
	var (
		key   crypto.PrivateKey
		certs []*x509.Certificate
	)
	for _, block := range blocks {
		switch block.Type {
		case "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("erro ao ler certificado: %w", err)
			}
			certs = append(certs, cert)
		case "PRIVATE KEY":
			parsed, err := parsePrivateKey(block.Bytes)
			if err != nil {
				return nil, nil, err
			}
			key = parsed
		}
	}

	if key == nil {
		return nil, nil, errors.New("PKCS12 sem chave privada")
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, nil, fmt.Errorf("tipo de chave não suportado: %T", key)
	}
	pub, ok := signer.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok {
		return nil, nil, fmt.Errorf("tipo de chave não suportado: %T", key)
	}

	for _, cert := range certs {
		if pub.Equal(cert.PublicKey) {
			return key, cert, nil
		}
	}
	return nil, nil, errors.New("PKCS12 sem certificado correspondente à chave privada")
}

func parsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler chave privada: %w", err)
	}
	switch key.(type) {
	case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
		return key, nil
	default:
		return nil, fmt.Errorf("tipo de chave não suportado: %T", key)
	}
}

func writeBundle(clientID string, certPEM, keyPEM []byte) (*CertificateBundle, error) {
	dir, err := os.MkdirTemp("", "sicoob-"+safeName(clientID)+"-")
	if err != nil {
		return nil, err
	}

	bundle := &CertificateBundle{
		CertificatePath: filepath.Join(dir, certificateFileName),
		PrivateKeyPath:  filepath.Join(dir, privateKeyFileName),
		dir:             dir,
	}

	if err := os.WriteFile(bundle.CertificatePath, certPEM, 0o600); err != nil {
		_ = bundle.Remove()
		return nil, err
	}
	if err := os.WriteFile(bundle.PrivateKeyPath, keyPEM, 0o600); err != nil {
		_ = bundle.Remove()
		return nil, err
	}
	return bundle, nil
}

// safeName limita o client_id a caracteres seguros para nome de diretório
func safeName(clientID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, clientID)
	if len(name) > 32 {
		name = name[:32]
	}
	if name == "" {
		name = "client"
	}
	return name
}

func certificateError(msg string, err error) *Error {
	return &Error{
		Kind:    KindCertificate,
		Message: fmt.Sprintf("%s: %v", msg, err),
		Err:     err,
	}
}
