package sicoob

import (
	"crypto/tls"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pkcs12"

	"github.com/matfatjoe/api-sicoob/internal/testutil"
)

func TestProvisionCertificate(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	id := testutil.NewIdentity(t, "sicoob-client", nil)
	pfx := testutil.EncodePKCS12(t, id, "senha")

	bundle, pair, err := ProvisionCertificate("client-123", pfx, "senha")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bundle.Remove() })

	for _, path := range []string{bundle.CertificatePath, bundle.PrivateKeyPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), path)
	}

	dirInfo, err := os.Stat(filepath.Dir(bundle.CertificatePath))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	reloaded, err := tls.LoadX509KeyPair(bundle.CertificatePath, bundle.PrivateKeyPath)
	require.NoError(t, err)
	assert.Equal(t, id.Cert.Raw, reloaded.Certificate[0])
	assert.Equal(t, id.Cert.Raw, pair.Certificate[0])
}

func TestProvisionCertificate_WithCAChain(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	ca := testutil.NewCA(t, "sicoob-test-ca")
	leaf := testutil.NewIdentity(t, "sicoob-client", ca)
	pfx := testutil.EncodePKCS12(t, leaf, "senha", ca.Cert)

	bundle, pair, err := ProvisionCertificate("client-123", pfx, "senha")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bundle.Remove() })

	assert.Equal(t, leaf.Cert.Raw, pair.Certificate[0])

	reloaded, err := tls.LoadX509KeyPair(bundle.CertificatePath, bundle.PrivateKeyPath)
	require.NoError(t, err)
	assert.Equal(t, leaf.Cert.Raw, reloaded.Certificate[0])
}

func TestProvisionCertificate_Failures(t *testing.T) {
	id := testutil.NewIdentity(t, "sicoob-client", nil)
	pfx := testutil.EncodePKCS12(t, id, "senha")

	tests := []struct {
		name     string
		pfx      []byte
		password string
		wrapped  error
	}{
		{"wrong password", pfx, "errada", pkcs12.ErrIncorrectPassword},
		{"not a PKCS12", []byte("isto não é um pfx"), "senha", nil},
		{"empty blob", nil, "senha", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			t.Setenv("TMPDIR", tmp)

			bundle, _, err := ProvisionCertificate("client-123", tt.pfx, tt.password)
			require.Error(t, err)
			assert.Nil(t, bundle)
			assert.True(t, IsCertificateError(err))
			assert.Equal(t, KindCertificate, KindOf(err))
			if tt.wrapped != nil {
				assert.True(t, errors.Is(err, tt.wrapped))
			}

			entries, err := os.ReadDir(tmp)
			require.NoError(t, err)
			assert.Empty(t, entries, "no key material may be left behind")
		})
	}
}

func TestCertificateBundle_Remove(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	id := testutil.NewIdentity(t, "sicoob-client", nil)
	bundle, _, err := ProvisionCertificate("client-123", testutil.EncodePKCS12(t, id, "senha"), "senha")
	require.NoError(t, err)

	require.NoError(t, bundle.Remove())
	_, err = os.Stat(bundle.CertificatePath)
	assert.True(t, os.IsNotExist(err))

	var nilBundle *CertificateBundle
	assert.NoError(t, nilBundle.Remove())
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc-123_x", "abc-123_x"},
		{"../../etc/passwd", "etcpasswd"},
		{"", "client"},
		{"///", "client"},
		{"0123456789012345678901234567890123456789", "01234567890123456789012345678901"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, safeName(tt.in))
		})
	}
}

func TestClient_ProvisionCertificate(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	client, err := NewClient(Config{ClientID: "client-123"})
	require.NoError(t, err)
	assert.Nil(t, client.Certificate())

	id := testutil.NewIdentity(t, "sicoob-client", nil)
	bundle, err := client.ProvisionCertificate(testutil.EncodePKCS12(t, id, "senha"), "senha")
	require.NoError(t, err)
	assert.Equal(t, bundle, client.Certificate())

	// Falha posterior não desfaz a identidade já configurada
	_, err = client.ProvisionCertificate([]byte("lixo"), "senha")
	require.Error(t, err)
	assert.Equal(t, bundle, client.Certificate())

	require.NoError(t, client.Close())
	_, err = os.Stat(bundle.PrivateKeyPath)
	assert.True(t, os.IsNotExist(err))
}

func TestNewClient_InvalidPEMPair(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(keyPath, []byte("y"), 0o600))

	_, err := NewClient(Config{ClientID: "client-123", CertificatePath: certPath, CertificateKeyPath: keyPath})
	require.Error(t, err)
	assert.True(t, IsCertificateError(err))
}
