package sicoob

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "production without certificate",
			cfg:  Config{ClientID: "abc"},
		},
		{
			name: "production with PEM pair",
			cfg:  Config{ClientID: "abc", CertificatePath: "c.pem", CertificateKeyPath: "k.pem"},
		},
		{
			name: "sandbox with static token",
			cfg:  Config{Environment: EnvironmentSandbox, ClientID: "abc", StaticToken: "t"},
		},
		{
			name:    "missing client id",
			cfg:     Config{},
			wantErr: "ClientID é obrigatório",
		},
		{
			name:    "certificate without key",
			cfg:     Config{ClientID: "abc", CertificatePath: "c.pem"},
			wantErr: "CertificateKeyPath é obrigatório quando CertificatePath é informado",
		},
		{
			name:    "key without certificate",
			cfg:     Config{ClientID: "abc", CertificateKeyPath: "k.pem"},
			wantErr: "CertificatePath é obrigatório quando CertificateKeyPath é informado",
		},
		{
			name:    "sandbox without static token",
			cfg:     Config{Environment: EnvironmentSandbox, ClientID: "abc"},
			wantErr: "StaticToken é obrigatório no ambiente sandbox",
		},
		{
			name:    "unknown environment",
			cfg:     Config{Environment: "homologacao", ClientID: "abc"},
			wantErr: "Environment deve ser um de: production sandbox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_BaseURL(t *testing.T) {
	assert.Equal(t, BaseURLProduction, Config{}.baseURL())
	assert.Equal(t, BaseURLProduction, Config{Environment: EnvironmentProduction}.baseURL())
	assert.Equal(t, BaseURLSandbox, Config{Environment: EnvironmentSandbox}.baseURL())
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{Environment: EnvironmentSandbox, ClientID: "abc"})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
