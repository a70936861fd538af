// Package config carrega a configuração do processo a partir de um arquivo
// .env, de um YAML opcional e das variáveis de ambiente SICOOB_*
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/matfatjoe/api-sicoob/sicoob"
)

const envPrefix = "SICOOB"

// Config armazena todas as configurações do processo
type Config struct {
	Environment        string `mapstructure:"environment"`
	ClientID           string `mapstructure:"client_id"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
	StaticToken        string `mapstructure:"static_token"`

	// PKCS#12 provisionado na inicialização, alternativa ao par PEM
	PFXPath     string `mapstructure:"pfx_path"`
	PFXPassword string `mapstructure:"pfx_password"`

	// Sobrescrevem os hosts padrão do ambiente
	BaseURL  string `mapstructure:"base_url"`
	TokenURL string `mapstructure:"token_url"`

	Timeout  time.Duration `mapstructure:"timeout"`
	LogLevel string        `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"environment":          string(sicoob.EnvironmentProduction),
	"client_id":            "",
	"certificate_path":     "",
	"certificate_key_path": "",
	"static_token":         "",
	"pfx_path":             "",
	"pfx_password":         "",
	"base_url":             "",
	"token_url":            "",
	"timeout":              30 * time.Second,
	"log_level":            "info",
}

// Load carrega as configurações.
//
// Ordem de prioridade: variáveis SICOOB_* > arquivo YAML > padrões. O .env
// apenas popula o ambiente; variáveis já definidas não são sobrescritas.
// Com envFile vazio o .env do diretório atual é opcional.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("erro ao carregar %s: %w", envFile, err)
		}
	} else {
		// Tenta carregar .env (ignora erro se não existir)
		_ = godotenv.Load()
	}

	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	for key, value := range defaults {
		vip.SetDefault(key, value)
	}

	if path != "" {
		vip.SetConfigFile(path)
		vip.SetConfigType("yaml")
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("erro ao ler arquivo de configuração: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("erro ao decodificar configuração: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate verifica se as configurações obrigatórias estão presentes
func (c *Config) validate() error {
	if err := c.SDK().Validate(); err != nil {
		return err
	}
	if c.PFXPath != "" && c.CertificatePath != "" {
		return errors.New("SICOOB_PFX_PATH e SICOOB_CERTIFICATE_PATH são mutuamente exclusivos")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("SICOOB_TIMEOUT deve ser positivo, recebido %s", c.Timeout)
	}
	return nil
}

// SDK converte para a configuração do cliente
func (c *Config) SDK() sicoob.Config {
	return sicoob.Config{
		Environment:        sicoob.Environment(c.Environment),
		ClientID:           c.ClientID,
		CertificatePath:    c.CertificatePath,
		CertificateKeyPath: c.CertificateKeyPath,
		StaticToken:        c.StaticToken,
	}
}

// Options retorna as opções do cliente derivadas da configuração
func (c *Config) Options() []sicoob.Option {
	opts := []sicoob.Option{sicoob.WithTimeout(c.Timeout)}
	if c.BaseURL != "" {
		opts = append(opts, sicoob.WithBaseURL(c.BaseURL))
	}
	if c.TokenURL != "" {
		opts = append(opts, sicoob.WithTokenURL(c.TokenURL))
	}
	return opts
}

// PFX lê o PKCS#12 configurado; nil quando não há pfx_path
func (c *Config) PFX() ([]byte, error) {
	if c.PFXPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.PFXPath)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler PKCS#12: %w", err)
	}
	return data, nil
}

// IsSandbox retorna true se estiver no ambiente de homologação
func (c *Config) IsSandbox() bool {
	return c.Environment == string(sicoob.EnvironmentSandbox)
}
