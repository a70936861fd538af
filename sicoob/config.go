package sicoob

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Environment seleciona o host da API (produção ou sandbox/homologação)
type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentSandbox    Environment = "sandbox"
)

// ErrInvalidConfig indica que a configuração do cliente não passou na validação
var ErrInvalidConfig = errors.New("sicoob: configuração inválida")

var validate = validator.New()

// Config armazena a configuração imutável de um cliente.
// É validada uma única vez em NewClient.
type Config struct {
	// Environment vazio equivale a EnvironmentProduction
	Environment Environment `validate:"omitempty,oneof=production sandbox"`

	// ClientID é o client_id cadastrado no portal do desenvolvedor Sicoob
	ClientID string `validate:"required"`

	// Certificado e chave PEM para mTLS. Podem ficar vazios quando o
	// certificado for provisionado depois a partir de um PKCS#12.
	CertificatePath    string `validate:"required_with=CertificateKeyPath"`
	CertificateKeyPath string `validate:"required_with=CertificatePath"`

	// StaticToken é o token pré-emitido do sandbox, usado sem troca OAuth2
	StaticToken string `validate:"required_if=Environment sandbox"`
}

// Validate verifica se as configurações obrigatórias estão presentes
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// IsSandbox retorna true se o cliente aponta para o ambiente de homologação
func (c Config) IsSandbox() bool {
	return c.Environment == EnvironmentSandbox
}

// HasCertificate retorna true se o par certificado/chave foi informado
func (c Config) HasCertificate() bool {
	return c.CertificatePath != "" && c.CertificateKeyPath != ""
}

func (c Config) baseURL() string {
	if c.IsSandbox() {
		return BaseURLSandbox
	}
	return BaseURLProduction
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fe.Field())
	case "required_with":
		return fmt.Sprintf("%s é obrigatório quando %s é informado", fe.Field(), fe.Param())
	case "required_if":
		return fmt.Sprintf("%s é obrigatório no ambiente sandbox", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s deve ser um de: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s inválido (%s)", fe.Field(), fe.Tag())
	}
}
