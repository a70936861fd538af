package sicoob

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrorKind classifica as falhas devolvidas pelo cliente
type ErrorKind int

const (
	// KindUnclassified cobre qualquer outro status HTTP e falhas de transporte
	KindUnclassified ErrorKind = iota
	KindInvalidRequest
	KindNotAcceptable
	KindInternalServerError
	KindCertificate
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "requisição inválida"
	case KindNotAcceptable:
		return "requisição não aceita"
	case KindInternalServerError:
		return "erro interno do servidor"
	case KindCertificate:
		return "certificado inválido"
	default:
		return "erro não classificado"
	}
}

// Erros sentinela para cada tipo, comparáveis com errors.Is
var (
	// ErrInvalidRequest indica HTTP 400
	ErrInvalidRequest = errors.New("sicoob: requisição inválida")

	// ErrNotAcceptable indica HTTP 406
	ErrNotAcceptable = errors.New("sicoob: requisição não aceita")

	// ErrInternalServerError indica HTTP 500
	ErrInternalServerError = errors.New("sicoob: erro interno do servidor")

	// ErrCertificate indica material PKCS#12/PEM inválido
	ErrCertificate = errors.New("sicoob: certificado inválido")

	// ErrUnclassified indica status fora da tabela ou falha de transporte
	ErrUnclassified = errors.New("sicoob: erro não classificado")

	// ErrNoCertificate indica tentativa de chamada em produção sem identidade TLS
	ErrNoCertificate = errors.New("sicoob: nenhum certificado de cliente configurado")

	// ErrTokenExchange indica falha na troca client-credentials
	ErrTokenExchange = errors.New("sicoob: falha ao obter token")
)

var kindSentinels = map[ErrorKind]error{
	KindUnclassified:        ErrUnclassified,
	KindInvalidRequest:      ErrInvalidRequest,
	KindNotAcceptable:       ErrNotAcceptable,
	KindInternalServerError: ErrInternalServerError,
	KindCertificate:         ErrCertificate,
}

// statusKinds é a tabela fixa de classificação por status HTTP
var statusKinds = map[int]ErrorKind{
	http.StatusBadRequest:          KindInvalidRequest,
	http.StatusNotAcceptable:       KindNotAcceptable,
	http.StatusInternalServerError: KindInternalServerError,
}

// APIMessage representa um item do array "mensagens" das respostas de erro
type APIMessage struct {
	Codigo   string `json:"codigo"`
	Mensagem string `json:"mensagem"`
}

// UnmarshalJSON aceita "codigo" tanto como string quanto como número
func (m *APIMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Codigo   json.RawMessage `json:"codigo"`
		Mensagem string          `json:"mensagem"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Codigo = rawText(raw.Codigo)
	m.Mensagem = raw.Mensagem
	return nil
}

// RequestInfo guarda a requisição original para diagnóstico
type RequestInfo struct {
	Method string
	URL    string
	Query  url.Values
	Body   []byte
}

// Error é o erro tipado devolvido por todas as operações do cliente
type Error struct {
	Kind     ErrorKind
	Status   int // zero quando não houve resposta HTTP
	Message  string
	Messages []APIMessage
	Request  RequestInfo
	Body     []byte // corpo bruto da resposta
	Err      error
}

// Error implementa a interface error
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("sicoob: ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is permite errors.Is(err, ErrInvalidRequest) e similares
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// StatusError é o erro de transporte de uma resposta 4xx/5xx, preservado
// dentro de Error para status fora da tabela de classificação
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("erro da API: status %d - %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// classifyResponse converte uma resposta de erro HTTP em *Error
func classifyResponse(status int, body []byte, req RequestInfo) *Error {
	statusErr := &StatusError{StatusCode: status, Body: body}

	kind, ok := statusKinds[status]
	if !ok {
		return &Error{
			Kind:    KindUnclassified,
			Status:  status,
			Message: statusErr.Error(),
			Request: req,
			Body:    body,
			Err:     statusErr,
		}
	}

	msgs := parseMessages(body)
	return &Error{
		Kind:     kind,
		Status:   status,
		Message:  joinMessages(msgs),
		Messages: msgs,
		Request:  req,
		Body:     body,
		Err:      statusErr,
	}
}

// parseMessages extrai "mensagens" do corpo; corpo malformado resulta em nil
func parseMessages(body []byte) []APIMessage {
	var payload struct {
		Mensagens []APIMessage `json:"mensagens"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return payload.Mensagens
}

func joinMessages(msgs []APIMessage) string {
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s - %s;", m.Codigo, m.Mensagem)
	}
	return b.String()
}

// transportError envolve falhas sem resposta HTTP utilizável
func transportError(failure string, req RequestInfo, err error) *Error {
	return &Error{
		Kind:    KindUnclassified,
		Message: fmt.Sprintf("%s: %v", failure, err),
		Request: req,
		Err:     err,
	}
}

func rawText(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		return str
	}
	return string(data)
}

// KindOf retorna o tipo do erro; erros que não são *Error contam como não classificados
func KindOf(err error) ErrorKind {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Kind
	}
	return KindUnclassified
}

// IsInvalidRequest retorna true se a API recusou a requisição com 400
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsNotAcceptable retorna true se a API respondeu 406
func IsNotAcceptable(err error) bool {
	return errors.Is(err, ErrNotAcceptable)
}

// IsInternalServerError retorna true se a API respondeu 500
func IsInternalServerError(err error) bool {
	return errors.Is(err, ErrInternalServerError)
}

// IsCertificateError retorna true para falhas de certificado
func IsCertificateError(err error) bool {
	return errors.Is(err, ErrCertificate)
}
