package sicoob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Request descreve uma chamada à API. Body é serializado em JSON; Query vai na URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Response é o resultado de uma chamada 2xx
type Response struct {
	Status int
	Body   json.RawMessage
}

// Decode decodifica o corpo JSON em v; corpo vazio não é erro
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Dispatch executa uma requisição autenticada contra a superfície informada.
//
// Garante um token válido, aplica o Authorization padrão quando o chamador não
// trouxe um próprio, apresenta o certificado de cliente no handshake TLS e
// classifica as falhas. Toda falha é devolvida como *Error; failure é o
// contexto prefixado às falhas de transporte.
func (c *Client) Dispatch(ctx context.Context, surface Surface, req Request, failure string) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		c.metrics.observeRequest(surface, err, time.Since(start))
	}()

	st := c.state.Load()
	info := RequestInfo{Method: req.Method, Query: req.Query}

	target, err := c.resolve(surface, req.Path, req.Query)
	if err != nil {
		return nil, transportError(failure, info, err)
	}
	info.URL = target

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, transportError(failure, info, fmt.Errorf("erro ao serializar body: %w", err))
		}
		info.Body = body
	}

	// Sem identidade TLS a API recusaria o handshake; não chega a sair requisição
	if !c.cfg.IsSandbox() && !st.hasIdentity {
		return nil, &Error{
			Kind:    KindCertificate,
			Message: fmt.Sprintf("%s: %v", failure, ErrNoCertificate),
			Request: info,
			Err:     ErrNoCertificate,
		}
	}

	// A troca de token usa o mesmo cliente mTLS da requisição
	if _, err := c.tokens.EnsureToken(context.WithValue(ctx, oauth2.HTTPClient, st.httpClient)); err != nil {
		return nil, transportError(failure, info, err)
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reqBody)
	if err != nil {
		return nil, transportError(failure, info, fmt.Errorf("erro ao criar requisição: %w", err))
	}
	c.applyHeaders(httpReq, req.Header)

	httpResp, err := st.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(failure, info, fmt.Errorf("erro na requisição HTTP: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(failure, info, fmt.Errorf("erro ao ler resposta: %w", err))
	}

	if httpResp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		classified := classifyResponse(httpResp.StatusCode, respBody, info)
		c.logger.Debug("requisição falhou",
			zap.String("method", req.Method),
			zap.String("url", target),
			zap.Int("status", httpResp.StatusCode),
			zap.Stringer("kind", classified.Kind),
		)
		return nil, classified
	}

	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) > 0 && !json.Valid(trimmed) {
		return nil, transportError(failure, info, errors.New("resposta não é um JSON válido"))
	}

	c.logger.Debug("requisição concluída",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Int("status", httpResp.StatusCode),
	)

	return &Response{Status: httpResp.StatusCode, Body: json.RawMessage(trimmed)}, nil
}

// resolve monta a URL final: host + superfície + path + query
func (c *Client) resolve(surface Surface, path string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + surface.path() + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("URL inválida: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// applyHeaders aplica os cabeçalhos padrão e preserva um Authorization
// próprio do chamador, exceto se vazio ou igual a "Bearer "
func (c *Client) applyHeaders(httpReq *http.Request, custom http.Header) {
	h := httpReq.Header
	h.Set("Accept", contentTypeJSON)
	h.Set("Content-Type", contentTypeJSON)
	h.Set(headerClientID, c.cfg.ClientID)
	h.Set(headerLegacyClient, c.cfg.ClientID)

	for k, vs := range custom {
		h.Del(k)
		for _, v := range vs {
			h.Add(k, v)
		}
	}

	if auth := h.Get(headerAuthorization); auth == "" || auth == bearerPrefix {
		h.Set(headerAuthorization, c.tokens.AuthorizationHeader())
	}
}
