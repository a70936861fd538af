package sicoob

import (
	"context"
	"net/http"
	"net/url"
)

// Balance consulta o saldo da conta corrente (numeroContaCorrente)
func (c *Client) Balance(ctx context.Context, filters url.Values) (*Response, error) {
	return c.Dispatch(ctx, SurfaceCurrentAccount, Request{
		Method: http.MethodGet,
		Path:   "saldo",
		Query:  filters,
	}, "Falha ao consultar saldo da Conta Corrente")
}
