package sicoob

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperations_Routes(t *testing.T) {
	payload := []map[string]any{{"numeroCliente": 123, "nossoNumero": 456}}
	filters := url.Values{"numeroCliente": {"123"}}

	tests := []struct {
		name    string
		call    func(context.Context, *Client) (*Response, error)
		method  string
		path    string
		failure string
	}{
		{"RegisterBoletos", func(ctx context.Context, c *Client) (*Response, error) { return c.RegisterBoletos(ctx, payload) },
			http.MethodPost, "/cobranca-bancaria/v2/boletos", "Falha ao incluir Boleto Cobranca"},
		{"QueryBoleto", func(ctx context.Context, c *Client) (*Response, error) { return c.QueryBoleto(ctx, filters) },
			http.MethodGet, "/cobranca-bancaria/v2/boletos", "Falha ao consultar Boleto"},
		{"BoletosByPayer", func(ctx context.Context, c *Client) (*Response, error) {
			return c.BoletosByPayer(ctx, "12345678901", filters)
		}, http.MethodGet, "/cobranca-bancaria/v2/boletos/pagadores/12345678901", "Falha ao buscar Boleto por pagador"},
		{"SecondCopy", func(ctx context.Context, c *Client) (*Response, error) { return c.SecondCopy(ctx, filters) },
			http.MethodGet, "/cobranca-bancaria/v2/boletos/segunda-via", "Falha ao obter segunda via do Boleto"},
		{"AvailableNossoNumeroRanges", func(ctx context.Context, c *Client) (*Response, error) {
			return c.AvailableNossoNumeroRanges(ctx, filters)
		}, http.MethodGet, "/cobranca-bancaria/v2/boletos/faixas-nosso-numero-disponiveis", "Falha ao consultar faixas de Nosso Número disponíveis"},
		{"ExtendDueDate", func(ctx context.Context, c *Client) (*Response, error) { return c.ExtendDueDate(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/prorrogacoes/data-vencimento", "Falha ao prorrogar data de vencimento do Boleto"},
		{"ExtendPaymentDeadline", func(ctx context.Context, c *Client) (*Response, error) { return c.ExtendPaymentDeadline(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/prorrogacoes/data-limite-pagamento", "Falha ao prorrogar data limite de pagamento do Boleto"},
		{"ApplyDiscounts", func(ctx context.Context, c *Client) (*Response, error) { return c.ApplyDiscounts(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/descontos", "Falha ao aplicar descontos no Boleto"},
		{"ApplyRebates", func(ctx context.Context, c *Client) (*Response, error) { return c.ApplyRebates(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/abatimentos", "Falha ao aplicar abatimentos no Boleto"},
		{"ApplyFine", func(ctx context.Context, c *Client) (*Response, error) { return c.ApplyFine(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/encargos/multa", "Falha ao aplicar multa no Boleto"},
		{"ApplyLateInterest", func(ctx context.Context, c *Client) (*Response, error) { return c.ApplyLateInterest(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/encargos/juros-mora", "Falha ao aplicar juros de mora no Boleto"},
		{"ChangeNominalValue", func(ctx context.Context, c *Client) (*Response, error) { return c.ChangeNominalValue(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/valor-nominal", "Falha ao definir valor nominal do Boleto"},
		{"ChangeSeuNumero", func(ctx context.Context, c *Client) (*Response, error) { return c.ChangeSeuNumero(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/seu-numero", "Falha ao alterar seu número do Boleto"},
		{"ChangeDocumentKind", func(ctx context.Context, c *Client) (*Response, error) { return c.ChangeDocumentKind(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/especie-documento", "Falha ao definir espécie do documento do Boleto"},
		{"WriteOff", func(ctx context.Context, c *Client) (*Response, error) { return c.WriteOff(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/baixa", "Falha ao efetuar baixa do Boleto"},
		{"SplitCredits", func(ctx context.Context, c *Client) (*Response, error) { return c.SplitCredits(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/rateiro-creditos", "Falha ao realizar rateio de créditos do Boleto"},
		{"PixBoleto", func(ctx context.Context, c *Client) (*Response, error) { return c.PixBoleto(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/pix", "Falha ao pagar Boleto via PIX"},
		{"UpdatePayers", func(ctx context.Context, c *Client) (*Response, error) { return c.UpdatePayers(ctx, payload) },
			http.MethodPut, "/cobranca-bancaria/v2/pagadores", "Falha ao alterar pagadores do Boleto"},
		{"Negativate", func(ctx context.Context, c *Client) (*Response, error) { return c.Negativate(ctx, payload) },
			http.MethodPost, "/cobranca-bancaria/v2/boletos/negativacoes", "Falha ao negativar Boleto Cobranca"},
		{"CancelNegativation", func(ctx context.Context, c *Client) (*Response, error) { return c.CancelNegativation(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/negativacoes", "Falha ao cancelar negativação de Boleto Cobranca"},
		{"WriteOffNegativation", func(ctx context.Context, c *Client) (*Response, error) { return c.WriteOffNegativation(ctx, payload) },
			http.MethodDelete, "/cobranca-bancaria/v2/boletos/negativacoes", "Falha ao baixar negativação de Boleto Cobranca"},
		{"Protest", func(ctx context.Context, c *Client) (*Response, error) { return c.Protest(ctx, payload) },
			http.MethodPost, "/cobranca-bancaria/v2/boletos/protestos", "Falha ao protestar Boleto Cobranca"},
		{"CancelProtest", func(ctx context.Context, c *Client) (*Response, error) { return c.CancelProtest(ctx, payload) },
			http.MethodPatch, "/cobranca-bancaria/v2/boletos/protestos", "Falha ao cancelar protesto de Boleto Cobranca"},
		{"WithdrawProtest", func(ctx context.Context, c *Client) (*Response, error) { return c.WithdrawProtest(ctx, payload) },
			http.MethodDelete, "/cobranca-bancaria/v2/boletos/protestos", "Falha ao desistir do protesto de Boleto Cobranca"},
		{"RequestMovement", func(ctx context.Context, c *Client) (*Response, error) { return c.RequestMovement(ctx, payload[0]) },
			http.MethodPost, "/cobranca-bancaria/v2/boletos/solicitacoes/movimentacao", "Falha ao solicitar movimentação de Boleto Cobranca"},
		{"QueryMovement", func(ctx context.Context, c *Client) (*Response, error) { return c.QueryMovement(ctx, filters) },
			http.MethodGet, "/cobranca-bancaria/v2/boletos/solicitacoes/movimentacao", "Falha ao consultar movimentação de Boleto Cobranca"},
		{"DownloadMovement", func(ctx context.Context, c *Client) (*Response, error) { return c.DownloadMovement(ctx, filters) },
			http.MethodGet, "/cobranca-bancaria/v2/boletos/movimentacao-download", "Falha ao fazer download da movimentação de Boleto Cobranca"},
		{"Balance", func(ctx context.Context, c *Client) (*Response, error) { return c.Balance(ctx, filters) },
			http.MethodGet, "/conta-corrente/v2/saldo", "Falha ao consultar saldo da Conta Corrente"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Corpo inválido expõe a mensagem de falha da operação no erro
			api := newAPIServer(t, http.StatusOK, `not-json`)
			client, err := NewClient(Config{
				Environment: EnvironmentSandbox,
				ClientID:    "client-123",
				StaticToken: "sandbox-token",
			}, WithBaseURL(api.URL))
			require.NoError(t, err)

			_, err = tt.call(context.Background(), client)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.failure)

			req := api.last(t)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)

			if tt.method == http.MethodGet {
				assert.Equal(t, "123", req.Query.Get("numeroCliente"))
				assert.Empty(t, req.Body)
			} else {
				assert.NotEmpty(t, req.Body)
			}

			var sErr *Error
			require.ErrorAs(t, err, &sErr)
			assert.Equal(t, tt.method, sErr.Request.Method)
		})
	}
}
