package sicoob

import (
	"context"
	"net/http"
	"net/url"
)

// Operações da API de cobrança bancária. Os payloads são enviados como estão;
// o formato de cada um está na documentação oficial do Sicoob.

func (c *Client) send(ctx context.Context, method, path string, payload any, failure string) (*Response, error) {
	return c.Dispatch(ctx, SurfaceBilling, Request{Method: method, Path: path, Body: payload}, failure)
}

func (c *Client) query(ctx context.Context, path string, filters url.Values, failure string) (*Response, error) {
	return c.Dispatch(ctx, SurfaceBilling, Request{Method: http.MethodGet, Path: path, Query: filters}, failure)
}

// ──────────────────────────────────────────────
// Boletos
// ──────────────────────────────────────────────

// RegisterBoletos inclui um ou mais boletos
func (c *Client) RegisterBoletos(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPost, "boletos", boletos, "Falha ao incluir Boleto Cobranca")
}

// QueryBoleto consulta um boleto (numeroCliente, codigoModalidade, nossoNumero...)
func (c *Client) QueryBoleto(ctx context.Context, filters url.Values) (*Response, error) {
	return c.query(ctx, "boletos", filters, "Falha ao consultar Boleto")
}

// BoletosByPayer lista os boletos de um pagador pelo CPF/CNPJ
func (c *Client) BoletosByPayer(ctx context.Context, cpfCnpj string, filters url.Values) (*Response, error) {
	return c.query(ctx, "boletos/pagadores/"+url.PathEscape(cpfCnpj), filters, "Falha ao buscar Boleto por pagador")
}

// SecondCopy obtém a segunda via de um boleto
func (c *Client) SecondCopy(ctx context.Context, filters url.Values) (*Response, error) {
	return c.query(ctx, "boletos/segunda-via", filters, "Falha ao obter segunda via do Boleto")
}

// AvailableNossoNumeroRanges consulta as faixas de nosso número disponíveis
func (c *Client) AvailableNossoNumeroRanges(ctx context.Context, filters url.Values) (*Response, error) {
	return c.query(ctx, "boletos/faixas-nosso-numero-disponiveis", filters, "Falha ao consultar faixas de Nosso Número disponíveis")
}

// ExtendDueDate prorroga a data de vencimento
func (c *Client) ExtendDueDate(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/prorrogacoes/data-vencimento", boletos, "Falha ao prorrogar data de vencimento do Boleto")
}

// ExtendPaymentDeadline prorroga a data limite de pagamento
func (c *Client) ExtendPaymentDeadline(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/prorrogacoes/data-limite-pagamento", boletos, "Falha ao prorrogar data limite de pagamento do Boleto")
}

func (c *Client) ApplyDiscounts(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/descontos", boletos, "Falha ao aplicar descontos no Boleto")
}

func (c *Client) ApplyRebates(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/abatimentos", boletos, "Falha ao aplicar abatimentos no Boleto")
}

func (c *Client) ApplyFine(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/encargos/multa", boletos, "Falha ao aplicar multa no Boleto")
}

func (c *Client) ApplyLateInterest(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/encargos/juros-mora", boletos, "Falha ao aplicar juros de mora no Boleto")
}

func (c *Client) ChangeNominalValue(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/valor-nominal", boletos, "Falha ao definir valor nominal do Boleto")
}

// ChangeSeuNumero altera o "seu número" (identificador do beneficiário)
func (c *Client) ChangeSeuNumero(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/seu-numero", boletos, "Falha ao alterar seu número do Boleto")
}

func (c *Client) ChangeDocumentKind(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/especie-documento", boletos, "Falha ao definir espécie do documento do Boleto")
}

// WriteOff comanda a baixa do boleto
func (c *Client) WriteOff(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/baixa", boletos, "Falha ao efetuar baixa do Boleto")
}

// SplitCredits configura o rateio de créditos.
// O path com "rateiro" é o publicado pela API.
func (c *Client) SplitCredits(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/rateiro-creditos", boletos, "Falha ao realizar rateio de créditos do Boleto")
}

// PixBoleto altera a utilização de PIX no boleto
func (c *Client) PixBoleto(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/pix", boletos, "Falha ao pagar Boleto via PIX")
}

// ──────────────────────────────────────────────
// Pagadores
// ──────────────────────────────────────────────

// UpdatePayers altera os dados cadastrais de pagadores
func (c *Client) UpdatePayers(ctx context.Context, pagadores any) (*Response, error) {
	return c.send(ctx, http.MethodPut, "pagadores", pagadores, "Falha ao alterar pagadores do Boleto")
}

// ──────────────────────────────────────────────
// Negativação
// ──────────────────────────────────────────────

func (c *Client) Negativate(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPost, "boletos/negativacoes", boletos, "Falha ao negativar Boleto Cobranca")
}

func (c *Client) CancelNegativation(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/negativacoes", boletos, "Falha ao cancelar negativação de Boleto Cobranca")
}

func (c *Client) WriteOffNegativation(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodDelete, "boletos/negativacoes", boletos, "Falha ao baixar negativação de Boleto Cobranca")
}

// ──────────────────────────────────────────────
// Protesto
// ──────────────────────────────────────────────

func (c *Client) Protest(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPost, "boletos/protestos", boletos, "Falha ao protestar Boleto Cobranca")
}

func (c *Client) CancelProtest(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, "boletos/protestos", boletos, "Falha ao cancelar protesto de Boleto Cobranca")
}

// WithdrawProtest registra a desistência do protesto
func (c *Client) WithdrawProtest(ctx context.Context, boletos any) (*Response, error) {
	return c.send(ctx, http.MethodDelete, "boletos/protestos", boletos, "Falha ao desistir do protesto de Boleto Cobranca")
}

// ──────────────────────────────────────────────
// Movimentação
// ──────────────────────────────────────────────

// RequestMovement solicita o arquivo de movimentação da carteira
func (c *Client) RequestMovement(ctx context.Context, filters any) (*Response, error) {
	return c.send(ctx, http.MethodPost, "boletos/solicitacoes/movimentacao", filters, "Falha ao solicitar movimentação de Boleto Cobranca")
}

// QueryMovement consulta a situação de uma solicitação de movimentação
func (c *Client) QueryMovement(ctx context.Context, filters url.Values) (*Response, error) {
	return c.query(ctx, "boletos/solicitacoes/movimentacao", filters, "Falha ao consultar movimentação de Boleto Cobranca")
}

// DownloadMovement baixa um arquivo de movimentação já processado
func (c *Client) DownloadMovement(ctx context.Context, filters url.Values) (*Response, error) {
	return c.query(ctx, "boletos/movimentacao-download", filters, "Falha ao fazer download da movimentação de Boleto Cobranca")
}
