package sicoob

const (
	// Produção
	BaseURLProduction  = "https://api.sicoob.com.br/"
	TokenURLProduction = "https://auth.sicoob.com.br/auth/realms/cooperado/protocol/openid-connect/token"

	// Sandbox/Homologação
	BaseURLSandbox = "https://sandbox.sicoob.com.br/sicoob/sandbox/"

	// Superfícies da API sob o mesmo host
	billingPath        = "cobranca-bancaria/v2/"
	currentAccountPath = "conta-corrente/v2/"
)

// Cabeçalhos enviados em toda requisição
const (
	headerAuthorization = "Authorization"
	headerClientID      = "x-sicoob-clientid"
	headerLegacyClient  = "client_id"
	contentTypeJSON     = "application/json"
	bearerPrefix        = "Bearer "
)

// DefaultScopes lista os escopos OAuth2 de cobrança e conta corrente
// solicitados na troca de credenciais.
var DefaultScopes = []string{
	"cobranca_boletos_consultar",
	"cobranca_boletos_borderos",
	"cobranca_boletos_incluir",
	"cobranca_boletos_pagador",
	"cobranca_boletos_segunda_via",
	"cobranca_boletos_descontos",
	"cobranca_boletos_abatimentos",
	"cobranca_boletos_valor_nominal",
	"cobranca_boletos_seu_numero",
	"cobranca_boletos_especie_documento",
	"cobranca_boletos_baixa",
	"cobranca_boletos_rateio_credito",
	"cobranca_pagadores",
	"cobranca_boletos_negativacoes_incluir",
	"cobranca_boletos_negativacoes_alterar",
	"cobranca_boletos_negativacoes_baixar",
	"cobranca_boletos_protesto_incluir",
	"cobranca_boletos_protesto_alterar",
	"cobranca_boletos_protesto_desistir",
	"cobranca_boletos_solicitacao_movimentacao_incluir",
	"cobranca_boletos_solicitacao_movimentacao_consultar",
	"cobranca_boletos_solicitacao_movimentacao_download",
	"cobranca_boletos_prorrogacoes_data_vencimento",
	"cobranca_boletos_prorrogacoes_data_limite",
	"cobranca_boletos_encargos_multas",
	"cobranca_boletos_encargos_juros_mora",
	"cobranca_boletos_pix",
	"cco_saldo",
	"cco_extrato",
}
