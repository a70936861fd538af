// Package sicoob implementa um cliente para as APIs de cobrança bancária
// (boletos) e conta corrente do Sicoob.
//
// # Autenticação
//
// A API usa OAuth2 client credentials com mTLS (mutual TLS). Você precisa:
//   - Client ID (do portal do desenvolvedor Sicoob)
//   - Certificado .pem + chave, ou um .pfx/.p12 com senha
//
// O token é obtido na primeira chamada e renovado automaticamente quando
// expira. No sandbox o token estático da configuração é usado sem troca.
//
// # Início Rápido
//
//	client, err := sicoob.NewClient(sicoob.Config{
//	    ClientID:           "seu-client-id",
//	    CertificatePath:    "/caminho/certificado.pem",
//	    CertificateKeyPath: "/caminho/chave.pem",
//	})
//
// Ou a partir de um PKCS#12:
//
//	client, err := sicoob.NewClient(sicoob.Config{ClientID: "seu-client-id"})
//	bundle, err := client.ProvisionCertificate(pfxBytes, "senha")
//
// Consultar um boleto:
//
//	resp, err := client.QueryBoleto(ctx, url.Values{
//	    "numeroCliente":    {"123"},
//	    "codigoModalidade": {"1"},
//	    "nossoNumero":      {"456"},
//	})
//
// # Tratamento de Erros
//
// Toda falha é um *Error com Kind, status, mensagens da API e a requisição original:
//
//	if sicoob.IsInvalidRequest(err) {
//	    // 400: err.(*sicoob.Error).Message traz "codigo - mensagem;" de cada item
//	}
//	if errors.Is(err, sicoob.ErrTokenExchange) {
//	    // falha ao obter o token
//	}
package sicoob
