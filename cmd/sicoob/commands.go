package main

import (
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Obtém um token de acesso e mostra sua validade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := a.client.Token(cmd.Context())
			if err != nil {
				return err
			}

			out := map[string]any{"sandbox": a.cfg.IsSandbox()}
			if !tok.ExpiresAt.IsZero() {
				out["expires_at"] = tok.ExpiresAt.Format(time.RFC3339)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newSaldoCmd(a *app) *cobra.Command {
	var numeroConta int64

	cmd := &cobra.Command{
		Use:   "saldo",
		Short: "Consulta o saldo da conta corrente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Balance(cmd.Context(), url.Values{
				"numeroContaCorrente": {strconv.FormatInt(numeroConta, 10)},
			})
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().Int64Var(&numeroConta, "numero-conta", 0, "número da conta corrente")
	_ = cmd.MarkFlagRequired("numero-conta")

	return cmd
}

// boletoFlags são os filtros comuns às consultas de um boleto
type boletoFlags struct {
	numeroCliente    int64
	codigoModalidade int
	nossoNumero      int64
	linhaDigitavel   string
	codigoBarras     string
}

func (f *boletoFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.numeroCliente, "numero-cliente", 0, "número do cliente (beneficiário)")
	cmd.Flags().IntVar(&f.codigoModalidade, "codigo-modalidade", 1, "código da modalidade de cobrança")
	cmd.Flags().Int64Var(&f.nossoNumero, "nosso-numero", 0, "nosso número do boleto")
	cmd.Flags().StringVar(&f.linhaDigitavel, "linha-digitavel", "", "linha digitável do boleto")
	cmd.Flags().StringVar(&f.codigoBarras, "codigo-barras", "", "código de barras do boleto")
	_ = cmd.MarkFlagRequired("numero-cliente")
}

func (f *boletoFlags) values() url.Values {
	v := url.Values{
		"numeroCliente":    {strconv.FormatInt(f.numeroCliente, 10)},
		"codigoModalidade": {strconv.Itoa(f.codigoModalidade)},
	}
	if f.nossoNumero != 0 {
		v.Set("nossoNumero", strconv.FormatInt(f.nossoNumero, 10))
	}
	if f.linhaDigitavel != "" {
		v.Set("linhaDigitavel", f.linhaDigitavel)
	}
	if f.codigoBarras != "" {
		v.Set("codigoBarras", f.codigoBarras)
	}
	return v
}

func newBoletosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boletos",
		Short: "Operações de cobrança bancária",
	}

	var consulta boletoFlags
	consultar := &cobra.Command{
		Use:   "consultar",
		Short: "Consulta um boleto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.QueryBoleto(cmd.Context(), consulta.values())
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	consulta.bind(consultar)

	var segunda boletoFlags
	var gerarPDF bool
	segundaVia := &cobra.Command{
		Use:   "segunda-via",
		Short: "Obtém a segunda via de um boleto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters := segunda.values()
			filters.Set("gerarPdf", strconv.FormatBool(gerarPDF))

			resp, err := a.client.SecondCopy(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	segunda.bind(segundaVia)
	segundaVia.Flags().BoolVar(&gerarPDF, "gerar-pdf", false, "inclui o PDF em base64 na resposta")

	cmd.AddCommand(consultar, segundaVia)
	return cmd
}

func newMovimentacaoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movimentacao",
		Short: "Arquivos de movimentação da carteira",
	}

	var (
		numeroCliente     int64
		codigoSolicitacao int64
	)
	consultar := &cobra.Command{
		Use:   "consultar",
		Short: "Consulta a situação de uma solicitação de movimentação",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.QueryMovement(cmd.Context(), url.Values{
				"numeroCliente":     {strconv.FormatInt(numeroCliente, 10)},
				"codigoSolicitacao": {strconv.FormatInt(codigoSolicitacao, 10)},
			})
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	consultar.Flags().Int64Var(&numeroCliente, "numero-cliente", 0, "número do cliente (beneficiário)")
	consultar.Flags().Int64Var(&codigoSolicitacao, "codigo-solicitacao", 0, "código devolvido na solicitação")
	_ = consultar.MarkFlagRequired("numero-cliente")
	_ = consultar.MarkFlagRequired("codigo-solicitacao")

	cmd.AddCommand(consultar)
	return cmd
}
