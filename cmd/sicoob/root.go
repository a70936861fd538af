package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matfatjoe/api-sicoob/internal/config"
	"github.com/matfatjoe/api-sicoob/sicoob"
)

// app é o estado compartilhado entre os comandos, montado no PersistentPreRunE
type app struct {
	configPath string
	envFile    string

	cfg    *config.Config
	logger *zap.Logger
	client *sicoob.Client
}

// newRootCmd monta a árvore de comandos; o chamador executa a.teardown ao final
func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sicoob",
		Short:         "Cliente de linha de comando das APIs de cobrança e conta corrente do Sicoob",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "arquivo YAML de configuração")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "arquivo .env (padrão: ./.env, se existir)")

	cmd.AddCommand(
		newTokenCmd(a),
		newSaldoCmd(a),
		newBoletosCmd(a),
		newMovimentacaoCmd(a),
	)

	return cmd
}

// setup carrega a configuração, cria o logger e o cliente e provisiona o
// PKCS#12 quando configurado
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return fmt.Errorf("erro ao carregar configurações: %w", err)
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	client, err := sicoob.NewClient(cfg.SDK(), append(cfg.Options(), sicoob.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("erro ao inicializar cliente Sicoob: %w", err)
	}
	a.client = client

	pfx, err := cfg.PFX()
	if err != nil {
		return err
	}
	if pfx != nil {
		if _, err := client.ProvisionCertificate(pfx, cfg.PFXPassword); err != nil {
			return fmt.Errorf("erro ao provisionar certificado: %w", err)
		}
	}

	logger.Debug("cliente inicializado",
		zap.String("environment", cfg.Environment),
		zap.Bool("pfx", pfx != nil),
	)
	return nil
}

// teardown apaga o certificado provisionado; roda mesmo quando o comando falha
func (a *app) teardown() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log_level inválido %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	zcfg.Encoding = "console"
	zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	return zcfg.Build()
}

// printJSON escreve v indentado em w
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResponse escreve o corpo da resposta indentado
func printResponse(w io.Writer, resp *sicoob.Response) error {
	if len(resp.Body) == 0 {
		return printJSON(w, map[string]int{"status": resp.Status})
	}
	return printJSON(w, resp.Body)
}
