package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ferreirogomes/assetledger/blockchain_listener"
	"github.com/ferreirogomes/assetledger/config"
	"github.com/ferreirogomes/assetledger/handlers"
	"github.com/ferreirogomes/assetledger/services"
	"github.com/ferreirogomes/assetledger/storage"

	"github.com/gagliardetto/solana-go"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "assetledger",
	Short: "Ledger de tokenização fracionada de ativos",
	Long: `assetledger registra ativos, emite frações, mantém o escrow de compras
e contabiliza a receita distribuída de cada ativo.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe a API HTTP (e, se configurado, o listener da blockchain)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica (ou desfaz, com --down) as migrações do Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Storage.Driver != config.StoragePostgres {
			return fmt.Errorf("migrate exige storage.driver=%q", config.StoragePostgres)
		}

		db, err := storage.NewDB(cfg.Storage.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if !migrateDown {
			// NewDB já aplicou as migrações pendentes
			logrus.Info("Migrações aplicadas.")
			return nil
		}
		n, err := storage.RunMigrations(db.DB.DB, migrate.Down)
		if err != nil {
			return err
		}
		logrus.Infof("%d migrações desfeitas.", n)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "assetledger.yaml", "arquivo de configuração YAML")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "desfaz todas as migrações")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Driver == config.StoragePostgres {
		db, err := storage.NewDB(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("falha ao conectar ao banco de dados e aplicar migrações: %w", err)
		}
		return db, nil
	}
	return storage.NewMemoryStore(), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	programID, err := solana.PublicKeyFromBase58(cfg.Solana.ProgramID)
	if err != nil {
		return fmt.Errorf("program_id inválido: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deriver := services.NewAddressDeriver(programID)
	gateway := services.NewTransactionGateway(store, deriver, services.Policy{
		StrictAuthorization: cfg.Policy.StrictAuthorization,
		RejectZeroAmount:    cfg.Policy.RejectZeroAmount,
		FundEscrowOnMint:    cfg.Policy.FundEscrowOnMint,
	})

	if cfg.Solana.Listener {
		// Inicia o listener da blockchain em uma goroutine separada
		listener := blockchain_listener.NewBlockchainListener(cfg.Solana.RPCURL, cfg.Solana.WSURL, programID,
			services.NewMirrorGateway(store, deriver))
		go func() {
			if err := listener.StartListening(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.Errorf("Listener da blockchain encerrado: %v", err)
			}
		}()
		logrus.Info("Listener da blockchain iniciado.")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(gateway),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Servidor backend rodando em %s (armazenamento: %s)...", cfg.HTTPAddr, cfg.Storage.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Encerrando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
