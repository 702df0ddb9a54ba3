package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"closestguess/internal/app"
	"closestguess/internal/config"
	"closestguess/internal/state"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			authorityKey, err := cfg.AuthorityKey()
			if err != nil {
				return err
			}

			db, err := state.OpenDB(cfg.DataDir(), cfg.DBBackend)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			a, err := app.New(db, cfg.Authority, authorityKey, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			srv, err := server.NewServer(cfg.Addr, cfg.Transport, a)
			if err != nil {
				return fmt.Errorf("create abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()

			logger.Info("abci server listening", "addr", cfg.Addr, "transport", cfg.Transport, "home", cfg.Home)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				logger.Info("shutting down", "signal", sig.String())
			case <-cmd.Context().Done():
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("addr", "tcp://127.0.0.1:26658", "ABCI listen address")
	f.String("transport", "socket", "ABCI transport (socket|grpc)")
	f.String("authority", "", "round authority identity (required for a fresh home)")
	f.String("authority-pubkey", "", "hex ed25519 public key pinned for the authority (required for a fresh home)")
	f.String("db-backend", "goleveldb", "state database backend (goleveldb|memdb)")
	f.String("log-level", "info", "log level (debug|info|warn|error)")
	f.Bool("log-json", false, "emit JSON logs")

	_ = v.BindPFlag("addr", f.Lookup("addr"))
	_ = v.BindPFlag("transport", f.Lookup("transport"))
	_ = v.BindPFlag("authority", f.Lookup("authority"))
	_ = v.BindPFlag("authority_pubkey", f.Lookup("authority-pubkey"))
	_ = v.BindPFlag("db_backend", f.Lookup("db-backend"))
	_ = v.BindPFlag("log_level", f.Lookup("log-level"))
	_ = v.BindPFlag("log_json", f.Lookup("log-json"))
	return cmd
}
