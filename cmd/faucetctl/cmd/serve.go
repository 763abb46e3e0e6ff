package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	faucet "github.com/TheAlpha16/faucet-go"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an in-memory faucet fed by the configured transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger(cfg.Log.Level)

			accts, err := cfg.Faucet.Accounts()
			if err != nil {
				return err
			}

			opts := []faucet.Option{
				faucet.WithLogger(logger),
				faucet.WithMsgBufferSize(cfg.Dispatcher.BufferSize),
				faucet.WithOnError(func(ctx context.Context, data []byte, err error) {
					logger.Error().Err(err).Hex("payload", data).Msg("instruction rejected")
				}),
			}

			transport, err := newTransport(cfg, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info().
				Str("transport", cfg.Transport.Kind).
				Stringer("destination", accts.Destination).
				Stringer("signer", accts.Signer).
				Msg("faucet serving")
			return serveFaucet(ctx, transport, accts, logger, opts...)
		},
	}
}

// serveFaucet runs a faucet on transport until ctx is done. It owns
// transport and closes it on every return path.
func serveFaucet(ctx context.Context, transport faucet.Transport, accts faucet.Accounts, logger zerolog.Logger, opts ...faucet.Option) error {
	f := faucet.NewFaucet()
	d := faucet.NewDispatcher(transport, opts...)
	if err := f.Register(d, accts); err != nil {
		transport.Close()
		return err
	}

	if err := d.Start(ctx); err != nil {
		transport.Close()
		return err
	}

	<-ctx.Done()

	logger.Info().
		Uint64("minted", f.Balance(accts.Destination)).
		Bool("closed", f.Closed()).
		Msg("shutting down")
	return d.Shutdown()
}
