package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	faucet "github.com/TheAlpha16/faucet-go"
)

func newSendCmd() *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Publish an instruction on the configured transport",
	}
	sendCmd.AddCommand(instructionCmds(func(cmd *cobra.Command, ix faucet.Instruction) error {
		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := newLogger(cfg.Log.Level)

		transport, err := newTransport(cfg, faucet.WithLogger(logger))
		if err != nil {
			return err
		}
		defer transport.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := transport.Publish(ctx, faucet.Pack(ix)); err != nil {
			return err
		}
		logger.Info().Stringer("kind", ix.Kind()).Str("transport", cfg.Transport.Kind).Msg("instruction sent")
		return nil
	})...)
	return sendCmd
}
