package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	faucet "github.com/TheAlpha16/faucet-go"
)

func newEncodeCmd() *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the hex encoding of an instruction",
	}
	encodeCmd.AddCommand(instructionCmds(func(cmd *cobra.Command, ix faucet.Instruction) error {
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(faucet.Pack(ix)))
		return nil
	})...)
	return encodeCmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a hex encoded instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
			if err != nil {
				return fmt.Errorf("decode hex: %w", err)
			}
			ix, err := faucet.Unpack(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(ix))
			return nil
		},
	}
}
