package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	faucet "github.com/TheAlpha16/faucet-go"
)

// instructionCmds builds the init, mint and close subcommands shared by
// encode and send. run receives the instruction built from flags.
func instructionCmds(run func(cmd *cobra.Command, ix faucet.Instruction) error) []*cobra.Command {
	var (
		admin      string
		initAmount uint64
		mintAmount uint64
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "InitFaucet with an optional admin and a per-call limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ix := faucet.InitFaucet{Admin: faucet.NoKey(), Amount: initAmount}
			if admin != "" {
				pk, err := faucet.ParsePublicKey(admin)
				if err != nil {
					return err
				}
				ix.Admin = faucet.SomeKey(pk)
			}
			return run(cmd, ix)
		},
	}
	initCmd.Flags().StringVar(&admin, "admin", "", "admin public key (hex)")
	initCmd.Flags().Uint64Var(&initAmount, "amount", 0, "per-call mint limit for non-admins")
	initCmd.MarkFlagRequired("amount")

	mintCmd := &cobra.Command{
		Use:   "mint",
		Short: "MintTokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, faucet.MintTokens{Amount: mintAmount})
		},
	}
	mintCmd.Flags().Uint64Var(&mintAmount, "amount", 0, "tokens to mint")
	mintCmd.MarkFlagRequired("amount")

	closeCmd := &cobra.Command{
		Use:   "close",
		Short: "CloseFaucet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, faucet.CloseFaucet{})
		},
	}

	return []*cobra.Command{initCmd, mintCmd, closeCmd}
}

func describe(ix faucet.Instruction) string {
	switch v := ix.(type) {
	case faucet.InitFaucet:
		return fmt.Sprintf("InitFaucet admin=%s amount=%d", v.Admin, v.Amount)
	case faucet.MintTokens:
		return fmt.Sprintf("MintTokens amount=%d", v.Amount)
	case faucet.CloseFaucet:
		return "CloseFaucet"
	default:
		return fmt.Sprintf("unknown instruction %T", ix)
	}
}
