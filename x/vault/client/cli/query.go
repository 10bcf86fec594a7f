package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
)

// GetQueryCmd returns the cli query commands for the vault module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "vault",
		Short:                      "Querying commands for the vault module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryVault(),
		CmdQueryPosition(),
		CmdQueryBidPosition(),
		CmdQueryRefund(),
	)

	return cmd
}

// CmdQueryVault returns the command to query a deposit ledger
func CmdQueryVault() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [vault-id]",
		Short: "Query a vault's sub-pool balances and round state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Vault query for ID: %s requires running node connection\n", args[0])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryPosition returns the command to query a receipt's record
func CmdQueryPosition() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position [vault-id] [receipt-id]",
		Short: "Query the share record a deposit receipt is entitled to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Position query for receipt %s in vault %s requires running node connection\n", args[1], args[0])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryBidPosition returns the command to query a bid receipt
func CmdQueryBidPosition() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bid-position [vault-id] [receipt-id]",
		Short: "Query a bid receipt's share and estimated payoff",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Bid position query for receipt %s in vault %s requires running node connection\n", args[1], args[0])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryRefund returns the command to query a pending refund
func CmdQueryRefund() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refund [address] [denom]",
		Short: "Query an address's pending refund",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Refund query for %s (%s) requires running node connection\n", args[0], args[1])
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
