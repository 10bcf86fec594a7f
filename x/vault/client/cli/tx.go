package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/options-vault/x/vault/types"
)

// GetTxCmd returns the transaction commands for the vault module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "vault",
		Short:                      "Vault module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdCreateVault(),
		CmdDeposit(),
		CmdUnsubscribe(),
		CmdClaim(),
		CmdHarvest(),
		CmdActivate(),
		CmdSettle(),
		CmdNewBid(),
		CmdExercise(),
	)

	return cmd
}

// CmdCreateVault returns the command to create a vault
func CmdCreateVault() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-vault [vault-id] [deposit-denom] [bid-denom] [fee-bp]",
		Short: "Create a deposit ledger with its paired bid ledger",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			feeBP, err := strconv.ParseUint(args[3], 10, 64)
			if err != nil {
				return err
			}
			msg := &types.MsgCreateVault{
				Manager:      clientCtx.GetFromAddress().String(),
				VaultID:      args[0],
				DepositDenom: args[1],
				BidDenom:     args[2],
				FeeBP:        feeBP,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdDeposit returns the command to deposit into a vault
func CmdDeposit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit [vault-id] [amount] [receipt-ids]",
		Short: "Deposit funds into a vault's warmup pool",
		Long: `Deposit funds into a vault's warmup pool.

Any presented receipts are merged into the one returned by the deposit.

Examples:
  ovaultd tx vault deposit eth-weekly-put 1000000 "" --from alice
  ovaultd tx vault deposit eth-weekly-put 500000 id1,id2 --from alice`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			msg := &types.MsgDeposit{
				Depositor:  clientCtx.GetFromAddress().String(),
				VaultID:    args[0],
				Amount:     args[1],
				ReceiptIDs: splitIDs(args, 2),
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdUnsubscribe returns the command to move shares out of the strategy
func CmdUnsubscribe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unsubscribe [vault-id] [receipt-ids] [amount]",
		Short: "Move active shares into the deactivating pool",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			amount := ""
			if len(args) > 2 {
				amount = args[2]
			}
			msg := &types.MsgUnsubscribe{
				Holder:     clientCtx.GetFromAddress().String(),
				VaultID:    args[0],
				ReceiptIDs: strings.Split(args[1], ","),
				Amount:     amount,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaim returns the command to claim inactive funds
func CmdClaim() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim [vault-id] [receipt-ids]",
		Short: "Withdraw inactive funds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			msg := &types.MsgClaim{
				Holder:     clientCtx.GetFromAddress().String(),
				VaultID:    args[0],
				ReceiptIDs: strings.Split(args[1], ","),
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdHarvest returns the command to harvest premium
func CmdHarvest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest [vault-id] [receipt-ids]",
		Short: "Withdraw earned premium, net of fees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			msg := &types.MsgHarvest{
				Holder:     clientCtx.GetFromAddress().String(),
				VaultID:    args[0],
				ReceiptIDs: strings.Split(args[1], ","),
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdActivate returns the manager command to start a round
func CmdActivate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate [vault-id] [denom] [has-next]",
		Short: "Activate the warmup pool for the next round",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			hasNext, err := strconv.ParseBool(args[2])
			if err != nil {
				return err
			}
			msg := &types.MsgActivate{
				Manager: clientCtx.GetFromAddress().String(),
				VaultID: args[0],
				Denom:   args[1],
				HasNext: hasNext,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSettle returns the manager command to settle a round
func CmdSettle() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle [vault-id] [share-price] [decimals]",
		Short: "Settle the round at the realized share price",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			decimals, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return err
			}
			msg := &types.MsgSettle{
				Manager:    clientCtx.GetFromAddress().String(),
				VaultID:    args[0],
				SharePrice: args[1],
				Decimals:   decimals,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdNewBid returns the manager command to record an auction winner
func CmdNewBid() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new-bid [vault-id] [share]",
		Short: "Record an auction winner's payoff claim",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			msg := &types.MsgNewBid{
				Bidder:  clientCtx.GetFromAddress().String(),
				VaultID: args[0],
				Share:   args[1],
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdExercise returns the command to exercise bid receipts
func CmdExercise() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise [vault-id] [receipt-ids]",
		Short: "Exercise bid receipts against the settled payoff pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}
			msg := &types.MsgExercise{
				Bidder:     clientCtx.GetFromAddress().String(),
				VaultID:    args[0],
				ReceiptIDs: strings.Split(args[1], ","),
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// splitIDs parses an optional comma-separated receipt list argument.
func splitIDs(args []string, i int) []string {
	if len(args) <= i || args[i] == "" {
		return nil
	}
	return strings.Split(args[i], ",")
}
