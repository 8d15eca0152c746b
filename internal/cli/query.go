package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goswapd/internal/rpc"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read swaps, accounts and notifications over RPC",
	}
	cmd.AddCommand(
		newQuerySwapCmd(root),
		newQueryAccountCmd(root),
		newQueryEventsCmd(root),
		newQueryTxCmd(root),
	)
	return cmd
}

// callAndPrint runs method and prints the raw result object
func callAndPrint(cmd *cobra.Command, root *rootOptions, method string, params interface{}) error {
	var out json.RawMessage
	if err := rpc.NewClient(root.rpcURL, root.timeout).Call(cmd.Context(), method, params, &out); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func newQuerySwapCmd(root *rootOptions) *cobra.Command {
	var initiator, commitment string

	cmd := &cobra.Command{
		Use:   "swap [swap-id]",
		Short: "Show a swap record",
		Long: `Show a swap record by id, or by --initiator and --commitment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]string{}
			switch {
			case len(args) == 1:
				params["swap_id"] = strings.ToLower(args[0])
			case initiator != "" && commitment != "":
				params["initiator"] = initiator
				params["commitment"] = strings.ToLower(commitment)
			default:
				return fmt.Errorf("provide a swap id, or --initiator and --commitment")
			}
			return callAndPrint(cmd, root, "swap_entry", params)
		},
	}

	cmd.Flags().StringVar(&initiator, "initiator", "", "initiator address")
	cmd.Flags().StringVar(&commitment, "commitment", "", "hex commitment")
	return cmd
}

func newQueryAccountCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "account <address>",
		Short: "Show an account balance and sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(cmd, root, "account_info", map[string]string{"account": args[0]})
		},
	}
}

func newQueryEventsCmd(root *rootOptions) *cobra.Command {
	var swapID, account, typ string
	var marker int64
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List journaled swap notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{}
			if swapID != "" {
				params["swap_id"] = strings.ToLower(swapID)
			}
			if account != "" {
				params["account"] = account
			}
			if typ != "" {
				params["type"] = typ
			}
			if marker > 0 {
				params["marker"] = marker
			}
			if limit > 0 {
				params["limit"] = limit
			}
			return callAndPrint(cmd, root, "swap_events", params)
		},
	}

	cmd.Flags().StringVar(&swapID, "swap-id", "", "only events of this swap")
	cmd.Flags().StringVar(&account, "account", "", "only events naming this account")
	cmd.Flags().StringVar(&typ, "type", "", "initiated, redeemed, refunded or instant_refunded")
	cmd.Flags().Int64Var(&marker, "marker", 0, "resume after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events")
	return cmd
}

func newQueryTxCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <hash>",
		Short: "Show an applied transaction from the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(cmd, root, "tx", map[string]string{"transaction": args[0]})
		},
	}
}
