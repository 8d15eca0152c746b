package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRPCCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rpc <method> [params-json]",
		Short: "Call any JSON-RPC method",
		Long: `Call a JSON-RPC method on the server named by --rpc-url. The optional
second argument is the params object, for example:

  swapd rpc swap_entry '{"swap_id":"..."}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params interface{}
			if len(args) == 2 {
				var raw json.RawMessage
				if err := json.Unmarshal([]byte(args[1]), &raw); err != nil {
					return fmt.Errorf("invalid params JSON: %w", err)
				}
				params = raw
			}
			return callAndPrint(cmd, root, args[0], params)
		},
	}
}
