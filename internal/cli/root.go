// Package cli implements the swapd command line.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	configFile string
	quiet      bool
	rpcURL     string
	timeout    time.Duration
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "swapd",
		Short: "swapd - hash time locked atomic swaps on a standalone ledger",
		Long: `swapd runs a standalone ledger of native balances with hash time locked
swap escrows. Each swap locks an amount for a redeemer under a SHA-256
commitment; revealing the secret before expiry pays the redeemer, and
after expiry the initiator can take the funds back.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "conf", "", "configuration file path")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress output to console after startup")
	flags.StringVar(&opts.rpcURL, "rpc-url", "http://127.0.0.1:5005", "JSON-RPC endpoint used by client commands")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "client request timeout")

	server := newServerCmd(opts)
	cmd.AddCommand(
		server,
		newVersionCmd(),
		newKeygenCmd(),
		newHashCmd(),
		newDeriveCmd(),
		newTxCmd(opts),
		newQueryCmd(opts),
		newRPCCmd(opts),
		newConfigCmd(),
		newReplayCmd(),
		newWatchCmd(),
	)

	// server is the default action
	cmd.RunE = server.RunE
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
