package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/hashlock"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/core/tx/swap"
	"github.com/LeJamon/goswapd/internal/crypto"
	"github.com/LeJamon/goswapd/internal/rpc"
)

// signOptions are the flags shared by the tx subcommands
type signOptions struct {
	*rootOptions
	seed     string
	keyType  string
	sequence uint32
	offline  bool
}

func (o *signOptions) register(cmd *cobra.Command, seedUsage string) {
	cmd.Flags().StringVar(&o.seed, "seed", "", seedUsage)
	cmd.Flags().StringVar(&o.keyType, "key-type", crypto.KeyTypeSecp256k1.String(), "key type of the seed")
	cmd.Flags().Uint32Var(&o.sequence, "sequence", 0, "account sequence (looked up over RPC when zero)")
	cmd.Flags().BoolVar(&o.offline, "offline", false, "print the signed envelope instead of submitting it")
}

func (o *signOptions) client() *rpc.Client {
	return rpc.NewClient(o.rpcURL, o.timeout)
}

// nextSequence resolves the sequence for address
func (o *signOptions) nextSequence(ctx context.Context, address string) (uint32, error) {
	if o.sequence != 0 {
		return o.sequence, nil
	}
	if o.offline {
		return 0, errors.New("--sequence is required with --offline")
	}
	var info struct {
		AccountData struct {
			Sequence uint32 `json:"Sequence"`
		} `json:"account_data"`
	}
	if err := o.client().Call(ctx, "account_info", map[string]string{"account": address}, &info); err != nil {
		return 0, fmt.Errorf("look up sequence: %w", err)
	}
	return info.AccountData.Sequence, nil
}

// TxOutput is printed after a submission
type TxOutput struct {
	SwapID string `json:"swap_id,omitempty"`
	*rpc.SubmitResult
}

// send signs env with keys and submits it, or prints it when offline
func (o *signOptions) send(cmd *cobra.Command, t tx.Transaction, swapID string, keys ...*crypto.KeyPair) error {
	env, err := tx.NewEnvelope(t)
	if err != nil {
		return err
	}
	for _, kp := range keys {
		env.Sign(kp)
	}
	if o.offline {
		return printJSON(cmd.OutOrStdout(), env)
	}
	res, err := o.client().Submit(cmd.Context(), env)
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), TxOutput{SwapID: swapID, SubmitResult: res}); err != nil {
		return err
	}
	if !res.Applied {
		return fmt.Errorf("transaction rejected: %s", res.EngineResult)
	}
	return nil
}

// withSubmitter sets the submitter of a permissionless transaction when a
// seed is given. It returns the keys to sign with.
func (o *signOptions) withSubmitter(cmd *cobra.Command, base *tx.BaseTx) ([]*crypto.KeyPair, error) {
	if o.seed == "" {
		return nil, nil
	}
	kp, err := loadKey(o.seed, o.keyType)
	if err != nil {
		return nil, err
	}
	address := addresscodec.EncodeAccountID(kp.AccountID())
	seq, err := o.nextSequence(cmd.Context(), address)
	if err != nil {
		return nil, err
	}
	base.Account = address
	base.SetSequence(seq)
	return []*crypto.KeyPair{kp}, nil
}

func newTxCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Build, sign and submit swap transactions",
	}
	cmd.AddCommand(
		newInitiateCmd(root),
		newRedeemCmd(root),
		newRefundCmd(root),
		newInstantRefundCmd(root),
	)
	return cmd
}

func newInitiateCmd(root *rootOptions) *cobra.Command {
	opts := &signOptions{rootOptions: root}
	var redeemer, secretHex, commitmentHex string
	var amount, expiresIn uint64

	cmd := &cobra.Command{
		Use:   "initiate",
		Short: "Lock funds for a redeemer under a commitment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.seed == "" {
				return errors.New("--seed is required")
			}
			kp, err := loadKey(opts.seed, opts.keyType)
			if err != nil {
				return err
			}

			var commitment [32]byte
			switch {
			case commitmentHex != "":
				raw, err := decodeHex("commitment", commitmentHex)
				if err != nil {
					return err
				}
				if len(raw) != hashlock.CommitmentSize {
					return fmt.Errorf("commitment must be %d bytes", hashlock.CommitmentSize)
				}
				copy(commitment[:], raw)
			case secretHex != "":
				secret, err := decodeHex("secret", secretHex)
				if err != nil {
					return err
				}
				commitment = hashlock.Commit(secret)
			default:
				return errors.New("one of --secret or --commitment is required")
			}

			initiator := kp.AccountID()
			address := addresscodec.EncodeAccountID(initiator)
			seq, err := opts.nextSequence(cmd.Context(), address)
			if err != nil {
				return err
			}

			t := swap.NewInitiate(address, redeemer, hex.EncodeToString(commitment[:]), drops.Drops(amount), expiresIn)
			t.SetSequence(seq)
			return opts.send(cmd, t, keylet.Swap(initiator, commitment).String(), kp)
		},
	}

	opts.register(cmd, "hex seed of the initiator")
	cmd.Flags().StringVar(&redeemer, "redeemer", "", "address of the redeemer")
	cmd.Flags().StringVar(&secretHex, "secret", "", "hex secret; its commitment is locked")
	cmd.Flags().StringVar(&commitmentHex, "commitment", "", "hex commitment to lock")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "principal in drops")
	cmd.Flags().Uint64Var(&expiresIn, "expires-in", 0, "ticks until the swap is refundable")
	_ = cmd.MarkFlagRequired("redeemer")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("expires-in")
	return cmd
}

func newRedeemCmd(root *rootOptions) *cobra.Command {
	opts := &signOptions{rootOptions: root}
	var swapID, redeemer, secretHex string

	cmd := &cobra.Command{
		Use:   "redeem",
		Short: "Reveal the secret and pay a swap to its redeemer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := decodeHex("secret", secretHex); err != nil {
				return err
			}
			t := swap.NewRedeem("", swapID, redeemer, secretHex)
			keys, err := opts.withSubmitter(cmd, &t.BaseTx)
			if err != nil {
				return err
			}
			return opts.send(cmd, t, swapID, keys...)
		},
	}

	opts.register(cmd, "optional hex seed of the submitter")
	cmd.Flags().StringVar(&swapID, "swap-id", "", "hex swap id")
	cmd.Flags().StringVar(&redeemer, "redeemer", "", "address of the recorded redeemer")
	cmd.Flags().StringVar(&secretHex, "secret", "", "hex secret")
	_ = cmd.MarkFlagRequired("swap-id")
	_ = cmd.MarkFlagRequired("redeemer")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func newRefundCmd(root *rootOptions) *cobra.Command {
	opts := &signOptions{rootOptions: root}
	var swapID, initiator string

	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Return an expired swap to its initiator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := swap.NewRefund("", swapID, initiator)
			keys, err := opts.withSubmitter(cmd, &t.BaseTx)
			if err != nil {
				return err
			}
			return opts.send(cmd, t, swapID, keys...)
		},
	}

	opts.register(cmd, "optional hex seed of the submitter")
	cmd.Flags().StringVar(&swapID, "swap-id", "", "hex swap id")
	cmd.Flags().StringVar(&initiator, "initiator", "", "address of the recorded initiator")
	_ = cmd.MarkFlagRequired("swap-id")
	_ = cmd.MarkFlagRequired("initiator")
	return cmd
}

func newInstantRefundCmd(root *rootOptions) *cobra.Command {
	opts := &signOptions{rootOptions: root}
	var swapID, initiator string

	cmd := &cobra.Command{
		Use:   "instant-refund",
		Short: "Return a swap to its initiator with the redeemer's consent",
		Long: `Return a swap to its initiator before expiry. The transaction is signed
with --seed, which must be the redeemer's key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.seed == "" {
				return errors.New("--seed is required")
			}
			kp, err := loadKey(opts.seed, opts.keyType)
			if err != nil {
				return err
			}
			redeemer := addresscodec.EncodeAccountID(kp.AccountID())
			t := swap.NewInstantRefund("", swapID, initiator, redeemer)
			return opts.send(cmd, t, swapID, kp)
		},
	}

	opts.register(cmd, "hex seed of the redeemer")
	cmd.Flags().StringVar(&swapID, "swap-id", "", "hex swap id")
	cmd.Flags().StringVar(&initiator, "initiator", "", "address of the recorded initiator")
	_ = cmd.MarkFlagRequired("swap-id")
	_ = cmd.MarkFlagRequired("initiator")
	return cmd
}
