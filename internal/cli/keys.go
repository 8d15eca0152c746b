package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/hashlock"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/crypto"
)

// KeyInfo is printed by keygen
type KeyInfo struct {
	KeyType   string `json:"key_type"`
	Seed      string `json:"seed"`
	PublicKey string `json:"public_key"`
	Address   string `json:"address"`
}

func newKeygenCmd() *cobra.Command {
	var keyType, seedHex string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair and its account address",
		Long: `Generate a key pair. With --seed the key pair is derived from the given
hex seed; otherwise a random seed is drawn and printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kt, err := crypto.ParseKeyType(keyType)
			if err != nil {
				return err
			}

			var kp *crypto.KeyPair
			var seed []byte
			if seedHex != "" {
				seed, err = decodeHex("seed", seedHex)
				if err != nil {
					return err
				}
				kp, err = crypto.NewKeyPair(kt, seed)
			} else {
				kp, seed, err = crypto.GenerateKeyPair(kt)
			}
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), KeyInfo{
				KeyType:   kt.String(),
				Seed:      strings.ToUpper(hex.EncodeToString(seed)),
				PublicKey: strings.ToUpper(hex.EncodeToString(kp.PublicKey())),
				Address:   addresscodec.EncodeAccountID(kp.AccountID()),
			})
		},
	}

	cmd.Flags().StringVar(&keyType, "type", crypto.KeyTypeSecp256k1.String(), "key type: secp256k1 or ed25519")
	cmd.Flags().StringVar(&seedHex, "seed", "", "hex seed to derive the key pair from")
	return cmd
}

func newHashCmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   "hash <secret-hex>",
		Short: "Print the commitment of a secret",
		Long: `Print the commitment of a secret. With --check, fail unless the secret
opens the given commitment, e.g. before redeeming with a revealed secret.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := decodeHex("secret", args[0])
			if err != nil {
				return err
			}
			if check != "" {
				want, err := decodeHex("commitment", check)
				if err != nil {
					return err
				}
				if !hashlock.VerifyBytes(secret, want) {
					return fmt.Errorf("secret does not open commitment %s", check)
				}
			}
			commitment := hashlock.Commit(secret)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(commitment[:]))
			return err
		},
	}

	cmd.Flags().StringVar(&check, "check", "", "hex commitment the secret must open")
	return cmd
}

func newDeriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive <initiator> <commitment-hex>",
		Short: "Print the swap id an initiator and commitment occupy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			initiator, err := addresscodec.DecodeAddress(args[0])
			if err != nil {
				return fmt.Errorf("invalid initiator: %w", err)
			}
			raw, err := decodeHex("commitment", args[1])
			if err != nil {
				return err
			}
			if len(raw) != hashlock.CommitmentSize {
				return fmt.Errorf("commitment must be %d bytes", hashlock.CommitmentSize)
			}
			var commitment [32]byte
			copy(commitment[:], raw)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), keylet.Swap(initiator, commitment).String())
			return err
		},
	}
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%s must not be empty", field)
	}
	return b, nil
}

// loadKey derives the key pair named by a seed and key type flag
func loadKey(seedHex, keyType string) (*crypto.KeyPair, error) {
	kt, err := crypto.ParseKeyType(keyType)
	if err != nil {
		return nil, err
	}
	seed, err := decodeHex("seed", seedHex)
	if err != nil {
		return nil, err
	}
	return crypto.NewKeyPair(kt, seed)
}
