package cli

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
	"github.com/LeJamon/goswapd/internal/storage/database/memory"
)

// StateFixture represents state.json, the ledger a replay starts from
type StateFixture struct {
	Tick        uint64         `json:"tick"`
	SwapDeposit *uint64        `json:"swap_deposit,omitempty"`
	Accounts    []StateAccount `json:"accounts"`
}

// StateAccount is one funded account of the pre-state
type StateAccount struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// TxsFixture represents txs.json, the envelopes to apply in order
type TxsFixture struct {
	Transactions []TxEntry `json:"transactions"`
}

// TxEntry is one envelope. Advance ticks the clock before it is applied.
// Consecutive Batch entries are applied concurrently as one group; an entry
// with Advance starts a new group.
type TxEntry struct {
	Advance  uint64      `json:"advance,omitempty"`
	Batch    bool        `json:"batch,omitempty"`
	Envelope tx.Envelope `json:"envelope"`
}

// ExpectedFixture represents expected.json, the optional expected outcome
type ExpectedFixture struct {
	Results  []string          `json:"results"`
	Balances map[string]uint64 `json:"balances,omitempty"`
}

// TxApplyInfo stores the outcome of one replayed envelope
type TxApplyInfo struct {
	Index    int            `json:"index"`
	Tick     uint64         `json:"tick"`
	Hash     string         `json:"hash"`
	TxType   string         `json:"tx_type,omitempty"`
	Result   string         `json:"result"`
	Message  string         `json:"message,omitempty"`
	Applied  bool           `json:"applied"`
	Expected string         `json:"expected,omitempty"`
	Events   []events.Event `json:"events,omitempty"`
}

// ReplayResult contains the results of the replay
type ReplayResult struct {
	Success   bool          `json:"success"`
	FinalTick uint64        `json:"final_tick"`
	Errors    []string      `json:"errors,omitempty"`
	TxResults []TxApplyInfo `json:"transactions"`
	Duration  time.Duration `json:"duration"`
}

func newReplayCmd() *cobra.Command {
	var output string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "replay <fixture-dir>",
		Short: "Replay signed envelopes against an in-memory ledger",
		Long: `Replay loads the pre-state from state.json and applies the envelopes in
txs.json in order on a fresh in-memory ledger. Runs of entries marked
"batch" are applied concurrently and must not touch the same account or
swap. When expected.json is
present the engine results and final balances are compared against it.
Envelopes are signed over their exact tx bytes, so txs.json must carry
them as printed by "swapd tx ... --offline" without reformatting.

Example:
    swapd replay ./fixtures/atomic_swap
    swapd replay ./fixtures/atomic_swap -v -o result.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, txs, expected, err := loadFixtures(args[0])
			if err != nil {
				return fmt.Errorf("failed to load fixtures: %w", err)
			}

			result, err := executeReplay(cmd.Context(), state, txs, expected)
			if err != nil {
				return fmt.Errorf("replay execution failed: %w", err)
			}

			printReplayResult(cmd.OutOrStdout(), result, verbose)
			if output != "" {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			if !result.Success {
				return errors.New("replay did not match expected results")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write results as JSON to this file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the notifications of every transaction")
	return cmd
}

func loadFixtures(dir string) (*StateFixture, *TxsFixture, *ExpectedFixture, error) {
	var state StateFixture
	if err := readFixture(filepath.Join(dir, "state.json"), &state); err != nil {
		return nil, nil, nil, err
	}
	var txs TxsFixture
	if err := readFixture(filepath.Join(dir, "txs.json"), &txs); err != nil {
		return nil, nil, nil, err
	}

	var expected *ExpectedFixture
	path := filepath.Join(dir, "expected.json")
	if _, err := os.Stat(path); err == nil {
		expected = &ExpectedFixture{}
		if err := readFixture(path, expected); err != nil {
			return nil, nil, nil, err
		}
		if len(expected.Results) != 0 && len(expected.Results) != len(txs.Transactions) {
			return nil, nil, nil, fmt.Errorf("expected.json lists %d results for %d transactions",
				len(expected.Results), len(txs.Transactions))
		}
	}
	return &state, &txs, expected, nil
}

func readFixture(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func executeReplay(ctx context.Context, state *StateFixture, txs *TxsFixture, expected *ExpectedFixture) (*ReplayResult, error) {
	start := time.Now()

	cfg := service.DefaultConfig()
	if state.SwapDeposit != nil {
		cfg.SwapDeposit = drops.Drops(*state.SwapDeposit)
	}
	cfg.Genesis.Tick = state.Tick
	for _, a := range state.Accounts {
		cfg.Genesis.Accounts = append(cfg.Genesis.Accounts, service.GenesisAccount{
			Address: a.Address,
			Balance: drops.Drops(a.Balance),
		})
	}

	svc, err := service.New(ctx, memory.NewDB(), cfg, events.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, err
	}

	result := &ReplayResult{Success: true}
	record := func(i int, entry *TxEntry, res tx.ApplyResult) {
		info := TxApplyInfo{
			Index:   i,
			Tick:    svc.CurrentTick(),
			Hash:    hex.EncodeToString(res.TxHash[:]),
			Result:  res.Result.String(),
			Message: res.Message,
			Applied: res.Applied,
			Events:  res.Events,
		}
		if t, err := entry.Envelope.Decode(); err == nil {
			info.TxType = t.TxType().String()
		}
		if expected != nil && len(expected.Results) > 0 {
			info.Expected = expected.Results[i]
			if info.Expected != info.Result {
				result.Success = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("transaction %d: got %s, expected %s", i, info.Result, info.Expected))
			}
		}
		result.TxResults = append(result.TxResults, info)
	}

	for i := 0; i < len(txs.Transactions); {
		entry := &txs.Transactions[i]
		if entry.Advance > 0 {
			if _, err := svc.Advance(ctx, entry.Advance); err != nil {
				return nil, fmt.Errorf("transaction %d: %w", i, err)
			}
		}

		group := batchGroup(txs.Transactions, i)
		if len(group) == 1 {
			record(i, entry, svc.Submit(ctx, group[0]))
		} else {
			for k, res := range svc.SubmitBatch(ctx, group) {
				record(i+k, &txs.Transactions[i+k], res)
			}
		}
		i += len(group)
	}

	if expected != nil {
		for address, want := range expected.Balances {
			var got uint64
			root, err := svc.Account(ctx, address)
			switch {
			case errors.Is(err, service.ErrAccountNotFound):
			case err != nil:
				return nil, err
			default:
				got = uint64(root.Balance)
			}
			if got != want {
				result.Success = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("balance of %s: got %d, expected %d", address, got, want))
			}
		}
	}

	result.FinalTick = svc.CurrentTick()
	result.Duration = time.Since(start)
	return result, nil
}

// batchGroup returns the envelopes applied together starting at entries[i].
func batchGroup(entries []TxEntry, i int) []*tx.Envelope {
	group := []*tx.Envelope{&entries[i].Envelope}
	if !entries[i].Batch {
		return group
	}
	for j := i + 1; j < len(entries) && entries[j].Batch && entries[j].Advance == 0; j++ {
		group = append(group, &entries[j].Envelope)
	}
	return group
}

func printReplayResult(w io.Writer, result *ReplayResult, verbose bool) {
	fmt.Fprintln(w, "================================================================================")
	fmt.Fprintln(w, "                              Swap Ledger Replay")
	fmt.Fprintln(w, "================================================================================")
	for _, info := range result.TxResults {
		mark := "ok"
		if info.Expected != "" && info.Expected != info.Result {
			mark = "MISMATCH"
		}
		fmt.Fprintf(w, "[%3d] tick=%d %-20s %-22s %s\n", info.Index, info.Tick, info.TxType, info.Result, mark)
		if verbose {
			for _, ev := range info.Events {
				fmt.Fprintf(w, "        %s swap=%s payout=%s\n", ev.Type, ev.SwapID, ev.Payout)
			}
		}
	}
	fmt.Fprintln(w)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "ERROR: %s\n", e)
	}
	status := "PASS"
	if !result.Success {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s: %d transactions, final tick %d, %s\n",
		status, len(result.TxResults), result.FinalTick, result.Duration.Round(time.Microsecond))
}
