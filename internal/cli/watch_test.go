package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/events"
	swapgrpc "github.com/LeJamon/goswapd/internal/grpc"
	jtx "github.com/LeJamon/goswapd/internal/testing"
	"github.com/LeJamon/goswapd/internal/testing/swap"
)

func TestWatch(t *testing.T) {
	alice, bob := jtx.NewAccount("alice"), jtx.NewAccount("bob")
	gs, err := swapgrpc.NewServer(swapgrpc.DefaultServerConfig(), nil, nil)
	require.NoError(t, err)
	env := jtx.NewTestEnvWithConfig(t, jtx.FundedConfig(alice, bob), gs)
	env.Register(alice, bob)
	gs.SetLedgerService(env.Service())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- gs.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-served)
	})

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := run(t, "watch", "--grpc-addr", ln.Addr().String(),
			"--account", bob.Address, "--type", "initiated,redeemed", "--count", "2")
		done <- result{out, err}
	}()
	require.Eventually(t, func() bool { return gs.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	secret := swap.NewSecret("watch")
	id := swap.ID(alice, secret)
	jtx.RequireTxSuccess(t, env.Submit(swap.Initiate(alice, bob, secret, jtx.Units(3)).Build(), alice))
	jtx.RequireTxSuccess(t, env.Submit(swap.Redeem(id, bob, secret).Build()))

	var res result
	select {
	case res = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not exit")
	}
	require.NoError(t, res.err)

	var got []events.Event
	sc := bufio.NewScanner(strings.NewReader(res.out))
	for sc.Scan() {
		var ev events.Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	assert.Equal(t, events.TypeInitiated, got[0].Type)
	assert.Equal(t, events.TypeRedeemed, got[1].Type)
	assert.Equal(t, id, got[1].SwapID)
}

func TestWatchUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = run(t, "watch", "--grpc-addr", addr, "--count", "1")
	require.Error(t, err)
}
