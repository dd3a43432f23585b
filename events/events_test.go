package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/cryptocurrency/errors"
	"github.com/mezonai/cryptocurrency/jsonx"
	"github.com/mezonai/cryptocurrency/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []LedgerEvent
	closed bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(ctx context.Context, event LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func testWallet(b byte, name string, balance uint64) *types.Wallet {
	var pk types.PublicKey
	pk[0] = b
	return types.NewWallet(pk, name, uint256.NewInt(balance))
}

func TestEventBus_SubscribePublishUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	id, ch := bus.Subscribe()
	assert.Equal(t, 1, bus.GetTotalSubscriptions())
	assert.True(t, bus.HasSubscriber(id))

	event := NewWalletCreated(1, "hash-1", testWallet(1, "Alice", 100))
	bus.Publish(event)

	select {
	case got := <-ch:
		assert.Equal(t, EventWalletCreated, got.Type())
		assert.Equal(t, "hash-1", got.OpHash())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	assert.Equal(t, 0, bus.GetTotalSubscriptions())
	_, open := <-ch
	assert.False(t, open)
}

func TestEventBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewEventBus()
	_, ch := bus.Subscribe()
	for i := 0; i < cap(ch)+10; i++ {
		bus.Publish(NewWalletCreated(uint64(i), "h", testWallet(1, "A", 1)))
	}
	assert.Len(t, ch, cap(ch))
}

func TestEventRouter_DeliversToSinkAndFlushesOnClose(t *testing.T) {
	sink := &recordingSink{}
	router := NewEventRouter(NewEventBus(), sink)

	router.Publish(NewWalletCreated(1, "a", testWallet(1, "Alice", 100)))
	router.Publish(NewTransferCommitted(2, "b", testWallet(1, "", 0).PubKey, 30, 7,
		[]*types.Wallet{testWallet(1, "Alice", 70), testWallet(2, "Bob", 130)}))

	require.NoError(t, router.Close())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.True(t, sink.closed)
	require.Len(t, sink.events, 2)
	assert.Equal(t, "a", sink.events[0].OpHash())
	assert.Equal(t, EventTransferCommitted, sink.events[1].Type())
}

func TestEventRouter_NilSinkAndNilRouter(t *testing.T) {
	var nilRouter *EventRouter
	nilRouter.Publish(NewWalletCreated(1, "a", testWallet(1, "A", 1)))

	router := NewEventRouter(NewEventBus(), nil)
	router.Publish(NewWalletCreated(1, "a", testWallet(1, "A", 1)))
	assert.NoError(t, router.Close())
}

func TestEncodeEvent(t *testing.T) {
	op := types.NewTransferOp(testWallet(1, "", 0).PubKey, testWallet(1, "", 0).PubKey, 5, 0)
	rejected := NewOperationRejected(3, op, errors.ErrSenderSameAsReceiver)

	key, body, err := encodeEvent(rejected)
	require.NoError(t, err)
	assert.Equal(t, []byte(op.Hash()), key)

	var decoded map[string]any
	require.NoError(t, jsonx.Unmarshal(body, &decoded))
	assert.Equal(t, float64(errors.CodeSenderSameAsReceiver), decoded["code"])
	assert.Equal(t, "transfer", decoded["kind"])
	assert.Equal(t, op.Author.String(), decoded["author"])

	created := NewWalletCreated(1, "h", testWallet(2, "Bob", 100))
	_, body, err = encodeEvent(created)
	require.NoError(t, err)
	require.NoError(t, jsonx.Unmarshal(body, &decoded))
	wallets := decoded["wallets"].([]any)
	require.Len(t, wallets, 1)
	assert.Equal(t, "Bob", wallets[0].(map[string]any)["name"])
	assert.Equal(t, float64(100), wallets[0].(map[string]any)["balance"])
}

func TestSinkNames(t *testing.T) {
	k := NewKafkaSink([]string{"localhost:9092"}, "ledger-events")
	assert.Equal(t, "kafka:ledger-events", k.Name())
	assert.NoError(t, k.Close())
}
