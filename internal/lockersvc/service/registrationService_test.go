package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widmerroger/cardlock/internal/comm"
	"github.com/widmerroger/cardlock/internal/lockersvc/store"
)

type fakeGateway struct {
	cards chan string
	err   error
}

func (f *fakeGateway) RequestScan(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	select {
	case card := <-f.cards:
		return card, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type fakeArmer struct {
	armed chan string
}

func (f *fakeArmer) Arm(appName string) {
	f.armed <- appName
}

type fakeNotifier struct {
	events chan comm.UIEvent
}

func (f *fakeNotifier) Notify(ev comm.UIEvent) {
	f.events <- ev
}

func newRegistrationFixture(t *testing.T) (*RegistrationService, *RegistryService, *fakeGateway, *fakeArmer, *fakeNotifier) {
	t.Helper()

	registry := NewRegistryService(store.NewFileStore(filepath.Join(t.TempDir(), "rfid_pairs.csv")))
	gateway := &fakeGateway{cards: make(chan string, 4)}
	armer := &fakeArmer{armed: make(chan string, 4)}
	notifier := &fakeNotifier{events: make(chan comm.UIEvent, 4)}

	svc := NewRegistrationService(context.Background(), registry, gateway, armer, notifier)
	return svc, registry, gateway, armer, notifier
}

func TestRegister_EmptyNameFailsValidation(t *testing.T) {
	svc, _, _, _, _ := newRegistrationFixture(t)

	err := svc.Register(context.Background(), "   ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRegister_PersistsPairingAndArmsSupervision(t *testing.T) {
	svc, registry, gateway, armer, notifier := newRegistrationFixture(t)
	ctx := context.Background()

	gateway.cards <- "111"
	require.NoError(t, svc.Register(ctx, "A"))

	assert.Equal(t, "a", waitFor(t, armer.armed))

	registered, err := registry.IsRegistered(ctx, "A")
	require.NoError(t, err)
	assert.True(t, registered)

	cardID, found, err := registry.FindCardFor(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "111", cardID)

	ev := waitFor(t, notifier.events)
	assert.Equal(t, "dialog", ev.Type)
	assert.Equal(t, "info", ev.Level)
}

func TestRegister_DuplicateRejectedRegardlessOfCard(t *testing.T) {
	svc, _, gateway, armer, _ := newRegistrationFixture(t)
	ctx := context.Background()

	gateway.cards <- "111"
	require.NoError(t, svc.Register(ctx, "A"))
	waitFor(t, armer.armed)

	err := svc.Register(ctx, "A")
	require.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestRegister_EmptyScanIsFailure(t *testing.T) {
	svc, registry, gateway, _, notifier := newRegistrationFixture(t)
	ctx := context.Background()

	gateway.cards <- ""
	require.NoError(t, svc.Register(ctx, "A"))

	ev := waitFor(t, notifier.events)
	assert.Equal(t, "error", ev.Level)
	assert.Equal(t, ErrScanFailure.Error(), ev.Message)

	registered, err := registry.IsRegistered(ctx, "A")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestRegister_ScanTimeoutSurfaced(t *testing.T) {
	svc, _, gateway, _, notifier := newRegistrationFixture(t)

	gateway.err = context.DeadlineExceeded
	require.NoError(t, svc.Register(context.Background(), "A"))

	ev := waitFor(t, notifier.events)
	assert.Equal(t, "error", ev.Level)
	assert.Equal(t, ErrScanTimeout.Error(), ev.Message)
}

func TestRemove_ReportsWhetherFound(t *testing.T) {
	svc, _, gateway, armer, _ := newRegistrationFixture(t)
	ctx := context.Background()

	gateway.cards <- "111"
	require.NoError(t, svc.Register(ctx, "A"))
	waitFor(t, armer.armed)

	found, err := svc.Remove(ctx, "A")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = svc.Remove(ctx, "A")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = svc.Remove(ctx, "")
	require.ErrorIs(t, err, ErrValidation)
}

// concurrent registrations must pair scans with waiters in order; here the
// fake gateway feeds each wait from a shared FIFO the way the dispatcher does
func TestRegister_ConcurrentRegistrationsDoNotCrossAssign(t *testing.T) {
	svc, registry, gateway, armer, _ := newRegistrationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "A"))
	gateway.cards <- "s1"
	assert.Equal(t, "a", waitFor(t, armer.armed))

	require.NoError(t, svc.Register(ctx, "B"))
	gateway.cards <- "s2"
	assert.Equal(t, "b", waitFor(t, armer.armed))

	cardA, _, err := registry.FindCardFor(ctx, "A")
	require.NoError(t, err)
	cardB, _, err := registry.FindCardFor(ctx, "B")
	require.NoError(t, err)

	assert.Equal(t, "s1", cardA)
	assert.Equal(t, "s2", cardB)
}

func waitFor[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async registration step")
		panic("unreachable")
	}
}
