package sorder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/idwrap"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/logger/mocklogger"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/orderstore"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/service/sorder"
)

type fixture struct {
	ctx     context.Context
	service sorder.OrderService
	store   *orderstore.Store
	handler *mocklogger.MockHandler
	listID  idwrap.IDWrap
}

func newFixture(t *testing.T, items []ordering.Item) fixture {
	t.Helper()

	ctx := context.Background()
	store, err := orderstore.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger, handler := mocklogger.NewMockLogger()
	service := sorder.New(store, ordering.NewItemEngine(ordering.DefaultConfig()), logger)

	list, err := service.Import(ctx, "fixture", items)
	require.NoError(t, err)

	return fixture{ctx: ctx, service: service, store: store, handler: handler, listID: list.ID}
}

func keys(items []ordering.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestOrderService_Reorder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []ordering.Item{
		ordering.NewItem("a", 0),
		ordering.NewItem("b", 1),
		ordering.NewItem("c", 2),
		ordering.NewUnorderedItem("d"),
	})

	result, err := f.service.Reorder(f.ctx, f.listID, []ordering.Item{ordering.NewItem("c", 0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b", "d"}, keys(result))

	stored, err := f.service.Items(f.ctx, f.listID)
	require.NoError(t, err)
	assert.Equal(t, keys(result), keys(stored))
	for i := range stored {
		assert.Equal(t, result[i].OrderValue(), stored[i].OrderValue())
	}

	assert.Contains(t, f.handler.Messages(), "ordering operation persisted")
	assert.Contains(t, f.handler.Messages(), "repaired order values")
}

func TestOrderService_ReorderFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []ordering.Item{ordering.NewItem("a", 0), ordering.NewItem("b", 1)})

	_, err := f.service.Reorder(f.ctx, f.listID, []ordering.Item{ordering.NewItem("a", 9)})
	require.ErrorIs(t, err, ordering.ErrOrderOutOfRange)

	stored, err := f.service.Items(f.ctx, f.listID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys(stored))
	assert.Contains(t, f.handler.Messages(), "ordering operation failed")
}

func TestOrderService_Move(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []ordering.Item{
		ordering.NewItem("a", 0),
		ordering.NewItem("b", 1),
		ordering.NewItem("c", 2),
	})

	result, err := f.service.Move(f.ctx, f.listID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, keys(result))

	stored, err := f.service.Items(f.ctx, f.listID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, keys(stored))
}

func TestOrderService_RepairAndInspect(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []ordering.Item{
		ordering.NewItem("a", 4),
		ordering.NewItem("b", 4),
		ordering.NewUnorderedItem("c"),
	})

	report, err := f.service.Inspect(f.ctx, f.listID)
	require.NoError(t, err)
	assert.False(t, report.Healthy())
	assert.Equal(t, []string{"c"}, report.EmptyKeys)

	_, err = f.service.Repair(f.ctx, f.listID, ordering.WithRefreshSequence(true))
	require.NoError(t, err)

	report, err = f.service.Inspect(f.ctx, f.listID)
	require.NoError(t, err)
	assert.True(t, report.Healthy())
	assert.True(t, report.ZeroBased)
}

func TestOrderService_Append(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []ordering.Item{ordering.NewItem("a", 3), ordering.NewItem("b", 8)})

	item, err := f.service.Append(f.ctx, f.listID, "c")
	require.NoError(t, err)
	assert.Equal(t, 9, item.OrderValue())

	stored, err := f.service.Items(f.ctx, f.listID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys(stored))
}

func TestOrderService_AppendDuplicate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []ordering.Item{ordering.NewItem("a", 0), ordering.NewItem("b", 1)})

	_, err := f.service.Append(f.ctx, f.listID, "a")
	require.ErrorIs(t, err, orderstore.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "append list "+f.listID.String())
	assert.Contains(t, f.handler.Messages(), "ordering operation failed")

	_, err = f.service.Append(f.ctx, f.listID, "")
	require.ErrorIs(t, err, ordering.ErrInvalidItem)

	stored, err := f.service.Items(f.ctx, f.listID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys(stored))
}

func TestOrderService_ImportInvalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []ordering.Item{ordering.NewItem("a", 0)})

	_, err := f.service.Import(f.ctx, "broken", []ordering.Item{ordering.NewItem("", 0)})
	require.ErrorIs(t, err, ordering.ErrInvalidItem)
	assert.Contains(t, err.Error(), "import list broken")
	assert.Contains(t, f.handler.Messages(), "ordering operation failed")
}

func TestOrderService_UnknownList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []ordering.Item{ordering.NewItem("a", 0)})

	_, err := f.service.Reorder(f.ctx, idwrap.NewNow(), nil)
	assert.ErrorIs(t, err, orderstore.ErrListNotFound)

	_, err = f.service.Items(f.ctx, idwrap.NewNow())
	assert.ErrorIs(t, err, orderstore.ErrListNotFound)
}
