package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/storage"
)

func item(id, size string, qty int, price float64) domain.LineItem {
	return domain.LineItem{ProductID: id, Name: "Tee " + id, Price: price, Size: size, Quantity: qty, Category: "tshirts"}
}

// failingKV refuses every write.
type failingKV struct{ *storage.Memory }

func (failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestAdd_MergesSameKey(t *testing.T) {
	s := cart.New(storage.NewMemory())
	for _, q := range []int{1, 2, 3, 4} {
		s.Add(item("A", "M", q, 50))
	}
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].Quantity)
}

func TestAdd_DifferentSizeIsDifferentLine(t *testing.T) {
	s := cart.New(storage.NewMemory())
	s.Add(item("A", "M", 1, 50))
	s.Add(item("A", "L", 1, 50))
	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "M", items[0].Size)
	assert.Equal(t, "L", items[1].Size)
}

func TestAdd_NonPositiveQuantityCountsAsOne(t *testing.T) {
	s := cart.New(storage.NewMemory())
	s.Add(item("A", "M", 0, 50))
	assert.Equal(t, 1, s.Count())
}

func TestRemoveThenAdd_NoResidue(t *testing.T) {
	s := cart.New(storage.NewMemory())
	s.Add(item("A", "M", 7, 50))
	s.Remove("A", "M")
	s.Add(item("A", "M", 1, 50))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestSetQuantity(t *testing.T) {
	s := cart.New(storage.NewMemory())
	s.Add(item("A", "M", 1, 50))
	s.Add(item("B", "S", 1, 20))

	s.SetQuantity("A", "M", 4)
	got, ok := s.Find("A", "M")
	require.True(t, ok)
	assert.Equal(t, 4, got.Quantity)

	for _, q := range []int{0, -5} {
		s.Add(item("C", "XL", 2, 10))
		s.SetQuantity("C", "XL", q)
		_, ok := s.Find("C", "XL")
		assert.False(t, ok, "quantity %d should remove the line", q)
	}

	// unknown key is a no-op
	s.SetQuantity("Z", "M", 3)
	assert.Equal(t, 2, s.Lines())
}

func TestRemove_UnknownIsNoop(t *testing.T) {
	s := cart.New(storage.NewMemory())
	s.Add(item("A", "M", 1, 50))
	s.Remove("A", "L")
	assert.Equal(t, 1, s.Lines())
}

func TestClear(t *testing.T) {
	kv := storage.NewMemory()
	s := cart.New(kv)
	s.Add(item("A", "M", 1, 50))
	s.Clear()
	assert.Empty(t, s.Items())

	data, found, err := kv.Get(context.Background(), cart.StorageKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[]`, string(data))
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	s := cart.New(kv)
	s.Add(item("B", "S", 2, 20))
	s.Add(item("A", "M", 1, 50.5))
	s.Add(item("A", "L", 3, 50.5))
	want := s.Items()

	restored := cart.New(kv)
	restored.Restore(context.Background())
	assert.Equal(t, want, restored.Items())
}

func TestSnapshotFormat(t *testing.T) {
	kv := storage.NewMemory()
	s := cart.New(kv)
	s.Add(domain.LineItem{ProductID: "A", Name: "Tee", Price: 50, Size: "M", Quantity: 2, Image: "a.png", Category: "tshirts"})

	data, _, err := kv.Get(context.Background(), cart.StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"A","name":"Tee","price":50,"size":"M","quantity":2,"image":"a.png","category":"tshirts"}]`, string(data))
}

func TestRestore_MissingOrMalformed(t *testing.T) {
	ctx := context.Background()

	s := cart.New(storage.NewMemory())
	s.Restore(ctx)
	assert.Empty(t, s.Items())

	for _, raw := range []string{`not json`, `{"id":"A"}`, `null`, ``} {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(ctx, cart.StorageKey, []byte(raw)))
		s := cart.New(kv)
		s.Restore(ctx)
		assert.Empty(t, s.Items(), "snapshot %q", raw)
	}
}

func TestRestore_DropsInvalidLinesAndMergesDuplicates(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, cart.StorageKey, []byte(`[
		{"id":"A","size":"M","quantity":1,"price":10},
		{"id":"A","size":"M","quantity":2,"price":10},
		{"id":"B","size":"M","quantity":0,"price":10},
		{"id":"","size":"M","quantity":1,"price":10}
	]`)))
	s := cart.New(kv)
	s.Restore(ctx)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestWriteFailureIsNotFatal(t *testing.T) {
	s := cart.New(failingKV{storage.NewMemory()})
	s.Add(item("A", "M", 1, 50))
	s.SetQuantity("A", "M", 2)
	assert.Equal(t, 2, s.Count())
}

func TestNilKVKeepsWorking(t *testing.T) {
	s := cart.New(nil)
	s.Restore(context.Background())
	s.Add(item("A", "M", 1, 50))
	assert.Equal(t, 1, s.Count())
}

func TestOnChange(t *testing.T) {
	s := cart.New(storage.NewMemory())
	var seen [][]domain.LineItem
	s.OnChange(func(items []domain.LineItem) { seen = append(seen, items) })

	s.Add(item("A", "M", 1, 50))
	s.SetQuantity("A", "M", 3)
	s.Clear()

	require.Len(t, seen, 3)
	assert.Equal(t, 3, seen[1][0].Quantity)
	assert.Empty(t, seen[2])
}

func TestItemsReturnsCopy(t *testing.T) {
	s := cart.New(storage.NewMemory())
	s.Add(item("A", "M", 1, 50))
	items := s.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, s.Count())
}
