package store

import (
	"sync"
	"testing"

	"github.com/tillworks/tillcast/internal/domain/sale"
)

func TestGetOrCreateReturnsSameStore(t *testing.T) {
	reg := NewRegistry()

	a := reg.GetOrCreate("shopA")
	b := reg.GetOrCreate("shopA")
	if a != b {
		t.Fatal("expected the same store for the same token")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 tenant, got %d", reg.Len())
	}
}

func TestTenantIsolation(t *testing.T) {
	reg := NewRegistry()

	reg.GetOrCreate("shopA").AppendTransaction(sale.Transaction{ID: "a1", Amount: 50})

	if got := len(reg.GetOrCreate("shopB").Transactions()); got != 0 {
		t.Fatalf("shopB observed %d of shopA's records", got)
	}
	if got := len(reg.GetOrCreate("shopA").Transactions()); got != 1 {
		t.Fatalf("expected shopA to keep its record, got %d", got)
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	stores := make([]*Tenant, 50)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = reg.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(stores); i++ {
		if stores[i] != stores[0] {
			t.Fatal("concurrent GetOrCreate returned distinct stores")
		}
	}
}
