package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryKeyDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryKeyDirectory()

	if _, ok, _ := d.Get(ctx, "alice"); ok {
		t.Fatal("empty directory returned a key")
	}

	if err := d.Set(ctx, "alice", "key-1"); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(ctx, "alice", "key-2"); err != nil {
		t.Fatal(err)
	}
	if key, ok, _ := d.Get(ctx, "alice"); !ok || key != "key-2" {
		t.Errorf("Get = %q, %v; want key-2", key, ok)
	}

	if err := d.Remove(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := d.Get(ctx, "alice"); ok {
		t.Error("key still present after Remove")
	}
}

func TestMemoryKeyDirectoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryKeyDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i%5)
			_ = d.Set(ctx, user, fmt.Sprintf("key-%d", i))
			_, _, _ = d.Get(ctx, user)
			if i%3 == 0 {
				_ = d.Remove(ctx, user)
			}
		}(i)
	}
	wg.Wait()
}
