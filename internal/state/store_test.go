package state

import (
	"sync"
	"testing"
)

func TestStoreCreatesLazilyAndReuses(t *testing.T) {
	created := 0
	s := NewStore(func(username string) *Entry {
		created++
		return &Entry{}
	})

	a := s.For("alice")
	if a == nil {
		t.Fatal("nil entry")
	}
	if s.For("alice") != a {
		t.Fatal("second For returned a different entry")
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	s.Drop("alice")
	if s.For("alice") == a {
		t.Fatal("entry survived Drop")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(func(username string) *Entry { return &Entry{} })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e := s.For("bob")
				e.Mu.Lock()
				e.Flow = nil
				e.Mu.Unlock()
			}
		}()
	}
	wg.Wait()
}
