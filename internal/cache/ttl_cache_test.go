package cache_test

import (
	"testing"
	"time"

	"smartrecover.dev/engine/internal/cache"
	"smartrecover.dev/engine/internal/domain"
)

func TestGetMissOnExpiry(t *testing.T) {
	c := cache.New(10 * time.Millisecond)
	c.Put("INC001", domain.AgentData{})

	if _, ok := c.Get("INC001"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("INC001"); ok {
		t.Fatalf("expected miss after expiry")
	}
	// second read confirms the entry was actually removed, not just masked
	if _, ok := c.Get("INC001"); ok {
		t.Fatalf("expected expired entry to have been deleted")
	}
}

func TestInvalidate(t *testing.T) {
	c := cache.New(time.Minute)
	c.Put("INC002", domain.AgentData{})
	c.Invalidate("INC002")
	if _, ok := c.Get("INC002"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := cache.New(time.Minute)
	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		go func(n int) {
			c.Put("INC", domain.AgentData{})
			c.Get("INC")
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 50; i++ {
		<-done
	}
}
