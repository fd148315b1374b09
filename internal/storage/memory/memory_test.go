package memory

import (
	"context"
	"testing"
)

func TestStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := []byte("abc")
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	in[0] = 'z'

	out, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(out) != "abc" {
		t.Errorf("expected abc, got %s", out)
	}

	out[0] = 'y'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value was mutated through Get result: %s", again)
	}

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Error("expected missing key")
	}
}
