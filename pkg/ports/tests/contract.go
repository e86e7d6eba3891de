package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/spherecal/pkg/ports"
)

// ConfigStoreContractTest is a reusable suite verifying that an adapter
// complies with ports.ConfigStore. The open function must return a fresh store
// over the same backing document each time it is called, so the suite can
// check durability across instances.
func ConfigStoreContractTest(t *testing.T, open func() ports.ConfigStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_MissingKey", func(t *testing.T) {
		s := open()
		if err := s.Load(ctx); err != nil {
			t.Fatalf("unexpected load error on empty backing: %v", err)
		}
		if _, ok := s.Get("roi_circ"); ok {
			t.Error("expected missing key, got a value")
		}
	})

	t.Run("Add_StagesBeforeWrite", func(t *testing.T) {
		s := open()
		if err := s.Load(ctx); err != nil {
			t.Fatalf("load: %v", err)
		}
		s.Add("vfov", 45.0)
		v, ok := s.Get("vfov")
		if !ok {
			t.Fatal("staged value not visible through Get")
		}
		if got := asFloat(v); got != 45.0 {
			t.Errorf("staged value mismatch: got %v", v)
		}
	})

	t.Run("Write_PersistsBatch", func(t *testing.T) {
		s := open()
		if err := s.Load(ctx); err != nil {
			t.Fatalf("load: %v", err)
		}
		s.Add("roi_circ", []any{10, 20, 30, 40, 50, 60})
		s.Add("roi_ignr", []any{[]any{1, 2, 3, 4, 5, 6}})
		s.Add("c2a_src", "ext")
		s.Add("c2a_r", []any{0.0, 0.0, 0.0})
		if err := s.Write(ctx); err != nil {
			t.Fatalf("write: %v", err)
		}

		fresh := open()
		if err := fresh.Load(ctx); err != nil {
			t.Fatalf("reload: %v", err)
		}
		wantInts(t, fresh, "roi_circ", []int64{10, 20, 30, 40, 50, 60})

		nested, ok := fresh.Get("roi_ignr")
		if !ok {
			t.Fatal("roi_ignr missing after reload")
		}
		outer, ok := nested.([]any)
		if !ok || len(outer) != 1 {
			t.Fatalf("roi_ignr shape mismatch: %#v", nested)
		}

		src, ok := fresh.Get("c2a_src")
		if !ok || fmt.Sprint(src) != "ext" {
			t.Errorf("c2a_src mismatch: %v (found=%v)", src, ok)
		}
	})

	t.Run("Write_OverwritesValue", func(t *testing.T) {
		s := open()
		if err := s.Load(ctx); err != nil {
			t.Fatalf("load: %v", err)
		}
		s.Add("c2a_src", "c2a_cnrs_xy")
		if err := s.Write(ctx); err != nil {
			t.Fatalf("first write: %v", err)
		}

		s2 := open()
		if err := s2.Load(ctx); err != nil {
			t.Fatalf("reload: %v", err)
		}
		s2.Add("c2a_src", "c2a_cnrs_yz")
		if err := s2.Write(ctx); err != nil {
			t.Fatalf("second write: %v", err)
		}

		fresh := open()
		if err := fresh.Load(ctx); err != nil {
			t.Fatalf("final reload: %v", err)
		}
		v, ok := fresh.Get("c2a_src")
		if !ok || fmt.Sprint(v) != "c2a_cnrs_yz" {
			t.Errorf("overwrite lost: got %v (found=%v)", v, ok)
		}
	})

	t.Run("Write_PreservesOtherKeys", func(t *testing.T) {
		s := open()
		if err := s.Load(ctx); err != nil {
			t.Fatalf("load: %v", err)
		}
		s.Add("src_fn", "sample.mp4")
		if err := s.Write(ctx); err != nil {
			t.Fatalf("seed write: %v", err)
		}

		s2 := open()
		if err := s2.Load(ctx); err != nil {
			t.Fatalf("reload: %v", err)
		}
		s2.Add("c2a_t", []any{1.5, 2.5, 3.5})
		if err := s2.Write(ctx); err != nil {
			t.Fatalf("second write: %v", err)
		}

		fresh := open()
		if err := fresh.Load(ctx); err != nil {
			t.Fatalf("final reload: %v", err)
		}
		if _, ok := fresh.Get("src_fn"); !ok {
			t.Error("earlier key lost by later batch write")
		}
		if _, ok := fresh.Get("c2a_t"); !ok {
			t.Error("later key missing")
		}
	})
}

// wantInts asserts that a stored value decodes to the expected integer list,
// tolerating the numeric representations different codecs produce.
func wantInts(t *testing.T, s ports.ConfigStore, key string, want []int64) {
	t.Helper()

	raw, ok := s.Get(key)
	if !ok {
		t.Fatalf("%s missing", key)
	}
	list, ok := raw.([]any)
	if !ok {
		t.Fatalf("%s is not a list: %#v", key, raw)
	}
	if len(list) != len(want) {
		t.Fatalf("%s length mismatch: got %d want %d", key, len(list), len(want))
	}
	for i, v := range list {
		if got := asInt64(v); got != want[i] {
			t.Errorf("%s[%d] = %v, want %d", key, i, v, want[i])
		}
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case uint64:
		return int64(n)
	}
	return -1 << 62
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return -1e308
}
