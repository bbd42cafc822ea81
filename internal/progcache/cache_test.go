// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package progcache

import (
	"errors"
	"reflect"
	"testing"
)

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](0, nil)

	calls := 0
	create := func() (int, error) {
		calls++
		return 42, nil
	}
	for range 3 {
		v, err := c.GetOrCreate("blur", create)
		if err != nil || v != 42 {
			t.Fatalf("GetOrCreate() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Len != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestGetOrCreateError(t *testing.T) {
	c := New[string, int](0, nil)
	bad := errors.New("compile failed")

	if _, err := c.GetOrCreate("x", func() (int, error) { return 0, bad }); !errors.Is(err, bad) {
		t.Fatalf("GetOrCreate() error = %v, want %v", err, bad)
	}
	if c.Len() != 0 {
		t.Errorf("failed create was cached")
	}
}

func TestEvictionOrder(t *testing.T) {
	var released []int
	c := New[int, string](2, func(k int, _ string) { released = append(released, k) })

	mk := func(s string) func() (string, error) { return func() (string, error) { return s, nil } }
	_, _ = c.GetOrCreate(1, mk("a"))
	_, _ = c.GetOrCreate(2, mk("b"))
	if _, ok := c.Get(1); !ok {
		t.Fatal("Get(1) missed")
	}
	_, _ = c.GetOrCreate(3, mk("c"))

	if !reflect.DeepEqual(released, []int{2}) {
		t.Errorf("released = %v, want [2]", released)
	}
	if _, ok := c.Get(2); ok {
		t.Error("evicted key still present")
	}

	c.Clear()
	if !reflect.DeepEqual(released, []int{2, 1, 3}) {
		t.Errorf("released after Clear = %v, want [2 1 3]", released)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
}

func TestDelete(t *testing.T) {
	n := 0
	c := New[int, int](0, func(int, int) { n++ })
	_, _ = c.GetOrCreate(7, func() (int, error) { return 1, nil })

	if !c.Delete(7) {
		t.Fatal("Delete(7) = false")
	}
	if c.Delete(7) {
		t.Error("second Delete(7) = true")
	}
	if n != 1 {
		t.Errorf("release called %d times, want 1", n)
	}
}
