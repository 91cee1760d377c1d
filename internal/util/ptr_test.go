package util

import "testing"

func TestPtr(t *testing.T) {
	p := Ptr(int64(42))
	if *p != 42 {
		t.Errorf("Ptr() = %d, want 42", *p)
	}

	q := Ptr(int64(42))
	if p == q {
		t.Error("Ptr() returned the same pointer twice")
	}
}
