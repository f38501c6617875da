package identity

import (
	"testing"
)

func TestSetDedupesAndTrims(t *testing.T) {
	set := NewSet(" a ", "b", "a", "", "b")

	if set.Len() != 2 {
		t.Fatalf("expected 2 ids, got %d", set.Len())
	}
	if !set.Contains("a") || !set.Contains("b") {
		t.Error("expected set to contain a and b")
	}
	if set.Contains("") {
		t.Error("expected empty id to be dropped")
	}
}

func TestSetContainsAll(t *testing.T) {
	set := NewSet("a", "b", "c")

	if !set.ContainsAll([]string{"a", "c"}) {
		t.Error("expected subset to be contained")
	}
	if !set.ContainsAll(nil) {
		t.Error("expected empty list to be contained")
	}
	if set.ContainsAll([]string{"a", "d"}) {
		t.Error("expected unknown id to fail containment")
	}
}

func TestSignRoundTrip(t *testing.T) {
	signer := NewSigner("test-key")
	set := NewSet("person-1", "email-2", "house-3")

	sig := signer.Sign(set)
	if sig == "" {
		t.Fatal("expected a signature")
	}
	if !signer.Verify(set, sig) {
		t.Error("expected signature to verify")
	}
}

func TestSignOrderIndependent(t *testing.T) {
	signer := NewSigner("test-key")

	a := signer.Sign(NewSet("x", "y", "z"))
	b := signer.Sign(NewSet("z", "x", "y"))
	c := signer.Sign(NewSet("y", "y", "z", "x"))

	if a != b || a != c {
		t.Error("expected signature to be independent of order and duplicates")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	signer := NewSigner("test-key")
	set := NewSet("person-1", "house-2")
	sig := signer.Sign(set)

	t.Run("added id", func(t *testing.T) {
		if signer.Verify(set.Add("person-3"), sig) {
			t.Error("expected verification to fail for a widened set")
		}
	})

	t.Run("removed id", func(t *testing.T) {
		if signer.Verify(NewSet("person-1"), sig) {
			t.Error("expected verification to fail for a narrowed set")
		}
	})

	t.Run("garbage signature", func(t *testing.T) {
		if signer.Verify(set, "not-base64!!!") {
			t.Error("expected verification to fail for a malformed signature")
		}
		if signer.Verify(set, "") {
			t.Error("expected verification to fail for an empty signature")
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewSigner("other-key")
		if other.Verify(set, sig) {
			t.Error("expected verification to fail under a different key")
		}
	})
}
