package compiler

import (
	"strings"
	"testing"
)

func TestGenerateKeyShape(t *testing.T) {
	s := NewState(DefaultOptions(), "templates/page.twig")
	a, b := s.GenerateKey(), s.GenerateKey()
	if a == b {
		t.Fatalf("keys repeat: %q", a)
	}
	for _, k := range []string{a, b} {
		if len(k) != DefaultKeyLength {
			t.Fatalf("key %q has length %d", k, len(k))
		}
		if strings.ContainsAny(k, "\"&\\") {
			t.Fatalf("key %q holds a reserved character", k)
		}
		for i := 0; i < len(k); i++ {
			if k[i] < 0x21 || k[i] > 0x7e {
				t.Fatalf("key %q holds a non-printable byte", k)
			}
		}
	}
}

func TestGenerateKeyIsStablePerPath(t *testing.T) {
	first := NewState(DefaultOptions(), "templates/page.twig")
	again := NewState(DefaultOptions(), "templates/page.twig")
	other := NewState(DefaultOptions(), "templates/other.twig")

	var ka, kb, ko []string
	for range 5 {
		ka = append(ka, first.GenerateKey())
		kb = append(kb, again.GenerateKey())
		ko = append(ko, other.GenerateKey())
	}
	if strings.Join(ka, ",") != strings.Join(kb, ",") {
		t.Fatalf("same path gave different keys: %v vs %v", ka, kb)
	}
	if strings.Join(ka, ",") == strings.Join(ko, ",") {
		t.Fatalf("different paths gave the same keys: %v", ka)
	}
}

func TestGenerateKeyLengthOption(t *testing.T) {
	opts := DefaultOptions()
	opts.KeyLength = 12
	if k := NewState(opts, "x").GenerateKey(); len(k) != 12 {
		t.Fatalf("key %q, want 12 chars", k)
	}
}

func TestKeyAlphabet(t *testing.T) {
	if len(keyAlphabet) != 91 {
		t.Fatalf("alphabet has %d symbols", len(keyAlphabet))
	}
}
