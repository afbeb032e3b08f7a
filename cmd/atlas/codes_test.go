package main

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenCodeStoreAtSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "codes.db")

	store, err := openCodeStoreAt(context.Background(), path, true)
	if err != nil {
		t.Fatalf("openCodeStoreAt failed: %v", err)
	}
	defer store.Close()

	entry, err := store.Lookup(context.Background(), "k0553")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entry == nil {
		t.Fatal("seeded store should know K0553")
	}
	if !entry.RequiresKX {
		t.Error("K0553 should require the KX modifier")
	}
	if len(entry.ExclusiveWith) != 3 {
		t.Errorf("K0553 exclusions = %v, want the three itemized supply codes", entry.ExclusiveWith)
	}
}

func TestOpenCodeStoreAtWithoutSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.db")

	store, err := openCodeStoreAt(context.Background(), path, false)
	if err != nil {
		t.Fatalf("openCodeStoreAt failed: %v", err)
	}
	defer store.Close()

	entry, err := store.Lookup(context.Background(), "K0553")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entry != nil {
		t.Error("unseeded store should not know any codes")
	}
}

func TestCodeStoreByLCD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.db")

	store, err := openCodeStoreAt(context.Background(), path, true)
	if err != nil {
		t.Fatalf("openCodeStoreAt failed: %v", err)
	}
	defer store.Close()

	entries, err := store.ByLCD(context.Background(), "L33822")
	if err != nil {
		t.Fatalf("ByLCD failed: %v", err)
	}
	// E2102 is adjunctive and carries no LCD.
	if len(entries) != 6 {
		t.Errorf("got %d codes under L33822, want 6", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Code >= entries[i].Code {
			t.Errorf("entries not sorted by code: %s before %s", entries[i-1].Code, entries[i].Code)
		}
	}
}

func TestCodeStoreSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.db")

	store, err := openCodeStoreAt(context.Background(), path, true)
	if err != nil {
		t.Fatalf("openCodeStoreAt failed: %v", err)
	}
	defer store.Close()

	entries, err := store.Search(context.Background(), "receiver", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(entries) < 3 {
		t.Errorf("search for %q returned %d entries, want at least the receiver codes", "receiver", len(entries))
	}
}

func TestCodesCommandRegistered(t *testing.T) {
	if codesCmd.Use != "codes" {
		t.Errorf("codesCmd.Use = %q, want %q", codesCmd.Use, "codes")
	}

	subs := map[string]bool{}
	for _, sub := range codesCmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, want := range []string{"lookup", "search", "by-lcd"} {
		if !subs[want] {
			t.Errorf("codes command missing %q subcommand", want)
		}
	}

	if codesCmd.PersistentFlags().Lookup("db") == nil {
		t.Error("codes command should define --db")
	}
}
