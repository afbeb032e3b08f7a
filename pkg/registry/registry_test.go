package registry

import (
	"errors"
	"testing"

	"backwork/atlas/pkg/schema"
)

func testBundle(id string) *schema.PolicyBundle {
	return &schema.PolicyBundle{
		ID:      id,
		Title:   "test bundle " + id,
		Version: "1.0.0",
		Criteria: []*schema.CriterionDefinition{
			{
				ID:         "written-order",
				Name:       "detailed written order",
				Kind:       schema.KindPresence,
				Required:   true,
				Parameters: schema.Parameters{Fact: "written_order"},
			},
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewBundleRegistry()

	if err := r.Register(testBundle("L33822")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	bundle, ok := r.Get("L33822")
	if !ok {
		t.Fatal("expected bundle to be found")
	}
	if bundle.ID != "L33822" {
		t.Errorf("expected L33822, got %s", bundle.ID)
	}

	if _, ok := r.Get("L99999"); ok {
		t.Error("expected miss for unregistered policy id")
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	r := NewBundleRegistry()

	if err := r.Register(nil); err == nil {
		t.Error("expected error for nil bundle")
	}

	if err := r.Register(&schema.PolicyBundle{}); err == nil {
		t.Error("expected error for empty policy id")
	}
}

func TestRegistryReplaceIsAtomic(t *testing.T) {
	r := NewBundleRegistry()

	if err := r.Register(testBundle("L33822")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(testBundle("L11111")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := r.Replace([]*schema.PolicyBundle{testBundle("L55555")}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if r.Count() != 1 {
		t.Errorf("expected 1 bundle after replace, got %d", r.Count())
	}
	if r.Has("L33822") {
		t.Error("expected old bundle to be gone after replace")
	}
	if !r.Has("L55555") {
		t.Error("expected new bundle after replace")
	}
}

func TestRegistryReplaceRejectsInvalidSet(t *testing.T) {
	r := NewBundleRegistry()
	if err := r.Register(testBundle("L33822")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := r.Replace([]*schema.PolicyBundle{testBundle("L55555"), nil}); err == nil {
		t.Fatal("expected error for nil bundle in set")
	}

	// The failed replace must not touch the existing set.
	if !r.Has("L33822") {
		t.Error("expected existing bundle to survive a failed replace")
	}
}

func TestRegistryVersionChangesOnMutation(t *testing.T) {
	r := NewBundleRegistry()

	if err := r.Register(testBundle("L33822")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	v1 := r.Version()
	if v1 == "" {
		t.Fatal("expected non-empty version")
	}

	if err := r.Register(testBundle("L11111")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	v2 := r.Version()
	if v2 == v1 {
		t.Error("expected version to change after register")
	}

	if err := r.Unregister("L11111"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if r.Version() == v2 {
		t.Error("expected version to change after unregister")
	}
}

func TestRegistryUnregisterMissing(t *testing.T) {
	r := NewBundleRegistry()

	err := r.Unregister("L99999")
	if err == nil {
		t.Fatal("expected error for unknown policy id")
	}

	var re *RegistryError
	if !errors.As(err, &re) {
		t.Fatalf("expected RegistryError, got %T", err)
	}
	if re.PolicyID != "L99999" {
		t.Errorf("expected policy id in error, got %q", re.PolicyID)
	}
}

func TestRegistryPolicyIDsSorted(t *testing.T) {
	r := NewBundleRegistry()
	for _, id := range []string{"L33822", "L11111", "L55555"} {
		if err := r.Register(testBundle(id)); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	ids := r.PolicyIDs()
	expected := []string{"L11111", "L33822", "L55555"}
	if len(ids) != len(expected) {
		t.Fatalf("expected %d ids, got %d", len(expected), len(ids))
	}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Errorf("position %d: expected %s, got %s", i, expected[i], ids[i])
		}
	}
}
