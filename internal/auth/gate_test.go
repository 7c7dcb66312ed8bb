package auth

import "testing"

func TestGate_RoleOf(t *testing.T) {
	gate := NewGate([]string{"alice"}, []string{"bob"})

	t.Run("PrimaryMember", func(t *testing.T) {
		if got := gate.RoleOf("alice"); got != RolePrimary {
			t.Errorf("Expected primary, got %q", got)
		}
	})

	t.Run("SecondaryMember", func(t *testing.T) {
		if got := gate.RoleOf("bob"); got != RoleSecondary {
			t.Errorf("Expected secondary, got %q", got)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if got := gate.RoleOf("mallory"); got != RoleNone {
			t.Errorf("Expected no role, got %q", got)
		}
	})

	t.Run("EmptyUID", func(t *testing.T) {
		if gate.IsAuthorized("") {
			t.Error("Empty uid should never be authorized")
		}
	})

	t.Run("PrimaryWinsWhenOnBothLists", func(t *testing.T) {
		both := NewGate([]string{"carol"}, []string{"carol"})
		if got := both.RoleOf("carol"); got != RolePrimary {
			t.Errorf("Expected primary, got %q", got)
		}
	})
}

func TestGate_Can(t *testing.T) {
	gate := NewGate([]string{"alice"}, []string{"bob"})

	t.Run("PrimaryCanDelete", func(t *testing.T) {
		if !gate.Can("alice", ActionDelete) {
			t.Error("Primary admin should be able to delete")
		}
	})

	t.Run("SecondaryCannotDelete", func(t *testing.T) {
		if gate.Can("bob", ActionDelete) {
			t.Error("Secondary admin should not be able to delete")
		}
	})

	t.Run("SecondaryCanWrite", func(t *testing.T) {
		for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate} {
			if !gate.Can("bob", action) {
				t.Errorf("Secondary admin should be able to %s", action)
			}
		}
	})

	t.Run("UnknownCanNothing", func(t *testing.T) {
		for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
			if gate.Can("mallory", action) {
				t.Errorf("Unknown uid should not be able to %s", action)
			}
		}
	})
}

func TestGate_GrantRevoke(t *testing.T) {
	gate := NewGate(nil, nil)

	if gate.IsAuthorized("dave") {
		t.Fatal("dave should start unauthorized")
	}

	gate.Grant("dave", RoleSecondary)
	if got := gate.RoleOf("dave"); got != RoleSecondary {
		t.Fatalf("Expected secondary after grant, got %q", got)
	}

	gate.Grant("dave", RolePrimary)
	if !gate.Can("dave", ActionDelete) {
		t.Error("Promoted admin should be able to delete")
	}

	gate.Revoke("dave")
	if gate.IsAuthorized("dave") {
		t.Error("dave should be unauthorized after revoke")
	}

	// Grant with no role or uid is a no-op
	gate.Grant("", RolePrimary)
	gate.Grant("eve", RoleNone)
	if gate.IsAuthorized("eve") {
		t.Error("Grant with empty role should not authorize")
	}
}

func TestGate_CanUseAI(t *testing.T) {
	gate := NewGate([]string{"alice"}, []string{"bob"})

	if !gate.CanUseAI("alice") || !gate.CanUseAI("bob") {
		t.Error("Both tiers should reach the suggestion provider")
	}
	if gate.CanUseAI("mallory") {
		t.Error("Unknown uid should not reach the suggestion provider")
	}
}
