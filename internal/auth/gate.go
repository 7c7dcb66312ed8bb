package auth

import (
	"sync"
)

// Role is an operator's admin tier.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleNone      Role = ""
)

// Action is a gated content operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Gate decides whether an authenticated operator may perform content
// operations. Membership comes from the configured allow-lists; Grant
// adds session-scoped entries on top (promotions take effect without a
// restart and vanish with the process).
//
// Deletes are restricted to primary admins. Everything else is open to
// both tiers.
type Gate struct {
	mu        sync.RWMutex
	primary   map[string]struct{}
	secondary map[string]struct{}
}

// NewGate builds a gate from the configured allow-lists.
func NewGate(primaryUIDs, secondaryUIDs []string) *Gate {
	g := &Gate{
		primary:   make(map[string]struct{}, len(primaryUIDs)),
		secondary: make(map[string]struct{}, len(secondaryUIDs)),
	}
	for _, uid := range primaryUIDs {
		if uid != "" {
			g.primary[uid] = struct{}{}
		}
	}
	for _, uid := range secondaryUIDs {
		if uid != "" {
			g.secondary[uid] = struct{}{}
		}
	}
	return g
}

// IsAuthorized reports whether the uid is on either allow-list.
func (g *Gate) IsAuthorized(uid string) bool {
	return g.RoleOf(uid) != RoleNone
}

// RoleOf returns the operator's tier. Primary membership wins when a uid
// is on both lists.
func (g *Gate) RoleOf(uid string) Role {
	if uid == "" {
		return RoleNone
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.primary[uid]; ok {
		return RolePrimary
	}
	if _, ok := g.secondary[uid]; ok {
		return RoleSecondary
	}
	return RoleNone
}

// Can reports whether the uid may perform the action.
func (g *Gate) Can(uid string, action Action) bool {
	switch g.RoleOf(uid) {
	case RolePrimary:
		return true
	case RoleSecondary:
		return action != ActionDelete
	default:
		return false
	}
}

// CanUseAI reports whether the uid may call the suggestion provider.
// Both tiers may; the gate exists so unauthenticated callers never reach
// the model.
func (g *Gate) CanUseAI(uid string) bool {
	return g.IsAuthorized(uid)
}

// Grant adds a session-scoped allow-list entry.
func (g *Gate) Grant(uid string, role Role) {
	if uid == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch role {
	case RolePrimary:
		g.primary[uid] = struct{}{}
	case RoleSecondary:
		g.secondary[uid] = struct{}{}
	}
}

// Revoke removes a uid from both tiers.
func (g *Gate) Revoke(uid string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.primary, uid)
	delete(g.secondary, uid)
}
