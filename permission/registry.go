package permission

import (
	"errors"
	"sync"
)

// Registry maps role names to bit positions within a [Mask64].
type Registry struct {
	mu        sync.RWMutex
	nameToBit map[Role]int
	bitToName map[int]Role
	frozen    bool
}

// NewRegistry creates a registry with roles registered in order.
func NewRegistry(roles ...Role) (*Registry, error) {
	r := &Registry{
		nameToBit: make(map[Role]int),
		bitToName: make(map[int]Role),
	}
	for _, role := range roles {
		if _, err := r.Register(role); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a frozen registry of [KnownRoles].
func DefaultRegistry() *Registry {
	r, err := NewRegistry(KnownRoles...)
	if err != nil {
		panic("permission: default registry: " + err.Error())
	}
	r.Freeze()
	return r
}

// Register assigns the next available bit to role. Must be called before
// [Registry.Freeze].
func (r *Registry) Register(role Role) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, errors.New("registry frozen")
	}

	if role == "" {
		return -1, errors.New("role name cannot be empty")
	}

	if _, exists := r.nameToBit[role]; exists {
		return -1, errors.New("role already registered")
	}

	nextBit := len(r.nameToBit)
	if nextBit >= 64 {
		return -1, errors.New("role limit exceeded")
	}

	r.nameToBit[role] = nextBit
	r.bitToName[nextBit] = role

	return nextBit, nil
}

// Bit returns the bit index for role, or false if not registered.
func (r *Registry) Bit(role Role) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[role]
	return bit, ok
}

// Name returns the role for the given bit index, or false if unassigned.
func (r *Registry) Name(bit int) (Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.bitToName[bit]
	return name, ok
}

// Mask compiles roles into a mask. Unregistered roles are an error.
func (r *Registry) Mask(roles []Role) (Mask64, error) {
	var m Mask64
	for _, role := range roles {
		bit, ok := r.Bit(role)
		if !ok {
			return 0, errors.New("role not registered: " + string(role))
		}
		m.Set(bit)
	}
	return m, nil
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered roles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToBit)
}
