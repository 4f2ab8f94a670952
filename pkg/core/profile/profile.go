// Package profile holds vehicle profile identities and the registry used
// to resolve stored profile names back to profile objects at load time.
// Traversal semantics (speeds, access rules) are not part of this module;
// a profile is identified by its name only.
package profile

import (
	"errors"
	"fmt"
)

// ErrUnknownProfile is returned when a stored profile name has no entry in
// the registry.
var ErrUnknownProfile = errors.New("unknown vehicle profile")

// Profile is a named traversal policy.
type Profile struct {
	Name string
}

// Registry maps profile names to profiles.
type Registry struct {
	byName map[string]Profile
}

// NewRegistry returns a registry pre-populated with profiles of the given
// names.
func NewRegistry(names ...string) *Registry {
	r := &Registry{byName: make(map[string]Profile, len(names))}
	for _, name := range names {
		r.Register(Profile{Name: name})
	}
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) {
	r.byName[p.Name] = p
}

// Resolve looks up a profile by name. Fails with ErrUnknownProfile if the
// name was never registered.
func (r *Registry) Resolve(name string) (Profile, error) {
	p, ok := r.byName[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}
