package shader

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"hero-engine/core"
)

// PlaceholderName is the built-in flat-color material used when a lookup
// fails.
const PlaceholderName = "placeholder"

// UnknownShaderError is returned by Instantiate for unregistered names.
type UnknownShaderError struct {
	Name string
}

func (e *UnknownShaderError) Error() string {
	return fmt.Sprintf("unknown shader %q", e.Name)
}

var ErrDuplicateShader = errors.New("shader already registered")

// Registry holds shader descriptors by name and tracks live instances so
// they can be released at shutdown.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
	instances   []*Instance
}

// NewRegistry returns a registry that already contains the placeholder.
func NewRegistry() *Registry {
	r := &Registry{descriptors: make(map[string]*Descriptor)}
	placeholder := placeholderDescriptor()
	r.descriptors[placeholder.Name] = placeholder.clone()
	return r
}

// Register validates and stores a copy of desc.
func (r *Registry) Register(desc Descriptor) error {
	if err := desc.validate(); err != nil {
		return fmt.Errorf("register shader: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[desc.Name]; exists {
		return fmt.Errorf("register shader %q: %w", desc.Name, ErrDuplicateShader)
	}
	r.descriptors[desc.Name] = desc.clone()
	core.Logger().Debug("shader registered", "name", desc.Name, "uniforms", len(desc.UniformSchema))
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.descriptors[name]
	return ok
}

// Names lists registered shaders in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.descriptors))
	for k := range r.descriptors {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Instantiate creates an instance of name with the schema defaults
// shallow-merged with overrides. Overrides must name schema uniforms with a
// matching kind.
func (r *Registry) Instantiate(name string, overrides map[string]UniformValue) (*Instance, error) {
	r.mu.RLock()
	desc, ok := r.descriptors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownShaderError{Name: name}
	}

	uniforms := make(map[string]UniformValue, len(desc.UniformSchema))
	for k, v := range desc.UniformSchema {
		uniforms[k] = v
	}
	for k, v := range overrides {
		def, known := desc.UniformSchema[k]
		if !known {
			return nil, &UniformError{Shader: name, Name: k}
		}
		if def.Kind != v.Kind {
			return nil, &UniformError{Shader: name, Name: k, Want: def.Kind, Got: v.Kind, Known: true}
		}
		uniforms[k] = v
	}

	in := &Instance{
		desc:        desc,
		uniforms:    uniforms,
		placeholder: name == PlaceholderName,
	}
	r.mu.Lock()
	r.instances = append(r.instances, in)
	r.mu.Unlock()
	return in, nil
}

// InstantiateOrPlaceholder never fails: lookup or override errors are logged
// and a flat-color placeholder instance is returned instead.
func (r *Registry) InstantiateOrPlaceholder(name string, overrides map[string]UniformValue) *Instance {
	in, err := r.Instantiate(name, overrides)
	if err == nil {
		return in
	}
	core.Logger().Warn("shader instantiate failed, using placeholder", "name", name, "err", err)
	in, err = r.Instantiate(PlaceholderName, nil)
	if err != nil {
		// The placeholder is registered by NewRegistry and cannot be removed.
		panic(fmt.Sprintf("placeholder shader missing: %v", err))
	}
	return in
}

// Destroy releases an instance. Calling it again is a no-op.
func (r *Registry) Destroy(in *Instance) {
	if in == nil || in.destroyed {
		return
	}
	in.destroyed = true
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.instances {
		if cur == in {
			r.instances = append(r.instances[:i], r.instances[i+1:]...)
			break
		}
	}
}

// Live returns the number of instances not yet destroyed.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// DestroyAll releases every live instance.
func (r *Registry) DestroyAll() {
	r.mu.Lock()
	live := r.instances
	r.instances = nil
	r.mu.Unlock()
	for _, in := range live {
		in.destroyed = true
	}
}
