package shader

import (
	"errors"
	"fmt"
	"strings"
)

// BlendMode controls how a material composites with what is already drawn.
type BlendMode int

const (
	BlendAlpha    BlendMode = iota // standard alpha blend
	BlendAdditive                  // additive blend (glow, sparks, nebulae)
)

// TimeUniform is advanced by Instance.AdvanceTime when present in a schema.
const TimeUniform = "uTime"

// Descriptor is an immutable named shader program definition.
// UniformSchema doubles as the default value of every uniform.
type Descriptor struct {
	Name           string
	VertexSource   string
	FragmentSource string
	UniformSchema  map[string]UniformValue
	BlendMode      BlendMode
	Transparent    bool
}

var (
	ErrEmptyName     = errors.New("shader name is empty")
	ErrMissingSource = errors.New("shader source is empty")
)

func (d *Descriptor) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.VertexSource == "" || d.FragmentSource == "" {
		return fmt.Errorf("shader %q: %w", d.Name, ErrMissingSource)
	}
	for name, v := range d.UniformSchema {
		if name == "" {
			return fmt.Errorf("shader %q: uniform with empty name", d.Name)
		}
		if v.Kind < KindFloat || v.Kind > KindColor {
			return fmt.Errorf("shader %q: uniform %q has invalid kind %v", d.Name, name, v.Kind)
		}
	}
	if v, ok := d.UniformSchema[TimeUniform]; ok && v.Kind != KindFloat {
		return fmt.Errorf("shader %q: %s must be a float", d.Name, TimeUniform)
	}
	return nil
}

// clone copies the descriptor and its schema so the caller's map can be
// reused without touching the registered copy.
func (d Descriptor) clone() *Descriptor {
	schema := make(map[string]UniformValue, len(d.UniformSchema))
	for k, v := range d.UniformSchema {
		schema[k] = v
	}
	d.UniformSchema = schema
	return &d
}
