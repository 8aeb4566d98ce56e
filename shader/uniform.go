package shader

import (
	"fmt"

	"hero-engine/core"
	"hero-engine/math"
)

// UniformKind tags the variant held by a UniformValue.
type UniformKind int

const (
	KindFloat UniformKind = iota
	KindVec3
	KindColor
)

func (k UniformKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindVec3:
		return "vec3"
	case KindColor:
		return "color"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// UniformValue is one of Float, Vec3 or Color. Only the field matching Kind
// is meaningful.
type UniformValue struct {
	Kind  UniformKind
	Float float32
	Vec3  math.Vec3
	Color core.Color
}

func Float(f float32) UniformValue {
	return UniformValue{Kind: KindFloat, Float: f}
}

func Vec3(x, y, z float32) UniformValue {
	return UniformValue{Kind: KindVec3, Vec3: math.Vec3{X: x, Y: y, Z: z}}
}

func Color(c core.Color) UniformValue {
	return UniformValue{Kind: KindColor, Color: c}
}

func (u UniformValue) String() string {
	switch u.Kind {
	case KindFloat:
		return fmt.Sprintf("%g", u.Float)
	case KindVec3:
		return fmt.Sprintf("(%g, %g, %g)", u.Vec3.X, u.Vec3.Y, u.Vec3.Z)
	case KindColor:
		return fmt.Sprintf("rgba(%g, %g, %g, %g)", u.Color.R, u.Color.G, u.Color.B, u.Color.A)
	}
	return "invalid"
}

// UniformError reports an override or setter whose name or kind does not
// match the descriptor's schema.
type UniformError struct {
	Shader string
	Name   string
	Want   UniformKind
	Got    UniformKind
	Known  bool
}

func (e *UniformError) Error() string {
	if !e.Known {
		return fmt.Sprintf("shader %q: no uniform %q in schema", e.Shader, e.Name)
	}
	return fmt.Sprintf("shader %q: uniform %q is %v, got %v", e.Shader, e.Name, e.Want, e.Got)
}
