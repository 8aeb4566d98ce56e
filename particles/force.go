package particles

import "hero-engine/math"

// FieldKind selects how a ForceField produces acceleration.
type FieldKind int

const (
	FieldUniform FieldKind = iota // same acceleration everywhere (wind, gravity)
	FieldPoint                    // toward or away from Center

	fieldSum
)

// ForceField is evaluated once per particle per step. It covers pointer
// attraction, beat-driven bursts and ambient drift with one shape.
type ForceField struct {
	Kind      FieldKind
	Direction math.Vec3 // FieldUniform: acceleration in units/s²
	Center    math.Vec3 // FieldPoint
	Strength  float32   // FieldPoint: positive attracts, negative repels
	Radius    float32   // FieldPoint: linear falloff to zero at Radius; 0 means no falloff

	parts []*ForceField
}

const minFieldDistance = 1e-4

func Uniform(accel math.Vec3) *ForceField {
	return &ForceField{Kind: FieldUniform, Direction: accel}
}

func Attract(center math.Vec3, strength, radius float32) *ForceField {
	return &ForceField{Kind: FieldPoint, Center: center, Strength: strength, Radius: radius}
}

func Repel(center math.Vec3, strength, radius float32) *ForceField {
	return &ForceField{Kind: FieldPoint, Center: center, Strength: -strength, Radius: radius}
}

// Accel returns the acceleration the field applies at p.
func (f *ForceField) Accel(p math.Vec3) math.Vec3 {
	switch f.Kind {
	case FieldUniform:
		return f.Direction
	case FieldPoint:
		d := f.Center.Sub(p)
		dist := d.Length()
		if dist < minFieldDistance {
			return math.Vec3Zero
		}
		falloff := float32(1)
		if f.Radius > 0 {
			if dist >= f.Radius {
				return math.Vec3Zero
			}
			falloff = 1 - dist/f.Radius
		}
		return d.Mul(f.Strength * falloff / dist)
	case fieldSum:
		var sum math.Vec3
		for _, part := range f.parts {
			sum = sum.Add(part.Accel(p))
		}
		return sum
	}
	return math.Vec3Zero
}

// Combine sums several fields into one evaluation. Nil entries are skipped;
// it returns nil when nothing remains.
func Combine(fields ...*ForceField) *ForceField {
	var live []*ForceField
	for _, f := range fields {
		if f != nil {
			live = append(live, f)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return &ForceField{Kind: fieldSum, parts: live}
}
