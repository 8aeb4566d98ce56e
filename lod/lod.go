package lod

import (
	"errors"
	"fmt"

	"hero-engine/math"
	"hero-engine/mesh"
	"hero-engine/shader"
)

// Representation is what gets drawn for one detail level.
type Representation struct {
	Mesh     *mesh.Mesh
	Material *shader.Instance
}

// Entry pairs a representation with the distance below which it is used.
type Entry struct {
	Representation    Representation
	DistanceThreshold float32
}

var (
	ErrEmptyChain     = errors.New("lod chain is empty")
	ErrThresholdOrder = errors.New("lod thresholds must be strictly increasing")
)

// Validate checks that thresholds are strictly increasing.
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return ErrEmptyChain
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].DistanceThreshold <= entries[i-1].DistanceThreshold {
			return fmt.Errorf("entry %d (%g after %g): %w",
				i, entries[i].DistanceThreshold, entries[i-1].DistanceThreshold, ErrThresholdOrder)
		}
	}
	return nil
}

// Index returns the level chosen for distance under ceiling: the first entry
// whose threshold exceeds distance, clipped to ceiling. Past every threshold
// the last entry is used. Returns -1 for an empty chain.
func Index(entries []Entry, distance float32, ceiling int) int {
	n := len(entries)
	if n == 0 {
		return -1
	}
	idx := n - 1
	for i, e := range entries {
		if e.DistanceThreshold > distance {
			idx = i
			break
		}
	}
	if ceiling < 0 {
		ceiling = 0
	}
	if idx > ceiling {
		idx = ceiling
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// Select returns the entry chosen by Index. Pure.
func Select(entries []Entry, distance float32, ceiling int) Entry {
	i := Index(entries, distance, ceiling)
	if i < 0 {
		return Entry{}
	}
	return entries[i]
}

// Chain builds entries from meshes (finest first) sharing one material, with
// thresholds base, base*step, base*step², ...
func Chain(meshes []*mesh.Mesh, material *shader.Instance, base, step float32) []Entry {
	entries := make([]Entry, len(meshes))
	d := base
	for i, m := range meshes {
		entries[i] = Entry{
			Representation:    Representation{Mesh: m, Material: material},
			DistanceThreshold: d,
		}
		d *= step
	}
	return entries
}

// Object is a positioned LOD chain. Its selection is computed at most once
// per frame.
type Object struct {
	Name     string
	Entries  []Entry
	Position math.Vec3
	Scale    float32
	Spin     float32 // radians per second around Y

	angle     float32
	frame     uint64
	hasFrame  bool
	selection int
}

func NewObject(name string, entries []Entry) (*Object, error) {
	if err := Validate(entries); err != nil {
		return nil, fmt.Errorf("lod object %q: %w", name, err)
	}
	return &Object{Name: name, Entries: entries, Scale: 1}, nil
}

// Update advances the object's own animation.
func (o *Object) Update(dt float32) {
	o.angle += o.Spin * dt
}

// Model returns the world matrix.
func (o *Object) Model() math.Mat4 {
	return math.Mat4Scale(o.Scale).Mul(math.Mat4RotationY(o.angle)).Mul(math.Mat4Translation(o.Position))
}

// SelectFor returns the level index for the current frame. Repeated calls
// with the same frame number reuse the first result.
func (o *Object) SelectFor(frame uint64, eye math.Vec3, ceiling int) int {
	if o.hasFrame && o.frame == frame {
		return o.selection
	}
	o.frame = frame
	o.hasFrame = true
	o.selection = Index(o.Entries, eye.Distance(o.Position), ceiling)
	return o.selection
}
