package mesh

import (
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func TestCreateSphereCounts(t *testing.T) {
	m := CreateSphere(1, 8, 4)
	if len(m.Vertices) != 9*5 {
		t.Errorf("vertices: expected 45, got %d", len(m.Vertices))
	}
	if m.TriangleCount() != 8*4*2 {
		t.Errorf("triangles: expected 64, got %d", m.TriangleCount())
	}
	if r := m.Bounds.Radius(); r < 1.4 || r > 1.8 {
		t.Errorf("bounds radius: expected about sqrt(3), got %v", r)
	}
}

func TestSphereChainDecreasing(t *testing.T) {
	chain := SphereChain(1, 48, 4)
	if len(chain) != 4 {
		t.Fatalf("expected 4 levels, got %d", len(chain))
	}
	for i := 1; i < len(chain); i++ {
		if chain[i].TriangleCount() >= chain[i-1].TriangleCount() {
			t.Errorf("level %d: expected fewer triangles than level %d (%d >= %d)",
				i, i-1, chain[i].TriangleCount(), chain[i-1].TriangleCount())
		}
	}
}

func addTriangleMesh(doc *gltf.Document, name string, scale float32) int {
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {scale, 0, 0}, {0, scale, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{"POSITION": pos},
		}},
	})
	return len(doc.Meshes) - 1
}

func TestLODChainFromDocumentOrdersBySuffix(t *testing.T) {
	doc := gltf.NewDocument()
	far := addTriangleMesh(doc, "far", 3)
	near := addTriangleMesh(doc, "near", 1)
	doc.Nodes = append(doc.Nodes,
		&gltf.Node{Name: "orb_LOD2", Mesh: gltf.Index(far)},
		&gltf.Node{Name: "orb_LOD0", Mesh: gltf.Index(near)},
		&gltf.Node{Name: "camera"},
	)

	chain, err := LODChainFromDocument(doc)
	if err != nil {
		t.Fatalf("LODChainFromDocument: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(chain))
	}
	if chain[0].Name != "near_lod0" || chain[1].Name != "far_lod2" {
		t.Errorf("expected near then far, got %q, %q", chain[0].Name, chain[1].Name)
	}
	if chain[0].IndexCount != 3 {
		t.Errorf("expected 3 indices, got %d", chain[0].IndexCount)
	}
}

func TestLODChainFromDocumentFallback(t *testing.T) {
	doc := gltf.NewDocument()
	addTriangleMesh(doc, "a", 1)
	addTriangleMesh(doc, "b", 2)
	chain, err := LODChainFromDocument(doc)
	if err != nil {
		t.Fatalf("LODChainFromDocument: %v", err)
	}
	if len(chain) != 2 || chain[0].Name != "a_lod0" {
		t.Errorf("expected document order, got %d levels", len(chain))
	}
}

func TestLODChainFromDocumentEmpty(t *testing.T) {
	if _, err := LODChainFromDocument(gltf.NewDocument()); err == nil {
		t.Error("expected error for a document without meshes")
	}
}
