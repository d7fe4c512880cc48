package visualization_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/wangzcl/archetypes/visualization"
)

func TestSimplexVerticesOnUnitCircle(t *testing.T) {
	origin := [2]float64{2, -1}
	v := visualization.SimplexVertices(5, origin)
	r, c := v.Dims()
	if r != 5 || c != 2 {
		t.Fatalf("vertices are %d×%d, want 5×2", r, c)
	}
	for i := 0; i < 5; i++ {
		dx := v.At(i, 0) - origin[0]
		dy := v.At(i, 1) - origin[1]
		if d := math.Hypot(dx, dy); math.Abs(d-1) > 1e-12 {
			t.Errorf("vertex %d at radius %g", i, d)
		}
	}
	// The first vertex sits at angle zero.
	if math.Abs(v.At(0, 0)-(origin[0]+1)) > 1e-12 || math.Abs(v.At(0, 1)-origin[1]) > 1e-12 {
		t.Errorf("first vertex at (%g, %g)", v.At(0, 0), v.At(0, 1))
	}
}

// A one-hot weight row lands exactly on its vertex; uniform weights
// land on the origin by symmetry.
func TestProjectSimplex(t *testing.T) {
	weights := mat.NewDense(4, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1.0 / 3, 1.0 / 3, 1.0 / 3,
	})
	points, vertices, err := visualization.ProjectSimplex(weights, [2]float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(points.At(i, j)-vertices.At(i, j)) > 1e-12 {
				t.Errorf("one-hot row %d projected to (%g, %g)", i, points.At(i, 0), points.At(i, 1))
			}
		}
	}
	if math.Abs(points.At(3, 0)) > 1e-12 || math.Abs(points.At(3, 1)) > 1e-12 {
		t.Errorf("uniform row projected to (%g, %g), want the origin", points.At(3, 0), points.At(3, 1))
	}
}

func TestProjectSimplexTooFewArchetypes(t *testing.T) {
	weights := mat.NewDense(2, 1, []float64{1, 1})
	if _, _, err := visualization.ProjectSimplex(weights, [2]float64{0, 0}); err == nil {
		t.Error("expected error for a single archetype")
	}
}
