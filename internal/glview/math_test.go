package glview

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/orb/internal/mesh"
	"github.com/olivier-w/orb/internal/postfx"
)

func TestGaussianWeightsNormalize(t *testing.T) {
	w := gaussianWeights(postfx.DefaultBloom.Sigma())
	sum := float64(w[0])
	for _, v := range w[1:] {
		sum += 2 * float64(v)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("weights sum to %v", sum)
	}
	for i := 1; i < len(w); i++ {
		if w[i] > w[i-1] {
			t.Fatalf("weights not decreasing at %d: %v", i, w)
		}
	}
}

func TestMat32(t *testing.T) {
	m := mesh.DefaultCamera.ViewProjection(1.5)
	f := mat32(m)
	for i := range m {
		if math.Abs(float64(f[i])-m[i]) > 1e-5 {
			t.Fatalf("element %d: %v vs %v", i, f[i], m[i])
		}
	}
	if mat32(mgl64.Ident4()) != [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} {
		t.Fatal("identity not preserved")
	}
}

func TestPointScale(t *testing.T) {
	// a 90 degree field of view maps unit distance to half the height.
	if got := pointScale(600, 90); math.Abs(float64(got)-300) > 1e-3 {
		t.Fatalf("pointScale() = %v, want 300", got)
	}
}

func TestHalfSize(t *testing.T) {
	if w, h := halfSize(1, 801); w != 1 || h != 400 {
		t.Fatalf("halfSize() = %d,%d", w, h)
	}
}

func TestSphereShaderCarriesNoiseConstants(t *testing.T) {
	for _, s := range []string{"12.9898", "78.233", "43758.5453123", "i < 5", "pos.y * 5.0", "uTime * 0.2", "uTreble * 0.3"} {
		if !strings.Contains(sphereVertSrc+sphereFragSrc, s) {
			t.Fatalf("shader source missing %q", s)
		}
	}
}
