package shading

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/orb/internal/params"
)

func TestDisplaceWithoutBassIsIdentity(t *testing.T) {
	pos := mgl64.Vec3{1.25, -3.5, 4}
	for _, tm := range []float64{0, 0.7, 13, 1e4} {
		for _, k := range []float64{0, 1, 2.5, -8} {
			if got := Displace(pos, tm, 0, k); got != pos {
				t.Fatalf("Displace(t=%v, k=%v) = %v, want %v", tm, k, got, pos)
			}
		}
	}
}

func TestDisplaceMovesOnlyZ(t *testing.T) {
	pos := mgl64.Vec3{1, 0.1, 2}
	got := Displace(pos, 0.3, 0.8, 1.0)
	want := 2 + math.Sin(0.1*5+0.3)*0.8
	if got.X() != 1 || got.Y() != 0.1 || math.Abs(got.Z()-want) > 1e-12 {
		t.Fatalf("Displace() = %v, want z %v", got, want)
	}
}

func TestHashIsInUnitRange(t *testing.T) {
	for x := -20.0; x < 20; x += 1.5 {
		for y := -20.0; y < 20; y += 2.25 {
			h := Hash(mgl64.Vec2{x, y})
			if h < 0 || h >= 1 {
				t.Fatalf("Hash(%v, %v) = %v outside [0,1)", x, y, h)
			}
		}
	}
}

func TestNoiseMatchesHashOnLattice(t *testing.T) {
	p := mgl64.Vec2{3, -7}
	if Noise(p) != Hash(p) {
		t.Fatalf("expected lattice noise to equal hash, got %v vs %v", Noise(p), Hash(p))
	}
}

func TestFBMIsDeterministic(t *testing.T) {
	st := mgl64.Vec2{0.37, 1.91}
	first := FBM(st)
	for range 10 {
		if got := FBM(st); got != first {
			t.Fatalf("FBM changed between calls: %v vs %v", got, first)
		}
	}
	if first < 0 || first >= 1 {
		t.Fatalf("expected FBM in [0,1), got %v", first)
	}
}

func TestScreenCoordKeepsAspect(t *testing.T) {
	got := ScreenCoord(mgl64.Vec2{1, 1}, mgl64.Vec2{200, 100})
	if got != (mgl64.Vec2{2, 1}) {
		t.Fatalf("ScreenCoord() = %v, want [2 1]", got)
	}
}

func TestColorRedFollowsMid(t *testing.T) {
	u := params.Default(100, 100)
	u.Mid = 128.0 / 256.0
	uv := mgl64.Vec2{0.3, 0.6}

	got := Color(uv, u)
	want := FBM(mgl64.Vec2{0.3*0.5 + 0.05, 0.6*0.5 + 0.05})
	if math.Abs(got.X()-want) > 1e-12 {
		t.Fatalf("red = %v, want %v", got.X(), want)
	}
}

func TestColorAtRestIsBaseNoise(t *testing.T) {
	u := params.Default(100, 100)
	uv := mgl64.Vec2{0.3, 0.6}
	st := ScreenCoord(uv, u.Resolution)

	got := Color(uv, u)
	want := mgl64.Vec3{FBM(st.Mul(0.5)), FBM(st), FBM(st)}
	if got != want {
		t.Fatalf("Color() at rest = %v, want %v", got, want)
	}

	// Frozen output; changing the hash or fbm constants breaks this.
	frozen := mgl64.Vec3{0.3167011132290914, 0.3780430433116678, 0.3780430433116678}
	for i := range 3 {
		if math.Abs(got[i]-frozen[i]) > 1e-12 {
			t.Fatalf("Color() at rest = %v, want %v", got, frozen)
		}
	}
}

func TestColorAddsGlowTimesTreble(t *testing.T) {
	uv := mgl64.Vec2{0.5, 0.5}
	quiet := params.Default(64, 64)
	loud := quiet
	loud.Treble = 0.5

	base := Color(uv, quiet)
	lit := Color(uv, loud)
	// green does not read treble, so the difference is the glow alone.
	if diff := lit.Y() - base.Y(); math.Abs(diff-1.5*0.5) > 1e-12 {
		t.Fatalf("expected glow 0.75 on green, got %v", diff)
	}
}

func TestShadeCombinesStages(t *testing.T) {
	u := params.Default(64, 64)
	u.Time = 2
	u.Bass = 0.5
	v := Vertex{Position: mgl64.Vec3{0, 1, 5}, UV: mgl64.Vec2{0.25, 0.75}}

	f := Shade(v, u)
	if f.Position != Displace(v.Position, u.Time, u.Bass, u.DistortionFactor) {
		t.Fatalf("unexpected position %v", f.Position)
	}
	if math.Abs(f.Distortion-(f.Position.Z()-5)) > 1e-12 {
		t.Fatalf("distortion %v does not match z offset", f.Distortion)
	}
	if f.Color != Color(v.UV, u) {
		t.Fatalf("unexpected color %v", f.Color)
	}
}
