package params

import "testing"

func TestDefaultUsesShaderDefaults(t *testing.T) {
	u := Default(80, 40)
	if u.GlowStrength != 1.5 || u.DistortionFactor != 1.0 {
		t.Fatalf("unexpected defaults: glow %v distortion %v", u.GlowStrength, u.DistortionFactor)
	}
	if u.Time != 0 || u.Bass != 0 || u.Mid != 0 || u.Treble != 0 {
		t.Fatalf("expected silent start, got %+v", u)
	}
	if u.Aspect() != 2 {
		t.Fatalf("expected aspect 2, got %v", u.Aspect())
	}
}

func TestAspectWithoutResolution(t *testing.T) {
	if got := (Uniforms{}).Aspect(); got != 1 {
		t.Fatalf("expected fallback aspect 1, got %v", got)
	}
}
