package glview

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// blurTaps is the number of one-sided weights the blur shader reads.
const blurTaps = 9

// particleSize is the world-space point size of a particle.
const particleSize = 0.1

func mat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// gaussianWeights returns the center weight followed by one side of a
// normalized gaussian kernel.
func gaussianWeights(sigma float64) [blurTaps]float32 {
	var raw [blurTaps]float64
	sum := 0.0
	for i := range raw {
		x := float64(i)
		raw[i] = math.Exp(-x * x / (2 * sigma * sigma))
		if i == 0 {
			sum += raw[i]
		} else {
			sum += 2 * raw[i]
		}
	}
	var w [blurTaps]float32
	for i := range raw {
		w[i] = float32(raw[i] / sum)
	}
	return w
}

// pointScale converts a world-space point size at unit distance to pixels
// for a viewport of the given height.
func pointScale(height int, fovY float64) float32 {
	return float32(float64(height) * 0.5 / math.Tan(mgl64.DegToRad(fovY)/2))
}

// halfSize is the bloom target size: half the viewport, at least 1x1.
func halfSize(w, h int) (int32, int32) {
	return int32(max(1, w/2)), int32(max(1, h/2))
}
