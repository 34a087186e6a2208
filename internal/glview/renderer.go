// Package glview is the OpenGL render surface: a glfw window with a 4.1 core
// context, the sphere drawn with the shading formulas in GLSL, the particle
// cloud as points and bloom as framebuffer passes.
package glview

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/olivier-w/orb/internal/engine"
	"github.com/olivier-w/orb/internal/mesh"
)

// target is an offscreen color buffer, optionally with depth.
type target struct {
	fbo, tex, depth uint32
	w, h            int32
}

func newTarget(w, h int32, withDepth bool) (target, error) {
	t := target{w: w, h: h}
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenTextures(1, &t.tex)
	gl.BindTexture(gl.TEXTURE_2D, t.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, w, h, 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex, 0)

	if withDepth {
		gl.GenRenderbuffers(1, &t.depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depth)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return target{}, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return t, nil
}

func (t *target) destroy() {
	if t.depth != 0 {
		gl.DeleteRenderbuffers(1, &t.depth)
	}
	if t.tex != 0 {
		gl.DeleteTextures(1, &t.tex)
	}
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
	}
	*t = target{}
}

func (t target) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, t.w, t.h)
}

// Renderer draws frames with OpenGL. All methods must run on the thread
// that owns the context.
type Renderer struct {
	camera mesh.Camera
	width  int
	height int

	sphereProg, particleProg            uint32
	brightProg, blurProg, compositeProg uint32

	sphereVAO, sphereVBO, sphereEBO uint32
	sphereCount                     int32
	particleVAO, particleVBO        uint32
	particleCap                     int
	screenVAO                       uint32

	scene, bright, ping target
	resizeErr           error
	// alloc creates offscreen targets; nil means newTarget.
	alloc func(w, h int32, withDepth bool) (target, error)

	uSphere struct {
		mvp, time, bass, mid, treble, glow, distortion, resolution int32
	}
	uParticle struct {
		view, proj, pointSize, scale int32
	}
	uBright struct {
		tex, threshold int32
	}
	uBlur struct {
		tex, step, weights int32
	}
	uComposite struct {
		scene, bloom, intensity int32
	}
}

// NewRenderer compiles the programs and uploads the sphere. A GL context
// must be current.
func NewRenderer(sphere *mesh.Sphere) (*Renderer, error) {
	r := &Renderer{camera: mesh.DefaultCamera}

	progs := []struct {
		dst        *uint32
		name       string
		vert, frag string
	}{
		{&r.sphereProg, "sphere", sphereVertSrc, sphereFragSrc},
		{&r.particleProg, "particle", particleVertSrc, particleFragSrc},
		{&r.brightProg, "bright", screenVertSrc, brightFragSrc},
		{&r.blurProg, "blur", screenVertSrc, blurFragSrc},
		{&r.compositeProg, "composite", screenVertSrc, compositeFragSrc},
	}
	for _, p := range progs {
		prog, err := linkProgram(p.vert, p.frag)
		if err != nil {
			r.Destroy()
			return nil, fmt.Errorf("%s program: %w", p.name, err)
		}
		*p.dst = prog
	}

	r.uSphere.mvp = uniform(r.sphereProg, "uMVP")
	r.uSphere.time = uniform(r.sphereProg, "uTime")
	r.uSphere.bass = uniform(r.sphereProg, "uBass")
	r.uSphere.mid = uniform(r.sphereProg, "uMid")
	r.uSphere.treble = uniform(r.sphereProg, "uTreble")
	r.uSphere.glow = uniform(r.sphereProg, "uGlow")
	r.uSphere.distortion = uniform(r.sphereProg, "uDistortion")
	r.uSphere.resolution = uniform(r.sphereProg, "uResolution")

	r.uParticle.view = uniform(r.particleProg, "uView")
	r.uParticle.proj = uniform(r.particleProg, "uProj")
	r.uParticle.pointSize = uniform(r.particleProg, "uPointSize")
	r.uParticle.scale = uniform(r.particleProg, "uScale")

	r.uBright.tex = uniform(r.brightProg, "uTex")
	r.uBright.threshold = uniform(r.brightProg, "uThreshold")
	r.uBlur.tex = uniform(r.blurProg, "uTex")
	r.uBlur.step = uniform(r.blurProg, "uStep")
	r.uBlur.weights = uniform(r.blurProg, "uWeights")
	r.uComposite.scene = uniform(r.compositeProg, "uScene")
	r.uComposite.bloom = uniform(r.compositeProg, "uBloom")
	r.uComposite.intensity = uniform(r.compositeProg, "uIntensity")

	// Sphere: interleaved position (vec3) + uv (vec2), indexed.
	verts := sphere.Interleaved()
	gl.GenVertexArrays(1, &r.sphereVAO)
	gl.GenBuffers(1, &r.sphereVBO)
	gl.GenBuffers(1, &r.sphereEBO)
	gl.BindVertexArray(r.sphereVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.sphereVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.sphereEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(sphere.Indices)*4, gl.Ptr(sphere.Indices), gl.STATIC_DRAW)
	stride := int32(5 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	r.sphereCount = int32(len(sphere.Indices))

	// Particles: streamed vec3 positions.
	gl.GenVertexArrays(1, &r.particleVAO)
	gl.GenBuffers(1, &r.particleVBO)
	gl.BindVertexArray(r.particleVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.particleVBO)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))

	// Fullscreen passes draw without attributes but core profile needs a VAO.
	gl.GenVertexArrays(1, &r.screenVAO)
	gl.BindVertexArray(0)

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(0, 0, 0, 1)
	return r, nil
}

// Resize recreates the offscreen targets for a w x h framebuffer.
func (r *Renderer) Resize(w, h int) {
	if w <= 0 || h <= 0 || (w == r.width && h == r.height && r.resizeErr == nil) {
		return
	}
	r.scene.destroy()
	r.bright.destroy()
	r.ping.destroy()

	alloc := r.alloc
	if alloc == nil {
		alloc = newTarget
	}
	var err error
	if r.scene, err = alloc(int32(w), int32(h), true); err != nil {
		r.resizeErr = fmt.Errorf("scene target: %w", err)
		return
	}
	hw, hh := halfSize(w, h)
	if r.bright, err = alloc(hw, hh, false); err != nil {
		r.scene.destroy()
		r.resizeErr = fmt.Errorf("bloom target: %w", err)
		return
	}
	if r.ping, err = alloc(hw, hh, false); err != nil {
		r.scene.destroy()
		r.bright.destroy()
		r.resizeErr = fmt.Errorf("blur target: %w", err)
		return
	}
	// The size only counts as applied once every target exists.
	r.width, r.height = w, h
	r.resizeErr = nil
}

func (r *Renderer) Render(f engine.Frame) error {
	if r.resizeErr != nil {
		return r.resizeErr
	}
	if r.width == 0 || r.height == 0 {
		return errors.New("render before first resize")
	}
	u := f.Uniforms
	aspect := float64(r.width) / float64(r.height)
	view := mat32(r.camera.View())
	proj := mat32(r.camera.Projection(aspect))
	mvp := proj.Mul4(view)

	// Scene: sphere then additive particles, into the HDR target.
	r.scene.bind()
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	gl.DepthMask(true)

	gl.UseProgram(r.sphereProg)
	gl.UniformMatrix4fv(r.uSphere.mvp, 1, false, &mvp[0])
	gl.Uniform1f(r.uSphere.time, float32(u.Time))
	gl.Uniform1f(r.uSphere.bass, float32(u.Bass))
	gl.Uniform1f(r.uSphere.mid, float32(u.Mid))
	gl.Uniform1f(r.uSphere.treble, float32(u.Treble))
	gl.Uniform1f(r.uSphere.glow, float32(u.GlowStrength))
	gl.Uniform1f(r.uSphere.distortion, float32(u.DistortionFactor))
	gl.Uniform2f(r.uSphere.resolution, float32(u.Resolution.X()), float32(u.Resolution.Y()))
	gl.BindVertexArray(r.sphereVAO)
	gl.DrawElements(gl.TRIANGLES, r.sphereCount, gl.UNSIGNED_INT, gl.PtrOffset(0))

	if n := len(f.Particles); n > 0 {
		r.uploadParticles(f.Particles)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
		gl.DepthMask(false)
		gl.UseProgram(r.particleProg)
		gl.UniformMatrix4fv(r.uParticle.view, 1, false, &view[0])
		gl.UniformMatrix4fv(r.uParticle.proj, 1, false, &proj[0])
		gl.Uniform1f(r.uParticle.pointSize, particleSize)
		gl.Uniform1f(r.uParticle.scale, pointScale(r.height, r.camera.FovY))
		gl.BindVertexArray(r.particleVAO)
		gl.DrawArrays(gl.POINTS, 0, int32(n))
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(r.screenVAO)

	intensity := float32(0)
	if f.Bloom.Enabled && f.Bloom.Intensity > 0 {
		intensity = float32(f.Bloom.Intensity)

		r.bright.bind()
		gl.UseProgram(r.brightProg)
		bindTexture(0, r.scene.tex, r.uBright.tex)
		gl.Uniform1f(r.uBright.threshold, float32(f.Bloom.Threshold))
		gl.DrawArrays(gl.TRIANGLES, 0, 3)

		weights := gaussianWeights(f.Bloom.Sigma())
		gl.UseProgram(r.blurProg)
		gl.Uniform1fv(r.uBlur.weights, blurTaps, &weights[0])

		r.ping.bind()
		bindTexture(0, r.bright.tex, r.uBlur.tex)
		gl.Uniform2f(r.uBlur.step, 1/float32(r.bright.w), 0)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)

		r.bright.bind()
		bindTexture(0, r.ping.tex, r.uBlur.tex)
		gl.Uniform2f(r.uBlur.step, 0, 1/float32(r.bright.h))
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.compositeProg)
	bindTexture(0, r.scene.tex, r.uComposite.scene)
	bindTexture(1, r.bright.tex, r.uComposite.bloom)
	gl.Uniform1f(r.uComposite.intensity, intensity)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

func (r *Renderer) uploadParticles(pts []mgl32.Vec3) {
	gl.BindBuffer(gl.ARRAY_BUFFER, r.particleVBO)
	size := len(pts) * 3 * 4
	if len(pts) > r.particleCap {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(&pts[0][0]), gl.STREAM_DRAW)
		r.particleCap = len(pts)
		return
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(&pts[0][0]))
}

func bindTexture(unit uint32, tex uint32, loc int32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.Uniform1i(loc, int32(unit))
}

// Destroy releases every GL object.
func (r *Renderer) Destroy() {
	r.scene.destroy()
	r.bright.destroy()
	r.ping.destroy()
	for _, vao := range []*uint32{&r.sphereVAO, &r.particleVAO, &r.screenVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
		}
	}
	for _, buf := range []*uint32{&r.sphereVBO, &r.sphereEBO, &r.particleVBO} {
		if *buf != 0 {
			gl.DeleteBuffers(1, buf)
		}
	}
	for _, prog := range []uint32{r.sphereProg, r.particleProg, r.brightProg, r.blurProg, r.compositeProg} {
		if prog != 0 {
			gl.DeleteProgram(prog)
		}
	}
}
