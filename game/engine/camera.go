package engine

import "github.com/go-gl/mathgl/mgl64"

// AngleSource supplies the current approach angle
type AngleSource interface {
	Angle() mgl64.Vec3
}

// AngleFunc adapts a function to AngleSource
type AngleFunc func() mgl64.Vec3

func (f AngleFunc) Angle() mgl64.Vec3 { return f() }

// Camera is a settable angle. It is not safe for concurrent use; callers
// serialize access together with the character reading it.
type Camera struct {
	angle mgl64.Vec3
}

// NewCamera returns a camera looking along angle
func NewCamera(angle mgl64.Vec3) *Camera {
	return &Camera{angle: angle}
}

func (c *Camera) Angle() mgl64.Vec3 {
	return c.angle
}

func (c *Camera) SetAngle(angle mgl64.Vec3) {
	c.angle = angle
}

// Renderer receives draw requests
type Renderer interface {
	Draw(p Pose)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(p Pose)

func (f RendererFunc) Draw(p Pose) { f(p) }

// PoseRecorder keeps the most recent draw request
type PoseRecorder struct {
	last  Pose
	count int
}

func (r *PoseRecorder) Draw(p Pose) {
	r.last = p
	r.count++
}

// Last returns the latest pose and whether anything was drawn yet
func (r *PoseRecorder) Last() (Pose, bool) {
	return r.last, r.count > 0
}

// Count returns the number of draw requests seen
func (r *PoseRecorder) Count() int {
	return r.count
}
