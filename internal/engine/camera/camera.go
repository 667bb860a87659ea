// Package camera provides the orbit camera controller and its input mapping.
package camera

import (
	"errors"
	"fmt"
	gomath "math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitscene/internal/logger"
	"github.com/Faultbox/orbitscene/pkg/math"
)

// ErrZeroAxis is returned when a rotation axis has zero length.
var ErrZeroAxis = errors.New("rotation axis has zero length")

// FloatEpsilon is the single precision machine epsilon.
const FloatEpsilon = 1.1920929e-7

// Home pose.
var (
	HomePosition = math.Vec3{X: 0, Y: 0, Z: 500}
	HomeLookAt   = math.Vec3{X: 0, Y: 0, Z: 0}
	HomeUp       = math.Vec3{X: 0, Y: 1, Z: 0}
)

// Redrawer is notified after every mutation.
type Redrawer interface {
	RequestRedraw()
}

type noRedraw struct{}

func (noRedraw) RequestRedraw() {}

// State is a snapshot of the camera vectors.
type State struct {
	Position math.Vec3
	LookAt   math.Vec3
	Up       math.Vec3
}

// Settings holds the interaction sensitivities.
type Settings struct {
	WheelScale     float32 // distance per wheel step
	KeyMoveScale   float32 // distance per key press
	DragScale      float32 // degrees per dragged pixel
	DriftTolerance float32
}

// DefaultSettings returns the interactive defaults.
func DefaultSettings() Settings {
	return Settings{
		WheelScale:     5,
		KeyMoveScale:   10,
		DragScale:      1,
		DriftTolerance: 1000 * FloatEpsilon,
	}
}

// Controller owns one camera. Every mutation runs under the controller's
// lock, so a pan and an orbit never interleave field by field.
type Controller struct {
	mu sync.Mutex

	pos    math.Vec3
	lookAt math.Vec3
	up     math.Vec3

	// Drag-start snapshots.
	prevPos  math.Vec3
	prevUp   math.Vec3
	dragging bool

	// Last unit zoom direction, used when the camera sits on its target.
	lastZoomDir math.Vec3

	settings Settings
	redraw   Redrawer
	log      *zap.Logger
}

// New creates a controller at the home pose. A nil redrawer is allowed.
func New(settings Settings, r Redrawer) *Controller {
	if r == nil {
		r = noRedraw{}
	}
	c := &Controller{
		settings:    settings,
		redraw:      r,
		lastZoomDir: math.Vec3{X: 0, Y: 0, Z: 1},
		log:         logger.Named("camera"),
	}
	c.setHome()
	return c
}

// SetLogger replaces the diagnostics logger.
func (c *Controller) SetLogger(l *zap.Logger) {
	c.mu.Lock()
	c.log = l
	c.mu.Unlock()
}

// Settings returns the current sensitivities.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// State returns a consistent snapshot of position, look-at and up.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Position: c.pos, LookAt: c.lookAt, Up: c.up}
}

// Position returns the camera position.
func (c *Controller) Position() math.Vec3 { return c.State().Position }

// LookAt returns the point the camera looks at.
func (c *Controller) LookAt() math.Vec3 { return c.State().LookAt }

// Up returns the up vector.
func (c *Controller) Up() math.Vec3 { return c.State().Up }

// ViewMatrix returns the view matrix for the current state.
func (c *Controller) ViewMatrix() math.Mat4 {
	s := c.State()
	return math.LookAt(s.Position, s.LookAt, s.Up)
}

// Drift measures how far up has left unit length and orthogonality to the
// view axis: |‖up‖²-1| + |up·dir|, dir being the unit vector from the
// look-at point to the camera.
func (c *Controller) Drift() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drift()
}

func (c *Controller) drift() float32 {
	dir := c.pos.Sub(c.lookAt).Normalize()
	return abs32(c.up.LengthSquared()-1) + abs32(c.up.Dot(dir))
}

// MoveToward moves position and look-at together by distance along the
// view direction.
func (c *Controller) MoveToward(distance float32) {
	c.mutate(func() {
		d := c.lookAt.Sub(c.pos).Normalize().Scale(distance)
		c.pos = c.pos.Add(d)
		c.lookAt = c.lookAt.Add(d)
	})
}

// BeginDrag snapshots position and up at the start of a drag gesture.
func (c *Controller) BeginDrag() {
	c.mu.Lock()
	c.beginDrag()
	c.mu.Unlock()
}

// EndDrag closes the current drag gesture.
func (c *Controller) EndDrag() {
	c.mu.Lock()
	c.dragging = false
	c.mu.Unlock()
}

func (c *Controller) beginDrag() {
	c.prevPos = c.pos
	c.prevUp = c.up
	c.dragging = true
}

// OrbitDrag rotates the drag-start position and up about the look-at point.
// dx turns about the up axis, dy about the right axis; both are pixel
// offsets from the drag start, scaled by DragScale degrees per pixel.
func (c *Controller) OrbitDrag(dx, dy float32) {
	c.mutate(func() {
		if !c.dragging {
			c.beginDrag()
		}
		if dx == 0 && dy == 0 {
			c.pos, c.up = c.prevPos, c.prevUp
			return
		}
		offset := c.prevPos.Sub(c.lookAt)
		upAxis := c.prevUp.Normalize()
		right := upAxis.Cross(offset).Normalize()

		q := mgl32.QuatIdent().
			Mul(mgl32.QuatRotate(mgl32.DegToRad(dx*c.settings.DragScale), upAxis.Mgl())).
			Mul(mgl32.QuatRotate(mgl32.DegToRad(dy*c.settings.DragScale), right.Mgl()))

		c.pos = math.FromMgl(q.Rotate(offset.Mgl())).Add(c.lookAt)
		c.up = math.FromMgl(q.Rotate(c.prevUp.Mgl()))
	})
	c.checkDrift("orbit")
}

// AxisRoll rotates only the up vector about the axis from the drag-start
// position to the look-at point.
func (c *Controller) AxisRoll(dx float32) {
	c.mutate(func() {
		if !c.dragging {
			c.beginDrag()
		}
		if dx == 0 {
			c.up = c.prevUp
			return
		}
		axis := c.lookAt.Sub(c.prevPos).Normalize()
		q := mgl32.QuatRotate(mgl32.DegToRad(dx*c.settings.DragScale), axis.Mgl())
		c.up = math.FromMgl(q.Rotate(c.prevUp.Mgl()))
	})
	c.checkDrift("roll")
}

// Zoom moves the position along the look-at to camera direction by
// wheelDelta * WheelScale. The look-at point stays fixed. When the camera
// sits exactly on its target the last non-zero direction is reused.
func (c *Controller) Zoom(wheelDelta float32) {
	c.mutate(func() {
		dir := c.pos.Sub(c.lookAt)
		if dir.IsZero() {
			dir = c.lastZoomDir
		} else {
			dir = dir.Normalize()
			c.lastZoomDir = dir
		}
		c.pos = c.pos.Add(dir.Scale(wheelDelta * c.settings.WheelScale))
	})
}

// ResetHome restores the canonical starting pose.
func (c *Controller) ResetHome() {
	c.mutate(c.setHome)
}

func (c *Controller) setHome() {
	c.pos, c.lookAt, c.up = HomePosition, HomeLookAt, HomeUp
	c.prevPos, c.prevUp = c.pos, c.up
	c.dragging = false
}

// PanByUp moves position and look-at by sign*KeyMoveScale along up.
func (c *Controller) PanByUp(sign float32) {
	c.mutate(func() {
		d := c.up.Scale(sign * c.settings.KeyMoveScale)
		c.pos = c.pos.Add(d)
		c.lookAt = c.lookAt.Add(d)
	})
}

// PanByLeft moves position and look-at by sign*KeyMoveScale along the left
// axis up × (lookAt-position).
func (c *Controller) PanByLeft(sign float32) {
	c.mutate(func() {
		left := c.up.Cross(c.lookAt.Sub(c.pos)).Normalize()
		d := left.Scale(sign * c.settings.KeyMoveScale)
		c.pos = c.pos.Add(d)
		c.lookAt = c.lookAt.Add(d)
	})
}

// SetPosition moves the camera without changing the look-at point.
func (c *Controller) SetPosition(x, y, z float32) {
	c.mutate(func() {
		c.pos = math.Vec3{X: x, Y: y, Z: z}
	})
}

// SetLookAt changes the point the camera looks at.
func (c *Controller) SetLookAt(x, y, z float32) {
	c.mutate(func() {
		c.lookAt = math.Vec3{X: x, Y: y, Z: z}
	})
}

// SetUp replaces the up vector as given; it is not normalized.
func (c *Controller) SetUp(x, y, z float32) {
	c.mutate(func() {
		c.up = math.Vec3{X: x, Y: y, Z: z}
	})
}

// RotateAroundX rotates position and up about the world x axis through the
// origin by deg degrees.
func (c *Controller) RotateAroundX(deg float32) {
	_ = c.RotateAboutLine(deg, math.Vec3{}, math.Vec3{X: 1})
}

// RotateAroundY rotates position and up about the world y axis through the
// origin by deg degrees.
func (c *Controller) RotateAroundY(deg float32) {
	_ = c.RotateAboutLine(deg, math.Vec3{}, math.Vec3{Y: 1})
}

// RotateAboutLine rotates position and up by deg degrees about the line
// through point along direction. The look-at point is not moved.
func (c *Controller) RotateAboutLine(deg float32, point, direction math.Vec3) error {
	if direction.IsZero() || isNaN(direction) {
		return fmt.Errorf("rotate about line: %w", ErrZeroAxis)
	}
	c.mutate(func() {
		q := mgl32.QuatRotate(mgl32.DegToRad(deg), direction.Normalize().Mgl())
		c.pos = math.FromMgl(q.Rotate(c.pos.Sub(point).Mgl())).Add(point)
		c.up = math.FromMgl(q.Rotate(c.up.Mgl()))
		c.prevPos, c.prevUp = c.pos, c.up
	})
	c.checkDrift("rotate")
	return nil
}

func (c *Controller) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.mu.Unlock()
	c.redraw.RequestRedraw()
}

func (c *Controller) checkDrift(op string) {
	c.mu.Lock()
	d := c.drift()
	tol := c.settings.DriftTolerance
	log := c.log
	c.mu.Unlock()

	if d >= tol {
		log.Warn("camera orthonormality drift",
			zap.String("op", op),
			zap.Float32("drift", d),
			zap.Float32("tolerance", tol))
	}
}

func abs32(v float32) float32 {
	return float32(gomath.Abs(float64(v)))
}

func isNaN(v math.Vec3) bool {
	return v.X != v.X || v.Y != v.Y || v.Z != v.Z
}
