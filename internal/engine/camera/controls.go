package camera

import "github.com/Faultbox/orbitscene/internal/engine/input"

// Controls maps input events onto a Controller:
//
//	left drag    orbit about the look-at point
//	right drag   roll about the view axis
//	wheel        zoom
//	d            reset to the home pose
//	w / s        move toward / away from the target
//	arrows       pan along up and left
type Controls struct {
	cam *Controller

	button         input.Button
	startX, startY int
}

// NewControls binds input handling to a controller.
func NewControls(c *Controller) *Controls {
	return &Controls{cam: c}
}

// Handle applies one event and reports whether it was consumed.
func (k *Controls) Handle(e input.Event) bool {
	switch e.Type {
	case input.EventMouseDown:
		if k.button != input.ButtonNone {
			return false
		}
		if e.Button != input.ButtonLeft && e.Button != input.ButtonRight {
			return false
		}
		k.button = e.Button
		k.startX, k.startY = e.MouseX, e.MouseY
		k.cam.BeginDrag()
		return true

	case input.EventMouseMove:
		dx := float32(k.startX - e.MouseX)
		dy := float32(k.startY - e.MouseY)
		switch k.button {
		case input.ButtonLeft:
			k.cam.OrbitDrag(dx, dy)
		case input.ButtonRight:
			k.cam.AxisRoll(dx)
		default:
			return false
		}
		return true

	case input.EventMouseUp:
		if e.Button != k.button || k.button == input.ButtonNone {
			return false
		}
		k.button = input.ButtonNone
		k.cam.EndDrag()
		return true

	case input.EventMouseWheel:
		// Turning the wheel away from the user moves closer.
		k.cam.Zoom(-e.WheelY)
		return true

	case input.EventKeyDown:
		return k.key(e)
	}
	return false
}

func (k *Controls) key(e input.Event) bool {
	step := k.cam.Settings().KeyMoveScale
	switch e.Key {
	case input.KeyChar:
		switch e.Char {
		case 'd':
			k.cam.ResetHome()
		case 'w':
			k.cam.MoveToward(step)
		case 's':
			k.cam.MoveToward(-step)
		default:
			return false
		}
	case input.KeyUp:
		k.cam.PanByUp(1)
	case input.KeyDown:
		k.cam.PanByUp(-1)
	case input.KeyLeft:
		k.cam.PanByLeft(1)
	case input.KeyRight:
		k.cam.PanByLeft(-1)
	default:
		return false
	}
	return true
}
