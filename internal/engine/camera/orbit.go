package camera

import (
	gomath "math"

	"github.com/Faultbox/orrery/pkg/math"
)

// OrbitControls moves a camera on a sphere around a target point.
// Input handlers only change the spherical coordinates; Update writes the camera.
type OrbitControls struct {
	camera *PerspectiveCamera

	// Target is the point orbited around.
	Target math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Pitch    float32 // Elevation above the XZ plane (radians)
	Yaw      float32 // Rotation around Y (radians), 0 looks from +Z

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	Enabled bool
}

// poleMargin keeps the pitch away from ±90° where the up vector degenerates.
const poleMargin = 0.01

// NewOrbitControls creates controls that start from the camera's current position
// and orbit around the camera target.
func NewOrbitControls(cam *PerspectiveCamera) *OrbitControls {
	o := &OrbitControls{
		camera:          cam,
		Target:          cam.Target,
		MinDistance:     1,
		MaxDistance:     gomath.MaxFloat32,
		MinPitch:        -gomath.Pi/2 + poleMargin,
		MaxPitch:        gomath.Pi/2 - poleMargin,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.001,
		Enabled:         true,
	}
	o.SyncFromCamera()
	return o
}

// Camera returns the controlled camera.
func (o *OrbitControls) Camera() *PerspectiveCamera {
	return o.camera
}

// SyncFromCamera derives the spherical coordinates from the camera position.
func (o *OrbitControls) SyncFromCamera() {
	o.Distance = o.camera.Position.Distance(o.Target)
	if o.Distance < 1e-6 {
		o.Distance, o.Pitch, o.Yaw = 1, 0, 0
		return
	}
	off := o.camera.Position.Sub(o.Target)
	o.Pitch = float32(gomath.Asin(float64(off.Y / o.Distance)))
	o.Yaw = float32(gomath.Atan2(float64(off.X), float64(off.Z)))
}

// Position returns the camera position implied by the current coordinates.
func (o *OrbitControls) Position() math.Vec3 {
	q := math.QuatFromAxisAngle(math.UnitY, o.Yaw).
		Mul(math.QuatFromAxisAngle(math.UnitX, -o.Pitch))
	return o.Target.Add(q.Rotate(math.Vec3{Z: o.Distance}))
}

// HandleDrag rotates around the target based on mouse drag delta in pixels.
func (o *OrbitControls) HandleDrag(deltaX, deltaY float32) {
	if !o.Enabled {
		return
	}
	o.Yaw -= deltaX * o.DragSensitivity
	o.Pitch += deltaY * o.DragSensitivity
	o.clamp()
}

// HandleZoom dollies towards or away from the target based on scroll wheel delta.
func (o *OrbitControls) HandleZoom(delta float32) {
	if !o.Enabled {
		return
	}
	o.Distance -= delta * o.Distance * o.ZoomSensitivity
	o.clamp()
}

// HandlePan moves the target in the view plane based on mouse drag delta in pixels.
func (o *OrbitControls) HandlePan(deltaX, deltaY float32) {
	if !o.Enabled {
		return
	}
	forward := o.Target.Sub(o.Position()).Normalize()
	right := forward.Cross(math.UnitY).Normalize()
	up := right.Cross(forward)

	// Speed scales with distance for consistent feel
	speed := o.Distance * o.PanSensitivity
	o.Target = o.Target.
		Add(right.Scale(-deltaX * speed)).
		Add(up.Scale(deltaY * speed))
}

// Update writes the orbit position and target into the camera. Call once per frame.
func (o *OrbitControls) Update() {
	o.camera.Position = o.Position()
	o.camera.Target = o.Target
}

func (o *OrbitControls) clamp() {
	o.Pitch = min(max(o.Pitch, o.MinPitch), o.MaxPitch)
	o.Distance = min(max(o.Distance, o.MinDistance), o.MaxDistance)
}
