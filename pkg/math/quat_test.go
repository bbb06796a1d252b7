package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatToMat4(t *testing.T) {
	// Identity quaternion should produce identity matrix
	q := QuatIdentity()
	m := q.ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-identity[i])) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestQuatComposesAboutY(t *testing.T) {
	a := QuatFromAxisAngle(UnitY, 0.3)
	b := QuatFromAxisAngle(UnitY, 0.4)
	qm := a.Mul(b).ToMat4()
	rm := QuatFromAxisAngle(UnitY, 0.7).ToMat4()
	for i := 0; i < 16; i++ {
		if abs(qm[i]-rm[i]) > 1e-5 {
			t.Errorf("element %d: product %v, single %v", i, qm[i], rm[i])
		}
	}
}

func TestQuatAngleAroundAccumulates(t *testing.T) {
	q := QuatIdentity()
	step := QuatFromAxisAngle(UnitY, 0.04)
	for i := 0; i < 100; i++ {
		q = q.Mul(step).Normalize()
	}
	got := q.AngleAround(UnitY)
	if math.Abs(got-4.0) > 1e-3 {
		t.Errorf("AngleAround after 100 steps = %v, want 4.0", got)
	}
}

func TestQuatAngleAroundWraps(t *testing.T) {
	q := QuatFromAxisAngle(UnitY, float32(TwoPi+0.25))
	got := q.AngleAround(UnitY)
	if math.Abs(got-0.25) > 1e-4 {
		t.Errorf("AngleAround = %v, want 0.25", got)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(UnitY, float32(math.Pi/2))
	got := q.Rotate(Vec3{28, 0, 0})
	if !got.ApproxEqual(Vec3{0, 0, -28}, 1e-4) {
		t.Errorf("Rotate 90 about Y = %v, want (0, 0, -28)", got)
	}
}
