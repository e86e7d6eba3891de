package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Rotation is a 3x3 rotation matrix in row-major order. A proper rotation is
// orthonormal with determinant +1; after a chirality flip the determinant is -1
// until the pose is re-estimated.
type Rotation [3][3]float64

// Identity returns the identity rotation.
func Identity() Rotation {
	return Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// MulVec applies the rotation to v.
func (r Rotation) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		Y: r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		Z: r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

// Det returns the determinant.
func (r Rotation) Det() float64 {
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// NegateColumn returns a copy with column col negated. Negating one column of
// an orthonormal matrix flips its handedness, which is how a mirrored pose
// estimate is corrected before re-fitting.
func (r Rotation) NegateColumn(col int) Rotation {
	out := r
	for i := 0; i < 3; i++ {
		out[i][col] = -out[i][col]
	}
	return out
}

// FromAxisAngle builds a rotation from an axis-angle vector (Rodrigues form):
// the direction is the rotation axis, the magnitude the angle in radians.
func FromAxisAngle(v r3.Vector) Rotation {
	theta := v.Norm()
	if theta < 1e-12 {
		return Identity()
	}
	k := v.Mul(1 / theta)
	s := math.Sin(theta)
	c := math.Cos(theta)
	// R = I + sin(t)K + (1-cos(t))K^2 with K the cross-product matrix of k.
	t := 1 - c
	return Rotation{
		{c + k.X*k.X*t, k.X*k.Y*t - k.Z*s, k.X*k.Z*t + k.Y*s},
		{k.Y*k.X*t + k.Z*s, c + k.Y*k.Y*t, k.Y*k.Z*t - k.X*s},
		{k.Z*k.X*t - k.Y*s, k.Z*k.Y*t + k.X*s, c + k.Z*k.Z*t},
	}
}

// ToAxisAngle converts a proper rotation to its axis-angle vector.
func (r Rotation) ToAxisAngle() r3.Vector {
	cosTheta := (r[0][0] + r[1][1] + r[2][2] - 1) / 2
	if cosTheta > 1 {
		cosTheta = 1
	} else if cosTheta < -1 {
		cosTheta = -1
	}
	theta := math.Acos(cosTheta)
	if theta < 1e-12 {
		return r3.Vector{}
	}
	if math.Pi-theta < 1e-6 {
		// Near 180 degrees the off-diagonal formula degenerates; recover the
		// axis from the dominant diagonal term instead.
		axis := r3.Vector{
			X: math.Sqrt(math.Max(0, (r[0][0]+1)/2)),
			Y: math.Sqrt(math.Max(0, (r[1][1]+1)/2)),
			Z: math.Sqrt(math.Max(0, (r[2][2]+1)/2)),
		}
		if r[0][1]+r[1][0] < 0 {
			axis.Y = -axis.Y
		}
		if r[0][2]+r[2][0] < 0 {
			axis.Z = -axis.Z
		}
		return axis.Normalize().Mul(theta)
	}
	scale := theta / (2 * math.Sin(theta))
	return r3.Vector{
		X: (r[2][1] - r[1][2]) * scale,
		Y: (r[0][2] - r[2][0]) * scale,
		Z: (r[1][0] - r[0][1]) * scale,
	}
}

// Pose couples a rotation with a translation: the rigid transform taking
// subject-frame coordinates into the camera frame.
type Pose struct {
	R Rotation
	T r3.Vector
}

// Apply transforms a subject-frame point into the camera frame.
func (p Pose) Apply(v r3.Vector) r3.Vector {
	return p.R.MulVec(v).Add(p.T)
}
