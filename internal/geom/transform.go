package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const Epsilon = 1e-9

// Transform is a basis plus an origin. For rigid transforms the basis is
// orthonormal; AffineInverse handles the general case.
type Transform struct {
	Basis  mgl64.Mat3
	Origin mgl64.Vec3
}

func Identity() Transform {
	return Transform{Basis: mgl64.Ident3()}
}

func NewTransform(basis mgl64.Mat3, origin mgl64.Vec3) Transform {
	return Transform{Basis: basis, Origin: origin}
}

// Translation returns an identity-basis transform at origin.
func Translation(origin mgl64.Vec3) Transform {
	return Transform{Basis: mgl64.Ident3(), Origin: origin}
}

func (t Transform) Xform(v mgl64.Vec3) mgl64.Vec3 {
	return t.Basis.Mul3x1(v).Add(t.Origin)
}

// XformInv assumes an orthonormal basis.
func (t Transform) XformInv(v mgl64.Vec3) mgl64.Vec3 {
	return t.Basis.Transpose().Mul3x1(v.Sub(t.Origin))
}

func (t Transform) BasisXform(v mgl64.Vec3) mgl64.Vec3 {
	return t.Basis.Mul3x1(v)
}

func (t Transform) BasisXformInv(v mgl64.Vec3) mgl64.Vec3 {
	return t.Basis.Transpose().Mul3x1(v)
}

// Mul composes t after o: the result maps a point p to t.Xform(o.Xform(p)).
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Basis:  t.Basis.Mul3(o.Basis),
		Origin: t.Xform(o.Origin),
	}
}

// Inverse assumes an orthonormal basis.
func (t Transform) Inverse() Transform {
	bt := t.Basis.Transpose()
	return Transform{Basis: bt, Origin: bt.Mul3x1(t.Origin).Mul(-1)}
}

func (t Transform) AffineInverse() Transform {
	inv := t.Basis.Inv()
	return Transform{Basis: inv, Origin: inv.Mul3x1(t.Origin).Mul(-1)}
}

func (t Transform) Orthonormalized() Transform {
	return Transform{Basis: Orthonormalize(t.Basis), Origin: t.Origin}
}

func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	for i := range t.Basis {
		if math.Abs(t.Basis[i]-o.Basis[i]) > eps {
			return false
		}
	}
	return Near(t.Origin, o.Origin, eps)
}

// Near reports whether a and b are within eps of each other in absolute
// distance.
func Near(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

// Orthonormalize runs Gram-Schmidt over the columns of m, X first.
func Orthonormalize(m mgl64.Mat3) mgl64.Mat3 {
	x := m.Col(0)
	y := m.Col(1)
	z := m.Col(2)

	x = safeNormalize(x)
	y = safeNormalize(y.Sub(x.Mul(x.Dot(y))))
	z = safeNormalize(z.Sub(x.Mul(x.Dot(z))).Sub(y.Mul(y.Dot(z))))
	return mgl64.Mat3FromCols(x, y, z)
}

// Rotation returns the right-handed rotation of angle radians around axis.
// A zero axis yields the identity.
func Rotation(axis mgl64.Vec3, angle float64) mgl64.Mat3 {
	l := axis.Len()
	if l < Epsilon || angle == 0 {
		return mgl64.Ident3()
	}
	return mgl64.QuatRotate(angle, axis.Mul(1/l)).Mat4().Mat3()
}

// AxisAngle extracts the rotation axis and angle of an orthonormal basis.
// Angle is in [0, pi]; for the identity the axis is zero.
func AxisAngle(m mgl64.Mat3) (mgl64.Vec3, float64) {
	tr := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
	c := clamp((tr-1)/2, -1, 1)
	angle := math.Acos(c)
	if angle < Epsilon {
		return mgl64.Vec3{}, 0
	}

	axis := mgl64.Vec3{
		m.At(2, 1) - m.At(1, 2),
		m.At(0, 2) - m.At(2, 0),
		m.At(1, 0) - m.At(0, 1),
	}
	if axis.Len() > 1e-6 {
		return axis.Normalize(), angle
	}

	// angle close to pi: take the dominant column of (m+I)/2
	xx := (m.At(0, 0) + 1) / 2
	yy := (m.At(1, 1) + 1) / 2
	zz := (m.At(2, 2) + 1) / 2
	switch {
	case xx >= yy && xx >= zz:
		x := math.Sqrt(math.Max(xx, 0))
		axis = mgl64.Vec3{x, m.At(0, 1) / (2 * x), m.At(0, 2) / (2 * x)}
	case yy >= zz:
		y := math.Sqrt(math.Max(yy, 0))
		axis = mgl64.Vec3{m.At(0, 1) / (2 * y), y, m.At(1, 2) / (2 * y)}
	default:
		z := math.Sqrt(math.Max(zz, 0))
		axis = mgl64.Vec3{m.At(0, 2) / (2 * z), m.At(1, 2) / (2 * z), z}
	}
	return safeNormalize(axis), angle
}

// ScaledTensor returns r * diag(d) * rᵀ.
func ScaledTensor(r mgl64.Mat3, d mgl64.Vec3) mgl64.Mat3 {
	return r.Mul3(Diagonal(d)).Mul3(r.Transpose())
}

func Diagonal(d mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{d[0], 0, 0, 0, d[1], 0, 0, 0, d[2]}
}

// Reciprocal inverts each component, leaving zeros at zero.
func Reciprocal(v mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range v {
		if v[i] != 0 {
			out[i] = 1 / v[i]
		}
	}
	return out
}

// Orthogonal returns two unit vectors perpendicular to n and to each other.
func Orthogonal(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var p mgl64.Vec3
	if math.Abs(n[2]) > 0.7071067811865476 {
		a := n[1]*n[1] + n[2]*n[2]
		k := 1 / math.Sqrt(a)
		p = mgl64.Vec3{0, -n[2] * k, n[1] * k}
	} else {
		a := n[0]*n[0] + n[1]*n[1]
		k := 1 / math.Sqrt(a)
		p = mgl64.Vec3{-n[1] * k, n[0] * k, 0}
	}
	return p, n.Cross(p)
}

// AxisFrame returns a frame at origin whose basis column col (0 for X, 1 for
// Y, 2 for Z) points along axis. The basis is right-handed.
func AxisFrame(origin, axis mgl64.Vec3, col int) Transform {
	a := axis.Normalize()
	p, q := Orthogonal(a)
	var cols [3]mgl64.Vec3
	cols[col%3], cols[(col+1)%3], cols[(col+2)%3] = a, p, q
	return NewTransform(mgl64.Mat3FromCols(cols[0], cols[1], cols[2]), origin)
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// SafeNormalize is Normalize without the NaN on zero-length input.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 { return safeNormalize(v) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
