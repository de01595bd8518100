package vrm

import "math"

// Quat is a rotation quaternion in VRM component order (x, y, z, w).
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat returns the identity rotation.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// Mul returns the Hamilton product q * r (apply r, then q).
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Inverse returns the inverse rotation. For unit quaternions this is the
// conjugate; non-unit inputs are handled by dividing by the squared norm.
func (q Quat) Inverse() Quat {
	n := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if n < 1e-12 {
		return IdentityQuat()
	}
	return Quat{X: -q.X / n, Y: -q.Y / n, Z: -q.Z / n, W: q.W / n}
}

// Dot returns the component dot product.
func (q Quat) Dot(r Quat) float64 {
	return q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W
}

// Norm returns the quaternion magnitude.
func (q Quat) Norm() float64 {
	return math.Sqrt(q.Dot(q))
}

// Normalize returns a unit quaternion. Degenerate inputs collapse to identity.
func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n < 1e-12 {
		return IdentityQuat()
	}
	return Quat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Neg returns the antipodal quaternion, which represents the same rotation.
func (q Quat) Neg() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
}

// AngleTo returns the absolute rotation angle between q and r in radians,
// accounting for the quaternion double cover.
func (q Quat) AngleTo(r Quat) float64 {
	d := math.Abs(q.Normalize().Dot(r.Normalize()))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// Lerp returns the normalized component-wise interpolation toward r.
// The shorter arc is taken by flipping r when the hemispheres differ.
func (q Quat) Lerp(r Quat, t float64) Quat {
	if q.Dot(r) < 0 {
		r = r.Neg()
	}
	return Quat{
		X: q.X + t*(r.X-q.X),
		Y: q.Y + t*(r.Y-q.Y),
		Z: q.Z + t*(r.Z-q.Z),
		W: q.W + t*(r.W-q.W),
	}.Normalize()
}

// QuatFromAxisAngle builds a rotation of angle radians around the given axis.
func QuatFromAxisAngle(x, y, z, angle float64) Quat {
	n := math.Sqrt(x*x + y*y + z*z)
	if n < 1e-12 {
		return IdentityQuat()
	}
	s := math.Sin(angle / 2)
	return Quat{
		X: x / n * s,
		Y: y / n * s,
		Z: z / n * s,
		W: math.Cos(angle / 2),
	}
}

// Vec3 is a 3-component vector (meters for positions).
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Lerp returns the linear interpolation toward o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + t*(o.X-v.X),
		Y: v.Y + t*(o.Y-v.Y),
		Z: v.Z + t*(o.Z-v.Z),
	}
}

// DistanceTo returns the Euclidean distance to o.
func (v Vec3) DistanceTo(o Vec3) float64 {
	d := v.Sub(o)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Vec2 is a 2-component vector (used for gaze offsets).
type Vec2 struct {
	X, Y float64
}
