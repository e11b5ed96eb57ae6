package garden

import "github.com/chewxy/math32"

// Mat4 is a 4x4 float32 matrix stored in column-major order, so element
// (row r, column c) lives at index c*4+r. Points are column vectors and
// transforms compose right to left: (A.Mul(B)) applies B first.
type Mat4 [16]float32

// Vec4 is a homogeneous coordinate produced by Mat4.MulPoint.
type Vec4 struct {
	X, Y, Z, W float32
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a matrix translating by v.
func Translation(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scaling returns a matrix scaling by v.
func Scaling(v Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// RotationX returns a rotation of angle radians around the X axis.
func RotationX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotationY returns a rotation of angle radians around the Y axis.
func RotationY(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotationZ returns a rotation of angle radians around the Z axis.
func RotationZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// Compose builds a local transform from position, XYZ Euler rotation, and scale.
func Compose(position, rotation, scale Vec3) Mat4 {
	r := RotationX(rotation.X).Mul(RotationY(rotation.Y)).Mul(RotationZ(rotation.Z))
	return Translation(position).Mul(r).Mul(Scaling(scale))
}

// Mul returns m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = m[r]*o[c*4] + m[4+r]*o[c*4+1] + m[8+r]*o[c*4+2] + m[12+r]*o[c*4+3]
		}
	}
	return out
}

// MulPoint transforms the point v (w = 1).
func (m Mat4) MulPoint(v Vec3) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15],
	}
}

// Perspective returns an OpenGL-style perspective projection. fovY is the
// vertical field of view in degrees.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY*math32.Pi/360)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / (near - far)
	m[11] = -1
	m[14] = 2 * far * near / (near - far)
	return m
}

// LookAt returns a view matrix for an eye looking at target with the given up vector.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalized()
	s := f.Cross(up).Normalized()
	u := s.Cross(f)
	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}
