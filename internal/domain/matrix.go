package domain

// Mat4 is a 4x4 matrix stored in column-major order. Columns 0..2 hold the
// basis vectors of a local frame and column 3 its translation.
type Mat4 [16]float64

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// SetIdentity resets m to the identity matrix.
func (m *Mat4) SetIdentity() {
	*m = Identity4()
}

// SideVector returns the first basis column (east for a local frame).
func (m *Mat4) SideVector() [3]float64 {
	return [3]float64{m[0], m[1], m[2]}
}

// FrontVector returns the second basis column (north for a local frame).
func (m *Mat4) FrontVector() [3]float64 {
	return [3]float64{m[4], m[5], m[6]}
}

// UpVector returns the third basis column.
func (m *Mat4) UpVector() [3]float64 {
	return [3]float64{m[8], m[9], m[10]}
}

// Translation returns the translation column.
func (m *Mat4) Translation() [3]float64 {
	return [3]float64{m[12], m[13], m[14]}
}

// MulVec3 transforms v as a point (w = 1) and returns the xyz part.
func (m *Mat4) MulVec3(v [3]float64) [3]float64 {
	return [3]float64{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14],
	}
}
