// Copyright 2019 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Initially copied from G3N: github.com/g3n/engine/math32
// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// with modifications needed to suit Cogent Core functionality.

package math32

// Matrix4 is 4x4 matrix organized internally as column matrix,
// the layout expected by WGSL mat4x4<f32> uniforms.
type Matrix4 [16]float32

// Identity4 returns a new identity [Matrix4] matrix.
func Identity4() Matrix4 {
	m := Matrix4{}
	m.SetIdentity()
	return m
}

// Set sets all the elements of this matrix row by row starting at row1, column1,
// row1, column2, row1, column3 and so forth.
func (m *Matrix4) Set(n11, n12, n13, n14, n21, n22, n23, n24, n31, n32, n33, n34, n41, n42, n43, n44 float32) {
	m[0] = n11
	m[4] = n12
	m[8] = n13
	m[12] = n14
	m[1] = n21
	m[5] = n22
	m[9] = n23
	m[13] = n24
	m[2] = n31
	m[6] = n32
	m[10] = n33
	m[14] = n34
	m[3] = n41
	m[7] = n42
	m[11] = n43
	m[15] = n44
}

// SetIdentity sets this matrix as the identity matrix.
func (m *Matrix4) SetIdentity() {
	m.Set(
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	)
}

// At returns the element at the given row and column.
func (m *Matrix4) At(row, col int) float32 {
	return m[col*4+row]
}

// Mul returns this matrix times other matrix (this matrix is unchanged)
func (m *Matrix4) Mul(other *Matrix4) *Matrix4 {
	nm := &Matrix4{}
	nm.MulMatrices(m, other)
	return nm
}

// MulMatrices sets this matrix as the matrix product a * b.
func (m *Matrix4) MulMatrices(a, b *Matrix4) {
	var r Matrix4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	*m = r
}

// MulVector4 returns this matrix times the given vector.
func (m *Matrix4) MulVector4(v Vector4) Vector4 {
	return Vector4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulVector3AsPoint returns this matrix times the given point
// (w = 1), after the perspective divide.
func (m *Matrix4) MulVector3AsPoint(v Vector3) Vector3 {
	return m.MulVector4(Vector4FromVector3(v, 1)).PerspDiv()
}

// SetLookAt sets this matrix to the view matrix of an eye
// looking at target with the given up direction.
// If the view direction is parallel to up, the right axis
// falls back to +X.
func (m *Matrix4) SetLookAt(eye, target, up Vector3) {
	f := target.Sub(eye).Normal()
	s := f.Cross(up)
	if s.LengthSquared() == 0 {
		s = Vector3X
	}
	s = s.Normal()
	u := s.Cross(f)
	m[0], m[1], m[2], m[3] = s.X, u.X, -f.X, 0
	m[4], m[5], m[6], m[7] = s.Y, u.Y, -f.Y, 0
	m[8], m[9], m[10], m[11] = s.Z, u.Z, -f.Z, 0
	m[12], m[13], m[14], m[15] = -s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1
}

// LookAt returns a new view matrix, see [Matrix4.SetLookAt].
func LookAt(eye, target, up Vector3) Matrix4 {
	m := Matrix4{}
	m.SetLookAt(eye, target, up)
	return m
}

// SetPerspective sets this matrix to a perspective projection matrix
// with the vertical field of view fovy in radians, aspect ratio
// and near and far clip planes.
func (m *Matrix4) SetPerspective(fovy, aspect, near, far float32) {
	f := 1 / Tan(fovy/2)
	nf := 1 / (near - far)
	*m = Matrix4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Perspective returns a new perspective projection matrix,
// see [Matrix4.SetPerspective].
func Perspective(fovy, aspect, near, far float32) Matrix4 {
	m := Matrix4{}
	m.SetPerspective(fovy, aspect, near, far)
	return m
}

// SetOrthographic sets this matrix to an orthographic projection
// of the given box onto normalized device coordinates.
func (m *Matrix4) SetOrthographic(left, right, bottom, top, near, far float32) {
	w := right - left
	h := top - bottom
	d := far - near
	m.Set(
		2/w, 0, 0, -(right+left)/w,
		0, 2/h, 0, -(top+bottom)/h,
		0, 0, -2/d, -(far+near)/d,
		0, 0, 0, 1,
	)
}

// Orthographic returns a new orthographic projection matrix,
// see [Matrix4.SetOrthographic].
func Orthographic(left, right, bottom, top, near, far float32) Matrix4 {
	m := Matrix4{}
	m.SetOrthographic(left, right, bottom, top, near, far)
	return m
}
