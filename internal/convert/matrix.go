package convert

// 4x4 matrices are column-major float64[16], matching the glTF
// convention, so a node's "matrix" array can be used directly.

func identityMatrix() [16]float64 {
	return [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// localMatrix builds a node's local transform from either its matrix
// array or its translation/rotation/scale triple.
func localMatrix(n node) [16]float64 {
	if len(n.Matrix) == 16 {
		var m [16]float64
		copy(m[:], n.Matrix)
		return m
	}

	m := identityMatrix()
	if len(n.Scale) == 3 {
		m = multiplyMatrix(scaleMatrix(n.Scale[0], n.Scale[1], n.Scale[2]), m)
	}
	if len(n.Rotation) == 4 {
		m = multiplyMatrix(quaternionMatrix(n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3]), m)
	}
	if len(n.Translation) == 3 {
		m[12] += n.Translation[0]
		m[13] += n.Translation[1]
		m[14] += n.Translation[2]
	}
	return m
}

func scaleMatrix(x, y, z float64) [16]float64 {
	m := identityMatrix()
	m[0], m[5], m[10] = x, y, z
	return m
}

// quaternionMatrix converts a glTF unit quaternion (x, y, z, w) to a
// rotation matrix.
func quaternionMatrix(x, y, z, w float64) [16]float64 {
	return [16]float64{
		1 - 2*(y*y+z*z), 2 * (x*y + w*z), 2 * (x*z - w*y), 0,
		2 * (x*y - w*z), 1 - 2*(x*x+z*z), 2 * (y*z + w*x), 0,
		2 * (x*z + w*y), 2 * (y*z - w*x), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
}

func multiplyMatrix(a, b [16]float64) [16]float64 {
	var out [16]float64
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

func transformPoint(m [16]float64, p [3]float64) [3]float64 {
	return [3]float64{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

// transformDirection applies only the linear part of the transform,
// for normals. Non-uniform scale is not compensated; viewers
// renormalize.
func transformDirection(m [16]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}
