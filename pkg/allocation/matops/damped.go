package matops

// DampedLeastSquares computes a Levenberg-Marquardt regularized
// pseudo-inverse: J+ = J^T * (J*J^T + lambda^2 * I)^-1. It is the fallback
// the allocation matrix builder falls back to when the Jacobi SVD pseudo
// inverse reports a singular matrix, grounded on the teacher's damped
// least-squares fallback (x/math/mat/pseudo_inverse.go).
func DampedLeastSquares(m Matrix, lambda float32) (Matrix, error) {
	rows := m.Rows()
	jjt := New(rows, rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < rows; c++ {
			var sum float32
			for k := range m[r] {
				sum += m[r][k] * m[c][k]
			}
			jjt[r][c] = sum
		}
		jjt[r][r] += lambda * lambda
	}

	inv, err := invertSquare(jjt)
	if err != nil {
		return nil, err
	}

	// result = J^T * inv
	cols := m.Cols()
	result := New(cols, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			var sum float32
			for k := 0; k < rows; k++ {
				sum += m[k][c] * inv[k][r]
			}
			result[c][r] = sum
		}
	}
	return result, nil
}

// invertSquare inverts a small square matrix via Gauss-Jordan elimination
// with partial pivoting.
func invertSquare(a Matrix) (Matrix, error) {
	n := a.Rows()
	aug := New(n, 2*n)
	for r := 0; r < n; r++ {
		copy(aug[r][:n], a[r])
		aug[r][n+r] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		maxVal := abs32(aug[pivot][col])
		for r := col + 1; r < n; r++ {
			if v := abs32(aug[r][col]); v > maxVal {
				maxVal = v
				pivot = r
			}
		}
		if maxVal < 1e-9 {
			return nil, errSingular
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pivotVal := aug[col][col]
		invPivot := 1 / pivotVal
		for c := 0; c < 2*n; c++ {
			aug[col][c] *= invPivot
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor == 0 {
				continue
			}
			for c := 0; c < 2*n; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	inv := New(n, n)
	for r := 0; r < n; r++ {
		copy(inv[r], aug[r][n:])
	}
	return inv, nil
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
