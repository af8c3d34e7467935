// Package matops provides a small row-major float32 matrix type and a
// Jacobi-SVD Moore-Penrose pseudo-inverse, sized for the allocation
// matrix's 6xN (N = thruster count) shape. Adapted from the teacher's
// row-major Matrix type (x/math/mat/mat.go) and its PseudoInverse entry
// point (x/math/mat/pseudo_inverse.go); the teacher delegates the actual
// decomposition to an internal primitive (fp32.Gepseu) that is not present
// in this reference set, so the decomposition itself is reimplemented here
// as a one-sided Jacobi SVD, which is the standard textbook approach for
// small dense matrices like this one.
package matops

import "github.com/chewxy/math32"

// Matrix is a row-major matrix of float32.
type Matrix [][]float32

// New allocates a rows x cols zero matrix.
func New(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for r := range m {
		m[r] = make([]float32, cols)
	}
	return m
}

func (m Matrix) Rows() int { return len(m) }
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Transpose returns a new matrix that is the transpose of m.
func (m Matrix) Transpose() Matrix {
	rows, cols := m.Rows(), m.Cols()
	t := New(cols, rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t[c][r] = m[r][c]
		}
	}
	return t
}

// MulVec computes m * v.
func (m Matrix) MulVec(v []float32) []float32 {
	out := make([]float32, m.Rows())
	for r := range m {
		var sum float32
		row := m[r]
		for c, val := range row {
			sum += val * v[c]
		}
		out[r] = sum
	}
	return out
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	c := New(m.Rows(), m.Cols())
	for r := range m {
		copy(c[r], m[r])
	}
	return c
}

func colDot(m Matrix, a, b int) float32 {
	var sum float32
	for r := range m {
		sum += m[r][a] * m[r][b]
	}
	return sum
}

// SingularityEpsilon is the default threshold below which a singular value
// is treated as zero (spec.md §4.2: epsilon 1e-5).
const SingularityEpsilon = 1e-5

// maxJacobiSweeps bounds the one-sided Jacobi SVD iteration, mirroring the
// spec's "at most 100 iterations" bound on the pseudo-inverse computation.
const maxJacobiSweeps = 100

// PseudoInverse computes the Moore-Penrose pseudo-inverse of m (shape
// rows x cols) via one-sided Jacobi SVD, returning a cols x rows matrix.
// Singular values at or below epsilon are treated as zero (their
// contribution is dropped rather than inverted), matching the spec's
// epsilon-thresholded SVD pseudo-inverse.
func PseudoInverse(m Matrix, epsilon float32) (Matrix, error) {
	rows, cols := m.Rows(), m.Cols()
	if rows == 0 || cols == 0 {
		return nil, errSingular
	}

	work := m.Clone()
	v := identity(cols)

	for sweep := 0; sweep < maxJacobiSweeps; sweep++ {
		converged := true
		for p := 0; p < cols-1; p++ {
			for q := p + 1; q < cols; q++ {
				alpha := colDot(work, p, p)
				beta := colDot(work, q, q)
				gamma := colDot(work, p, q)
				if math32.Abs(gamma) <= epsilon*math32.Sqrt(alpha*beta+1e-30) {
					continue
				}
				converged = false
				rotate(work, v, p, q, alpha, beta, gamma)
			}
		}
		if converged {
			break
		}
	}

	singular := make([]float32, cols)
	var maxSingular float32
	for c := 0; c < cols; c++ {
		singular[c] = math32.Sqrt(colDot(work, c, c))
		if singular[c] > maxSingular {
			maxSingular = singular[c]
		}
	}
	if maxSingular <= epsilon {
		return nil, errSingular
	}

	// work's columns are now U*Sigma (orthogonal directions scaled by
	// singular value); normalize to get U.
	u := New(rows, cols)
	for c := 0; c < cols; c++ {
		if singular[c] <= epsilon {
			continue
		}
		inv := 1 / singular[c]
		for r := 0; r < rows; r++ {
			u[r][c] = work[r][c] * inv
		}
	}

	// M+ = V * Sigma+ * U^T
	result := New(cols, rows)
	for i := 0; i < cols; i++ {
		for r := 0; r < rows; r++ {
			var sum float32
			for k := 0; k < cols; k++ {
				if singular[k] <= epsilon {
					continue
				}
				sum += v[i][k] * u[r][k] / singular[k]
			}
			result[i][r] = sum
		}
	}
	return result, nil
}

func rotate(work, v Matrix, p, q int, alpha, beta, gamma float32) {
	zeta := (beta - alpha) / (2 * gamma)
	var t float32
	if zeta >= 0 {
		t = 1 / (zeta + math32.Sqrt(1+zeta*zeta))
	} else {
		t = -1 / (-zeta + math32.Sqrt(1+zeta*zeta))
	}
	c := 1 / math32.Sqrt(1+t*t)
	s := c * t

	for r := range work {
		wp, wq := work[r][p], work[r][q]
		work[r][p] = c*wp - s*wq
		work[r][q] = s*wp + c*wq
	}
	for r := range v {
		vp, vq := v[r][p], v[r][q]
		v[r][p] = c*vp - s*vq
		v[r][q] = s*vp + c*vq
	}
}

func identity(n int) Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}
