package linalg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotHermitian indicates a matrix that is not conjugate-symmetric.
	ErrNotHermitian = errors.New("linalg: matrix is not Hermitian")

	// ErrNotRealSymmetric indicates a complex matrix with imaginary parts
	// too large for the real-symmetric eigensolver.
	ErrNotRealSymmetric = errors.New("linalg: matrix has non-negligible imaginary parts")

	// ErrEigenFailed indicates the eigendecomposition did not converge.
	ErrEigenFailed = errors.New("linalg: eigendecomposition failed")
)

// HermTol is the tolerance used when checking Hermiticity and when
// deciding a complex matrix is representable as real-symmetric.
const HermTol = 1e-12

// EigenSym diagonalizes a real symmetric matrix, returning the eigenvalues
// in ascending order and the matrix of column eigenvectors.
func EigenSym(a *mat.Dense) ([]float64, *mat.Dense, error) {
	n, c := a.Dims()
	if n != c {
		return nil, nil, ErrEigenFailed
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, nil, ErrEigenFailed
	}
	vals := make([]float64, n)
	eig.Values(vals)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	return vals, &vecs, nil
}

// EigenHermitian diagonalizes a complex Hermitian matrix whose entries are
// real to within HermTol. The models handled here produce purely real
// Hamiltonians, so the real-symmetric solver applies.
func EigenHermitian(h *mat.CDense) ([]float64, *mat.Dense, error) {
	if !IsHermitian(h, HermTol) {
		return nil, nil, ErrNotHermitian
	}
	if MaxImag(h) > HermTol {
		return nil, nil, ErrNotRealSymmetric
	}
	return EigenSym(RealPart(h))
}

// SqrtInverse computes S^(-1/2) of a real symmetric positive-definite
// matrix via its eigendecomposition (Lowdin orthogonalization).
func SqrtInverse(s *mat.Dense) (*mat.Dense, error) {
	vals, vecs, err := EigenSym(s)
	if err != nil {
		return nil, err
	}
	n := len(vals)
	d := mat.NewDense(n, n, nil)
	for i, v := range vals {
		if v <= 0 {
			return nil, ErrEigenFailed
		}
		d.Set(i, i, 1.0/math.Sqrt(v))
	}
	out := mat.NewDense(n, n, nil)
	out.Mul(vecs, d)
	out.Mul(out, vecs.T())
	return out, nil
}

// EigenGeneral solves the generalized eigenproblem H U = S U E for a real
// Hamiltonian and overlap pair by Lowdin orthogonalization: the ordinary
// problem is solved for S^(-1/2) H S^(-1/2) and the vectors are mapped
// back with U = S^(-1/2) C. The returned U satisfies U^T S U = I.
func EigenGeneral(h, s *mat.CDense) ([]float64, *mat.CDense, error) {
	if !IsHermitian(h, HermTol) || !IsHermitian(s, HermTol) {
		return nil, nil, ErrNotHermitian
	}
	if MaxImag(h) > HermTol || MaxImag(s) > HermTol {
		return nil, nil, ErrNotRealSymmetric
	}
	sr := RealPart(s)
	sHalf, err := SqrtInverse(sr)
	if err != nil {
		return nil, nil, err
	}
	hr := RealPart(h)
	n, _ := hr.Dims()
	ht := mat.NewDense(n, n, nil)
	ht.Mul(sHalf, hr)
	ht.Mul(ht, sHalf)
	vals, vecs, err := EigenSym(ht)
	if err != nil {
		return nil, nil, err
	}
	u := mat.NewDense(n, n, nil)
	u.Mul(sHalf, vecs)
	return vals, FromReal(u), nil
}
