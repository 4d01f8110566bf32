package model

import "gonum.org/v1/gonum/mat"

// LinReg is least-squares linear regression: 1/2 (x_i·w + b - y_i)².
type LinReg struct {
	*glm
}

var _ GLM = (*LinReg)(nil)

// NewLinReg creates a least-squares model. features is copied unless it is
// a *CSR or a *sparse.CSR, in which case the model is sparse and shares its
// storage.
func NewLinReg(features mat.Matrix, labels []float64, options ...Option) (*LinReg, error) {
	if err := checkFinite(labels); err != nil {
		return nil, err
	}
	g, err := newGLM(features, labels, leastSquares{}, options)
	if err != nil {
		return nil, err
	}
	return &LinReg{glm: g}, nil
}

type leastSquares struct{}

func (leastSquares) value(z, y float64) float64 {
	d := z - y
	return 0.5 * d * d
}

func (leastSquares) deriv(z, y float64) float64 {
	return z - y
}
