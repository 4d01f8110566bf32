package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LogReg is binary logistic regression with labels in {-1, +1}:
// log(1 + exp(-y_i (x_i·w + b))).
type LogReg struct {
	*glm
}

var _ GLM = (*LogReg)(nil)

// NewLogReg creates a logistic regression model.
func NewLogReg(features mat.Matrix, labels []float64, options ...Option) (*LogReg, error) {
	for i, y := range labels {
		if y != 1 && y != -1 {
			return nil, fmt.Errorf("label %d must be -1 or +1, got %v", i, y)
		}
	}
	g, err := newGLM(features, labels, logistic{}, options)
	if err != nil {
		return nil, err
	}
	return &LogReg{glm: g}, nil
}

// Sigmoid is the numerically stable logistic function.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes log(1 + exp(z)) without overflow.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

type logistic struct{}

func (logistic) value(z, y float64) float64 {
	return softplus(-y * z)
}

func (logistic) deriv(z, y float64) float64 {
	return -y * Sigmoid(-y*z)
}
