// Package model provides the loss side of the stochastic solvers: the Model
// and GLM interfaces they consume, and least-squares and logistic
// regression over dense or CSR feature matrices.
package model

// Model is a finite sum of smooth loss terms over NSamples samples.
// Coefficient vectors have length NCoeffs: NFeatures weights followed by
// the intercept when UseIntercept is true.
type Model interface {
	// Grad writes the average gradient over all samples at w into out.
	Grad(w, out []float64)
	// GradI writes the gradient of the i-th loss term at w into out.
	GradI(i int, w, out []float64)
	// Loss returns the average loss at w.
	Loss(w []float64) float64

	NFeatures() int
	NSamples() int
	NCoeffs() int
	UseIntercept() bool
	IsSparse() bool
}

// GLM is a generalized linear model: the gradient of sample i is
// GradIFactor(i, w) times its feature vector (and times one for the
// intercept), which lets solvers work on the sample's support only.
type GLM interface {
	Model
	// GradIFactor returns the loss derivative of sample i at w.
	GradIFactor(i int, w []float64) float64
	// Features returns the support of sample i and the values on it.
	// The slices alias model storage and must not be modified.
	Features(i int) (indices []int, values []float64)
	// ColumnNonZeros writes the number of samples whose support contains
	// each feature into out (length NFeatures). For dense features only
	// nonzero values count.
	ColumnNonZeros(out []int)
}
