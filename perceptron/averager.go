package perceptron

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// averager keeps the raw weights w together with ws, the sum of every weight
// change scaled by the update counter at which it happened. The average of all
// weight vectors seen up to counter c is then w - ws/c, which lets updates stay
// sparse.
type averager struct {
	w  []float64
	ws []float64
}

// update applies w[k] += sign*value and ws[k] += sign*c*value.
func (a *averager) update(k int, value, sign, c float64) {
	a.w[k] += sign * value
	a.ws[k] += sign * c * value
}

// average writes w - ws/c into dst.
func (a *averager) average(dst []float64, c float64) {
	copy(dst, a.w)
	floats.AddScaled(dst, -1/c, a.ws)
}

// pathUpdater feeds the features of one label path into the averager with a
// fixed sign and counter.
type pathUpdater struct {
	avg  *averager
	sign float64
	c    float64
}

func (u *pathUpdater) visit(fid int, value float64) {
	u.avg.update(fid, value, u.sign, u.c)
}

// l2norm returns the Euclidean norm of v.
func l2norm(v []float64) float64 {
	return math.Sqrt(floats.Dot(v, v))
}
