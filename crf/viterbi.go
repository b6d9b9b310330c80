package crf

import "math"

// decoder holds the Viterbi lattice so it can be reused across sequences.
type decoder struct {
	delta [][]float64 // delta[t][y] = best score ending at time t with label y
	psi   [][]int     // psi[t][y] = best previous label for backtracking
}

func newDecoder(maxLen, L int) *decoder {
	d := &decoder{
		delta: newMatrix(maxLen, L),
		psi:   make([][]int, maxLen),
	}
	for t := range d.psi {
		d.psi[t] = make([]int, L)
	}
	return d
}

// decode writes the best path over the first T rows of stateScores into
// path[:T] and returns its score.
func (d *decoder) decode(stateScores, transScores [][]float64, T, L int, path []int) float64 {
	if T == 0 || L == 0 {
		return math.Inf(-1)
	}

	for y := 0; y < L; y++ {
		d.delta[0][y] = stateScores[0][y]
		d.psi[0][y] = 0
	}

	for t := 1; t < T; t++ {
		prev, cur := d.delta[t-1], d.delta[t]
		for y := 0; y < L; y++ {
			bestScore := math.Inf(-1)
			bestPrev := 0
			for yp := 0; yp < L; yp++ {
				score := prev[yp] + transScores[yp][y]
				if score > bestScore {
					bestScore = score
					bestPrev = yp
				}
			}
			cur[y] = bestScore + stateScores[t][y]
			d.psi[t][y] = bestPrev
		}
	}

	bestScore := math.Inf(-1)
	bestLabel := 0
	for y := 0; y < L; y++ {
		if d.delta[T-1][y] > bestScore {
			bestScore = d.delta[T-1][y]
			bestLabel = y
		}
	}

	path[T-1] = bestLabel
	for t := T - 2; t >= 0; t-- {
		path[t] = d.psi[t+1][path[t+1]]
	}
	return bestScore
}

// Viterbi finds the best label sequence using the Viterbi algorithm (log-domain).
// Ties are broken towards the lower label ID.
func Viterbi(stateScores, transScores [][]float64) ([]int, float64) {
	T := len(stateScores)
	if T == 0 {
		return nil, math.Inf(-1)
	}
	L := len(stateScores[0])
	path := make([]int, T)
	score := newDecoder(T, L).decode(stateScores, transScores, T, L, path)
	return path, score
}

// Predict returns the best label sequence as strings.
func (m *Model) Predict(features []map[string]float64) []string {
	path, _ := Viterbi(m.ComputeStateScores(features), m.ComputeTransScores())

	labels := make([]string, len(path))
	for i, id := range path {
		labels[i] = m.Labels.String(id)
	}
	return labels
}
