package perceptron

import "time"

// Train runs the averaged perceptron over data and returns the averaged
// weight vector of length data.NumFeatures().
//
// Each epoch visits the instances in a fresh random order. An instance whose
// decoded path differs from the gold path moves the weights towards the gold
// features and away from the predicted ones. Training stops after
// config.MaxIterations epochs, or earlier once the mean per-instance loss of
// an epoch drops below config.Epsilon.
//
// The only error is ErrOutOfMemory, returned when the training buffers cannot
// be allocated; no weights are returned in that case.
func Train(data Data, tagger Tagger, features FeatureEnumerator, config TrainerConfig) ([]float64, error) {
	log := config.logger()
	begin := time.Now()

	N := data.Len()
	K := data.NumFeatures()
	T := data.MaxLength()

	buf := newArena(config.MemoryLimit)
	defer buf.release()

	perm, err := buf.ints("permutation", N)
	if err != nil {
		return nil, err
	}
	w, err := buf.floats("weights", K)
	if err != nil {
		return nil, err
	}
	ws, err := buf.floats("averaging accumulator", K)
	if err != nil {
		return nil, err
	}
	wa, err := buf.floats("averaged weights", K)
	if err != nil {
		return nil, err
	}
	viterbi, err := buf.ints("viterbi buffer", T)
	if err != nil {
		return nil, err
	}

	log.Info("Averaged perceptron",
		"max_iterations", config.MaxIterations,
		"epsilon", config.Epsilon,
		"instances", N,
		"features", K)

	avg := &averager{w: w, ws: ws}
	rnd := newPermuter(config.Seed)
	gold := &pathUpdater{avg: avg, sign: +1}
	pred := &pathUpdater{avg: avg, sign: -1}

	c := 1
	for iter, n := 0, max(config.MaxIterations, 0); iter < n; iter++ {
		var loss float64
		iterBegin := time.Now()

		rnd.shuffle(perm)

		for _, idx := range perm {
			labels := data.Labels(idx)
			tagger.Tag(w, idx, viterbi)
			path := viterbi[:len(labels)]

			if d := diff(labels, path); d > 0 {
				gold.c = float64(c)
				features.EnumerateFeatures(idx, labels, gold.visit)
				pred.c = float64(c)
				features.EnumerateFeatures(idx, path, pred.visit)

				loss += float64(d) / float64(len(labels))
			}
			c++
		}

		avg.average(wa, float64(c))

		ep := Epoch{
			Iteration:   iter + 1,
			Loss:        loss,
			FeatureNorm: l2norm(wa),
			Duration:    time.Since(iterBegin),
			Converged:   N > 0 && loss/float64(N) < config.Epsilon,
			Weights:     wa,
		}
		log.Info("Averaged perceptron iteration",
			"iteration", ep.Iteration,
			"loss", ep.Loss,
			"feature_norm", ep.FeatureNorm,
			"seconds", ep.Duration.Seconds())
		if config.OnEpoch != nil {
			config.OnEpoch(ep)
		}

		if ep.Converged {
			log.Info("Terminated with the stopping criterion", "iteration", ep.Iteration)
			break
		}
	}

	log.Info("Averaged perceptron finished", "seconds", time.Since(begin).Seconds())
	return wa, nil
}

// diff counts the positions where x and y disagree.
func diff(x, y []int) int {
	d := 0
	for i := range x {
		if x[i] != y[i] {
			d++
		}
	}
	return d
}
