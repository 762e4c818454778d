// Package statistics provides the bootstrap confidence interval used to
// report how stable a solution's accuracy is across improvement attempts.
package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval summarizes a bootstrap run over accuracy samples.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
// Improvement cycles produce at most a handful of samples, so resampling
// stays cheap even at this count.
const DefaultBootstrapIterations = 2000

// BootstrapCI computes a percentile-method bootstrap confidence interval
// over accuracy samples. confidenceLevel is in (0, 1), e.g. 0.95. With
// fewer than 2 samples the interval collapses to the mean.
func BootstrapCI(samples []float64, confidenceLevel float64) ConfidenceInterval {
	return BootstrapCIWithSeed(samples, confidenceLevel, -1)
}

// BootstrapCIWithSeed is like BootstrapCI but accepts a seed for
// reproducibility. A negative seed uses a non-deterministic source.
func BootstrapCIWithSeed(samples []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(samples)
	if n < 2 {
		m := mean(samples)
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
			NumBootstraps:   0,
		}
	}

	var rng *rand.Rand
	if seed >= 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	m := mean(samples)
	iters := DefaultBootstrapIterations

	bootMeans := make([]float64, iters)
	resample := make([]float64, n)
	for i := 0; i < iters; i++ {
		for j := 0; j < n; j++ {
			resample[j] = samples[rng.Intn(n)]
		}
		bootMeans[i] = mean(resample)
	}

	sort.Float64s(bootMeans)

	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	return mean(values)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
