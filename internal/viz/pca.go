// Package viz implements the one-shot visualization export: active belief
// embeddings are projected to three dimensions with a variance-preserving
// linear projection and written as a JSON document.
package viz

import (
	"errors"
	"math"
	"math/rand"
)

// Components is the output dimensionality of the projection.
const Components = 3

// ErrNoData is returned when there are no vectors to project.
var ErrNoData = errors.New("no vectors to project")

// powerIterations bounds the per-component power iteration loop.
const powerIterations = 200

// convergenceEps stops power iteration once the eigenvector settles.
const convergenceEps = 1e-9

// Project reduces the input vectors to Components dimensions via principal
// component analysis, preserving as much variance as possible. It returns the
// projected coordinates and the fraction of total variance each component
// captures. When fewer than Components directions of variance exist, the
// remaining coordinates are zero.
func Project(vectors [][]float32) ([][Components]float64, []float64, error) {
	n := len(vectors)
	if n == 0 {
		return nil, nil, ErrNoData
	}
	dim := len(vectors[0])

	// Center the data.
	centered := make([][]float64, n)
	mean := make([]float64, dim)
	for _, v := range vectors {
		for j := 0; j < dim && j < len(v); j++ {
			mean[j] += float64(v[j])
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}
	for i, v := range vectors {
		c := make([]float64, dim)
		for j := 0; j < dim && j < len(v); j++ {
			c[j] = float64(v[j]) - mean[j]
		}
		centered[i] = c
	}

	totalVar := 0.0
	for _, c := range centered {
		for _, x := range c {
			totalVar += x * x
		}
	}

	coords := make([][Components]float64, n)
	variance := make([]float64, 0, Components)
	if totalVar == 0 {
		// All points identical; everything projects to the origin.
		return coords, variance, nil
	}

	k := Components
	if n-1 < k {
		k = n - 1
	}
	if dim < k {
		k = dim
	}

	rng := rand.New(rand.NewSource(1))
	for comp := 0; comp < k; comp++ {
		vec, eigenvalue := dominantDirection(centered, dim, rng)
		if eigenvalue == 0 {
			break
		}

		for i, c := range centered {
			coords[i][comp] = dot(c, vec)
		}
		variance = append(variance, eigenvalue*float64(n-1)/totalVar)

		// Deflate: remove the found component from the data.
		for i, c := range centered {
			p := dot(c, vec)
			for j := range c {
				c[j] -= p * vec[j]
			}
			centered[i] = c
		}
	}

	return coords, variance, nil
}

// dominantDirection finds the leading principal direction of the centered
// data by power iteration on the implicit covariance matrix, returning the
// unit direction and its eigenvalue (component variance).
func dominantDirection(centered [][]float64, dim int, rng *rand.Rand) ([]float64, float64) {
	n := len(centered)

	vec := make([]float64, dim)
	for j := range vec {
		vec[j] = rng.NormFloat64()
	}
	normalize(vec)

	next := make([]float64, dim)
	var eigenvalue float64
	for iter := 0; iter < powerIterations; iter++ {
		// next = Cov * vec, computed as X^T (X vec) / (n-1).
		for j := range next {
			next[j] = 0
		}
		for _, c := range centered {
			p := dot(c, vec)
			for j := range c {
				next[j] += p * c[j]
			}
		}
		for j := range next {
			next[j] /= float64(n - 1)
		}

		eigenvalue = norm(next)
		if eigenvalue == 0 {
			return vec, 0
		}
		for j := range next {
			next[j] /= eigenvalue
		}

		if delta(next, vec) < convergenceEps {
			copy(vec, next)
			break
		}
		copy(vec, next)
	}

	return vec, eigenvalue
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}

func normalize(v []float64) {
	n := norm(v)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}

func delta(a, b []float64) float64 {
	// Eigenvectors are sign-ambiguous; compare against both orientations.
	d1, d2 := 0.0, 0.0
	for i := range a {
		d1 += (a[i] - b[i]) * (a[i] - b[i])
		d2 += (a[i] + b[i]) * (a[i] + b[i])
	}
	return math.Min(d1, d2)
}
