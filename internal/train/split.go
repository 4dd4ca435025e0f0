package train

import (
	"fmt"
	"math/rand"
)

// Split shuffles indices 0..n-1 with the given seed and partitions them
// into train and test sets. The same n, fraction, and seed always produce
// the same partition, so runs are reproducible end to end.
func Split(n int, testFraction float64, seed int64) (trainIdx, testIdx []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("split: need at least 2 samples, have %d", n)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("split: test fraction %v outside (0, 1)", testFraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest], nil
}
