package datasets

import (
	"fmt"
	"math"
	"math/rand/v2"

	"featurelab/internal/errors"
)

// DefaultSplitSeed seeds TrainTestSplit when the caller has no preference
const DefaultSplitSeed uint64 = 20130810

// TrainTestSplit shuffles the samples with a PCG source seeded by seed and
// returns the train and test partitions. The test side receives
// ceil(n*testRatio) samples; both sides must end up non-empty.
func TrainTestSplit(b *Bunch, testRatio float64, seed uint64) (train, test *Bunch, err error) {
	if !(testRatio > 0 && testRatio < 1) {
		return nil, nil, errors.NewAppValidationError(
			fmt.Sprintf("test ratio %v must be between 0 and 1 exclusive", testRatio)).
			WithContext("test_ratio", testRatio)
	}

	n := b.Samples()
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < 1 || nTest >= n {
		return nil, nil, errors.NewAppValidationError(
			fmt.Sprintf("cannot split %d samples with test ratio %v", n, testRatio)).
			WithContext("samples", n)
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return b.rows(perm[nTest:]), b.rows(perm[:nTest]), nil
}
