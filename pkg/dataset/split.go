package dataset

import (
	"fmt"
	"math"
)

// Strategy selects how a dataset is divided into train and test partitions.
type Strategy string

const (
	// Stratified splits each label separately so both partitions keep the
	// label balance of the whole dataset.
	Stratified Strategy = "stratified"

	// Ordinal cuts the dataset at floor(ratio * n) in its build order.
	Ordinal Strategy = "ordinal"
)

// DefaultRatio is the train fraction.
const DefaultRatio = 0.8

// Strategies lists the valid strategies.
func Strategies() []Strategy { return []Strategy{Stratified, Ordinal} }

// Split divides ds with the given strategy.
func Split(ds *Dataset, strategy Strategy, ratio float64) (train, test *Dataset, err error) {
	if err := validRatio(ratio); err != nil {
		return nil, nil, err
	}
	switch strategy {
	case Stratified, "":
		train, test = SplitStratified(ds, ratio)
	case Ordinal:
		train, test = SplitOrdinal(ds, ratio)
	default:
		return nil, nil, fmt.Errorf("dataset: unknown split strategy %q", strategy)
	}
	return train, test, nil
}

func validRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio <= 0 || ratio > 1 {
		return fmt.Errorf("dataset: split ratio %g must be in (0, 1]", ratio)
	}
	return nil
}

// cut returns floor(ratio * n), tolerating float error such as
// 0.7 * 10 = 6.9999999.
func cut(ratio float64, n int) int {
	k := int(math.Floor(ratio*float64(n) + 1e-9))
	return min(max(k, 0), n)
}

// SplitOrdinal puts the first floor(ratio * n) examples in train and the rest
// in test, without shuffling. Because positives come first, a small dataset
// can leave the test partition with a single label.
func SplitOrdinal(ds *Dataset, ratio float64) (train, test *Dataset) {
	n := ds.Len()
	k := cut(ratio, n)
	train, test = &Dataset{}, &Dataset{}
	if n == 0 {
		return train, test
	}
	train.Examples = append(train.Examples, ds.Examples[:k]...)
	test.Examples = append(test.Examples, ds.Examples[k:]...)
	return train, test
}

// SplitStratified puts the first floor(ratio * c) examples of each label
// (c being that label's count) in train and the rest in test. Relative order
// within each partition is preserved.
func SplitStratified(ds *Dataset, ratio float64) (train, test *Dataset) {
	train, test = &Dataset{}, &Dataset{}
	if ds.Len() == 0 {
		return train, test
	}
	counts := ds.Counts()
	quota := map[Label]int{
		Positive: cut(ratio, counts.Positive),
		Negative: cut(ratio, counts.Negative),
	}
	seen := make(map[Label]int, 2)
	for _, ex := range ds.Examples {
		label := ex.Label
		if label != Positive {
			label = Negative
		}
		if seen[label] < quota[label] {
			train.Examples = append(train.Examples, ex)
		} else {
			test.Examples = append(test.Examples, ex)
		}
		seen[label]++
	}
	return train, test
}
