// Package dataset assembles labelled MFCC examples for wake word training.
//
// A Dataset is an ordered sequence of examples: positives first, then real
// negatives, then synthetic noise negatives. The order is significant
// because the ordinal split is positional.
package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when a stage that needs examples receives none.
var ErrEmptyDataset = errors.New("dataset: empty dataset")

// Label is the binary class of an example.
type Label int

const (
	Negative Label = 0 // anything that is not the wake word
	Positive Label = 1 // the wake word
)

func (l Label) String() string {
	switch l {
	case Negative:
		return "negative"
	case Positive:
		return "positive"
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// Example is one feature matrix with its label.
type Example struct {
	Features [][]float32 // [frames][coeffs]
	Label    Label
	Source   string // file path, or "synthetic:<n>" for generated noise
}

// Counts is the number of examples per label.
type Counts struct {
	Positive int `json:"positive" yaml:"positive"`
	Negative int `json:"negative" yaml:"negative"`
}

// Total returns Positive + Negative.
func (c Counts) Total() int { return c.Positive + c.Negative }

// Dataset is an ordered list of examples.
type Dataset struct {
	Examples []Example
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Examples)
}

// Counts returns the number of examples per label.
func (d *Dataset) Counts() Counts {
	var c Counts
	if d == nil {
		return c
	}
	for _, ex := range d.Examples {
		if ex.Label == Positive {
			c.Positive++
		} else {
			c.Negative++
		}
	}
	return c
}

// Shape returns the feature matrix dimensions of the first example, or
// zeros for an empty dataset.
func (d *Dataset) Shape() (frames, coeffs int) {
	if d.Len() == 0 || len(d.Examples[0].Features) == 0 {
		return 0, 0
	}
	return len(d.Examples[0].Features), len(d.Examples[0].Features[0])
}

// Validate checks that the dataset is non-empty and every example has the
// same feature shape.
func (d *Dataset) Validate() error {
	if d.Len() == 0 {
		return ErrEmptyDataset
	}
	frames, coeffs := d.Shape()
	for _, ex := range d.Examples {
		if len(ex.Features) != frames {
			return fmt.Errorf("dataset: %s has %d frames, want %d", ex.Source, len(ex.Features), frames)
		}
		for _, row := range ex.Features {
			if len(row) != coeffs {
				return fmt.Errorf("dataset: %s has %d coefficients, want %d", ex.Source, len(row), coeffs)
			}
		}
	}
	return nil
}

// Append adds examples to the end of the dataset.
func (d *Dataset) Append(ex ...Example) {
	d.Examples = append(d.Examples, ex...)
}
