package dataset

import (
	"fmt"
	"testing"
)

func labelled(pos, neg int) *Dataset {
	ds := &Dataset{}
	for i := 0; i < pos; i++ {
		ds.Append(Example{Label: Positive, Source: fmt.Sprintf("p%d", i)})
	}
	for i := 0; i < neg; i++ {
		ds.Append(Example{Label: Negative, Source: fmt.Sprintf("n%d", i)})
	}
	return ds
}

func TestSplitOrdinal(t *testing.T) {
	tests := []struct {
		n, train int
	}{
		{0, 0},
		{1, 0},
		{5, 4},
		{10, 8},
		{11, 8},
		{100, 80},
	}
	for _, tt := range tests {
		ds := labelled(tt.n/2, tt.n-tt.n/2)
		train, test := SplitOrdinal(ds, 0.8)
		if train.Len() != tt.train || test.Len() != tt.n-tt.train {
			t.Errorf("n=%d: split %d/%d, want %d/%d", tt.n, train.Len(), test.Len(), tt.train, tt.n-tt.train)
		}
	}
}

func TestSplitOrdinalKeepsOrder(t *testing.T) {
	ds := labelled(5, 5)
	train, test := SplitOrdinal(ds, 0.8)
	if train.Examples[0].Source != "p0" || train.Examples[7].Source != "n2" {
		t.Fatalf("train order: %s ... %s", train.Examples[0].Source, train.Examples[7].Source)
	}
	// The ordinal cut leaves only negatives for testing.
	if c := test.Counts(); c.Positive != 0 || c.Negative != 2 {
		t.Fatalf("test counts = %+v, want 0/2", c)
	}
}

func TestSplitStratified(t *testing.T) {
	ds := labelled(5, 5)
	train, test := SplitStratified(ds, 0.8)
	if c := train.Counts(); c.Positive != 4 || c.Negative != 4 {
		t.Fatalf("train counts = %+v, want 4/4", c)
	}
	if c := test.Counts(); c.Positive != 1 || c.Negative != 1 {
		t.Fatalf("test counts = %+v, want 1/1", c)
	}
	if test.Examples[0].Source != "p4" || test.Examples[1].Source != "n4" {
		t.Fatalf("test = %s, %s; want p4, n4", test.Examples[0].Source, test.Examples[1].Source)
	}
}

func TestSplitStratifiedUneven(t *testing.T) {
	ds := labelled(3, 7)
	train, test := SplitStratified(ds, 0.8)
	// floor(2.4) = 2 positives, floor(5.6) = 5 negatives.
	if c := train.Counts(); c.Positive != 2 || c.Negative != 5 {
		t.Fatalf("train counts = %+v, want 2/5", c)
	}
	if train.Len()+test.Len() != ds.Len() {
		t.Fatal("split lost examples")
	}
}

func TestSplit(t *testing.T) {
	ds := labelled(5, 5)
	if _, _, err := Split(ds, "random", 0.8); err == nil {
		t.Error("expected error for unknown strategy")
	}
	for _, r := range []float64{0, -0.1, 1.5} {
		if _, _, err := Split(ds, Stratified, r); err == nil {
			t.Errorf("expected error for ratio %g", r)
		}
	}
	train, test, err := Split(ds, Ordinal, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if train.Len() != 8 || test.Len() != 2 {
		t.Fatalf("ordinal split %d/%d, want 8/2", train.Len(), test.Len())
	}
	train, _, err = Split(ds, "", 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if c := train.Counts(); c.Positive != 4 {
		t.Fatalf("default strategy is not stratified: %+v", c)
	}
}

func TestLabelString(t *testing.T) {
	if Positive.String() != "positive" || Negative.String() != "negative" {
		t.Fatal("unexpected label names")
	}
	if Label(7).String() != "Label(7)" {
		t.Fatal(Label(7).String())
	}
}
