package index

import (
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/parser"
)

var foods = []string{
	"spicy chicken curry",
	"sweet mango dessert",
	"spicy fish curry",
}

func TestBuildPostings(t *testing.T) {
	idx := Build(foods)
	if idx.DocCount() != 3 {
		t.Fatalf("DocCount = %d, want 3", idx.DocCount())
	}
	if got := IDs(idx.Postings("spicy")); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("postings(spicy) = %v", got)
	}
	if got := IDs(idx.Postings("missing")); len(got) != 0 {
		t.Errorf("postings(missing) = %v, want empty", got)
	}
	for _, e := range idx.Terms() {
		if e.DocFreq == 0 {
			t.Errorf("term %q has empty posting set", e.Term)
		}
	}
}

func TestPostingsReturnsCopy(t *testing.T) {
	idx := Build(foods)
	p := idx.Postings("curry")
	p.Clear()
	if got := IDs(idx.Postings("curry")); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("index mutated through returned postings: %v", got)
	}
}

func TestEvaluate(t *testing.T) {
	idx := Build(foods)
	tests := []struct {
		query string
		want  []int
	}{
		{"chicken and spicy", []int{0}},
		{"curry not fish", []int{0}},
		{"chicken or mango", []int{0, 1}},
		{"", []int{0, 1, 2}},
		{"unknown", []int{}},
		{"unknown or dessert", []int{1}},
		{"spicy or mango and curry", []int{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := idx.Evaluate(parser.Parse(tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestAndMonotonicity(t *testing.T) {
	idx := Build(append(foods, "spicy chicken wings", "chicken soup"))
	queries := []string{"chicken", "chicken spicy", "chicken spicy curry"}
	prev := int(^uint(0) >> 1)
	for _, q := range queries {
		n := len(idx.Evaluate(parser.Parse(q)))
		if n > prev {
			t.Errorf("%q returned %d results, more than %d", q, n, prev)
		}
		prev = n
	}
}

func TestOrMonotonicity(t *testing.T) {
	idx := Build(foods)
	queries := []string{"or mango", "or mango or fish", "or mango or fish or chicken"}
	prev := -1
	for _, q := range queries {
		n := len(idx.Evaluate(parser.Parse(q)))
		if n < prev {
			t.Errorf("%q returned %d results, fewer than %d", q, n, prev)
		}
		prev = n
	}
}

func TestEmptyCorpus(t *testing.T) {
	idx := Build(nil)
	if got := idx.Evaluate(parser.Parse("anything or all")); len(got) != 0 {
		t.Errorf("empty corpus returned %v", got)
	}
	if idx.TermCount() != 0 {
		t.Errorf("TermCount = %d", idx.TermCount())
	}
}

func TestEmptyDocumentContributesNothing(t *testing.T) {
	idx := Build([]string{"", "rice"})
	if idx.TermCount() != 1 {
		t.Errorf("TermCount = %d, want 1", idx.TermCount())
	}
	if got := IDs(idx.All()); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("All = %v", got)
	}
}
