// Package parser turns a Boolean query string into an ordered clause list.
// The words and/or/not switch the operator applied to the terms that follow;
// there are no parentheses and no precedence.
package parser

import (
	"strings"
)

// Operator combines a term's postings into the running result.
type Operator int

const (
	OpAnd Operator = iota
	OpOr
	OpNot
)

func (o Operator) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpNot:
		return "NOT"
	default:
		return "UNKNOWN"
	}
}

// Clause is a single term together with the operator in effect when it was
// read.
type Clause struct {
	Op   Operator
	Term string
}

type QueryPlan struct {
	Clauses  []Clause
	RawQuery string
}

// Terms returns the clause terms in query order.
func (p *QueryPlan) Terms() []string {
	terms := make([]string, 0, len(p.Clauses))
	for _, c := range p.Clauses {
		terms = append(terms, c.Term)
	}
	return terms
}

func Parse(query string) *QueryPlan {
	plan := &QueryPlan{
		Clauses:  make([]Clause, 0),
		RawQuery: query,
	}
	current := OpAnd
	for _, word := range strings.Fields(strings.ToLower(query)) {
		switch word {
		case "and":
			current = OpAnd
			continue
		case "or":
			current = OpOr
			continue
		case "not":
			current = OpNot
			continue
		}
		plan.Clauses = append(plan.Clauses, Clause{Op: current, Term: word})
	}
	return plan
}
