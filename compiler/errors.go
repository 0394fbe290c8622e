package compiler

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNestedAggregate is returned when an aggregate function appears
	// inside another aggregate function.
	ErrNestedAggregate = errors.NewKind("multiple aggregation levels not allowed")

	// ErrEmptyFrom is returned when a select has no FROM sources.
	ErrEmptyFrom = errors.NewKind("cannot handle an empty from clause")

	// ErrAsteriskWithGroupBy is returned when SELECT * is combined with
	// GROUP BY.
	ErrAsteriskWithGroupBy = errors.NewKind("SELECT * cannot be combined with GROUP BY")

	// ErrUnknownSetQuantifier is returned for a set quantifier that is
	// neither ALL nor DISTINCT.
	ErrUnknownSetQuantifier = errors.NewKind("unknown set quantifier %v")

	// ErrUnknownJoinKind is returned for a join step of unrecognized shape.
	ErrUnknownJoinKind = errors.NewKind("unknown join %s")
)
