// Package domain contains the query model consumed by the driver layer: the
// clause token list produced by the fluent DSL and the compiled token form.
package domain

// ClauseType tags a clause token.
type ClauseType string

const (
	// Insert is INSERT INTO; args (Table, Columns).
	Insert ClauseType = "insert"
	// Truncate is TRUNCATE TABLE; args (Table).
	Truncate ClauseType = "truncate"
	// Select is SELECT; args are column names (none = *).
	Select ClauseType = "select"
	// From is FROM; args (Table).
	From ClauseType = "from"
	// Where is WHERE; args (fragment string, values...).
	Where ClauseType = "where"
	// Update is UPDATE; args (Table).
	Update ClauseType = "update"
	// Set is SET; args (Columns).
	Set ClauseType = "set"
	// Delete is DELETE FROM; args (Table).
	Delete ClauseType = "delete"
	// OrderBy is ORDER BY; args are column names, "-name" for descending.
	OrderBy ClauseType = "order_by"
	// Limit is LIMIT; args (int).
	Limit ClauseType = "limit"
	// Raw is a literal fragment; args (fragment string, values...).
	Raw ClauseType = "raw"
)

// Table is the symbol form of a table name. Clause rules that require a
// table accept only this type, never a plain string.
type Table string

// Columns is the associative column/value map of insert and set clauses.
type Columns map[string]any

// Clause is one token of a Query.
type Clause struct {
	Type ClauseType
	Args []any
}

// Query is an ordered list of clause tokens. The driver layer treats it as
// immutable once handed over; compiled forms are cached per *Query.
type Query struct {
	clauses []Clause
}

// NewQuery creates a query from clauses.
func NewQuery(clauses ...Clause) *Query {
	return &Query{clauses: append([]Clause(nil), clauses...)}
}

// Clauses returns a copy of the clause list.
func (q *Query) Clauses() []Clause {
	return append([]Clause(nil), q.clauses...)
}

// Leading returns the first clause and false when the query is empty.
func (q *Query) Leading() (Clause, bool) {
	if q == nil || len(q.clauses) == 0 {
		return Clause{}, false
	}
	return q.clauses[0], true
}

// Len returns the number of clauses.
func (q *Query) Len() int {
	return len(q.clauses)
}

// With returns a new query with clauses appended.
func (q *Query) With(clauses ...Clause) *Query {
	next := make([]Clause, 0, len(q.clauses)+len(clauses))
	next = append(next, q.clauses...)
	next = append(next, clauses...)
	return &Query{clauses: next}
}

// NewInsert builds an insert clause.
func NewInsert(table Table, columns Columns) Clause {
	return Clause{Type: Insert, Args: []any{table, columns}}
}

// NewTruncate builds a truncate clause.
func NewTruncate(table Table) Clause {
	return Clause{Type: Truncate, Args: []any{table}}
}

// NewSelect builds a select clause.
func NewSelect(columns ...string) Clause {
	args := make([]any, len(columns))
	for i, c := range columns {
		args[i] = c
	}
	return Clause{Type: Select, Args: args}
}

// NewFrom builds a from clause.
func NewFrom(table Table) Clause {
	return Clause{Type: From, Args: []any{table}}
}

// NewWhere builds a where clause. fragment contains one directive per value.
func NewWhere(fragment string, values ...any) Clause {
	return Clause{Type: Where, Args: append([]any{fragment}, values...)}
}

// NewUpdate builds an update clause.
func NewUpdate(table Table) Clause {
	return Clause{Type: Update, Args: []any{table}}
}

// NewSet builds a set clause.
func NewSet(columns Columns) Clause {
	return Clause{Type: Set, Args: []any{columns}}
}

// NewDelete builds a delete clause.
func NewDelete(table Table) Clause {
	return Clause{Type: Delete, Args: []any{table}}
}

// NewOrderBy builds an order by clause.
func NewOrderBy(columns ...string) Clause {
	args := make([]any, len(columns))
	for i, c := range columns {
		args[i] = c
	}
	return Clause{Type: OrderBy, Args: args}
}

// NewLimit builds a limit clause.
func NewLimit(n int) Clause {
	return Clause{Type: Limit, Args: []any{n}}
}

// NewRaw builds a raw clause. fragment contains one directive per value.
func NewRaw(fragment string, values ...any) Clause {
	return Clause{Type: Raw, Args: append([]any{fragment}, values...)}
}
