// Package query builds parameterized SQL for the submission stores.
// Values never end up in the SQL text; they are always bound as arguments.
package query

import (
	"math"
	"strconv"
	"strings"

	"linire-backend/internal/domain"
)

// Placeholder renders the n-th (1-based) bind parameter of a dialect
type Placeholder func(n int) string

// Dollar is the PostgreSQL placeholder style ($1, $2, ...)
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Question is the MySQL placeholder style (?)
func Question(int) string { return "?" }

// Builder accumulates a statement and its arguments
type Builder struct {
	ph       Placeholder
	sql      strings.Builder
	args     []any
	hasWhere bool
}

// New starts a statement with the given base SQL
func New(ph Placeholder, base string) *Builder {
	b := &Builder{ph: ph}
	b.sql.WriteString(base)
	return b
}

// Where appends a condition joined with AND. Each '?' in cond is replaced
// with the next placeholder and bound to the matching value in args.
func (b *Builder) Where(cond string, args ...any) *Builder {
	if b.hasWhere {
		b.sql.WriteString(" AND ")
	} else {
		b.sql.WriteString(" WHERE ")
		b.hasWhere = true
	}
	b.writeBound(cond, args)
	return b
}

// WhereStatus adds a status condition unless the filter selects everything
func (b *Builder) WhereStatus(filter domain.StatusFilter) *Builder {
	if filter.IsAll() {
		return b
	}
	return b.Where("status = ?", string(filter.Status()))
}

// Append adds raw SQL that carries no values
func (b *Builder) Append(sql string) *Builder {
	b.sql.WriteString(" ")
	b.sql.WriteString(sql)
	return b
}

// Page binds LIMIT/OFFSET for a 1-based page number
func (b *Builder) Page(page, pageSize int) *Builder {
	if page < 1 {
		page = 1
	}
	// Clamp so the offset cannot overflow; such a page is empty anyway.
	if pageSize > 0 && page > math.MaxInt/pageSize {
		page = math.MaxInt / pageSize
	}
	b.sql.WriteString(" ")
	b.writeBound("LIMIT ? OFFSET ?", []any{pageSize, (page - 1) * pageSize})
	return b
}

func (b *Builder) writeBound(fragment string, args []any) {
	i := 0
	for _, r := range fragment {
		if r == '?' && i < len(args) {
			b.args = append(b.args, args[i])
			b.sql.WriteString(b.ph(len(b.args)))
			i++
			continue
		}
		b.sql.WriteRune(r)
	}
}

// SQL returns the statement text
func (b *Builder) SQL() string { return b.sql.String() }

// Args returns the bound values in placeholder order
func (b *Builder) Args() []any { return b.args }
