package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lib/pq"
)

// AggFunc identifies an aggregate function.
type AggFunc string

const (
	AggCount AggFunc = "count"
	AggSum   AggFunc = "sum"
	AggAvg   AggFunc = "avg"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

var aggSQL = map[AggFunc]string{
	AggCount: "COUNT",
	AggSum:   "SUM",
	AggAvg:   "AVG",
	AggMin:   "MIN",
	AggMax:   "MAX",
}

// Aggregate requests one labeled aggregate column. The output column is
// labeled "<field>_<func>", e.g. "salary_avg".
type Aggregate struct {
	Field string
	Func  AggFunc
}

// Join describes an inner join from the primary entity to a second entity.
type Join struct {
	Entity       *Entity
	PrimaryField string // field on the primary entity
	JoinedField  string // field on the joined entity
}

// Spec is a declarative description of a query. Zero values mean "not
// requested": a nil Join omits the join, empty Filters produce no WHERE
// clause, zero Skip/Limit omit pagination.
type Spec struct {
	Primary *Entity
	Join    *Join

	// EagerFields adds joined-entity columns to the select list alongside
	// the primary entity's columns.
	EagerFields []string

	Filters  Filters
	Excludes Filters

	// Aggregates, when non-empty, replace the selected columns with one
	// labeled aggregate column per entry; non-aggregate columns are dropped.
	Aggregates []Aggregate

	// OrderBy entries are field names, ascending by default, descending when
	// prefixed with "-".
	OrderBy []string

	GroupBy []string

	// LatestBy selects, for each distinct value of the named field, only the
	// most recently created row. Ties on identical creation timestamps are
	// broken by the highest id so the result is deterministic.
	LatestBy string

	Skip  int
	Limit int

	// Single caps the result at one row.
	Single bool
}

func (s *Spec) joined() *Entity {
	if s.Join == nil {
		return nil
	}
	return s.Join.Entity
}

// Build assembles the spec into a parameterized SELECT for the given
// dialect. Any field or entity resolution failure aborts the build; no
// partial query is produced.
func Build(spec Spec, dialect Dialect) (string, []interface{}, error) {
	selectList, err := buildSelectList(spec)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s %s", selectList, spec.Primary.Table, spec.Primary.Alias)

	args := make([]interface{}, 0)
	argIndex := 1

	if args, argIndex, err = appendBody(&sb, spec, dialect, args, argIndex); err != nil {
		return "", nil, err
	}

	if err := appendGroupBy(&sb, spec); err != nil {
		return "", nil, err
	}

	if err := appendOrderBy(&sb, spec); err != nil {
		return "", nil, err
	}

	limit := spec.Limit
	if spec.Single && limit == 0 {
		limit = 1
	}
	if limit != 0 {
		fmt.Fprintf(&sb, " LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}
	if spec.Skip != 0 {
		fmt.Fprintf(&sb, " OFFSET $%d", argIndex)
		args = append(args, spec.Skip)
	}

	return sb.String(), args, nil
}

// BuildCount assembles the companion count query: the same join, filter,
// exclude and latest-per-group pipeline without aggregation, grouping,
// ordering or pagination.
func BuildCount(spec Spec, dialect Dialect) (string, []interface{}, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT COUNT(*) FROM %s %s", spec.Primary.Table, spec.Primary.Alias)

	args := make([]interface{}, 0)
	argIndex := 1

	var err error
	if args, _, err = appendBody(&sb, spec, dialect, args, argIndex); err != nil {
		return "", nil, err
	}

	return sb.String(), args, nil
}

// appendBody writes the shared join/filter/exclude/latest-per-group portion
// of the query in the fixed assembly order.
func appendBody(sb *strings.Builder, spec Spec, dialect Dialect, args []interface{}, argIndex int) ([]interface{}, int, error) {
	// Join to the second entity if present.
	if spec.Join != nil {
		left, err := spec.Primary.Field(spec.Join.PrimaryField)
		if err != nil {
			return nil, 0, err
		}
		right, err := spec.Join.Entity.Field(spec.Join.JoinedField)
		if err != nil {
			return nil, 0, err
		}
		fmt.Fprintf(sb, " JOIN %s %s ON %s = %s",
			spec.Join.Entity.Table, spec.Join.Entity.Alias, left.Qualified(), right.Qualified())
	}

	// Latest-per-group self-join. The inner subquery finds the max creation
	// timestamp per group; the outer one picks the highest id among rows at
	// that timestamp, which makes the selection deterministic under ties.
	if spec.LatestBy != "" {
		if err := appendLatestJoin(sb, spec); err != nil {
			return nil, 0, err
		}
	}

	filters, err := CompileFilters(spec.Filters, spec.Primary, spec.joined())
	if err != nil {
		return nil, 0, err
	}
	excludes := CompileExcludes(spec.Excludes, spec.Primary, spec.joined())

	predicates := append(filters, excludes...)
	if len(predicates) > 0 {
		sb.WriteString(" WHERE ")
		for i, pred := range predicates {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			args, argIndex = appendPredicate(sb, pred, dialect, args, argIndex)
		}
	}

	return args, argIndex, nil
}

func appendPredicate(sb *strings.Builder, pred Predicate, dialect Dialect, args []interface{}, argIndex int) ([]interface{}, int) {
	column := pred.Field.Qualified()
	switch pred.Op {
	case OpIn:
		return appendInPredicate(sb, column, pred.Value, dialect, args, argIndex)
	case OpGte:
		fmt.Fprintf(sb, "%s >= $%d", column, argIndex)
		args = append(args, pred.Value)
	case OpLte:
		fmt.Fprintf(sb, "%s <= $%d", column, argIndex)
		args = append(args, pred.Value)
	case OpGt:
		fmt.Fprintf(sb, "%s > $%d", column, argIndex)
		args = append(args, pred.Value)
	case OpLt:
		fmt.Fprintf(sb, "%s < $%d", column, argIndex)
		args = append(args, pred.Value)
	case OpILike:
		// SQLite has no ILIKE; lowering both sides matches its semantics.
		if dialect == DialectSQLite {
			fmt.Fprintf(sb, "LOWER(%s) LIKE LOWER($%d)", column, argIndex)
		} else {
			fmt.Fprintf(sb, "%s ILIKE $%d", column, argIndex)
		}
		args = append(args, pred.Value)
	case OpNe:
		fmt.Fprintf(sb, "%s != $%d", column, argIndex)
		args = append(args, pred.Value)
	default:
		fmt.Fprintf(sb, "%s = $%d", column, argIndex)
		args = append(args, pred.Value)
	}
	return args, argIndex + 1
}

// appendInPredicate renders membership. Postgres takes the whole slice as a
// single array parameter; SQLite needs one placeholder per element.
func appendInPredicate(sb *strings.Builder, column string, value interface{}, dialect Dialect, args []interface{}, argIndex int) ([]interface{}, int) {
	if dialect != DialectSQLite {
		fmt.Fprintf(sb, "%s = ANY($%d)", column, argIndex)
		return append(args, pq.Array(value)), argIndex + 1
	}

	v := reflect.ValueOf(value)
	placeholders := make([]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		placeholders[i] = fmt.Sprintf("$%d", argIndex)
		args = append(args, v.Index(i).Interface())
		argIndex++
	}
	if len(placeholders) == 0 {
		// Empty membership matches nothing.
		sb.WriteString("1=0")
		return args, argIndex
	}
	fmt.Fprintf(sb, "%s IN (%s)", column, strings.Join(placeholders, ", "))
	return args, argIndex
}

func appendLatestJoin(sb *strings.Builder, spec Spec) error {
	group, err := spec.Primary.Field(spec.LatestBy)
	if err != nil {
		return err
	}
	created, err := spec.Primary.Field("created_at")
	if err != nil {
		return err
	}
	id, err := spec.Primary.Field("id")
	if err != nil {
		return err
	}

	table := spec.Primary.Table
	fmt.Fprintf(sb,
		" JOIN (SELECT lp.%[1]s AS group_value, MAX(lp.%[2]s) AS row_id"+
			" FROM %[3]s lp"+
			" JOIN (SELECT %[1]s AS group_value, MAX(%[4]s) AS latest_created_at FROM %[3]s GROUP BY %[1]s) latest"+
			" ON lp.%[1]s = latest.group_value AND lp.%[4]s = latest.latest_created_at"+
			" GROUP BY lp.%[1]s) latest_pick ON %[5]s = latest_pick.row_id",
		group.Column, id.Column, table, created.Column, id.Qualified())
	return nil
}

func buildSelectList(spec Spec) (string, error) {
	// Aggregates replace the selected columns entirely.
	if len(spec.Aggregates) > 0 {
		columns := make([]string, 0, len(spec.Aggregates))
		for _, agg := range spec.Aggregates {
			fn, ok := aggSQL[agg.Func]
			if !ok {
				return "", fmt.Errorf("%w: unsupported aggregate function %q", ErrBadFilterValue, agg.Func)
			}
			handle, err := spec.Primary.Field(agg.Field)
			if err != nil {
				return "", err
			}
			columns = append(columns, fmt.Sprintf("%s(%s) AS %s_%s", fn, handle.Qualified(), agg.Field, agg.Func))
		}
		return strings.Join(columns, ", "), nil
	}

	columns := []string{spec.Primary.Alias + ".*"}
	for _, name := range spec.EagerFields {
		handle, err := Resolve(name, spec.Primary, spec.joined())
		if err != nil {
			return "", err
		}
		columns = append(columns, handle.Qualified())
	}
	return strings.Join(columns, ", "), nil
}

func appendGroupBy(sb *strings.Builder, spec Spec) error {
	if len(spec.GroupBy) == 0 {
		return nil
	}
	columns := make([]string, 0, len(spec.GroupBy))
	for _, name := range spec.GroupBy {
		handle, err := Resolve(name, spec.Primary, spec.joined())
		if err != nil {
			return err
		}
		columns = append(columns, handle.Qualified())
	}
	fmt.Fprintf(sb, " GROUP BY %s", strings.Join(columns, ", "))
	return nil
}

func appendOrderBy(sb *strings.Builder, spec Spec) error {
	if len(spec.OrderBy) == 0 {
		return nil
	}
	columns := make([]string, 0, len(spec.OrderBy))
	for _, name := range spec.OrderBy {
		direction := "ASC"
		if strings.HasPrefix(name, "-") {
			direction = "DESC"
			name = name[1:]
		}
		handle, err := Resolve(name, spec.Primary, spec.joined())
		if err != nil {
			return err
		}
		columns = append(columns, handle.Qualified()+" "+direction)
	}
	fmt.Fprintf(sb, " ORDER BY %s", strings.Join(columns, ", "))
	return nil
}
