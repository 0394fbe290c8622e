package exec

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/bawdo/quarry/nodes"
)

var (
	// ErrScalarContext is returned when an aggregate or `*` reaches scalar
	// evaluation. Compiled plans never contain these; the error guards
	// hand-built ones.
	ErrScalarContext = errors.NewKind("%s is not valid in a scalar context")

	// ErrUnknownFunction is returned for a scalar function the runtime does
	// not implement.
	ErrUnknownFunction = errors.NewKind("unknown function %q")

	// ErrUnknownType is returned for a CAST to an unrecognized type name.
	ErrUnknownType = errors.NewKind("unknown type %q")

	// ErrInvalidValue is returned when a value cannot be coerced for an
	// operator or cast.
	ErrInvalidValue = errors.NewKind("cannot use %v: %s")
)

// evalExpr evaluates a scalar expression against row i of the table.
func evalExpr(t *Table, i int, e nodes.Expr) (any, error) {
	switch x := e.(type) {
	case *nodes.ColumnReference:
		col, err := t.Resolve(x.Parts)
		if err != nil {
			return nil, err
		}
		return t.columns[col].Values[i], nil

	case *nodes.Integer:
		return cast.ToInt64E(x.Text)

	case *nodes.Float:
		return cast.ToFloat64E(x.Text)

	case *nodes.String:
		return x.Value(), nil

	case *nodes.Bool:
		return x.Value, nil

	case *nodes.Null:
		return nil, nil

	case *nodes.BinaryExpr:
		return evalBinary(t, i, x)

	case *nodes.UnaryExpr:
		return evalUnary(t, i, x)

	case *nodes.FunctionCall:
		return evalFunction(t, i, x)

	case *nodes.CaseExpr:
		for _, w := range x.Whens {
			cond, err := evalExpr(t, i, w.Condition)
			if err != nil {
				return nil, err
			}
			if cond == true {
				return evalExpr(t, i, w.Result)
			}
		}
		if x.ElseVal != nil {
			return evalExpr(t, i, x.ElseVal)
		}
		return nil, nil

	case *nodes.Cast:
		value, err := evalExpr(t, i, x.Value)
		if err != nil {
			return nil, err
		}
		return castValue(value, x.TypeName)

	case *nodes.DerivedColumn:
		return evalExpr(t, i, x.Value)

	case *nodes.SetFunction:
		return nil, ErrScalarContext.New(x.Func)

	case *nodes.Asterisk:
		return nil, ErrScalarContext.New("*")

	default:
		return nil, ErrScalarContext.New(fmt.Sprintf("%T", e))
	}
}

func evalBinary(t *Table, i int, e *nodes.BinaryExpr) (any, error) {
	// AND/OR evaluate lazily and follow three-valued logic: a known
	// dominant operand wins regardless of NULLs on the other side.
	switch e.Op {
	case nodes.OpAnd:
		return evalLogical(t, i, e, false)
	case nodes.OpOr:
		return evalLogical(t, i, e, true)
	}

	left, err := evalExpr(t, i, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(t, i, e.Right)
	if err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return nil, nil
	}

	switch e.Op {
	case nodes.OpAdd, nodes.OpSub, nodes.OpMul, nodes.OpDiv, nodes.OpMod:
		return evalArithmetic(e.Op, left, right)
	case nodes.OpEq, nodes.OpNe, nodes.OpLt, nodes.OpLe, nodes.OpGt, nodes.OpGe:
		cmp, err := compareValues(left, right)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case nodes.OpEq:
			return cmp == 0, nil
		case nodes.OpNe:
			return cmp != 0, nil
		case nodes.OpLt:
			return cmp < 0, nil
		case nodes.OpLe:
			return cmp <= 0, nil
		case nodes.OpGt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	default:
		return nil, ErrInvalidValue.New(e.Op, "unsupported binary operator")
	}
}

// evalLogical handles AND (dominant=false) and OR (dominant=true).
func evalLogical(t *Table, i int, e *nodes.BinaryExpr, dominant bool) (any, error) {
	left, err := evalExpr(t, i, e.Left)
	if err != nil {
		return nil, err
	}
	if left == dominant {
		return dominant, nil
	}
	right, err := evalExpr(t, i, e.Right)
	if err != nil {
		return nil, err
	}
	if right == dominant {
		return dominant, nil
	}
	if left == nil || right == nil {
		return nil, nil
	}
	lb, err := cast.ToBoolE(left)
	if err != nil {
		return nil, ErrInvalidValue.New(left, "not a boolean")
	}
	rb, err := cast.ToBoolE(right)
	if err != nil {
		return nil, ErrInvalidValue.New(right, "not a boolean")
	}
	if dominant {
		return lb || rb, nil
	}
	return lb && rb, nil
}

func evalUnary(t *Table, i int, e *nodes.UnaryExpr) (any, error) {
	value, err := evalExpr(t, i, e.Operand)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}

	switch e.Op {
	case nodes.OpNot:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, ErrInvalidValue.New(value, "not a boolean")
		}
		return !b, nil

	case nodes.OpNeg:
		if n, ok := value.(int64); ok {
			return -n, nil
		}
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, ErrInvalidValue.New(value, "not a number")
		}
		return -f, nil

	case nodes.OpPos:
		return value, nil

	default:
		return nil, ErrInvalidValue.New(e.Op, "unsupported unary operator")
	}
}

// evalArithmetic applies +, -, *, /, % with numeric coercion. Integer
// operands stay integral except for division, which always yields a float.
func evalArithmetic(op nodes.BinaryOp, left, right any) (any, error) {
	li, lok := left.(int64)
	ri, rok := right.(int64)
	if lok && rok && op != nodes.OpDiv {
		switch op {
		case nodes.OpAdd:
			return li + ri, nil
		case nodes.OpSub:
			return li - ri, nil
		case nodes.OpMul:
			return li * ri, nil
		default: // OpMod
			if ri == 0 {
				return nil, nil
			}
			return li % ri, nil
		}
	}

	lf, err := cast.ToFloat64E(left)
	if err != nil {
		return nil, ErrInvalidValue.New(left, "not a number")
	}
	rf, err := cast.ToFloat64E(right)
	if err != nil {
		return nil, ErrInvalidValue.New(right, "not a number")
	}
	switch op {
	case nodes.OpAdd:
		return lf + rf, nil
	case nodes.OpSub:
		return lf - rf, nil
	case nodes.OpMul:
		return lf * rf, nil
	case nodes.OpDiv:
		if rf == 0 {
			return nil, nil
		}
		return lf / rf, nil
	default:
		if rf == 0 {
			return nil, nil
		}
		return math.Mod(lf, rf), nil
	}
}

// compareValues orders two non-nil values. Numbers compare numerically
// across int64/float64; strings and bools compare within their own type.
func compareValues(left, right any) (int, error) {
	if ls, lok := left.(string); lok {
		rs, rok := right.(string)
		if !rok {
			return 0, ErrInvalidValue.New(right, "cannot compare string with non-string")
		}
		return strings.Compare(ls, rs), nil
	}
	if lb, lok := left.(bool); lok {
		rb, rok := right.(bool)
		if !rok {
			return 0, ErrInvalidValue.New(right, "cannot compare bool with non-bool")
		}
		switch {
		case lb == rb:
			return 0, nil
		case rb:
			return -1, nil
		default:
			return 1, nil
		}
	}

	lf, err := cast.ToFloat64E(left)
	if err != nil {
		return 0, ErrInvalidValue.New(left, "not comparable")
	}
	rf, err := cast.ToFloat64E(right)
	if err != nil {
		return 0, ErrInvalidValue.New(right, "not comparable")
	}
	switch {
	case lf < rf:
		return -1, nil
	case lf > rf:
		return 1, nil
	default:
		return 0, nil
	}
}

func evalFunction(t *Table, i int, e *nodes.FunctionCall) (any, error) {
	args := make([]any, len(e.Args))
	for n, arg := range e.Args {
		value, err := evalExpr(t, i, arg)
		if err != nil {
			return nil, err
		}
		args[n] = value
	}

	switch strings.ToUpper(e.Name) {
	case "UPPER":
		if len(args) != 1 {
			return nil, ErrInvalidValue.New(e.Name, "expects one argument")
		}
		if args[0] == nil {
			return nil, nil
		}
		return strings.ToUpper(cast.ToString(args[0])), nil

	case "LOWER":
		if len(args) != 1 {
			return nil, ErrInvalidValue.New(e.Name, "expects one argument")
		}
		if args[0] == nil {
			return nil, nil
		}
		return strings.ToLower(cast.ToString(args[0])), nil

	case "ABS":
		if len(args) != 1 {
			return nil, ErrInvalidValue.New(e.Name, "expects one argument")
		}
		if args[0] == nil {
			return nil, nil
		}
		if n, ok := args[0].(int64); ok {
			if n < 0 {
				return -n, nil
			}
			return n, nil
		}
		f, err := cast.ToFloat64E(args[0])
		if err != nil {
			return nil, ErrInvalidValue.New(args[0], "not a number")
		}
		return math.Abs(f), nil

	case "CONCAT":
		var sb strings.Builder
		for _, arg := range args {
			if arg == nil {
				return nil, nil
			}
			sb.WriteString(cast.ToString(arg))
		}
		return sb.String(), nil

	default:
		return nil, ErrUnknownFunction.New(e.Name)
	}
}

// castValue implements CAST(value AS type) for the supported type names.
func castValue(value any, typeName string) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch strings.ToLower(typeName) {
	case "integer", "int", "bigint":
		n, err := cast.ToInt64E(value)
		if err != nil {
			return nil, ErrInvalidValue.New(value, "not castable to integer")
		}
		return n, nil
	case "float", "double", "real":
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, ErrInvalidValue.New(value, "not castable to float")
		}
		return f, nil
	case "text", "varchar", "string":
		return cast.ToString(value), nil
	case "boolean", "bool":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, ErrInvalidValue.New(value, "not castable to boolean")
		}
		return b, nil
	default:
		return nil, ErrUnknownType.New(typeName)
	}
}
