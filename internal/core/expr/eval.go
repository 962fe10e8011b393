package expr

import (
	"errors"
	"fmt"
	"math"
	"slices"

	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

// Eval parses (or reuses) src and evaluates it against env.
func Eval(src string, env Env) (Value, error) {
	program, err := Compile(src)
	if err != nil {
		return Value{}, err
	}
	return program.Eval(env)
}

// EvalBool evaluates a condition. A numeric result is an error.
func EvalBool(src string, env Env) (bool, error) {
	v, err := Eval(src, env)
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, invalidExpression(src, "condition does not produce a boolean")
	}
	return v.Bool, nil
}

// EvalNumber evaluates an arithmetic expression. A boolean result is an error.
func EvalNumber(src string, env Env) (float64, error) {
	v, err := Eval(src, env)
	if err != nil {
		return 0, err
	}
	if v.Kind != KindNumber {
		return 0, invalidExpression(src, "expression does not produce a number")
	}
	return v.Num, nil
}

// Eval evaluates the program against env.
func (p *Program) Eval(env Env) (Value, error) {
	v, err := p.root.eval(env)
	if err != nil {
		return Value{}, withExpression(err, p.src)
	}
	return v, nil
}

// SplitAssignment splits an action statement such as "score+=10" into its
// target, operator and right-hand side. ok is false when src is not an
// assignment to a single identifier.
func SplitAssignment(src string) (target, op, rhs string, ok bool) {
	tokens, err := Tokenize(src)
	if err != nil || len(tokens) < 3 {
		return "", "", "", false
	}
	if tokens[0].Kind != TokenOperand || !identifierPattern.MatchString(tokens[0].Text) {
		return "", "", "", false
	}
	if tokens[1].Kind != TokenOperator || !assignmentOperators[tokens[1].Text] {
		return "", "", "", false
	}
	s := stripSpace(src)
	rhsStart := tokens[1].Pos + len(tokens[1].Text)
	return tokens[0].Text, tokens[1].Text, s[rhsStart:], true
}

func (n numberNode) eval(Env) (Value, error) {
	return Number(n.value), nil
}

func (n identNode) eval(env Env) (Value, error) {
	if env != nil {
		if v, ok := env.Lookup(n.name); ok {
			return v, nil
		}
	}
	return Value{}, apperrors.WithMetadata(
		apperrors.CodeUnknownIdentifier,
		fmt.Sprintf("unknown identifier %q", n.name),
		map[string]string{"Identifier": n.name},
	)
}

func (n memberNode) eval(env Env) (Value, error) {
	var items []string
	ok := false
	if env != nil {
		items, ok = env.Collection(n.collection)
	}
	if !ok {
		return Value{}, apperrors.WithMetadata(
			apperrors.CodeUnknownIdentifier,
			fmt.Sprintf("unknown collection %q", n.collection),
			map[string]string{"Identifier": n.collection},
		)
	}
	return Bool(slices.Contains(items, n.item)), nil
}

func (n binaryNode) eval(env Env) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return Value{}, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "==", "!=":
		if left.Kind != right.Kind {
			return Value{}, fmt.Errorf("cannot compare %s with %s", left.Kind, right.Kind)
		}
		equal := left == right
		if n.op == "!=" {
			equal = !equal
		}
		return Bool(equal), nil
	}

	if left.Kind != KindNumber || right.Kind != KindNumber {
		return Value{}, fmt.Errorf("operator %s needs numbers, got %s and %s", n.op, left.Kind, right.Kind)
	}
	a, b := left.Num, right.Num
	switch n.op {
	case "<":
		return Bool(a < b), nil
	case "<=":
		return Bool(a <= b), nil
	case ">":
		return Bool(a > b), nil
	case ">=":
		return Bool(a >= b), nil
	case "+":
		return Number(a + b), nil
	case "-":
		return Number(a - b), nil
	case "*":
		return Number(a * b), nil
	case "/":
		return Number(a / b), nil
	case "%":
		return Number(math.Mod(a, b)), nil
	default:
		return Value{}, fmt.Errorf("unrecognized operator %q", n.op)
	}
}

// withExpression attaches the expression text to an evaluation error.
func withExpression(err error, src string) error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		metadata := map[string]string{"Expression": src}
		for k, v := range domainErr.Metadata {
			metadata[k] = v
		}
		return apperrors.WrapWithMetadata(
			domainErr.Code,
			fmt.Sprintf("evaluate %q", src),
			metadata,
			err,
		)
	}
	return apperrors.WrapWithMetadata(
		apperrors.CodeInvalidExpression,
		fmt.Sprintf("evaluate %q", src),
		map[string]string{"Expression": src},
		err,
	)
}
