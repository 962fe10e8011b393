package expr

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

// TokenKind distinguishes operands from operators.
type TokenKind int

const (
	TokenOperand TokenKind = iota
	TokenOperator
)

// Token is one lexical element of an expression.
type Token struct {
	Kind TokenKind
	Text string
	// Pos is the byte offset of the token in the whitespace-free source.
	Pos int
}

// operators are matched longest first.
var operators = []string{
	"==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "%=",
	"<", ">", "=", "+", "-", "*", "/", "%", "&",
}

var assignmentOperators = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
}

var comparisonOperators = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true, "&": true,
}

// Tokenize splits an expression into operands and operators. Whitespace is
// not significant.
func Tokenize(src string) ([]Token, error) {
	s := stripSpace(src)
	if s == "" {
		return nil, invalidExpression(src, "empty expression")
	}

	var tokens []Token
	expectOperand := true
	for i := 0; i < len(s); {
		if op := matchOperator(s[i:]); op != "" {
			if expectOperand && (op == "-" || op == "+") && i+1 < len(s) && isNumberStart(s[i+1]) {
				j := scanOperand(s, i+1)
				tokens = append(tokens, Token{Kind: TokenOperand, Text: s[i:j], Pos: i})
				i = j
				expectOperand = false
				continue
			}
			tokens = append(tokens, Token{Kind: TokenOperator, Text: op, Pos: i})
			i += len(op)
			expectOperand = true
			continue
		}
		if !isOperandChar(s[i]) {
			return nil, invalidExpression(src, fmt.Sprintf("unrecognized operator %q", s[i:i+1]))
		}
		j := scanOperand(s, i)
		tokens = append(tokens, Token{Kind: TokenOperand, Text: s[i:j], Pos: i})
		i = j
		expectOperand = false
	}
	return tokens, nil
}

func scanOperand(s string, i int) int {
	for i < len(s) && isOperandChar(s[i]) {
		i++
	}
	return i
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isOperandChar(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

func isNumberStart(c byte) bool {
	return c == '.' || (c >= '0' && c <= '9')
}

func stripSpace(src string) string {
	return strings.Join(strings.Fields(src), "")
}

func invalidExpression(src, reason string) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidExpression,
		fmt.Sprintf("invalid expression %q: %s", src, reason),
		map[string]string{"Expression": src},
	)
}
