package effect

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

// Deserialize parses a single clause. An empty clause yields a zero Effect.
func Deserialize(clause string) (Effect, error) {
	var e Effect
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return e, nil
	}

	for _, segment := range splitSegments(clause) {
		key, value, ok := strings.Cut(segment, ":")
		if !ok {
			return Effect{}, invalidEffect(clause, fmt.Sprintf("segment %q is not key:value", segment))
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "at":
			e.Phase = value
		case "if":
			e.Conditions = append(e.Conditions, value)
		case "do":
			e.Actions = append(e.Actions, value)
		case "order", "limit", "ttl":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Effect{}, invalidEffect(clause, fmt.Sprintf("%s %q is not an integer", key, value))
			}
			switch key {
			case "order":
				e.Order = n
			case "limit":
				e.Limit, e.HasLimit = n, true
			case "ttl":
				e.TTL, e.HasTTL = n, true
			}
		default:
			return Effect{}, invalidEffect(clause, fmt.Sprintf("unrecognized key %q", key))
		}
	}
	return e, nil
}

// DeserializeSequence parses a ";"-separated list of clauses. The result is
// the raw sequence; gates are paired by Compile.
func DeserializeSequence(text string) ([]Effect, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	clauses := strings.Split(text, ";")
	effects := make([]Effect, 0, len(clauses))
	for _, clause := range clauses {
		e, err := Deserialize(clause)
		if err != nil {
			return nil, err
		}
		effects = append(effects, e)
	}
	return effects, nil
}

// splitSegments splits on commas that are not inside parentheses.
func splitSegments(clause string) []string {
	var segments []string
	depth := 0
	start := 0
	for i := 0; i < len(clause); i++ {
		switch clause[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				segments = append(segments, clause[start:i])
				start = i + 1
			}
		}
	}
	return append(segments, clause[start:])
}

func invalidEffect(clause, reason string) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidEffect,
		fmt.Sprintf("invalid effect %q: %s", clause, reason),
		map[string]string{"Effect": clause},
	)
}
