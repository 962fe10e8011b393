package effect

import (
	"strconv"
	"strings"
)

// Kind distinguishes plain rules from gates.
type Kind int

const (
	// KindRule runs its actions and then installs its sub-effects.
	KindRule Kind = iota
	// KindGate installs its single sub-effect when its conditions hold.
	KindGate
)

func (k Kind) String() string {
	if k == KindGate {
		return "gate"
	}
	return "rule"
}

// Effect is one parsed clause.
type Effect struct {
	Kind       Kind     `json:"kind"`
	Phase      string   `json:"phase,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Actions    []string `json:"actions,omitempty"`
	Effects    []Effect `json:"effects,omitempty"`
	Order      int      `json:"order,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	HasLimit   bool     `json:"hasLimit,omitempty"`
	TTL        int      `json:"ttl,omitempty"`
	HasTTL     bool     `json:"hasTtl,omitempty"`
}

// Installs returns the effect a gate installs, if any.
func (e Effect) Installs() (Effect, bool) {
	if e.Kind != KindGate || len(e.Effects) == 0 {
		return Effect{}, false
	}
	return e.Effects[0], true
}

// Clone returns a deep copy of e.
func (e Effect) Clone() Effect {
	c := e
	c.Conditions = append([]string(nil), e.Conditions...)
	c.Actions = append([]string(nil), e.Actions...)
	if e.Effects != nil {
		c.Effects = make([]Effect, len(e.Effects))
		for i, sub := range e.Effects {
			c.Effects[i] = sub.Clone()
		}
	}
	return c
}

// String renders the clause in text form. Gates render as the gate clause
// followed by the clause they install.
func (e Effect) String() string {
	var segments []string
	if e.Phase != "" {
		segments = append(segments, "at:"+e.Phase)
	}
	for _, c := range e.Conditions {
		segments = append(segments, "if:"+c)
	}
	for _, a := range e.Actions {
		segments = append(segments, "do:"+a)
	}
	if e.Order != 0 {
		segments = append(segments, "order:"+strconv.Itoa(e.Order))
	}
	if e.HasLimit {
		segments = append(segments, "limit:"+strconv.Itoa(e.Limit))
	}
	if e.HasTTL {
		segments = append(segments, "ttl:"+strconv.Itoa(e.TTL))
	}
	clause := strings.Join(segments, ",")
	if inner, ok := e.Installs(); ok {
		return clause + ";" + inner.String()
	}
	return clause
}

// Compile pairs every action-less clause with the clause that follows it,
// producing gates. Pairs are consumed two at a time; a trailing action-less
// clause stays a rule with nothing to run.
func Compile(raw []Effect) []Effect {
	compiled := make([]Effect, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		e := raw[i]
		if e.Kind == KindRule && len(e.Actions) == 0 && len(e.Effects) == 0 && i+1 < len(raw) {
			e.Kind = KindGate
			e.Effects = []Effect{raw[i+1]}
			i++
		}
		compiled = append(compiled, e)
	}
	return compiled
}
