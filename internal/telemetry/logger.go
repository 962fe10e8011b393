// Package telemetry records what happened during a simulation: a structured
// event log and a per-turn series of graphed fields. Recording never
// influences the simulation itself.
package telemetry

import (
	"fmt"
	"log"
)

// EntryType names a log entry.
type EntryType string

const (
	EntryStartTurn                   EntryType = "startTurn"
	EntryDrawCard                    EntryType = "drawCard"
	EntryEntityStart                 EntryType = "entityStart"
	EntryEntityEnd                   EntryType = "entityEnd"
	EntrySetEffect                   EntryType = "setEffect"
	EntryDiff                        EntryType = "diff"
	EntryUpgradeHand                 EntryType = "upgradeHand"
	EntryExchangeHand                EntryType = "exchangeHand"
	EntrySetScoreBuff                EntryType = "setScoreBuff"
	EntryAddRandomUpgradedCardToHand EntryType = "addRandomUpgradedCardToHand"
	EntryHand                        EntryType = "hand"
)

// Entry is one log record.
type Entry struct {
	Type EntryType `json:"logType"`
	Data any       `json:"data,omitempty"`
}

// StartTurn is the data of an EntryStartTurn.
type StartTurn struct {
	Num        int     `json:"num"`
	Type       string  `json:"type"`
	Multiplier float64 `json:"multiplier"`
}

// Entity identifies the card, item or stage an entry belongs to.
type Entity struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Diff records a field change caused by an action batch.
type Diff struct {
	Field string  `json:"field"`
	Prev  float64 `json:"prev"`
	Next  float64 `json:"next"`
}

// ScoreBuff records a score buff being set.
type ScoreBuff struct {
	Amount float64 `json:"amount"`
	Turns  int     `json:"turns"`
}

// Hand records a decision point of the play loop.
type Hand struct {
	HandCardIDs    []int              `json:"handCardIds"`
	Scores         []float64          `json:"scores"`
	SelectedCardID int                `json:"selectedCardId,omitempty"`
	State          map[string]float64 `json:"state"`
	ScoreBuffs     []ScoreBuff        `json:"scoreBuffs,omitempty"`
}

// Logger collects entries and graph data. A nil *Logger discards
// everything, so callers never need to guard calls.
type Logger struct {
	debug    *log.Logger
	disabled bool
	entries  []Entry
	graph    map[string][]float64
}

// NewLogger creates a logger. Debug output goes to debug when it is
// non-nil.
func NewLogger(debug *log.Logger) *Logger {
	l := &Logger{debug: debug}
	l.Clear()
	return l
}

// Disable stops recording until Enable is called.
func (l *Logger) Disable() {
	if l == nil {
		return
	}
	l.disabled = true
}

// Enable resumes recording.
func (l *Logger) Enable() {
	if l == nil {
		return
	}
	l.disabled = false
}

// Enabled reports whether the logger is currently recording.
func (l *Logger) Enabled() bool {
	return l != nil && !l.disabled
}

// Log appends an entry.
func (l *Logger) Log(t EntryType, data any) {
	if !l.Enabled() {
		return
	}
	l.entries = append(l.entries, Entry{Type: t, Data: data})
}

// Debugf writes a debug line when debugging is on and the logger is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.Enabled() || l.debug == nil {
		return
	}
	l.debug.Output(2, fmt.Sprintf(format, args...))
}

// PushGraph appends one sample per field.
func (l *Logger) PushGraph(point map[string]float64) {
	if !l.Enabled() {
		return
	}
	for field, v := range point {
		l.graph[field] = append(l.graph[field], v)
	}
}

// Clear drops all entries and graph data.
func (l *Logger) Clear() {
	if l == nil {
		return
	}
	l.entries = nil
	l.graph = make(map[string][]float64)
}

// Entries returns a copy of the recorded entries.
func (l *Logger) Entries() []Entry {
	if l == nil {
		return nil
	}
	return append([]Entry(nil), l.entries...)
}

// Graph returns a copy of the graph series keyed by field.
func (l *Logger) Graph() map[string][]float64 {
	if l == nil {
		return nil
	}
	out := make(map[string][]float64, len(l.graph))
	for field, series := range l.graph {
		out[field] = append([]float64(nil), series...)
	}
	return out
}

// Count returns how many entries of type t were recorded.
func (l *Logger) Count(t EntryType) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Type == t {
			n++
		}
	}
	return n
}
