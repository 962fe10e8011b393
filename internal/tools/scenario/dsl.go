package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a scripted sequence of steps against one stage.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted operation.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it builds.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source and returns the Scenario it builds.
func LoadScenario(name, source string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func newLuaState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)

	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
	return state
}

func runScript(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "stage", Function: scenarioStage},
	{Name: "seed", Function: scenarioSeed},
	{Name: "loadout", Function: scenarioLoadout},
	{Name: "start", Function: scenarioOptionsOnly(StepStart)},
	{Name: "play", Function: scenarioPlay},
	{Name: "end_turn", Function: scenarioOptionsOnly(StepEndTurn)},
	{Name: "auto", Function: scenarioAuto},
	{Name: "effect", Function: scenarioEffect},
	{Name: "set", Function: scenarioTable(StepSet)},
	{Name: "expect", Function: scenarioTable(StepExpect)},
	{Name: "expect_expr", Function: scenarioExpectExpr},
	{Name: "expect_hand", Function: scenarioExpectHand},
}

func scenarioStage(state *lua.State) int {
	scenario := checkScenario(state)
	id := lua.CheckInteger(state, 2)
	appendStep(scenario, StepStage, map[string]any{"id": id})
	return 0
}

func scenarioSeed(state *lua.State) int {
	scenario := checkScenario(state)
	seed := lua.CheckInteger(state, 2)
	appendStep(scenario, StepSeed, map[string]any{"seed": seed})
	return 0
}

func scenarioLoadout(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, StepLoadout, tableToMap(state, 2))
	return 0
}

func scenarioPlay(state *lua.State) int {
	scenario := checkScenario(state)
	card := lua.CheckInteger(state, 2)
	data := optionalTable(state, 3)
	data["card"] = card
	appendStep(scenario, StepPlay, data)
	return 0
}

func scenarioAuto(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.OptString(state, 2, "greedy")
	appendStep(scenario, StepAuto, map[string]any{"strategy": name})
	return 0
}

func scenarioEffect(state *lua.State) int {
	scenario := checkScenario(state)
	text := lua.CheckString(state, 2)
	appendStep(scenario, StepEffect, map[string]any{"effects": text})
	return 0
}

func scenarioExpectExpr(state *lua.State) int {
	scenario := checkScenario(state)
	expression := lua.CheckString(state, 2)
	appendStep(scenario, StepExpectExpr, map[string]any{"expr": expression})
	return 0
}

func scenarioExpectHand(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, StepExpectHand, map[string]any{"cards": tableToGo(state, 2)})
	return 0
}

func scenarioOptionsOnly(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		appendStep(scenario, kind, optionalTable(state, 2))
		return 0
	}
}

func scenarioTable(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		lua.CheckType(state, 2, lua.TypeTable)
		appendStep(scenario, kind, tableToMap(state, 2))
		return 0
	}
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo converts a Lua table into a []any when its keys are 1..n and a
// map[string]any otherwise.
func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	list := map[int]any{}
	named := map[string]any{}
	state.PushNil()
	for state.Next(index) {
		switch state.TypeOf(-2) {
		case lua.TypeNumber:
			key, _ := state.ToNumber(-2)
			list[int(key)] = luaToGo(state, -1)
		case lua.TypeString:
			key, _ := state.ToString(-2)
			named[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	if len(named) > 0 {
		return named
	}
	keys := make([]int, 0, len(list))
	for k := range list {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, list[k])
	}
	return out
}

func normalizeNumber(value float64) any {
	if value == math.Trunc(value) && math.Abs(value) < 1<<53 {
		return int(value)
	}
	return value
}
