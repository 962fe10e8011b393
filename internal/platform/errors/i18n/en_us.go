package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeInvalidExpression   = "INVALID_EXPRESSION"
	CodeUnknownIdentifier   = "UNKNOWN_IDENTIFIER"
	CodeInvalidEffect       = "INVALID_EFFECT"
	CodeUnknownAction       = "UNKNOWN_ACTION"
	CodeStageAlreadyStarted = "STAGE_ALREADY_STARTED"
	CodeStageNotStarted     = "STAGE_NOT_STARTED"
	CodeNoTurnsRemaining    = "NO_TURNS_REMAINING"
	CodeNoCardUsesRemaining = "NO_CARD_USES_REMAINING"
	CodeCardNotInHand       = "CARD_NOT_IN_HAND"
	CodeCardNotUsable       = "CARD_NOT_USABLE"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidLoadout      = "INVALID_LOADOUT"
	CodeInvalidCatalog      = "INVALID_CATALOG"
	CodeInvalidRequest      = "INVALID_REQUEST"
)

var enUSMessages = map[Code]string{
	CodeInvalidExpression:   "Invalid expression {{.Expression}}",
	CodeUnknownIdentifier:   "Unknown identifier {{.Identifier}} in {{.Expression}}",
	CodeInvalidEffect:       "Invalid effect definition {{.Effect}}",
	CodeUnknownAction:       "Unknown action {{.Action}}",
	CodeStageAlreadyStarted: "The stage has already started",
	CodeStageNotStarted:     "The stage has not started",
	CodeNoTurnsRemaining:    "No turns remain in this stage",
	CodeNoCardUsesRemaining: "No card uses remain this turn",
	CodeCardNotInHand:       "Card {{.CardID}} is not in hand",
	CodeCardNotUsable:       "Card {{.CardID}} cannot be used right now",
	CodeNotFound:            "{{.Kind}} {{.ID}} not found",
	CodeInvalidLoadout:      "Invalid loadout: {{.Reason}}",
	CodeInvalidCatalog:      "Invalid catalog data: {{.Reason}}",
	CodeInvalidRequest:      "Invalid request: {{.Reason}}",
}
