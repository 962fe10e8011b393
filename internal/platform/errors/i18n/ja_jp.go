package i18n

var jaJPMessages = map[Code]string{
	CodeInvalidExpression:   "不正な式です: {{.Expression}}",
	CodeUnknownIdentifier:   "{{.Expression}} に不明な識別子 {{.Identifier}} があります",
	CodeInvalidEffect:       "不正な効果定義です: {{.Effect}}",
	CodeUnknownAction:       "不明なアクションです: {{.Action}}",
	CodeStageAlreadyStarted: "ステージは既に開始しています",
	CodeStageNotStarted:     "ステージが開始していません",
	CodeNoTurnsRemaining:    "残りターンがありません",
	CodeNoCardUsesRemaining: "このターンはこれ以上スキルカードを使用できません",
	CodeCardNotInHand:       "スキルカード {{.CardID}} は手札にありません",
	CodeCardNotUsable:       "スキルカード {{.CardID}} は使用できません",
	CodeNotFound:            "{{.Kind}} {{.ID}} が見つかりません",
	CodeInvalidLoadout:      "編成が不正です: {{.Reason}}",
	CodeInvalidCatalog:      "データが不正です: {{.Reason}}",
	CodeInvalidRequest:      "リクエストが不正です: {{.Reason}}",
}
