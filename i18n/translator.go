package i18n

import "sync/atomic"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "limit", "format" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":    "invalid type",
		"required":        "required property missing",
		"unknown_key":     "unknown key",
		"duplicate_key":   "duplicate key",
		"too_small":       "number too small",
		"too_big":         "number too big",
		"too_short":       "too short",
		"too_long":        "too long",
		"pattern":         "does not match pattern",
		"invalid_enum":    "value not in enum",
		"invalid_const":   "value does not equal const",
		"invalid_format":  "invalid format",
		"not_multiple_of": "not a multiple",
		"too_few_items":   "too few items",
		"too_many_items":  "too many items",
		"not_unique":      "items are not unique",
		"contains":        "no item matches contains",
		"no_match":        "no schema matched",
		"additional_item": "additional item not allowed",
		"parse_error":     "parse error",
		"truncated":       "truncated",
	},
	"ja": {
		"invalid_type":    "型が不正です",
		"required":        "必須プロパティが不足しています",
		"unknown_key":     "未知のキーです",
		"duplicate_key":   "キーが重複しています",
		"too_small":       "値が小さすぎます",
		"too_big":         "値が大きすぎます",
		"too_short":       "短すぎます",
		"too_long":        "長すぎます",
		"pattern":         "パターンに一致しません",
		"invalid_enum":    "列挙値に含まれていません",
		"invalid_const":   "定数値と一致しません",
		"invalid_format":  "形式が不正です",
		"not_multiple_of": "倍数ではありません",
		"too_few_items":   "要素が少なすぎます",
		"too_many_items":  "要素が多すぎます",
		"not_unique":      "要素が重複しています",
		"contains":        "条件に一致する要素がありません",
		"no_match":        "どのスキーマにも一致しません",
		"additional_item": "追加の要素は許可されていません",
		"parse_error":     "解析エラー",
		"truncated":       "打ち切られました",
	},
}

// detail keys in the order they are appended to messages.
var detailKeys = []string{"key", "format", "limit"}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	for _, k := range detailKeys {
		if v, ok := data[k]; ok && v != "" {
			msg += " (" + k + ": " + v + ")"
		}
	}
	return msg
}

var currentTranslator atomic.Value

func init() { currentTranslator.Store(Translator(dictTranslator{lang: "en"})) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator.Store(Translator(dictTranslator{lang: lang}))
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	currentTranslator.Store(tr)
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return currentTranslator.Load().(Translator).Message(code, data)
}
