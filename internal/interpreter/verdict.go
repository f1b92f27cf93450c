package interpreter

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseVerdict strictly decodes a verdict. Empty text, invalid JSON, a
// non-object, or an absent or mistyped mandatory field (output, explanation,
// isError, needsInput) yield a *MalformedResponseError. Nothing is defaulted.
func ParseVerdict(raw string) (Verdict, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Verdict{}, &MalformedResponseError{Raw: raw, Err: errors.New("empty response")}
	}
	if !gjson.Valid(text) {
		return Verdict{}, &MalformedResponseError{Raw: raw, Err: errors.New("invalid JSON")}
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return Verdict{}, &MalformedResponseError{Raw: raw, Err: errors.New("expected a JSON object")}
	}

	var v Verdict
	var missing []string

	fields := doc.Map()
	if r, ok := fields["output"]; ok && r.Type == gjson.String {
		v.Output = r.Str
	} else {
		missing = append(missing, "output")
	}
	if r, ok := fields["explanation"]; ok && r.Type == gjson.String {
		v.Explanation = r.Str
	} else {
		missing = append(missing, "explanation")
	}
	if r, ok := fields["isError"]; ok && isBool(r) {
		v.IsError = r.Bool()
	} else {
		missing = append(missing, "isError")
	}
	if r, ok := fields["needsInput"]; ok && isBool(r) {
		v.NeedsInput = r.Bool()
	} else {
		missing = append(missing, "needsInput")
	}

	if r, ok := fields["inputPrompt"]; ok && r.Type != gjson.Null {
		if r.Type != gjson.String {
			missing = append(missing, "inputPrompt")
		} else {
			v.InputPrompt = r.Str
		}
	}
	if r, ok := fields["errorLines"]; ok && r.Type != gjson.Null {
		lines, valid := intArray(r)
		if !valid {
			missing = append(missing, "errorLines")
		} else {
			v.ErrorLines = lines
		}
	}

	if len(missing) > 0 {
		return Verdict{}, &MalformedResponseError{Raw: raw, Missing: missing}
	}
	return v, nil
}

func isBool(r gjson.Result) bool {
	return r.Type == gjson.True || r.Type == gjson.False
}

func intArray(r gjson.Result) ([]int, bool) {
	if !r.IsArray() {
		return nil, false
	}
	var out []int
	valid := true
	r.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.Number || item.Num != float64(int(item.Num)) {
			valid = false
			return false
		}
		out = append(out, int(item.Num))
		return true
	})
	return out, valid
}
