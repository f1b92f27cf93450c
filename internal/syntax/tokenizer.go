package syntax

import "regexp"

type rule struct {
	category Category
	re       *regexp.Regexp
}

// rules are applied in order. Each rule only sees fragments that no earlier
// rule claimed, so a keyword inside a string or comment stays untouched.
var rules = []rule{
	{Comment, regexp.MustCompile(`#.*`)},
	{String, regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)},
	{Keyword, regexp.MustCompile(`\b(?:def|class|if|else|elif|for|while|return|import|from|as|try|except|finally|with|in|is|not|and|or|lambda|None|True|False|break|continue|pass|global|yield|del|assert)\b`)},
	{Builtin, regexp.MustCompile(`\b(?:print|input|range|len|str|int|float|list|dict|set|tuple|open|type|abs|max|min|sum|zip|enumerate|map|filter|bool)\b`)},
	{Number, regexp.MustCompile(`\b\d+\.?\d*\b`)},
}

// Tokenize splits one line into spans that cover it exactly once, in order.
// An empty line yields no spans.
//
// Word boundaries are evaluated against the unclaimed fragment, not the full
// line, so the edge of a fragment counts as a boundary.
func Tokenize(line string) []Span {
	if line == "" {
		return nil
	}

	spans := []Span{{Start: 0, End: len(line), Text: line, Category: Plain}}
	for _, r := range rules {
		spans = applyRule(spans, r)
	}
	return spans
}

func applyRule(spans []Span, r rule) []Span {
	next := make([]Span, 0, len(spans))
	for _, sp := range spans {
		if sp.Category != Plain {
			next = append(next, sp)
			continue
		}

		last := 0
		for _, m := range r.re.FindAllStringIndex(sp.Text, -1) {
			if m[0] > last {
				next = append(next, slice(sp, last, m[0], Plain))
			}
			next = append(next, slice(sp, m[0], m[1], r.category))
			last = m[1]
		}
		if last < len(sp.Text) {
			next = append(next, slice(sp, last, len(sp.Text), Plain))
		}
	}
	return next
}

// slice returns the sub-span [from, to) of sp relative to sp.Text.
func slice(sp Span, from, to int, cat Category) Span {
	return Span{
		Start:    sp.Start + from,
		End:      sp.Start + to,
		Text:     sp.Text[from:to],
		Category: cat,
	}
}
