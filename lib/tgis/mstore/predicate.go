package mstore

import (
	"errors"
	"strings"
	"unicode"

	goeval "github.com/edisonguo/govaluate"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

// columns are the variables a predicate may reference
var columns = map[string]struct{}{
	"id": {}, "name": {}, "mapset": {}, "creator": {}, "temporal_type": {},
	"start_time": {}, "end_time": {}, "timezone": {},
	"north": {}, "south": {}, "east": {}, "west": {},
	"nsres": {}, "ewres": {}, "rows": {}, "cols": {},
	"min": {}, "max": {},
}

// predicate is a compiled selection predicate. A nil predicate matches everything.
type predicate struct {
	expr *goeval.EvaluableExpression
}

// timeLayout is the form times take inside predicates. Strings in this layout
// order like the times they hold and are not read as dates by the evaluator.
const timeLayout = "2006-01-02T15:04:05"

// errUndefined is returned by the evaluator for a column without value
var errUndefined = errors.New("undefined column value")

// compilePredicate parses a where string. An empty string yields a nil predicate.
func compilePredicate(where string) (*predicate, error) {
	if len(strings.TrimSpace(where)) == 0 {
		return nil, nil
	}

	translated, err := translate(where)
	if err != nil {
		return nil, tgis.NewErrorf(tgis.RetCInvalidOperation, "invalid where predicate %q: %v", where, err)
	}

	expr, err := goeval.NewEvaluableExpression(translated)
	if err != nil {
		return nil, tgis.NewErrorf(tgis.RetCInvalidOperation, "invalid where predicate %q: %v", where, err)
	}

	for _, token := range expr.Tokens() {
		if token.Kind != goeval.VARIABLE {
			continue
		}
		varName, ok := token.Value.(string)
		if !ok {
			return nil, tgis.NewErrorf(tgis.RetCInvalidOperation, "variable token '%v' failed to cast string", token.Value)
		}
		if _, found := columns[varName]; !found {
			return nil, tgis.NewErrorf(tgis.RetCInvalidOperation, "unknown column %q in where predicate", varName)
		}
	}
	return &predicate{expr: expr}, nil
}

// matches evaluates the predicate for a map.
func (p *predicate) matches(m *tgis.Map) (bool, error) {
	if p == nil {
		return true, nil
	}
	result, err := p.expr.Eval(parameters(m))
	if errors.Is(err, errUndefined) {
		// undefined values behave like SQL NULL
		return false, nil
	}
	if err != nil {
		return false, tgis.NewErrorf(tgis.RetCInvalidOperation, "evaluate where predicate: %v", err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, tgis.NewErrorf(tgis.RetCInvalidOperation, "where predicate evaluates to %T, not bool", result)
	}
	return ok, nil
}

// params are the column values of one map. A missing key is an undefined value.
type params map[string]interface{}

func (p params) Get(name string) (interface{}, error) {
	value, found := p[name]
	if !found {
		return nil, errUndefined
	}
	return value, nil
}

// parameters exposes the columns of a map to the evaluator. Undefined values are left out.
func parameters(m *tgis.Map) params {
	values := params{
		"id":      string(m.ID),
		"name":    m.ID.Name(),
		"mapset":  m.ID.Mapset(),
		"creator": m.Creator,
		"north":   m.Spatial.North,
		"south":   m.Spatial.South,
		"east":    m.Spatial.East,
		"west":    m.Spatial.West,
		"nsres":   m.Metadata.NSRes,
		"ewres":   m.Metadata.EWRes,
		"rows":    float64(m.Metadata.Rows),
		"cols":    float64(m.Metadata.Cols),
	}
	if tt := m.TemporalType(); tt != "" {
		values["temporal_type"] = string(tt)
	}

	switch {
	case m.Absolute != nil:
		values["start_time"] = m.Absolute.Start.Format(timeLayout)
		if m.Absolute.End != nil {
			values["end_time"] = m.Absolute.End.Format(timeLayout)
		}
		if m.Absolute.Timezone != nil {
			values["timezone"] = float64(*m.Absolute.Timezone)
		}
	case m.Relative != nil:
		values["start_time"] = m.Relative.Start
		if m.Relative.End != nil {
			values["end_time"] = *m.Relative.End
		}
	}

	if m.Metadata.Min != nil {
		values["min"] = *m.Metadata.Min
	}
	if m.Metadata.Max != nil {
		values["max"] = *m.Metadata.Max
	}
	return values
}

// translate rewrites the SQL operators of a where string into evaluator syntax.
// Quoted dates are rewritten to timeLayout, other literals are copied unchanged.
// NOT must be followed by a parenthesized condition.
func translate(where string) (string, error) {
	var sb strings.Builder
	runes := []rune(where)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			// copy the literal including its quotes
			j := i + 1
			for j < len(runes) && runes[j] != '\'' {
				j++
			}
			if j >= len(runes) {
				return "", errors.New("unclosed string literal")
			}
			literal := string(runes[i+1 : j])
			if t, err := tgis.ParseTime(literal); err == nil {
				literal = t.Format(timeLayout)
			}
			sb.WriteString("'" + literal + "'")
			i = j
		case r == '<' && i+1 < len(runes) && runes[i+1] == '>':
			sb.WriteString("!=")
			i++
		case r == '=':
			prev := rune(0)
			if i > 0 {
				prev = runes[i-1]
			}
			if strings.ContainsRune("<>!=", prev) || (i+1 < len(runes) && runes[i+1] == '=') {
				sb.WriteRune(r)
			} else {
				sb.WriteString("==")
			}
		case isWordStart(runes, i):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			switch strings.ToUpper(word) {
			case "AND":
				sb.WriteString("&&")
			case "OR":
				sb.WriteString("||")
			case "NOT":
				if !followedByClause(runes, j) {
					return "", errors.New("NOT must be followed by a condition in parentheses")
				}
				sb.WriteString("!")
			default:
				sb.WriteString(word)
			}
			i = j - 1
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String(), nil
}

func followedByClause(runes []rune, i int) bool {
	for ; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return runes[i] == '('
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWordStart(runes []rune, i int) bool {
	return isWordRune(runes[i]) && (i == 0 || !isWordRune(runes[i-1]))
}
