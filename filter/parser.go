package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a raw filter expression string into an Expr, per the
// grammar in spec.md §4.1:
//
//	expr := cond (" and " cond)*
//
// Each cond is probed, in order, for:
//  1. "<value> in name" / "<value> in path"
//  2. "<field> like <value>"
//  3. "<field> <op> <value>" for ==, !=, <=, >=, <, > (longest prefix first)
//  4. "<field> contains|starts with|ends with <value>"
//
// Values may be single- or double-quoted, or an unquoted whitespace-delimited
// token. Malformed conditions are a parse error; a malformed expression
// fails before any walking begins, per spec.md §4.1/§7.
//
// Grounded on cloudeng.io/file/matcher/expression.go's item-by-item
// construction, adapted to this spec's ad-hoc-but-total per-condition
// grammar (the design notes in spec.md §9 explicitly call for this rather
// than a regex-only parser, because of the "in" prefix/suffix forms).
func Parse(raw string) (Expr, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Expr{}, fmt.Errorf("filter: empty expression")
	}

	parts := splitAnd(trimmed)
	conds := make([]Condition, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := parseCondition(part)
		if err != nil {
			return Expr{}, fmt.Errorf("filter: %q: %w", part, err)
		}
		conds = append(conds, c)
	}
	if len(conds) == 0 {
		return Expr{}, fmt.Errorf("filter: no conditions in %q", raw)
	}
	return Expr{Source: trimmed, Conditions: conds}, nil
}

// splitAnd splits on the literal " and " joiner, case-sensitive, matching
// the original implementation's str::split("and").
func splitAnd(s string) []string {
	return strings.Split(s, " and ")
}

func parseCondition(expr string) (Condition, error) {
	// 1. "<value> in name" / "<value> in path".
	if c, ok, err := parseInForm(expr); ok {
		return c, err
	}

	// 2. "<field> like <value>".
	if c, ok, err := parseLikeForm(expr); ok {
		return c, err
	}

	// 3. "<field> <op> <value>", longest operator prefix first so "<="
	//    and ">=" are preferred over "<"/">".
	if c, ok, err := parseComparisonForm(expr); ok {
		return c, err
	}

	// 4. "<field> contains|starts with|ends with <value>".
	if c, ok, err := parseKeywordForm(expr); ok {
		return c, err
	}

	return Condition{}, fmt.Errorf("unrecognized condition")
}

func parseInForm(expr string) (Condition, bool, error) {
	if idx := strings.Index(expr, " in name"); idx >= 0 && strings.TrimSpace(expr[idx+len(" in name"):]) == "" {
		val := extractValue(strings.TrimSpace(expr[:idx]))
		return Condition{Field: FieldName, Op: OpContains, StringVal: val}, true, nil
	}
	if idx := strings.Index(expr, " in path"); idx >= 0 && strings.TrimSpace(expr[idx+len(" in path"):]) == "" {
		val := extractValue(strings.TrimSpace(expr[:idx]))
		return Condition{Field: FieldPath, Op: OpContains, StringVal: val}, true, nil
	}
	return Condition{}, false, nil
}

func parseLikeForm(expr string) (Condition, bool, error) {
	const sep = " like "
	idx := strings.Index(expr, sep)
	if idx < 0 {
		return Condition{}, false, nil
	}
	field := strings.TrimSpace(expr[:idx])
	val := extractValue(strings.TrimSpace(expr[idx+len(sep):]))
	f, err := fieldFor(field, FieldName, FieldPath, FieldExtension)
	if err != nil {
		return Condition{}, true, err
	}
	return Condition{Field: f, Op: OpLike, StringVal: val}, true, nil
}

// comparisonOps is ordered longest-prefix-first so "<=" and ">=" win over
// "<" and ">" when disambiguating, per spec.md §4.1.
var comparisonOps = []Op{OpEqual, OpNotEqual, OpLessEq, OpGreaterEq, OpLess, OpGreater}

func parseComparisonForm(expr string) (Condition, bool, error) {
	for _, op := range comparisonOps {
		idx := strings.Index(expr, string(op))
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(expr[:idx])
		valueStr := strings.TrimSpace(expr[idx+len(op):])
		switch field {
		case "name":
			return Condition{Field: FieldName, Op: op, StringVal: extractValue(valueStr)}, true, nil
		case "path":
			return Condition{Field: FieldPath, Op: op, StringVal: extractValue(valueStr)}, true, nil
		case "type":
			if op != OpEqual && op != OpNotEqual {
				return Condition{}, true, fmt.Errorf("type only supports == and !=")
			}
			return Condition{Field: FieldType, Op: op, StringVal: extractValue(valueStr)}, true, nil
		case "extension":
			return Condition{Field: FieldExtension, Op: op, StringVal: extractValue(valueStr)}, true, nil
		case "modified":
			v, err := strconv.ParseFloat(extractValue(valueStr), 64)
			if err != nil {
				return Condition{}, true, fmt.Errorf("invalid modified value: %w", err)
			}
			return Condition{Field: FieldModified, Op: op, NumberVal: v}, true, nil
		case "size":
			v, err := strconv.ParseUint(extractValue(valueStr), 10, 64)
			if err != nil {
				return Condition{}, true, fmt.Errorf("invalid size value: %w", err)
			}
			return Condition{Field: FieldSize, Op: op, SizeVal: v}, true, nil
		default:
			// This operator substring occurred somewhere that isn't a
			// recognized field name (e.g. inside a quoted value); try
			// the next, longer-prefix-first operator.
			continue
		}
	}
	return Condition{}, false, nil
}

func parseKeywordForm(expr string) (Condition, bool, error) {
	type kw struct {
		text string
		op   Op
	}
	keywords := []kw{
		{" contains ", OpContains},
		{" starts with ", OpStartsWith},
		{" ends with ", OpEndsWith},
	}
	for _, k := range keywords {
		idx := strings.Index(expr, k.text)
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(expr[:idx])
		val := extractValue(strings.TrimSpace(expr[idx+len(k.text):]))
		switch field {
		case "name":
			return Condition{Field: FieldName, Op: k.op, StringVal: val}, true, nil
		case "path":
			return Condition{Field: FieldPath, Op: k.op, StringVal: val}, true, nil
		case "extension":
			if k.op != OpContains {
				continue
			}
			return Condition{Field: FieldExtension, Op: k.op, StringVal: val}, true, nil
		}
	}
	return Condition{}, false, nil
}

func fieldFor(name string, allowed ...Field) (Field, error) {
	for _, f := range allowed {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("field %q not valid here", name)
}

// extractValue strips a single layer of matching single or double quotes
// from a value token; for an unquoted value only the first
// whitespace-delimited token is returned.
func extractValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}
