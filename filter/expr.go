// Copyright 2023 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package filter implements the small expression DSL over StorageEntry
// attributes named by spec.md §3/§4.1: name, path, type, size,
// modification age in days, and extension, joined by logical AND.
//
// It is grounded on cloudeng.io/file/matcher/expression.go's split between
// a typed item/condition list and a separate evaluator, adapted from
// matcher's regex/filetype/newerthan items and bracketed boolean tree to
// the flatter, AND-only condition chain the spec's grammar describes.
package filter

import "fmt"

// Field identifies which StorageEntry attribute a Condition examines.
type Field int

const (
	FieldName Field = iota
	FieldPath
	FieldType
	FieldModified
	FieldSize
	FieldExtension
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldPath:
		return "path"
	case FieldType:
		return "type"
	case FieldModified:
		return "modified"
	case FieldSize:
		return "size"
	case FieldExtension:
		return "extension"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Op is a comparison or string-matching operator.
type Op string

const (
	OpEqual      Op = "=="
	OpNotEqual   Op = "!="
	OpContains   Op = "contains"
	OpStartsWith Op = "starts_with"
	OpEndsWith   Op = "ends_with"
	OpLike       Op = "like"
	OpIn         Op = "in"
	OpLess       Op = "<"
	OpGreater    Op = ">"
	OpLessEq     Op = "<="
	OpGreaterEq  Op = ">="
)

// Condition is a single FilterCondition per spec.md §3: one field, one
// operator, and a value typed to match the field (string for
// name/path/type/extension, float64 for modified, uint64 for size).
type Condition struct {
	Field      Field
	Op         Op
	StringVal  string
	NumberVal  float64
	SizeVal    uint64
}

// Expr is an ordered sequence of Conditions joined by logical AND, per
// spec.md §3's FilterExpr.
type Expr struct {
	Source     string
	Conditions []Condition
}

// Entry is the minimal view of a storage.Entry that Eval needs; it is
// satisfied by the fields scan.Run derives per entry (§4.3), avoiding
// an import cycle between filter and storage/scan.
type Entry struct {
	Name          string
	Path          string
	FileType      string // "file" or "dir"
	ModifiedDays  float64
	Size          uint64
	Extension     string
}

// Eval reports whether e satisfies every condition in the expression
// (logical AND), per spec.md §4.1.
func (x Expr) Eval(e Entry) bool {
	for _, c := range x.Conditions {
		if !c.eval(e) {
			return false
		}
	}
	return true
}

func (c Condition) eval(e Entry) bool {
	switch c.Field {
	case FieldName:
		return evalString(c.Op, e.Name, c.StringVal)
	case FieldPath:
		return evalString(c.Op, e.Path, c.StringVal)
	case FieldType:
		switch c.Op {
		case OpEqual:
			return e.FileType == c.StringVal
		case OpNotEqual:
			return e.FileType != c.StringVal
		default:
			return false
		}
	case FieldExtension:
		return evalString(c.Op, e.Extension, c.StringVal)
	case FieldModified:
		return evalNumber(c.Op, e.ModifiedDays, c.NumberVal)
	case FieldSize:
		return evalSize(c.Op, e.Size, c.SizeVal)
	default:
		return false
	}
}

func evalString(op Op, field, val string) bool {
	switch op {
	case OpEqual:
		return field == val
	case OpNotEqual:
		return field != val
	case OpContains, OpIn:
		return containsSubstring(field, val)
	case OpStartsWith:
		return hasPrefix(field, val)
	case OpEndsWith:
		return hasSuffix(field, val)
	case OpLike:
		return likeMatch(field, val)
	default:
		return false
	}
}

func evalNumber(op Op, field, val float64) bool {
	switch op {
	case OpLess:
		return field < val
	case OpGreater:
		return field > val
	case OpLessEq:
		return field <= val
	case OpGreaterEq:
		return field >= val
	default:
		return false
	}
}

func evalSize(op Op, field, val uint64) bool {
	switch op {
	case OpLess:
		return field < val
	case OpGreater:
		return field > val
	case OpLessEq:
		return field <= val
	case OpGreaterEq:
		return field >= val
	default:
		return false
	}
}

func containsSubstring(s, sub string) bool {
	return indexOf(s, sub) >= 0
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func indexOf(s, sub string) int {
	if sub == "" {
		return 0
	}
	n, m := len(s), len(sub)
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// likeMatch implements the "%"-wildcard matching spec.md §3/§4.1 describes:
// patterns may be prefix-%, suffix-%, both, or exactly one infix %; zero %
// degenerates to equality.
func likeMatch(s, pattern string) bool {
	switch countPercent(pattern) {
	case 0:
		return s == pattern
	case 1:
		idx := indexOf(pattern, "%")
		switch {
		case idx == 0:
			return hasSuffix(s, pattern[1:])
		case idx == len(pattern)-1:
			return hasPrefix(s, pattern[:idx])
		default:
			prefix, suffix := pattern[:idx], pattern[idx+1:]
			return hasPrefix(s, prefix) && hasSuffix(s, suffix) && len(s) >= len(prefix)+len(suffix)
		}
	case 2:
		if hasPrefix(pattern, "%") && hasSuffix(pattern, "%") && len(pattern) >= 2 {
			return containsSubstring(s, pattern[1:len(pattern)-1])
		}
		return false
	default:
		return false
	}
}

func countPercent(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			n++
		}
	}
	return n
}
