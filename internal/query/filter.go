// Package query compiles declarative lead filters into storage-agnostic
// predicates. The compiler is total: malformed entries, unknown fields and
// unsupported operators contribute no predicate instead of failing.
package query

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the predicate variant a filter entry compiled to.
type Kind int

const (
	KindTextEquals Kind = iota
	KindTextContains
	KindEnumEquals
	KindEnumIn
	KindNumberEquals
	KindNumberGT
	KindNumberLT
	KindNumberBetween
	KindDateOn
	KindDateBefore
	KindDateAfter
	KindDateBetween
	KindBoolEquals
)

// Predicate is one compiled filter condition. Which value fields are
// meaningful depends on Kind. Predicates for different fields combine
// with logical AND.
type Predicate struct {
	Field      string
	Kind       Kind
	Text       string
	Values     []string
	Number     float64
	NumberHigh float64
	Time       time.Time
	TimeHigh   time.Time
	Bool       bool
}

type fieldClass int

const (
	classText fieldClass = iota
	classEnum
	classNumber
	classDate
	classBool
)

var filterableFields = map[string]fieldClass{
	"email":          classText,
	"company":        classText,
	"city":           classText,
	"state":          classText,
	"source":         classEnum,
	"status":         classEnum,
	"score":          classNumber,
	"leadValue":      classNumber,
	"createdAt":      classDate,
	"lastActivityAt": classDate,
	"isQualified":    classBool,
}

// Compile turns a field -> {operator, value, value2?} mapping into
// predicates. Entries that are not objects, lack an operator or value,
// name an unknown field, or use an operator illegal for the field's
// class are silently dropped.
func Compile(filters map[string]any) []Predicate {
	if len(filters) == 0 {
		return nil
	}
	predicates := make([]Predicate, 0, len(filters))
	for field, raw := range filters {
		class, known := filterableFields[field]
		if !known {
			continue
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		operator, ok := entry["operator"].(string)
		if !ok || operator == "" {
			continue
		}
		value, present := entry["value"]
		if !present || value == nil {
			continue
		}
		if p, ok := compileEntry(field, class, operator, value, entry["value2"]); ok {
			predicates = append(predicates, p)
		}
	}
	return predicates
}

func compileEntry(field string, class fieldClass, operator string, value, value2 any) (Predicate, bool) {
	switch class {
	case classText:
		return compileText(field, operator, value)
	case classEnum:
		return compileEnum(field, operator, value)
	case classNumber:
		return compileNumber(field, operator, value, value2)
	case classDate:
		return compileDate(field, operator, value, value2)
	case classBool:
		return compileBool(field, operator, value)
	}
	return Predicate{}, false
}

func compileText(field, operator string, value any) (Predicate, bool) {
	text, ok := value.(string)
	if !ok {
		return Predicate{}, false
	}
	switch operator {
	case "equals":
		return Predicate{Field: field, Kind: KindTextEquals, Text: text}, true
	case "contains":
		return Predicate{Field: field, Kind: KindTextContains, Text: text}, true
	}
	return Predicate{}, false
}

func compileEnum(field, operator string, value any) (Predicate, bool) {
	switch operator {
	case "equals":
		text, ok := value.(string)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Field: field, Kind: KindEnumEquals, Text: text}, true
	case "in":
		values, ok := asStringSet(value)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Field: field, Kind: KindEnumIn, Values: values}, true
	}
	return Predicate{}, false
}

func compileNumber(field, operator string, value, value2 any) (Predicate, bool) {
	number, ok := asNumber(value)
	if !ok {
		return Predicate{}, false
	}
	switch operator {
	case "equals":
		return Predicate{Field: field, Kind: KindNumberEquals, Number: number}, true
	case "gt":
		return Predicate{Field: field, Kind: KindNumberGT, Number: number}, true
	case "lt":
		return Predicate{Field: field, Kind: KindNumberLT, Number: number}, true
	case "between":
		high, ok := asNumber(value2)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Field: field, Kind: KindNumberBetween, Number: number, NumberHigh: high}, true
	}
	return Predicate{}, false
}

func compileDate(field, operator string, value, value2 any) (Predicate, bool) {
	at, ok := asTime(value)
	if !ok {
		return Predicate{}, false
	}
	switch operator {
	case "on":
		day := at.UTC().Truncate(24 * time.Hour)
		return Predicate{Field: field, Kind: KindDateOn, Time: day, TimeHigh: day.Add(24 * time.Hour)}, true
	case "before":
		return Predicate{Field: field, Kind: KindDateBefore, Time: at}, true
	case "after":
		return Predicate{Field: field, Kind: KindDateAfter, Time: at}, true
	case "between":
		high, ok := asTime(value2)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Field: field, Kind: KindDateBetween, Time: at, TimeHigh: high}, true
	}
	return Predicate{}, false
}

func compileBool(field, operator string, value any) (Predicate, bool) {
	if operator != "equals" {
		return Predicate{}, false
	}
	switch v := value.(type) {
	case bool:
		return Predicate{Field: field, Kind: KindBoolEquals, Bool: v}, true
	case string:
		switch strings.ToLower(v) {
		case "true":
			return Predicate{Field: field, Kind: KindBoolEquals, Bool: true}, true
		case "false":
			return Predicate{Field: field, Kind: KindBoolEquals, Bool: false}, true
		}
	}
	return Predicate{}, false
}

// asStringSet accepts an array of strings, or a single string treated as
// a one-element set. Non-string members are skipped.
func asStringSet(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case []any:
		values := make([]string, 0, len(v))
		for _, member := range v {
			if s, ok := member.(string); ok {
				values = append(values, s)
			}
		}
		return values, true
	case []string:
		return v, true
	}
	return nil, false
}

// asNumber accepts JSON numbers and numeric strings.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// asTime accepts RFC 3339 timestamps and YYYY-MM-DD dates (parsed as UTC).
func asTime(value any) (time.Time, bool) {
	text, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	text = strings.TrimSpace(text)
	if at, err := time.Parse(time.RFC3339, text); err == nil {
		return at, true
	}
	if at, err := time.Parse("2006-01-02", text); err == nil {
		return at, true
	}
	return time.Time{}, false
}
