package types

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq        CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq     CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt        CommonFilterOperator = "lt"
	CommonFilterOperatorLte       CommonFilterOperator = "lte"
	CommonFilterOperatorGt        CommonFilterOperator = "gt"
	CommonFilterOperatorGte       CommonFilterOperator = "gte"
	CommonFilterOperatorDateRange CommonFilterOperator = "date_range"
	CommonFilterOperatorRange     CommonFilterOperator = "range"
	CommonFilterOperatorIn        CommonFilterOperator = "in"
)

var ErrInvalidFilter = errors.New("invalid filter")

type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

// Validate rejects filters on columns outside allowed and malformed operands.
// Field names are written into SQL as identifiers, so callers must validate first.
func (f *CommonFilter) Validate(allowed map[string]bool) error {
	if f == nil {
		return fmt.Errorf("%w: nil filter", ErrInvalidFilter)
	}
	if !allowed[f.Field] {
		return fmt.Errorf("%w: field %q is not filterable", ErrInvalidFilter, f.Field)
	}
	switch f.Operator {
	case CommonFilterOperatorEq, CommonFilterOperatorNotEq, CommonFilterOperatorLt,
		CommonFilterOperatorLte, CommonFilterOperatorGt, CommonFilterOperatorGte, CommonFilterOperatorIn:
		if len(f.Values) == 0 {
			return fmt.Errorf("%w: %s needs a value", ErrInvalidFilter, f.Operator)
		}
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return fmt.Errorf("%w: range needs two values", ErrInvalidFilter)
		}
	case CommonFilterOperatorDateRange:
		if len(f.Values) < 2 {
			return fmt.Errorf("%w: date_range needs two values", ErrInvalidFilter)
		}
		for _, v := range f.Values[:2] {
			if _, err := parseFilterTime(v); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Operator)
	}
	return nil
}

// Build constructs a GORM expression.
func (f *CommonFilter) Build(builder clause.Builder) {
	if len(f.Values) == 0 {
		return
	}

	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		clause.Eq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorNotEq:
		clause.Neq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLt:
		clause.Lt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLte:
		clause.Lte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGt:
		clause.Gt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGte:
		clause.Gte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return
		}
		clause.And(clause.Gte{Column: f.Field, Value: f.Values[0]}, clause.Lte{Column: f.Field, Value: f.Values[1]}).Build(builder)
	case CommonFilterOperatorDateRange:
		if len(f.Values) < 2 {
			return
		}
		from, err1 := parseFilterTime(f.Values[0])
		to, err2 := parseFilterTime(f.Values[1])
		if err1 != nil || err2 != nil {
			return
		}
		clause.And(clause.Gte{Column: f.Field, Value: from}, clause.Lt{Column: f.Field, Value: to}).Build(builder)
	case CommonFilterOperatorIn:
		clause.IN{Column: f.Field, Values: f.Values}.Build(builder)
	default:
		return
	}
}

// parseFilterTime accepts RFC3339 strings and unix seconds (JSON numbers decode as float64).
func parseFilterTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case string:
		return time.Parse(time.RFC3339, t)
	case float64:
		return time.Unix(int64(t), 0).UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case int:
		return time.Unix(int64(t), 0).UTC(), nil
	case time.Time:
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unsupported time value %v", v)
}
