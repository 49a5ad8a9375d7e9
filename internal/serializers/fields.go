package serializers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mrlokans/bookstore/internal/entities"
)

// Mode selects how missing fields are treated.
type Mode int

const (
	// ModeCreate and ModeUpdate require every mandatory field.
	ModeCreate Mode = iota
	ModeUpdate
	// ModePartial only checks the fields that are present.
	ModePartial
)

// fieldReader reads typed values out of a payload and records failures.
type fieldReader struct {
	payload Payload
	errs    ValidationError
}

func newFieldReader(p Payload) *fieldReader {
	return &fieldReader{payload: p, errs: ValidationError{}}
}

func (r *fieldReader) present(field string) bool {
	_, ok := r.payload[field]
	return ok
}

// scalar returns the raw value, unwrapping repeated form keys.
func (r *fieldReader) scalar(field string) (any, bool) {
	v, ok := r.payload[field]
	if !ok {
		return nil, false
	}
	if list, isList := v.(formList); isList {
		if len(list) == 0 {
			return "", true
		}
		return list[len(list)-1], true
	}
	return v, true
}

func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}

// String reads a non-nullable string. Blank values are rejected unless
// allowBlank is set.
func (r *fieldReader) String(field string, allowBlank bool) (*string, bool) {
	v, ok := r.scalar(field)
	if !ok {
		return nil, false
	}
	if v == nil {
		r.errs.Add(field, MsgNull)
		return nil, true
	}
	s, ok := asString(v)
	if !ok {
		r.errs.Add(field, MsgNotString)
		return nil, true
	}
	s = strings.TrimSpace(s)
	if s == "" && !allowBlank {
		r.errs.Add(field, MsgBlank)
		return nil, true
	}
	return &s, true
}

// NullableString reads a string where null and "" both clear the value.
// The returned pointer-to-pointer is nil when the field is absent.
func (r *fieldReader) NullableString(field string) (**string, bool) {
	v, ok := r.scalar(field)
	if !ok {
		return nil, false
	}
	var out *string
	if v != nil {
		s, ok := asString(v)
		if !ok {
			r.errs.Add(field, MsgNotString)
			return nil, true
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = &s
		}
	}
	return &out, true
}

func (r *fieldReader) NullableDate(field string) (**entities.Date, bool) {
	v, ok := r.scalar(field)
	if !ok {
		return nil, false
	}
	var out *entities.Date
	if v != nil {
		s, isStr := v.(string)
		if !isStr {
			r.errs.Add(field, entities.ErrInvalidDate.Error())
			return nil, true
		}
		if strings.TrimSpace(s) != "" {
			d, err := entities.ParseDate(s)
			if err != nil {
				r.errs.Add(field, err.Error())
				return nil, true
			}
			out = &d
		}
	}
	return &out, true
}

func (r *fieldReader) NullablePrice(field string) (**entities.Price, bool) {
	v, ok := r.scalar(field)
	if !ok {
		return nil, false
	}
	var out *entities.Price
	if v != nil {
		s, isStr := asString(v)
		if !isStr {
			r.errs.Add(field, entities.ErrInvalidPrice.Error())
			return nil, true
		}
		if strings.TrimSpace(s) != "" {
			p, err := entities.ParsePrice(s)
			if err != nil {
				r.errs.Add(field, err.Error())
				return nil, true
			}
			out = &p
		}
	}
	return &out, true
}

// IDList reads a list of primary keys from a JSON array, repeated form keys
// or a comma separated string.
func (r *fieldReader) IDList(field string) ([]uint, bool) {
	v, ok := r.payload[field]
	if !ok {
		return nil, false
	}

	var items []any
	switch val := v.(type) {
	case nil:
		r.errs.Add(field, MsgNull)
		return nil, true
	case []any:
		items = val
	case formList:
		for _, s := range val {
			items = append(items, s)
		}
	case string:
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	default:
		r.errs.Add(field, fmt.Sprintf(MsgNotList, jsonTypeName(v)))
		return nil, true
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		id, ok := parsePk(item)
		if !ok {
			r.errs.Add(field, fmt.Sprintf(MsgPkType, jsonTypeName(item)))
			continue
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), true
}

func parsePk(v any) (uint, bool) {
	var raw string
	switch val := v.(type) {
	case json.Number:
		raw = val.String()
	case float64:
		raw = strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		raw = strings.TrimSpace(val)
	default:
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
