package serializers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	MsgRequired     = "This field is required."
	MsgNull         = "This field may not be null."
	MsgBlank        = "This field may not be blank."
	MsgInvalidEmail = "Enter a valid email address."
	MsgNotString    = "Not a valid string."
	MsgMaxLength    = "Ensure this field has no more than %s characters."
	MsgPkType       = "Incorrect type. Expected pk value, received %s."
	MsgPkMissing    = "Invalid pk \"%d\" - object does not exist."
	MsgNotList      = "Expected a list of items but got type \"%s\"."
	MsgNotDict      = "Invalid data. Expected a dictionary, but got %s."

	// NonFieldErrors holds errors that do not belong to one field.
	NonFieldErrors = "non_field_errors"
)

// ValidationError maps field names to the reasons their values were rejected.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	keys := lo.Keys(map[string][]string(e))
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e ValidationError) Fields() map[string][]string {
	return e
}

func (e ValidationError) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e ValidationError) Has(field string) bool {
	return len(e[field]) > 0
}

func (e ValidationError) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
