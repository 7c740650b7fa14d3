/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/quickcontext/errors"
)

// PathSeparator joins attribute names and the trailing lookup in a field path.
const PathSeparator = "__"

// Lookup is the comparison applied to the attribute a field path resolves to.
type Lookup string

const (
	LookupExact       Lookup = "exact"
	LookupIExact      Lookup = "iexact"
	LookupContains    Lookup = "contains"
	LookupIContains   Lookup = "icontains"
	LookupStartsWith  Lookup = "startswith"
	LookupIStartsWith Lookup = "istartswith"
	LookupEndsWith    Lookup = "endswith"
	LookupIEndsWith   Lookup = "iendswith"
	LookupGt          Lookup = "gt"
	LookupGte         Lookup = "gte"
	LookupLt          Lookup = "lt"
	LookupLte         Lookup = "lte"
	LookupIn          Lookup = "in"
	LookupIsNull      Lookup = "isnull"
)

var knownLookups = map[Lookup]struct{}{
	LookupExact:       {},
	LookupIExact:      {},
	LookupContains:    {},
	LookupIContains:   {},
	LookupStartsWith:  {},
	LookupIStartsWith: {},
	LookupEndsWith:    {},
	LookupIEndsWith:   {},
	LookupGt:          {},
	LookupGte:         {},
	LookupLt:          {},
	LookupLte:         {},
	LookupIn:          {},
	LookupIsNull:      {},
}

// FieldPath is a parsed field-path expression such as "profile__city__icontains".
type FieldPath struct {
	// Attributes is the chain of attribute names, outermost first.
	Attributes []string
	// Lookup is the comparison; LookupExact when the expression names none.
	Lookup Lookup
}

// ParseFieldPath splits expr on PathSeparator. A trailing segment naming a known
// lookup becomes the comparison; everything before it is an attribute chain.
func ParseFieldPath(expr string) (FieldPath, error) {
	if expr == "" {
		return FieldPath{}, errors.NewValidationError("", "empty field path")
	}

	segments := strings.Split(expr, PathSeparator)
	for _, s := range segments {
		if s == "" {
			return FieldPath{}, errors.NewValidationError(expr, "field path contains an empty segment")
		}
	}

	lookup := LookupExact
	if len(segments) > 1 {
		last := Lookup(segments[len(segments)-1])
		if _, ok := knownLookups[last]; ok {
			lookup = last
			segments = segments[:len(segments)-1]
		}
	}

	return FieldPath{Attributes: segments, Lookup: lookup}, nil
}

// String renders the path back into its expression form.
func (p FieldPath) String() string {
	s := strings.Join(p.Attributes, PathSeparator)
	if p.Lookup != "" && p.Lookup != LookupExact {
		s += PathSeparator + string(p.Lookup)
	}
	return s
}

// IsPlainField reports whether the path is a single attribute compared for equality.
func (p FieldPath) IsPlainField() bool {
	return len(p.Attributes) == 1 && (p.Lookup == LookupExact || p.Lookup == "")
}

// Match reports whether item satisfies the path compared against value.
// Missing attributes never match, except under isnull.
func (p FieldPath) Match(item map[string]types.AttributeValue, value string) (bool, error) {
	av, found, err := p.resolve(item)
	if err != nil {
		return false, err
	}

	if p.Lookup == LookupIsNull {
		want, err := strconv.ParseBool(value)
		if err != nil {
			return false, errors.NewValidationError(p.String(), fmt.Sprintf("%q is not a boolean", value))
		}
		return isNull(av, found) == want, nil
	}

	if isNull(av, found) {
		return false, nil
	}

	if p.Lookup == LookupIn {
		for _, candidate := range strings.Split(value, ",") {
			ok, err := p.compare(av, LookupExact, strings.TrimSpace(candidate))
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	lookup := p.Lookup
	if lookup == "" {
		lookup = LookupExact
	}
	return p.compare(av, lookup, value)
}

func (p FieldPath) resolve(item map[string]types.AttributeValue) (types.AttributeValue, bool, error) {
	var current types.AttributeValue = &types.AttributeValueMemberM{Value: item}
	for _, attr := range p.Attributes {
		switch tv := current.(type) {
		case *types.AttributeValueMemberM:
			next, ok := tv.Value[attr]
			if !ok {
				return nil, false, nil
			}
			current = next
		case *types.AttributeValueMemberNULL:
			return nil, false, nil
		default:
			return nil, false, errors.NewValidationError(p.String(),
				fmt.Sprintf("unsupported lookup or nested field %q", attr))
		}
	}
	return current, true, nil
}

func isNull(av types.AttributeValue, found bool) bool {
	if !found || av == nil {
		return true
	}
	_, null := av.(*types.AttributeValueMemberNULL)
	return null
}

func (p FieldPath) compare(av types.AttributeValue, lookup Lookup, value string) (bool, error) {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		return compareString(tv.Value, lookup, value), nil

	case *types.AttributeValueMemberN:
		return p.compareNumber(tv.Value, lookup, value)

	case *types.AttributeValueMemberBOOL:
		if lookup != LookupExact && lookup != LookupIExact {
			return false, p.unsupported(lookup, "boolean")
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, errors.NewValidationError(p.String(), fmt.Sprintf("%q is not a boolean", value))
		}
		return tv.Value == b, nil

	case *types.AttributeValueMemberSS:
		if !isMembership(lookup) {
			return false, p.unsupported(lookup, "string set")
		}
		for _, s := range tv.Value {
			if compareString(s, memberLookup(lookup), value) {
				return true, nil
			}
		}
		return false, nil

	case *types.AttributeValueMemberNS:
		if !isMembership(lookup) {
			return false, p.unsupported(lookup, "number set")
		}
		for _, n := range tv.Value {
			ok, err := p.compareNumber(n, LookupExact, value)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case *types.AttributeValueMemberL:
		if !isMembership(lookup) {
			return false, p.unsupported(lookup, "list")
		}
		for _, elem := range tv.Value {
			if _, null := elem.(*types.AttributeValueMemberNULL); null {
				continue
			}
			ok, err := p.compare(elem, memberLookup(lookup), value)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, p.unsupported(lookup, fmt.Sprintf("%T", av))
	}
}

func (p FieldPath) compareNumber(n string, lookup Lookup, value string) (bool, error) {
	switch lookup {
	case LookupContains, LookupIContains, LookupStartsWith, LookupIStartsWith, LookupEndsWith, LookupIEndsWith:
		return compareString(n, lookup, value), nil
	}

	stored, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return false, fmt.Errorf("stored number %q for %s: %w", n, p.String(), err)
	}
	want, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false, errors.NewValidationError(p.String(), fmt.Sprintf("%q is not a number", value))
	}

	switch lookup {
	case LookupExact, LookupIExact:
		return stored == want, nil
	case LookupGt:
		return stored > want, nil
	case LookupGte:
		return stored >= want, nil
	case LookupLt:
		return stored < want, nil
	case LookupLte:
		return stored <= want, nil
	}
	return false, p.unsupported(lookup, "number")
}

func compareString(s string, lookup Lookup, value string) bool {
	switch lookup {
	case LookupExact:
		return s == value
	case LookupIExact:
		return strings.EqualFold(s, value)
	case LookupContains:
		return strings.Contains(s, value)
	case LookupIContains:
		return strings.Contains(strings.ToLower(s), strings.ToLower(value))
	case LookupStartsWith:
		return strings.HasPrefix(s, value)
	case LookupIStartsWith:
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(value))
	case LookupEndsWith:
		return strings.HasSuffix(s, value)
	case LookupIEndsWith:
		return strings.HasSuffix(strings.ToLower(s), strings.ToLower(value))
	case LookupGt:
		return s > value
	case LookupGte:
		return s >= value
	case LookupLt:
		return s < value
	case LookupLte:
		return s <= value
	}
	return false
}

// isMembership reports whether lookup can be applied to the elements of a collection.
func isMembership(lookup Lookup) bool {
	switch lookup {
	case LookupExact, LookupContains, LookupIExact, LookupIContains:
		return true
	}
	return false
}

// memberLookup maps a collection lookup to the comparison applied per element.
func memberLookup(lookup Lookup) Lookup {
	if lookup == LookupIContains || lookup == LookupIExact {
		return LookupIExact
	}
	return LookupExact
}

func (p FieldPath) unsupported(lookup Lookup, kind string) error {
	return errors.NewValidationError(p.String(), fmt.Sprintf("lookup %q is not supported on %s attributes", lookup, kind))
}
