package normalizer

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sirosfoundation/obkit/pkg/badge"
)

// ErrUnknownField is returned by ParseField for names that are not a
// NormalizedBadge field.
var ErrUnknownField = errors.New("unknown badge field")

// Field names a NormalizedBadge field by its serialised key.
type Field string

const (
	FieldID             Field = "id"
	FieldType           Field = "type"
	FieldName           Field = "name"
	FieldDescription    Field = "description"
	FieldImageURL       Field = "imageUrl"
	FieldIssuerName     Field = "issuerName"
	FieldIssuerID       Field = "issuerId"
	FieldIssuanceDate   Field = "issuanceDate"
	FieldExpirationDate Field = "expirationDate"
	FieldIsExpired      Field = "isExpired"
	FieldRecipientID    Field = "recipientId"
	FieldCriteria       Field = "criteria"
	FieldEvidence       Field = "evidence"
)

var fields = []Field{
	FieldID, FieldType, FieldName, FieldDescription, FieldImageURL,
	FieldIssuerName, FieldIssuerID, FieldIssuanceDate, FieldExpirationDate,
	FieldIsExpired, FieldRecipientID, FieldCriteria, FieldEvidence,
}

// ParseField resolves a field name, ignoring case.
func ParseField(name string) (Field, error) {
	for _, f := range fields {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// value returns a field as a string or bool, or nil when it is null.
func (nb *NormalizedBadge) value(f Field) any {
	deref := func(s *string) any {
		if s == nil {
			return nil
		}
		return *s
	}
	switch f {
	case FieldID:
		return nb.ID
	case FieldType:
		return string(nb.Type)
	case FieldName:
		return nb.Name
	case FieldDescription:
		return deref(nb.Description)
	case FieldImageURL:
		return deref(nb.ImageURL)
	case FieldIssuerName:
		return deref(nb.IssuerName)
	case FieldIssuerID:
		return deref(nb.IssuerID)
	case FieldIssuanceDate:
		return nb.IssuanceDate
	case FieldExpirationDate:
		return deref(nb.ExpirationDate)
	case FieldIsExpired:
		return nb.IsExpired
	case FieldRecipientID:
		return deref(nb.RecipientID)
	case FieldCriteria:
		return deref(nb.Criteria)
	case FieldEvidence:
		return deref(nb.Evidence)
	}
	return nil
}

// SortBadges returns a stably sorted copy of list, comparing strings with the
// root collation order.
func SortBadges(list []NormalizedBadge, field Field, dir Direction) []NormalizedBadge {
	return SortBadgesLocale(list, field, dir, language.Und)
}

// SortBadgesLocale is SortBadges with strings ordered for tag. Null values
// sort last when ascending and first when descending. false sorts before
// true.
func SortBadgesLocale(list []NormalizedBadge, field Field, dir Direction, tag language.Tag) []NormalizedBadge {
	out := slices.Clone(list)
	col := collate.New(tag)
	desc := dir == Descending

	slices.SortStableFunc(out, func(a, b NormalizedBadge) int {
		av, bv := a.value(field), b.value(field)
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			if desc {
				return -1
			}
			return 1
		case bv == nil:
			if desc {
				return 1
			}
			return -1
		}

		c := 0
		switch x := av.(type) {
		case string:
			c = col.CompareString(x, bv.(string))
		case bool:
			y := bv.(bool)
			switch {
			case x == y:
			case y:
				c = -1
			default:
				c = 1
			}
		}
		if desc {
			return -c
		}
		return c
	})
	return out
}

// FilterBadgesBySearchTerm keeps records whose name, description, issuer name
// or criteria contain term, ignoring case. An empty term keeps everything.
func FilterBadgesBySearchTerm(list []NormalizedBadge, term string) []NormalizedBadge {
	if term == "" {
		return list
	}
	term = strings.ToLower(term)
	return filter(list, func(nb *NormalizedBadge) bool {
		for _, f := range []Field{FieldName, FieldDescription, FieldIssuerName, FieldCriteria} {
			if s, ok := nb.value(f).(string); ok && strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
		return false
	})
}

// FilterBadgesByType keeps records of version v. The pseudo-version "all"
// keeps everything.
func FilterBadgesByType(list []NormalizedBadge, v badge.Version) []NormalizedBadge {
	if strings.EqualFold(string(v), "all") {
		return list
	}
	return filter(list, func(nb *NormalizedBadge) bool { return nb.Type == v })
}

// FilterBadgesByIssuer keeps records whose issuer id equals issuerID.
func FilterBadgesByIssuer(list []NormalizedBadge, issuerID string) []NormalizedBadge {
	return filter(list, func(nb *NormalizedBadge) bool {
		return nb.IssuerID != nil && *nb.IssuerID == issuerID
	})
}

// FilterBadgesByRecipient keeps records whose recipient identity equals
// recipientID.
func FilterBadgesByRecipient(list []NormalizedBadge, recipientID string) []NormalizedBadge {
	return filter(list, func(nb *NormalizedBadge) bool {
		return nb.RecipientID != nil && *nb.RecipientID == recipientID
	})
}

// FilterBadgesByExpiration keeps expired records, or unexpired ones.
func FilterBadgesByExpiration(list []NormalizedBadge, expired bool) []NormalizedBadge {
	return filter(list, func(nb *NormalizedBadge) bool { return nb.IsExpired == expired })
}

// UnknownGroup collects records whose grouping field is null or empty.
const UnknownGroup = "unknown"

// GroupBadges groups records by the string form of field. Records keep their
// relative order within a group.
func GroupBadges(list []NormalizedBadge, field Field) map[string][]NormalizedBadge {
	groups := make(map[string][]NormalizedBadge)
	for _, nb := range list {
		key := UnknownGroup
		switch v := nb.value(field).(type) {
		case string:
			if v != "" {
				key = v
			}
		case bool:
			key = strconv.FormatBool(v)
		}
		groups[key] = append(groups[key], nb)
	}
	return groups
}

func filter(list []NormalizedBadge, keep func(*NormalizedBadge) bool) []NormalizedBadge {
	out := make([]NormalizedBadge, 0, len(list))
	for i := range list {
		if keep(&list[i]) {
			out = append(out, list[i])
		}
	}
	return out
}
