package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/sirosfoundation/obkit/pkg/badge"
)

func str(s string) *string { return &s }

func sample() []NormalizedBadge {
	return []NormalizedBadge{
		{ID: "1", Type: badge.OB2, Name: "banana", IssuerID: str("iss-a"), IssuanceDate: "2023-03-01T00:00:00Z", RecipientID: str("a@b.com"), Criteria: str("Eat fruit")},
		{ID: "2", Type: badge.OB3, Name: "Apple", Description: str("A red one"), IssuerID: str("iss-b"), IssuanceDate: "2023-01-01T00:00:00Z", IsExpired: true},
		{ID: "3", Type: badge.OB2, Name: "cherry", IssuerName: str("Orchard Guild"), IssuerID: str("iss-a"), IssuanceDate: "2023-02-01T00:00:00Z"},
		{ID: "4", Type: badge.OB3, Name: "Äpfel", Description: str("German"), IssuanceDate: ""},
	}
}

func ids(list []NormalizedBadge) []string {
	out := make([]string, len(list))
	for i, nb := range list {
		out[i] = nb.ID
	}
	return out
}

func TestParseField(t *testing.T) {
	f, err := ParseField("issuanceDate")
	require.NoError(t, err)
	assert.Equal(t, FieldIssuanceDate, f)

	f, err = ParseField("ISEXPIRED")
	require.NoError(t, err)
	assert.Equal(t, FieldIsExpired, f)

	_, err = ParseField("rawBadge")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSortBadges(t *testing.T) {
	list := sample()

	tests := []struct {
		name  string
		field Field
		dir   Direction
		want  []string
	}{
		{name: "name collates case-insensitively", field: FieldName, dir: Ascending, want: []string{"4", "2", "1", "3"}},
		{name: "name descending", field: FieldName, dir: Descending, want: []string{"3", "1", "2", "4"}},
		{name: "date ascending", field: FieldIssuanceDate, dir: Ascending, want: []string{"4", "2", "3", "1"}},
		{name: "nulls last ascending", field: FieldDescription, dir: Ascending, want: []string{"2", "4", "1", "3"}},
		{name: "nulls first descending", field: FieldDescription, dir: Descending, want: []string{"1", "3", "4", "2"}},
		{name: "false before true", field: FieldIsExpired, dir: Ascending, want: []string{"1", "3", "4", "2"}},
		{name: "true before false descending", field: FieldIsExpired, dir: Descending, want: []string{"2", "1", "3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SortBadges(list, tt.field, tt.dir)))
		})
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(list), "input must not be reordered")
}

func TestSortBadgesLocale(t *testing.T) {
	list := []NormalizedBadge{
		{ID: "z", Name: "zebra"},
		{ID: "oe", Name: "öl"},
		{ID: "o", Name: "ost"},
	}
	assert.Equal(t, []string{"oe", "o", "z"}, ids(SortBadgesLocale(list, FieldName, Ascending, language.German)))
	assert.Equal(t, []string{"o", "z", "oe"}, ids(SortBadgesLocale(list, FieldName, Ascending, language.Swedish)))
}

func TestFilterBadgesBySearchTerm(t *testing.T) {
	list := sample()

	assert.Equal(t, []string{"2"}, ids(FilterBadgesBySearchTerm(list, "APPLE")))
	assert.Equal(t, []string{"2"}, ids(FilterBadgesBySearchTerm(list, "red")))
	assert.Equal(t, []string{"3"}, ids(FilterBadgesBySearchTerm(list, "guild")))
	assert.Equal(t, []string{"1"}, ids(FilterBadgesBySearchTerm(list, "fruit")))
	assert.Empty(t, FilterBadgesBySearchTerm(list, "nothing"))
	assert.Equal(t, ids(list), ids(FilterBadgesBySearchTerm(list, "")))
}

func TestFilterBadges(t *testing.T) {
	list := sample()

	assert.Equal(t, []string{"1", "3"}, ids(FilterBadgesByType(list, badge.OB2)))
	assert.Equal(t, []string{"2", "4"}, ids(FilterBadgesByType(list, badge.OB3)))
	assert.Len(t, FilterBadgesByType(list, "all"), 4)

	assert.Equal(t, []string{"1", "3"}, ids(FilterBadgesByIssuer(list, "iss-a")))
	assert.Empty(t, FilterBadgesByIssuer(list, ""))

	assert.Equal(t, []string{"1"}, ids(FilterBadgesByRecipient(list, "a@b.com")))

	assert.Equal(t, []string{"2"}, ids(FilterBadgesByExpiration(list, true)))
	assert.Equal(t, []string{"1", "3", "4"}, ids(FilterBadgesByExpiration(list, false)))
}

func TestGroupBadges(t *testing.T) {
	list := sample()

	byIssuer := GroupBadges(list, FieldIssuerID)
	assert.Len(t, byIssuer, 3)
	assert.Equal(t, []string{"1", "3"}, ids(byIssuer["iss-a"]))
	assert.Equal(t, []string{"2"}, ids(byIssuer["iss-b"]))
	assert.Equal(t, []string{"4"}, ids(byIssuer[UnknownGroup]))

	byType := GroupBadges(list, FieldType)
	assert.Equal(t, []string{"1", "3"}, ids(byType["OB2"]))
	assert.Equal(t, []string{"2", "4"}, ids(byType["OB3"]))

	byExpiry := GroupBadges(list, FieldIsExpired)
	assert.Equal(t, []string{"2"}, ids(byExpiry["true"]))
	assert.Equal(t, []string{"1", "3", "4"}, ids(byExpiry["false"]))

	byDate := GroupBadges(list, FieldIssuanceDate)
	assert.Equal(t, []string{"4"}, ids(byDate[UnknownGroup]))
}
