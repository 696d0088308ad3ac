package ob2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/obkit/pkg/jsonld"
)

func minimalAssertion() map[string]any {
	return map[string]any{
		"@context":  jsonld.OB2Context,
		"id":        "https://example.org/assertions/1",
		"type":      "Assertion",
		"recipient": map[string]any{"type": "email", "identity": "a@b.com", "hashed": false},
		"badge": map[string]any{
			"id":          "https://example.org/badges/1",
			"type":        "BadgeClass",
			"name":        "X",
			"description": "Y",
			"image":       "https://example.org/i.png",
			"criteria":    map[string]any{"narrative": "do it"},
			"issuer": map[string]any{
				"id":    "https://example.org/iss",
				"type":  "Profile",
				"name":  "Iss",
				"url":   "https://example.org",
				"email": "c@d.com",
			},
		},
		"verification": map[string]any{"type": "hosted"},
		"issuedOn":     "2023-01-01T00:00:00Z",
	}
}

func TestIsAssertion(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   bool
	}{
		{name: "minimal", mutate: func(map[string]any) {}, want: true},
		{name: "badge by IRI", mutate: func(m map[string]any) { m["badge"] = "https://example.org/badges/1" }, want: true},
		{name: "type array", mutate: func(m map[string]any) { m["type"] = []any{"Assertion", "Extension"} }, want: true},
		{name: "format is not checked", mutate: func(m map[string]any) { m["id"] = "not an iri" }, want: true},
		{name: "missing context", mutate: func(m map[string]any) { delete(m, "@context") }, want: false},
		{name: "wrong type", mutate: func(m map[string]any) { m["type"] = "BadgeClass" }, want: false},
		{name: "missing id", mutate: func(m map[string]any) { delete(m, "id") }, want: false},
		{name: "missing verification", mutate: func(m map[string]any) { delete(m, "verification") }, want: false},
		{name: "issuedOn not a string", mutate: func(m map[string]any) { m["issuedOn"] = 1672531200 }, want: false},
		{name: "recipient without identity", mutate: func(m map[string]any) { m["recipient"] = map[string]any{"type": "email"} }, want: false},
		{name: "badge object without type", mutate: func(m map[string]any) { delete(m["badge"].(map[string]any), "type") }, want: false},
		{name: "verification without type", mutate: func(m map[string]any) { m["verification"] = map[string]any{} }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalAssertion()
			tt.mutate(doc)
			assert.Equal(t, tt.want, IsAssertion(doc))
		})
	}

	assert.False(t, IsAssertion(nil))
	assert.False(t, IsAssertion("https://example.org/assertions/1"))
	assert.False(t, IsAssertion(map[string]any{}))
}

func TestNestedGuards(t *testing.T) {
	badge := minimalAssertion()["badge"].(map[string]any)
	issuer := badge["issuer"].(map[string]any)

	assert.True(t, IsBadgeClass(badge), "embedded badge class needs no @context")
	assert.True(t, IsProfile(issuer))
	assert.False(t, IsIssuerProfile(issuer))

	issuer["type"] = []any{"Issuer"}
	assert.True(t, IsProfile(issuer))
	assert.True(t, IsIssuerProfile(issuer))

	delete(issuer, "name")
	assert.False(t, IsProfile(issuer))

	assert.True(t, IsIdentityObject(map[string]any{"type": "email", "identity": "sha256$abc", "hashed": true}))
	assert.False(t, IsIdentityObject(map[string]any{"type": []any{"email"}, "identity": "x"}))

	assert.True(t, IsVerificationObject(map[string]any{"type": "signed"}))
	assert.True(t, IsEvidence(map[string]any{}))
	assert.False(t, IsEvidence("https://example.org/evidence"))
	assert.True(t, IsImage(map[string]any{"id": "https://example.org/i.png"}))
	assert.True(t, IsCriteria(map[string]any{}))
	assert.True(t, IsAlignmentObject(map[string]any{"targetName": "n", "targetUrl": "https://example.org"}))
	assert.False(t, IsAlignmentObject(map[string]any{"targetName": "n"}))
}

func TestRootSupportGuards(t *testing.T) {
	list := map[string]any{
		"@context":          jsonld.OB2Context,
		"type":              "RevocationList",
		"id":                "https://example.org/revocations",
		"revokedAssertions": []any{},
	}
	assert.True(t, IsRevocationList(list))
	delete(list, "@context")
	assert.False(t, IsRevocationList(list))

	key := map[string]any{
		"@context": jsonld.OB2Context,
		"type":     "CryptographicKey",
		"id":       "https://example.org/key",
		"owner":    "https://example.org/iss",
	}
	assert.True(t, IsCryptographicKey(key))
	delete(key, "owner")
	assert.False(t, IsCryptographicKey(key))
}

func TestDecodeAssertion(t *testing.T) {
	doc := minimalAssertion()
	doc["evidence"] = []any{
		"https://example.org/evidence/1",
		map[string]any{"id": "https://example.org/evidence/2", "narrative": "wrote it"},
	}
	doc["revoked"] = false
	doc["extension:note"] = "kept"

	a, err := DecodeAssertion(doc)
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/assertions/1", a.ID)
	assert.True(t, a.Type.Has(TypeAssertion))
	assert.Equal(t, "a@b.com", a.Recipient.Identity)
	assert.False(t, a.IsRevoked())

	bc := a.BadgeClass()
	require.NotNil(t, bc)
	assert.Equal(t, "X", bc.Name.First())
	assert.Equal(t, "https://example.org/i.png", bc.Image.IRI)
	require.True(t, bc.Criteria.IsEmbedded())
	assert.Equal(t, "do it", bc.Criteria.Object.Narrative)
	require.True(t, bc.Issuer.IsEmbedded())
	assert.Equal(t, "c@d.com", bc.Issuer.Object.Email)

	require.Equal(t, 2, a.Evidence.Len())
	assert.Equal(t, "https://example.org/evidence/1", a.Evidence.Items[0].IRI)
	assert.Equal(t, "wrote it", a.Evidence.Items[1].Object.Narrative)

	assert.Equal(t, "kept", a.Extra["extension:note"])
}

func TestDecodeAssertion_BadgeIRI(t *testing.T) {
	doc := minimalAssertion()
	doc["badge"] = "https://example.org/badges/1"

	a, err := DecodeAssertion(doc)
	require.NoError(t, err)
	assert.Nil(t, a.BadgeClass())
	assert.Equal(t, "https://example.org/badges/1", a.Badge.IRI)
}

func TestDecodeAssertion_Error(t *testing.T) {
	doc := minimalAssertion()
	doc["badge"] = 42

	_, err := DecodeAssertion(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ob2:")
}

func TestAssertionToMap(t *testing.T) {
	doc := minimalAssertion()
	doc["revoked"] = true
	doc["extension:note"] = "kept"

	a, err := DecodeAssertion(doc)
	require.NoError(t, err)

	out := a.ToMap()
	assert.Equal(t, doc, out, "decoding then encoding keeps the document")
	assert.True(t, IsAssertion(out))
}
