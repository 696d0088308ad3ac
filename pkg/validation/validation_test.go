package validation

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/obkit/internal/fixture"
	"github.com/sirosfoundation/obkit/pkg/badge"
	"github.com/sirosfoundation/obkit/pkg/jsonld"
	"github.com/sirosfoundation/obkit/pkg/metrics"
)

func v2Assertion() map[string]any {
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

func v3Credential() map[string]any {
	return map[string]any{
		"@context":     []any{jsonld.VCContext, jsonld.OB3Context},
		"id":           "urn:uuid:91537dba-56cb-11ec-bf63-0242ac130002",
		"type":         []any{"VerifiableCredential", "OpenBadgeCredential"},
		"issuer":       map[string]any{"id": "https://example.org/issuers/1", "type": "Profile", "name": "Example", "url": "https://example.org"},
		"issuanceDate": "2023-06-01T12:00:00.000Z",
		"credentialSubject": map[string]any{
			"id": "did:example:123",
			"achievement": map[string]any{
				"id":       "https://example.org/achievements/1",
				"type":     "Achievement",
				"name":     map[string]any{"en": "Badge"},
				"criteria": map[string]any{"narrative": "Do it"},
			},
		},
		"proof": map[string]any{
			"type":               "Ed25519Signature2020",
			"created":            "2023-06-01T12:00:00Z",
			"verificationMethod": "https://example.org/issuers/1#keys-1",
			"proofPurpose":       "assertionMethod",
		},
	}
}

func TestValidateBadge_Valid(t *testing.T) {
	r := ValidateBadge(v2Assertion())
	assert.True(t, r.IsValid, "errors: %v", r.Errors)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, badge.OB2, r.Version)

	r = ValidateBadge(v3Credential())
	assert.True(t, r.IsValid, "errors: %v", r.Errors)
	assert.Empty(t, r.Errors)
	assert.Equal(t, badge.OB3, r.Version)
}

func TestValidateBadge_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: "Badge must be an object"},
		{name: "string", value: "badge", want: "Badge must be an object"},
		{name: "array", value: []any{v2Assertion()}, want: "Badge must be an object"},
		{name: "empty object", value: map[string]any{}, want: "JSON-LD"},
		{name: "unrecognised", value: map[string]any{"@context": jsonld.OB2Context, "type": "Thing"}, want: "not a valid OB2 Assertion or OB3 VerifiableCredential"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateBadge(tt.value)
			assert.False(t, r.IsValid)
			require.Len(t, r.Errors, 1)
			assert.Contains(t, r.Errors[0], tt.want)
			assert.Empty(t, r.Version)
		})
	}
}

func TestValidateBadge_Ambiguous(t *testing.T) {
	doc := v3Credential()
	doc["type"] = []any{"VerifiableCredential", "Assertion"}
	doc["recipient"] = map[string]any{"type": "email", "identity": "a@b.com"}
	doc["badge"] = "https://example.org/badges/1"
	doc["verification"] = map[string]any{"type": "hosted"}
	doc["issuedOn"] = "2023-01-01T00:00:00Z"

	r := ValidateBadge(doc)
	assert.False(t, r.IsValid)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "both")
}

func TestValidateBadge_V2Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   string
	}{
		{name: "date only issuedOn", mutate: func(m map[string]any) { m["issuedOn"] = "2023-01-01" }, want: "issuedOn"},
		{name: "bad id", mutate: func(m map[string]any) { m["id"] = "assertion-1" }, want: "Assertion id must be a valid IRI"},
		{name: "bad expires", mutate: func(m map[string]any) { m["expires"] = "tomorrow" }, want: "expires"},
		{name: "empty name", mutate: func(m map[string]any) { badgeOf(m)["name"] = "  " }, want: "BadgeClass name"},
		{name: "missing description", mutate: func(m map[string]any) { badgeOf(m)["description"] = 7 }, want: "BadgeClass description"},
		{name: "bad image", mutate: func(m map[string]any) { badgeOf(m)["image"] = "i.png" }, want: "BadgeClass image"},
		{name: "bad badge id", mutate: func(m map[string]any) { badgeOf(m)["id"] = "b1" }, want: "BadgeClass id"},
		{name: "criteria scalar", mutate: func(m map[string]any) { badgeOf(m)["criteria"] = 3 }, want: "BadgeClass criteria"},
		{name: "issuer not a profile", mutate: func(m map[string]any) { badgeOf(m)["issuer"] = map[string]any{"id": "https://example.org/iss"} }, want: "BadgeClass issuer must be a valid Profile"},
		{name: "profile bad id", mutate: func(m map[string]any) { issuerOf(m)["id"] = "iss" }, want: "Profile id"},
		{name: "issuer subtype without email", mutate: func(m map[string]any) {
			issuerOf(m)["type"] = "Issuer"
			delete(issuerOf(m), "email")
		}, want: "Issuer Profile email"},
		{name: "issuer subtype with bad url", mutate: func(m map[string]any) {
			issuerOf(m)["type"] = []any{"Issuer"}
			issuerOf(m)["url"] = "example.org"
		}, want: "Issuer Profile url"},
		{name: "badge not an IRI", mutate: func(m map[string]any) { m["badge"] = "badge-1" }, want: "Assertion badge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := v2Assertion()
			tt.mutate(doc)
			r := ValidateBadge(doc)
			assert.False(t, r.IsValid)
			assert.Equal(t, badge.OB2, r.Version)
			require.NotEmpty(t, r.Errors)
			assert.Contains(t, joined(r.Errors), tt.want)
		})
	}
}

func TestValidateBadge_V2Warnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   string
	}{
		{name: "badge reference", mutate: func(m map[string]any) { m["badge"] = "https://example.org/badges/1" }, want: "IRI reference"},
		{name: "issuer reference", mutate: func(m map[string]any) { badgeOf(m)["issuer"] = "https://example.org/iss" }, want: "issuer is an IRI reference"},
		{name: "revoked", mutate: func(m map[string]any) {
			m["revoked"] = true
			m["revocationReason"] = "issued in error"
		}, want: "revoked: issued in error"},
		{name: "hashed without algorithm", mutate: func(m map[string]any) {
			m["recipient"] = map[string]any{"type": "email", "identity": "abc123", "hashed": true}
		}, want: "algorithm"},
		{name: "plain identity not an email", mutate: func(m map[string]any) {
			m["recipient"] = map[string]any{"type": "email", "identity": "alice"}
		}, want: "email address"},
		{name: "evidence scalar", mutate: func(m map[string]any) { m["evidence"] = 12 }, want: "evidence"},
		{name: "alignment shape", mutate: func(m map[string]any) { badgeOf(m)["alignment"] = []any{map[string]any{"targetName": "x"}} }, want: "alignment"},
		{name: "profile email", mutate: func(m map[string]any) { issuerOf(m)["email"] = "not-an-email" }, want: "Profile email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := v2Assertion()
			tt.mutate(doc)
			r := ValidateBadge(doc)
			assert.True(t, r.IsValid, "errors: %v", r.Errors)
			assert.Contains(t, joined(r.Warnings), tt.want)
		})
	}
}

func TestValidateBadge_V3Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   string
	}{
		{name: "bad id", mutate: func(m map[string]any) { m["id"] = "cred-1" }, want: "VerifiableCredential id"},
		{name: "bad issuance date", mutate: func(m map[string]any) { m["issuanceDate"] = "2023-06-01" }, want: "issuanceDate"},
		{name: "bad validFrom", mutate: func(m map[string]any) {
			delete(m, "issuanceDate")
			m["validFrom"] = "June 1st"
		}, want: "validFrom"},
		{name: "bad expiration", mutate: func(m map[string]any) { m["expirationDate"] = "12:00:00" }, want: "expirationDate"},
		{name: "issuer missing url", mutate: func(m map[string]any) { delete(m["issuer"].(map[string]any), "url") }, want: "valid Issuer"},
		{name: "issuer bad url", mutate: func(m map[string]any) { m["issuer"].(map[string]any)["url"] = "example" }, want: "Issuer url"},
		{name: "subject without achievement", mutate: func(m map[string]any) { m["credentialSubject"] = map[string]any{"id": "did:example:1"} }, want: "CredentialSubject"},
		{name: "achievement without name", mutate: func(m map[string]any) {
			m["credentialSubject"].(map[string]any)["achievement"] = map[string]any{"id": "https://example.org/a"}
		}, want: "achievement must be a valid Achievement"},
		{name: "second achievement broken", mutate: func(m map[string]any) {
			subject := m["credentialSubject"].(map[string]any)
			subject["achievement"] = []any{subject["achievement"], map[string]any{"id": "x"}}
		}, want: "achievement must be a valid Achievement"},
		{name: "empty subject array", mutate: func(m map[string]any) { m["credentialSubject"] = []any{} }, want: "must not be empty"},
		{name: "bad proof", mutate: func(m map[string]any) { m["proof"] = map[string]any{"type": "Ed25519Signature2020"} }, want: "proof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := v3Credential()
			tt.mutate(doc)
			r := ValidateBadge(doc)
			assert.False(t, r.IsValid)
			assert.Equal(t, badge.OB3, r.Version)
			assert.Contains(t, joined(r.Errors), tt.want)
		})
	}
}

func TestValidateBadge_V3Warnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   string
	}{
		{name: "issuer reference", mutate: func(m map[string]any) { m["issuer"] = "https://example.org/issuers/1" }, want: "IRI reference"},
		{name: "proof created", mutate: func(m map[string]any) { m["proof"].(map[string]any)["created"] = "yesterday" }, want: "Proof created"},
		{name: "subject id", mutate: func(m map[string]any) { m["credentialSubject"].(map[string]any)["id"] = "bob" }, want: "CredentialSubject id"},
		{name: "status", mutate: func(m map[string]any) { m["credentialStatus"] = map[string]any{"type": "StatusList2021Entry"} }, want: "credentialStatus"},
		{name: "terms", mutate: func(m map[string]any) { m["termsOfUse"] = []any{map[string]any{"id": "x"}} }, want: "termsOfUse"},
		{name: "evidence", mutate: func(m map[string]any) { m["evidence"] = []any{map[string]any{"type": "Other"}} }, want: "evidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := v3Credential()
			tt.mutate(doc)
			r := ValidateBadge(doc)
			assert.True(t, r.IsValid, "errors: %v", r.Errors)
			assert.Contains(t, joined(r.Warnings), tt.want)
		})
	}
}

func TestValidateBadge_ExtraKeysAccepted(t *testing.T) {
	doc := v2Assertion()
	doc["https://example.org/extension"] = map[string]any{"anything": true}
	doc["extensions:recipientProfile"] = "x"

	r := ValidateBadge(doc)
	assert.True(t, r.IsValid)
	assert.Empty(t, r.Warnings)
}

// A structurally recognised assertion with well-formed IRI and DateTime
// fields validates, whatever the shape of its badge reference.
func TestValidateBadge_AgreesWithDiscriminator(t *testing.T) {
	ref := v2Assertion()
	ref["badge"] = "https://example.org/badges/1"

	for _, doc := range []map[string]any{v2Assertion(), ref, v3Credential()} {
		require.True(t, badge.IsBadge(doc))
		assert.True(t, ValidateBadge(doc).IsValid)
	}
}

func TestValidateBadge_AgreesWithDiscriminator_Variants(t *testing.T) {
	variants := append(fixture.V2Variants(), fixture.V3Variants()...)
	for _, v := range variants {
		t.Run(v.Name, func(t *testing.T) {
			version, ok := badge.VersionOf(v.Doc)
			require.True(t, ok)

			r := ValidateBadge(v.Doc)
			assert.True(t, r.IsValid, "errors: %v", r.Errors)
			assert.Equal(t, version, r.Version)
		})
	}
}

func TestValidateBadge_OrderedLanguageMaps(t *testing.T) {
	doc := v3Credential()
	doc["issuer"].(map[string]any)["name"] = jsonld.NewStringMap("en", "Example", "de", "Beispiel")
	doc["credentialSubject"].(map[string]any)["achievement"].(map[string]any)["criteria"] = jsonld.NewStringMap("narrative", "Do it")
	doc["credentialSubject"].(map[string]any)["achievement"].(map[string]any)["image"] = jsonld.NewStringMap("id", "https://example.org/a.png", "type", "Image")

	r := ValidateBadge(doc)
	assert.True(t, r.IsValid, "errors: %v", r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestResultJSON(t *testing.T) {
	out, err := json.Marshal(ValidateBadge(map[string]any{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isValid":false,"errors":["Badge must be a valid JSON-LD object with @context and type properties"],"warnings":[]}`, string(out))
}

func TestValidator_Options(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := metrics.New()

	v := New(WithLogger(logger), WithMetrics(m))
	v.Validate(v2Assertion())
	v.Validate("nope")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("OB2", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("unknown", "invalid")))
	assert.Contains(t, buf.String(), "validated badge")
}

func badgeOf(m map[string]any) map[string]any {
	return m["badge"].(map[string]any)
}

func issuerOf(m map[string]any) map[string]any {
	return badgeOf(m)["issuer"].(map[string]any)
}

func joined(msgs []string) string {
	var b bytes.Buffer
	for _, m := range msgs {
		b.WriteString(m)
		b.WriteByte('\n')
	}
	return b.String()
}
