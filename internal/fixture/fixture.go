// Package fixture builds Open Badges documents for tests: one valid base
// document per version, and the structural variants the discriminators,
// validator and converter must all treat alike.
package fixture

import (
	"fmt"
	"path"

	"github.com/sirosfoundation/obkit/pkg/jsonld"
)

// Variant is a generated document and a name describing its shape.
type Variant struct {
	Name string
	Doc  map[string]any
	// DisplayName is the name accessors must return, or "" when the document
	// only references its badge definition.
	DisplayName string
}

type text struct {
	name  string
	value func(s string) any
}

// Each text variant turns a display string into a field value. The ordered
// language map lists English first; the unordered one has no document order,
// so its lexically first tag ("de") decides.
var texts = []text{
	{name: "plain", value: func(s string) any { return s }},
	{name: "langmap", value: func(s string) any { return jsonld.NewStringMap("en", s, "de", s+" (de)") }},
	{name: "unordered", value: func(s string) any { return map[string]any{"en": s + " (en)", "de": s} }},
}

// V2Assertion returns a valid assertion with an embedded BadgeClass and
// issuer Profile.
func V2Assertion() map[string]any {
	return map[string]any{
		"@context":  jsonld.OB2Context,
		"id":        "https://example.org/assertions/1",
		"type":      "Assertion",
		"recipient": map[string]any{"type": "email", "identity": "a@b.com", "hashed": false},
		"badge": map[string]any{
			"id":          "https://example.org/badges/1",
			"type":        "BadgeClass",
			"name":        "Badge",
			"description": "A badge",
			"image":       "https://example.org/i.png",
			"criteria":    map[string]any{"narrative": "do it"},
			"issuer":      v2Profile("Profile"),
		},
		"verification": map[string]any{"type": "hosted"},
		"issuedOn":     "2023-01-01T00:00:00Z",
	}
}

func v2Profile(typ string) map[string]any {
	return map[string]any{
		"id":    "https://example.org/iss",
		"type":  typ,
		"name":  "Iss",
		"url":   "https://example.org",
		"email": "c@d.com",
	}
}

// V3Credential returns a valid credential with one subject, one achievement
// and an embedded issuer.
func V3Credential() map[string]any {
	return map[string]any{
		"@context":          []any{jsonld.VCContext, jsonld.OB3Context},
		"id":                "urn:uuid:91537dba-56cb-11ec-bf63-0242ac130002",
		"type":              []any{"VerifiableCredential", "OpenBadgeCredential"},
		"issuer":            v3Issuer(),
		"issuanceDate":      "2023-06-01T12:00:00Z",
		"credentialSubject": v3Subject("did:example:1", v3Achievement("https://example.org/achievements/1", "Badge")),
	}
}

func v3Issuer() map[string]any {
	return map[string]any{"id": "https://example.org/issuers/1", "type": "Profile", "name": "Example", "url": "https://example.org"}
}

func v3Subject(id string, achievement any) map[string]any {
	return map[string]any{"id": id, "achievement": achievement}
}

func v3Achievement(id string, name any) map[string]any {
	return map[string]any{
		"id":       id,
		"type":     "Achievement",
		"name":     name,
		"criteria": map[string]any{"narrative": "Do it"},
	}
}

// V2Variants returns assertions varying the type shape, the badge (embedded
// or IRI), the recipient (plain or hashed), the issuer (Profile, Issuer or
// IRI) and the badge name (plain, ordered or unordered language map).
func V2Variants() []Variant {
	var out []Variant
	for _, typ := range []struct {
		name  string
		value any
	}{
		{"scalar-type", "Assertion"},
		{"array-type", []any{"Assertion"}},
		{"extended-type", []any{"Assertion", "https://example.org/ExtendedAssertion"}},
	} {
		for _, hashed := range []bool{false, true} {
			base := func() map[string]any {
				doc := V2Assertion()
				doc["type"] = typ.value
				if hashed {
					doc["recipient"] = map[string]any{"type": "email", "identity": "sha256$c7ef86405ba71b85acd8e2e95166c4b111448089f2e1599f42fe1bba46e865c5", "hashed": true, "salt": "deadsea"}
				}
				return doc
			}
			recipient := "plain"
			if hashed {
				recipient = "hashed"
			}

			ref := base()
			ref["badge"] = "https://example.org/badges/1"
			out = append(out, Variant{Name: fmt.Sprintf("%s/%s/badge-iri", typ.name, recipient), Doc: ref})

			for _, issuer := range []struct {
				name  string
				value any
			}{
				{"profile", v2Profile("Profile")},
				{"issuer", v2Profile("Issuer")},
				{"issuer-iri", "https://example.org/iss"},
			} {
				for _, tx := range texts {
					doc := base()
					bc := doc["badge"].(map[string]any)
					bc["issuer"] = issuer.value
					bc["name"] = tx.value("Badge")
					out = append(out, Variant{
						Name:        fmt.Sprintf("%s/%s/embedded/%s/%s", typ.name, recipient, issuer.name, tx.name),
						Doc:         doc,
						DisplayName: "Badge",
					})
				}
			}
		}
	}
	return out
}

// V3Variants returns credentials varying the context pair (VCDM 1.1 or 2.0,
// every accepted Open Badges 3.0 context), the type shape, the issuer
// (embedded or IRI), the number of subjects and achievements and the
// achievement name (plain, ordered or unordered language map).
func V3Variants() []Variant {
	var out []Variant
	for _, vc := range jsonld.VCContexts {
		for _, ob := range jsonld.OB3Contexts {
			for _, typ := range []struct {
				name  string
				value any
			}{
				{"scalar-type", "VerifiableCredential"},
				{"array-type", []any{"VerifiableCredential", "OpenBadgeCredential"}},
				{"achievement-credential", []any{"VerifiableCredential", "AchievementCredential"}},
			} {
				for _, issuerIRI := range []bool{false, true} {
					for _, count := range []int{1, 2} {
						for _, tx := range texts {
							out = append(out, v3Variant(vc, ob, typ.name, typ.value, issuerIRI, count, tx))
						}
					}
				}
			}
		}
	}
	return out
}

func v3Variant(vc, ob, typName string, typ any, issuerIRI bool, count int, tx text) Variant {
	doc := V3Credential()
	doc["@context"] = []any{vc, ob}
	doc["type"] = typ
	vcName := "vcdm1"
	if vc == jsonld.VCContextV2 {
		vcName = "vcdm2"
		delete(doc, "issuanceDate")
		doc["validFrom"] = "2023-06-01T12:00:00Z"
	}
	issuer := "issuer-embedded"
	if issuerIRI {
		doc["issuer"] = "https://example.org/issuers/1"
		issuer = "issuer-iri"
	}

	// With several entries, both achievements and subjects become arrays
	// and the first of each is the one accessors read.
	var achievements any = v3Achievement("https://example.org/achievements/1", tx.value("Badge"))
	var subjects any = v3Subject("did:example:1", achievements)
	if count > 1 {
		achievements = []any{achievements, v3Achievement("https://example.org/achievements/2", "Other")}
		subjects = []any{
			v3Subject("did:example:1", achievements),
			v3Subject("did:example:2", v3Achievement("https://example.org/achievements/3", "Third")),
		}
	}
	doc["credentialSubject"] = subjects

	return Variant{
		Name:        fmt.Sprintf("%s/%s/%s/%s/x%d/%s", vcName, path.Base(ob), typName, issuer, count, tx.name),
		Doc:         doc,
		DisplayName: "Badge",
	}
}
