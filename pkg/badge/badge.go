// Package badge is the version-agnostic view over Open Badges 2.0 assertions
// and 3.0 credentials. Every accessor takes an untyped document, picks the
// version-specific path and returns a common value.
//
// Accessors return (value, false) instead of failing when a value cannot be
// determined. References given only as an IRI are never fetched, so an
// accessor that would need the referenced document reports it as absent.
//
// When a text field is a language map, accessors return the value of the
// lexically first language tag. This is a simple tie-break, not locale
// negotiation.
package badge

import (
	"errors"
	"time"

	"github.com/sirosfoundation/obkit/pkg/format"
	"github.com/sirosfoundation/obkit/pkg/jsonld"
	"github.com/sirosfoundation/obkit/pkg/ob2"
	"github.com/sirosfoundation/obkit/pkg/ob3"
)

// Version tags the document family of a badge.
type Version string

const (
	// OB2 is an Open Badges 2.0 Assertion.
	OB2 Version = "OB2"
	// OB3 is an Open Badges 3.0 VerifiableCredential.
	OB3 Version = "OB3"
)

// Number returns the Open Badges version number, "2.0" or "3.0".
func (v Version) Number() string {
	switch v {
	case OB2:
		return "2.0"
	case OB3:
		return "3.0"
	}
	return ""
}

var (
	// ErrUnrecognized is returned by Detect for documents matching neither
	// version.
	ErrUnrecognized = errors.New("badge: not a valid OB2 Assertion or OB3 VerifiableCredential")

	// ErrAmbiguous is returned by Detect for documents matching both
	// versions. Such documents are never coerced into one of them.
	ErrAmbiguous = errors.New("badge: document matches both OB2 Assertion and OB3 VerifiableCredential")
)

// IsBadge reports whether value is an OB2 Assertion or an OB3
// VerifiableCredential.
func IsBadge(value any) bool {
	return ob2.IsAssertion(value) || ob3.IsVerifiableCredential(value)
}

// Detect classifies value. Unlike IsBadge it treats a document recognised by
// both discriminators as an error.
func Detect(value any) (Version, error) {
	isV2 := ob2.IsAssertion(value)
	isV3 := ob3.IsVerifiableCredential(value)
	switch {
	case isV2 && isV3:
		return "", ErrAmbiguous
	case isV2:
		return OB2, nil
	case isV3:
		return OB3, nil
	default:
		return "", ErrUnrecognized
	}
}

// VersionOf returns the version of a badge.
func VersionOf(value any) (Version, bool) {
	v, err := Detect(value)
	return v, err == nil
}

// ID returns the document id.
func ID(value any) (string, bool) {
	if !IsBadge(value) {
		return "", false
	}
	return jsonld.String(value, "id")
}

// badgeClassObject returns the embedded BadgeClass of an assertion.
func badgeClassObject(value any) (map[string]any, bool) {
	if !ob2.IsAssertion(value) {
		return nil, false
	}
	m, _ := jsonld.AsObject(value)
	return jsonld.AsObject(m["badge"])
}

// subjectObject returns the first credential subject of a credential.
func subjectObject(value any) (map[string]any, bool) {
	if !ob3.IsVerifiableCredential(value) {
		return nil, false
	}
	m, _ := jsonld.AsObject(value)
	first, ok := jsonld.First(m["credentialSubject"])
	if !ok {
		return nil, false
	}
	return jsonld.AsObject(first)
}

// achievementObject returns the first achievement of the first subject.
func achievementObject(value any) (map[string]any, bool) {
	subject, ok := subjectObject(value)
	if !ok {
		return nil, false
	}
	first, ok := jsonld.First(subject["achievement"])
	if !ok {
		return nil, false
	}
	return jsonld.AsObject(first)
}

// definition returns the BadgeClass or Achievement of a badge.
func definition(value any) (map[string]any, bool) {
	if bc, ok := badgeClassObject(value); ok {
		return bc, true
	}
	return achievementObject(value)
}

// BadgeClass decodes the embedded BadgeClass of an OB2 assertion. It returns
// false for OB3 credentials and for badges referenced only by IRI.
func BadgeClass(value any) (*ob2.BadgeClass, bool) {
	bc, ok := badgeClassObject(value)
	if !ok {
		return nil, false
	}
	decoded, err := ob2.DecodeBadgeClass(bc)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// Achievement decodes the first achievement of an OB3 credential. When the
// subject or achievement is an array the first entry is used.
func Achievement(value any) (*ob3.Achievement, bool) {
	a, ok := achievementObject(value)
	if !ok {
		return nil, false
	}
	decoded, err := ob3.DecodeAchievement(a)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// Name returns the badge or achievement name.
func Name(value any) (string, bool) {
	def, ok := definition(value)
	if !ok {
		return "", false
	}
	return jsonld.FirstText(def["name"])
}

// Description returns the badge or achievement description.
func Description(value any) (string, bool) {
	def, ok := definition(value)
	if !ok {
		return "", false
	}
	return jsonld.FirstText(def["description"])
}

// ImageURL returns the image IRI, or the id of an image object.
func ImageURL(value any) (string, bool) {
	def, ok := definition(value)
	if !ok {
		return "", false
	}
	if img, ok := def["image"].(string); ok {
		return img, img != ""
	}
	return jsonld.String(def["image"], "id")
}

// issuerValue returns the raw issuer field: an IRI or an object.
func issuerValue(value any) any {
	if bc, ok := badgeClassObject(value); ok {
		return bc["issuer"]
	}
	if ob3.IsVerifiableCredential(value) {
		m, _ := jsonld.AsObject(value)
		return m["issuer"]
	}
	return nil
}

// Issuer returns the embedded issuer: an OB2 Profile or an OB3 Issuer.
func Issuer(value any) (map[string]any, bool) {
	return jsonld.AsObject(issuerValue(value))
}

// IssuerID returns the issuer id, or the issuer IRI when the issuer is only
// referenced.
func IssuerID(value any) (string, bool) {
	iss := issuerValue(value)
	if s, ok := iss.(string); ok {
		return s, s != ""
	}
	return jsonld.String(iss, "id")
}

// IssuerName returns the name of an embedded issuer.
func IssuerName(value any) (string, bool) {
	iss, ok := Issuer(value)
	if !ok {
		return "", false
	}
	return jsonld.FirstText(iss["name"])
}

// IssuanceDate returns issuedOn for OB2, and issuanceDate or validFrom for
// OB3.
func IssuanceDate(value any) (string, bool) {
	switch {
	case ob2.IsAssertion(value):
		return jsonld.String(value, "issuedOn")
	case ob3.IsVerifiableCredential(value):
		if s, ok := jsonld.String(value, "issuanceDate"); ok {
			return s, true
		}
		return jsonld.String(value, "validFrom")
	}
	return "", false
}

// ExpirationDate returns expires for OB2, and expirationDate or validUntil
// for OB3.
func ExpirationDate(value any) (string, bool) {
	switch {
	case ob2.IsAssertion(value):
		return jsonld.String(value, "expires")
	case ob3.IsVerifiableCredential(value):
		if s, ok := jsonld.String(value, "expirationDate"); ok {
			return s, true
		}
		return jsonld.String(value, "validUntil")
	}
	return "", false
}

// IsExpired reports whether the badge expired before the current time.
func IsExpired(value any) bool {
	return IsExpiredAt(value, time.Now())
}

// IsExpiredAt reports whether the badge expired before now. Badges without an
// expiration, or with one that does not parse, never expire.
func IsExpiredAt(value any, now time.Time) bool {
	exp, ok := ExpirationDate(value)
	if !ok {
		return false
	}
	t, ok := format.ParseDateTime(exp)
	if !ok {
		return false
	}
	return now.After(t)
}

// Recipient returns the OB2 recipient identity object or the first OB3
// credential subject.
func Recipient(value any) (map[string]any, bool) {
	if ob2.IsAssertion(value) {
		m, _ := jsonld.AsObject(value)
		return jsonld.AsObject(m["recipient"])
	}
	return subjectObject(value)
}

// RecipientIdentity returns the OB2 recipient identity or the OB3 subject id.
func RecipientIdentity(value any) (string, bool) {
	r, ok := Recipient(value)
	if !ok {
		return "", false
	}
	if ob2.IsAssertion(value) {
		return jsonld.String(r, "identity")
	}
	return jsonld.String(r, "id")
}

// Criteria returns the embedded criteria object.
func Criteria(value any) (map[string]any, bool) {
	def, ok := definition(value)
	if !ok {
		return nil, false
	}
	return jsonld.AsObject(def["criteria"])
}

// CriteriaNarrative returns the criteria narrative.
func CriteriaNarrative(value any) (string, bool) {
	c, ok := Criteria(value)
	if !ok {
		return "", false
	}
	return jsonld.String(c, "narrative")
}

// Evidence returns the first embedded evidence entry. Entries given only as
// an IRI are skipped.
func Evidence(value any) (map[string]any, bool) {
	if !IsBadge(value) {
		return nil, false
	}
	m, _ := jsonld.AsObject(value)
	for _, item := range jsonld.Items(m["evidence"]) {
		if e, ok := jsonld.AsObject(item); ok {
			return e, true
		}
	}
	return nil, false
}
