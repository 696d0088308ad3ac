// Package ob2 implements the Open Badges 2.0 document family rooted at the
// Assertion: structural guards over untyped JSON-LD values and a typed model
// decoded from them.
//
// Guards never validate formats. They check that required keys are present
// and that type declarations carry the expected literal. Embedded entities
// (BadgeClass, Profile, IdentityObject...) inherit their context from the
// root document, so only root guards require @context.
package ob2

import (
	"github.com/sirosfoundation/obkit/pkg/jsonld"
)

// Type literals of the Open Badges 2.0 vocabulary.
const (
	TypeAssertion        = "Assertion"
	TypeBadgeClass       = "BadgeClass"
	TypeProfile          = "Profile"
	TypeIssuer           = "Issuer"
	TypeRevocationList   = "RevocationList"
	TypeCryptographicKey = "CryptographicKey"
)

// IsAssertion reports whether value is an OB2 Assertion: a JSON-LD object of
// type Assertion with id, recipient, badge, verification and issuedOn. The
// recipient must be an identity object, the badge an IRI or an embedded
// BadgeClass, and the verification a verification object.
func IsAssertion(value any) bool {
	if !jsonld.HasType(value, TypeAssertion) {
		return false
	}
	if !jsonld.HasAll(value, "id", "recipient", "badge", "verification", "issuedOn") {
		return false
	}
	m, _ := jsonld.AsObject(value)

	if _, ok := m["issuedOn"].(string); !ok {
		return false
	}
	if !IsIdentityObject(m["recipient"]) {
		return false
	}
	if _, ok := m["badge"].(string); !ok && !IsBadgeClass(m["badge"]) {
		return false
	}
	return IsVerificationObject(m["verification"])
}

// IsBadgeClass reports whether value is a BadgeClass carrying id, name,
// description, image, criteria and issuer.
func IsBadgeClass(value any) bool {
	if !jsonld.TypeIncludes(value, TypeBadgeClass) {
		return false
	}
	return jsonld.HasAll(value, "id", "name", "description", "image", "criteria", "issuer")
}

// IsProfile reports whether value is a Profile with id and name. "Profile"
// and "Issuer" are synonyms.
func IsProfile(value any) bool {
	if !jsonld.TypeIncludes(value, TypeProfile, TypeIssuer) {
		return false
	}
	return jsonld.HasAll(value, "id", "name")
}

// IsIssuerProfile reports whether value is a Profile declared with the Issuer
// type. Such profiles must also carry a url and an email to validate.
func IsIssuerProfile(value any) bool {
	return IsProfile(value) && jsonld.TypeIncludes(value, TypeIssuer)
}

// IsIdentityObject reports whether value has a string type and a string
// identity.
func IsIdentityObject(value any) bool {
	m, ok := jsonld.AsObject(value)
	if !ok {
		return false
	}
	if _, ok := m["type"].(string); !ok {
		return false
	}
	_, ok = m["identity"].(string)
	return ok
}

// IsVerificationObject reports whether value is an object with a type.
func IsVerificationObject(value any) bool {
	return jsonld.Has(value, "type")
}

// IsEvidence reports whether value is an evidence object. Evidence has no
// required properties.
func IsEvidence(value any) bool {
	_, ok := jsonld.AsObject(value)
	return ok
}

// IsAlignmentObject reports whether value has targetName and targetUrl.
func IsAlignmentObject(value any) bool {
	return jsonld.HasAll(value, "targetName", "targetUrl")
}

// IsImage reports whether value is an image object.
func IsImage(value any) bool {
	_, ok := jsonld.AsObject(value)
	return ok
}

// IsCriteria reports whether value is a criteria object.
func IsCriteria(value any) bool {
	_, ok := jsonld.AsObject(value)
	return ok
}

// IsRevocationList reports whether value is a JSON-LD RevocationList with id
// and revokedAssertions.
func IsRevocationList(value any) bool {
	if !jsonld.HasType(value, TypeRevocationList) {
		return false
	}
	return jsonld.HasAll(value, "id", "revokedAssertions")
}

// IsCryptographicKey reports whether value is a JSON-LD CryptographicKey with
// id and owner.
func IsCryptographicKey(value any) bool {
	if !jsonld.HasType(value, TypeCryptographicKey) {
		return false
	}
	return jsonld.HasAll(value, "id", "owner")
}
