// Package ob3 implements the Open Badges 3.0 document family rooted at the
// VerifiableCredential. AchievementCredential and OpenBadgeCredential are the
// same root under different generated names and are accepted alike.
//
// Nested guards never require @context, and treat a scalar type as a
// singleton array.
package ob3

import (
	"github.com/sirosfoundation/obkit/pkg/jsonld"
)

// Type literals of the Open Badges 3.0 vocabulary.
const (
	TypeVerifiableCredential  = "VerifiableCredential"
	TypeOpenBadgeCredential   = "OpenBadgeCredential"
	TypeAchievementCredential = "AchievementCredential"
	TypeAchievementSubject    = "AchievementSubject"
	TypeAchievement           = "Achievement"
	TypeProfile               = "Profile"
	TypeEvidence              = "Evidence"
	TypeCriteria              = "Criteria"
	TypeImage                 = "Image"
)

// IsVerifiableCredential reports whether value is an OB3 credential: a
// JSON-LD object of type VerifiableCredential whose context lists both a
// verifiable credentials context and an Open Badges 3.0 context, carrying id,
// issuer, an issuance timestamp (issuanceDate, or validFrom for VCDM 2.0) and
// credentialSubject.
//
// The context pair is what tells a 3.0 credential apart from a 2.0 document
// of similar shape. A document lacking either context is rejected even when
// every field is present.
func IsVerifiableCredential(value any) bool {
	if !jsonld.HasType(value, TypeVerifiableCredential) {
		return false
	}
	if !jsonld.HasAnyContext(value, jsonld.VCContexts) || !jsonld.HasAnyContext(value, jsonld.OB3Contexts) {
		return false
	}
	if !jsonld.HasAll(value, "id", "issuer", "credentialSubject") {
		return false
	}
	return jsonld.Has(value, "issuanceDate") || jsonld.Has(value, "validFrom")
}

// IsIssuer reports whether value is an issuer profile with id, name and url.
// A type, when present, must be a string or string array including Profile.
func IsIssuer(value any) bool {
	if !jsonld.HasAll(value, "id", "name", "url") {
		return false
	}
	return optionalType(value, TypeProfile)
}

// IsIdentityObject reports whether value carries a string identityHash. A
// hashed identity must also carry a string salt.
func IsIdentityObject(value any) bool {
	m, ok := jsonld.AsObject(value)
	if !ok {
		return false
	}
	if _, ok := m["identityHash"].(string); !ok {
		return false
	}
	if hashed, _ := m["hashed"].(bool); hashed {
		_, ok := m["salt"].(string)
		return ok
	}
	return true
}

// IsCredentialSubject reports whether value is an object with an achievement.
func IsCredentialSubject(value any) bool {
	return jsonld.Has(value, "achievement")
}

// IsAchievement reports whether value has id and name, and, when typed, a
// type including Achievement.
func IsAchievement(value any) bool {
	if !jsonld.HasAll(value, "id", "name") {
		return false
	}
	return optionalType(value, TypeAchievement)
}

// IsProof reports whether value has the structural shape of a proof. The
// signature itself is never checked.
func IsProof(value any) bool {
	return jsonld.HasAll(value, "type", "created", "verificationMethod", "proofPurpose")
}

// IsEvidence reports whether value is an evidence object. A string type must
// be Evidence; an array type must include it.
func IsEvidence(value any) bool {
	if _, ok := jsonld.AsObject(value); !ok {
		return false
	}
	return lenientType(value, TypeEvidence)
}

// IsCriteria reports whether value is a criteria object whose narrative, if
// any, is a string.
func IsCriteria(value any) bool {
	m, ok := jsonld.AsObject(value)
	if !ok {
		return false
	}
	if !lenientType(value, TypeCriteria) {
		return false
	}
	if n, ok := m["narrative"]; ok {
		if _, isString := n.(string); !isString {
			return false
		}
	}
	return true
}

// IsAlignment reports whether value has targetName and targetUrl.
func IsAlignment(value any) bool {
	return jsonld.HasAll(value, "targetName", "targetUrl")
}

// IsResultDescription reports whether value is an object.
func IsResultDescription(value any) bool {
	_, ok := jsonld.AsObject(value)
	return ok
}

// IsResult reports whether value is an object.
func IsResult(value any) bool {
	_, ok := jsonld.AsObject(value)
	return ok
}

// IsCredentialStatus reports whether value has id and type.
func IsCredentialStatus(value any) bool {
	return jsonld.HasAll(value, "id", "type")
}

// IsRefreshService reports whether value has id and type.
func IsRefreshService(value any) bool {
	return jsonld.HasAll(value, "id", "type")
}

// IsTermsOfUse reports whether value has a type.
func IsTermsOfUse(value any) bool {
	return jsonld.Has(value, "type")
}

// IsImage reports whether value is an image object with an id, typed Image
// when typed at all.
func IsImage(value any) bool {
	if !jsonld.Has(value, "id") {
		return false
	}
	return optionalType(value, TypeImage)
}

// optionalType accepts an absent type, or a string or all-string array that
// includes want.
func optionalType(value any, want string) bool {
	m, _ := jsonld.AsObject(value)
	if _, ok := m["type"]; !ok {
		return true
	}
	if !jsonld.TypeIsStrings(value) {
		return false
	}
	return jsonld.TypeIncludes(value, want)
}

// lenientType rejects only a string type other than want or an array type
// lacking it; other type shapes pass.
func lenientType(value any, want string) bool {
	m, _ := jsonld.AsObject(value)
	switch t := m["type"].(type) {
	case string:
		return t == want
	case []any:
		return jsonld.TypeIncludes(value, want)
	}
	return true
}
