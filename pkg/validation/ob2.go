package validation

import (
	"strings"

	"github.com/sirosfoundation/obkit/pkg/format"
	"github.com/sirosfoundation/obkit/pkg/jsonld"
	"github.com/sirosfoundation/obkit/pkg/ob2"
)

func validateAssertion(a map[string]any, r *Result) {
	if !format.IsIRI(a["id"]) {
		r.addError("Assertion id must be a valid IRI")
	}

	if !format.IsDateTime(a["issuedOn"]) {
		r.addError("Assertion issuedOn must be a valid DateTime in ISO 8601 format")
	}

	if exp, ok := a["expires"]; ok && !format.IsDateTime(exp) {
		r.addError("Assertion expires must be a valid DateTime in ISO 8601 format")
	}

	if !ob2.IsIdentityObject(a["recipient"]) {
		r.addError("Assertion recipient must be a valid IdentityObject")
	} else {
		validateRecipient(object(a["recipient"]), r)
	}

	if !ob2.IsVerificationObject(a["verification"]) {
		r.addError("Assertion verification must be a valid VerificationObject")
	}

	switch b := a["badge"].(type) {
	case string:
		if !format.IsIRI(b) {
			r.addError("Assertion badge must be a valid IRI or BadgeClass")
		} else {
			r.addWarning("Assertion badge is an IRI reference; the BadgeClass was not validated")
		}
	default:
		if !ob2.IsBadgeClass(b) {
			r.addError("Assertion badge must be a valid BadgeClass")
		} else {
			validateBadgeClass(object(b), r)
		}
	}

	if ev, ok := a["evidence"]; ok && !jsonld.IsArray(ev, isEvidenceEntry) {
		r.addWarning("Assertion evidence should be a valid Evidence object or array of Evidence objects")
	}

	if img, ok := a["image"]; ok && !isImageValue(img) {
		r.addWarning("Assertion image should be a valid IRI or Image object")
	}

	if n, ok := a["narrative"]; ok {
		if _, isString := n.(string); !isString {
			r.addWarning("Assertion narrative should be a string")
		}
	}

	if revoked, _ := a["revoked"].(bool); revoked {
		msg := "Assertion has been revoked"
		if reason, ok := jsonld.String(a, "revocationReason"); ok {
			msg += ": " + reason
		}
		r.addWarning(msg)
	}
}

func validateRecipient(rec map[string]any, r *Result) {
	identity, _ := rec["identity"].(string)
	hashed, _ := rec["hashed"].(bool)
	switch {
	case hashed && !strings.Contains(identity, "$"):
		r.addWarning("Assertion recipient identity is hashed but does not name its algorithm (sha256$... or md5$...)")
	case !hashed && rec["type"] == "email" && !format.IsEmail(identity):
		r.addWarning("Assertion recipient identity should be a valid email address")
	}
}

func validateBadgeClass(bc map[string]any, r *Result) {
	if !format.IsIRI(bc["id"]) {
		r.addError("BadgeClass id must be a valid IRI")
	}

	if !nonEmptyText(bc["name"]) {
		r.addError("BadgeClass name must be a non-empty string")
	}

	if !nonEmptyText(bc["description"]) {
		r.addError("BadgeClass description must be a non-empty string")
	}

	if !isImageValue(bc["image"]) {
		r.addError("BadgeClass image must be a valid IRI or Image object")
	}

	switch c := bc["criteria"].(type) {
	case string:
		if !format.IsIRI(c) {
			r.addError("BadgeClass criteria must be a valid IRI or Criteria object")
		}
	default:
		if !ob2.IsCriteria(c) {
			r.addError("BadgeClass criteria must be a valid Criteria object")
		} else if n, ok := object(c)["narrative"]; ok {
			if _, isString := n.(string); !isString {
				r.addWarning("BadgeClass criteria narrative should be a string")
			}
		}
	}

	switch iss := bc["issuer"].(type) {
	case string:
		if !format.IsIRI(iss) {
			r.addError("BadgeClass issuer must be a valid IRI or Profile")
		} else {
			r.addWarning("BadgeClass issuer is an IRI reference; the issuer Profile was not validated")
		}
	default:
		if !ob2.IsProfile(iss) {
			r.addError("BadgeClass issuer must be a valid Profile")
		} else {
			validateProfile(object(iss), r)
		}
	}

	if al, ok := bc["alignment"]; ok && !jsonld.IsArray(al, isAlignmentEntry) {
		r.addWarning("BadgeClass alignment should be a valid AlignmentObject or array of AlignmentObjects")
	}

	if tags, ok := bc["tags"]; ok && !jsonld.IsArray(tags, isString) {
		r.addWarning("BadgeClass tags should be an array of strings")
	}
}

func validateProfile(p map[string]any, r *Result) {
	if !format.IsIRI(p["id"]) {
		r.addError("Profile id must be a valid IRI")
	}

	if !nonEmptyText(p["name"]) {
		r.addError("Profile name must be a non-empty string")
	}

	if ob2.IsIssuerProfile(p) {
		if !format.IsIRI(p["url"]) {
			r.addError("Issuer Profile url must be a valid IRI")
		}
		if !format.IsEmail(p["email"]) {
			r.addError("Issuer Profile email must be a valid email address")
		}
		return
	}

	if u, ok := p["url"]; ok && !format.IsIRI(u) {
		r.addWarning("Profile url should be a valid IRI")
	}
	if e, ok := p["email"]; ok && !format.IsEmail(e) {
		r.addWarning("Profile email should be a valid email address")
	}
}

func isEvidenceEntry(v any) bool {
	if s, ok := v.(string); ok {
		return format.IsIRI(s)
	}
	return ob2.IsEvidence(v)
}

func isAlignmentEntry(v any) bool {
	if !ob2.IsAlignmentObject(v) {
		return false
	}
	return format.IsIRI(object(v)["targetUrl"])
}

// isImageValue accepts an IRI (data URIs included) or an image object whose
// id, if any, is an IRI.
func isImageValue(v any) bool {
	if s, ok := v.(string); ok {
		return format.IsIRI(s)
	}
	if m, ok := jsonld.AsObject(v); ok {
		id, ok := m["id"]
		return !ok || format.IsIRI(id)
	}
	return false
}

// object returns v as an object, or nil. Callers have already checked the
// shape with a guard.
func object(v any) map[string]any {
	m, _ := jsonld.AsObject(v)
	return m
}

func nonEmptyText(v any) bool {
	s, ok := jsonld.FirstText(v)
	return ok && strings.TrimSpace(s) != ""
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
