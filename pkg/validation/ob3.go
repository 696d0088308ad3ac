package validation

import (
	"github.com/sirosfoundation/obkit/pkg/format"
	"github.com/sirosfoundation/obkit/pkg/jsonld"
	"github.com/sirosfoundation/obkit/pkg/ob3"
)

func validateCredential(c map[string]any, r *Result) {
	if !format.IsIRI(c["id"]) {
		r.addError("VerifiableCredential id must be a valid IRI")
	}

	issuedKey := "issuanceDate"
	if _, ok := c[issuedKey]; !ok {
		issuedKey = "validFrom"
	}
	if !format.IsDateTime(c[issuedKey]) {
		r.addError("VerifiableCredential " + issuedKey + " must be a valid DateTime in ISO 8601 format")
	}

	for _, key := range []string{"expirationDate", "validUntil"} {
		if v, ok := c[key]; ok && !format.IsDateTime(v) {
			r.addError("VerifiableCredential " + key + " must be a valid DateTime in ISO 8601 format")
		}
	}

	switch iss := c["issuer"].(type) {
	case string:
		if !format.IsIRI(iss) {
			r.addError("VerifiableCredential issuer must be a valid IRI or Issuer")
		} else {
			r.addWarning("VerifiableCredential issuer is an IRI reference; the Issuer profile was not validated")
		}
	default:
		if !ob3.IsIssuer(iss) {
			r.addError("VerifiableCredential issuer must be a valid Issuer")
		} else {
			validateIssuer(object(iss), r)
		}
	}

	subjects := jsonld.Items(c["credentialSubject"])
	if len(subjects) == 0 {
		r.addError("VerifiableCredential credentialSubject must not be empty")
	}
	for _, s := range subjects {
		if !ob3.IsCredentialSubject(s) {
			r.addError("VerifiableCredential credentialSubject must be a valid CredentialSubject")
			continue
		}
		validateSubject(object(s), r)
	}

	if proof, ok := c["proof"]; ok {
		for _, p := range jsonld.Items(proof) {
			if !ob3.IsProof(p) {
				r.addError("VerifiableCredential proof must be a valid Proof")
				continue
			}
			if !format.IsDateTime(object(p)["created"]) {
				r.addWarning("Proof created should be a valid DateTime in ISO 8601 format")
			}
		}
	}

	if ev, ok := c["evidence"]; ok && !jsonld.IsArray(ev, isV3EvidenceEntry) {
		r.addWarning("VerifiableCredential evidence should be a valid Evidence object or array of Evidence objects")
	}

	optional := []struct {
		key   string
		guard func(any) bool
		msg   string
	}{
		{"credentialStatus", ob3.IsCredentialStatus, "VerifiableCredential credentialStatus should have an id and a type"},
		{"refreshService", ob3.IsRefreshService, "VerifiableCredential refreshService should have an id and a type"},
		{"termsOfUse", ob3.IsTermsOfUse, "VerifiableCredential termsOfUse should have a type"},
	}
	for _, o := range optional {
		if v, ok := c[o.key]; ok && !jsonld.IsArray(v, o.guard) {
			r.addWarning(o.msg)
		}
	}
}

func validateIssuer(iss map[string]any, r *Result) {
	if !format.IsIRI(iss["id"]) {
		r.addError("Issuer id must be a valid IRI")
	}
	if !nonEmptyText(iss["name"]) {
		r.addError("Issuer name must be a non-empty string or language map")
	}
	if !format.IsIRI(iss["url"]) {
		r.addError("Issuer url must be a valid IRI")
	}
	if e, ok := iss["email"]; ok && !format.IsEmail(e) {
		r.addWarning("Issuer email should be a valid email address")
	}
	if img, ok := iss["image"]; ok && !isV3Image(img) {
		r.addWarning("Issuer image should be a valid IRI or Image object")
	}
}

func validateSubject(s map[string]any, r *Result) {
	if id, ok := s["id"]; ok && !format.IsIRI(id) {
		r.addWarning("CredentialSubject id should be a valid IRI")
	}

	if ids, ok := s["identifier"]; ok && !jsonld.IsArray(ids, ob3.IsIdentityObject) {
		r.addWarning("CredentialSubject identifier should be a valid IdentityObject or array of IdentityObjects")
	}

	achievements := jsonld.Items(s["achievement"])
	if len(achievements) == 0 {
		r.addError("CredentialSubject achievement must be a valid Achievement")
	}
	for _, a := range achievements {
		if !ob3.IsAchievement(a) {
			r.addError("CredentialSubject achievement must be a valid Achievement")
			continue
		}
		validateAchievement(object(a), r)
	}
}

func validateAchievement(a map[string]any, r *Result) {
	if !format.IsIRI(a["id"]) {
		r.addError("Achievement id must be a valid IRI")
	}
	if !nonEmptyText(a["name"]) {
		r.addError("Achievement name must be a non-empty string or language map")
	}
	if d, ok := a["description"]; ok && !jsonld.IsText(d) {
		r.addWarning("Achievement description should be a string or language map")
	}
	if c, ok := a["criteria"]; ok && !ob3.IsCriteria(c) {
		r.addWarning("Achievement criteria should be a valid Criteria object")
	}
	if img, ok := a["image"]; ok && !isV3Image(img) {
		r.addWarning("Achievement image should be a valid IRI or Image object")
	}
	if al, ok := a["alignments"]; ok && !jsonld.IsArray(al, isV3Alignment) {
		r.addWarning("Achievement alignments should be valid Alignment objects")
	}
	if rd, ok := a["resultDescriptions"]; ok && !jsonld.IsArray(rd, ob3.IsResultDescription) {
		r.addWarning("Achievement resultDescriptions should be valid ResultDescription objects")
	}
}

func isV3EvidenceEntry(v any) bool {
	if s, ok := v.(string); ok {
		return format.IsIRI(s)
	}
	return ob3.IsEvidence(v)
}

func isV3Image(v any) bool {
	if s, ok := v.(string); ok {
		return format.IsIRI(s)
	}
	return ob3.IsImage(v) && format.IsIRI(object(v)["id"])
}

func isV3Alignment(v any) bool {
	return ob3.IsAlignment(v) && format.IsIRI(object(v)["targetUrl"])
}
