// Package converter maps Open Badges 2.0 assertions to 3.0 credentials and
// back. Conversion is best effort: fields outside the shared subset are lost,
// and referenced documents are never fetched.
package converter

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/sirosfoundation/obkit/pkg/jsonld"
	"github.com/sirosfoundation/obkit/pkg/ob2"
	"github.com/sirosfoundation/obkit/pkg/ob3"
)

var (
	// ErrNotAssertion is returned when a 2.0 conversion gets something that
	// is not an OB2 Assertion.
	ErrNotAssertion = errors.New("converter: not an OB2 Assertion")

	// ErrNotCredential is returned when a 3.0 conversion gets something that
	// is not an OB3 VerifiableCredential.
	ErrNotCredential = errors.New("converter: not an OB3 VerifiableCredential")
)

// Placeholders used when the source document only references what the
// target needs embedded.
const (
	PlaceholderBadgeName        = "Unknown Badge"
	PlaceholderBadgeDescription = "Badge details not available"
	PlaceholderImage            = "https://example.org/placeholder-image"
	PlaceholderCriteria         = "Criteria not available"
	PlaceholderIssuerID         = "https://example.org/issuer"
	PlaceholderIssuerURL        = "https://example.org"
	PlaceholderIssuerName       = "Unknown Issuer"
	PlaceholderDescription      = "No description provided"
	PlaceholderEvidence         = "https://example.org/evidence/default"

	// ProofType and ProofValue fill the unsigned proof block of converted
	// credentials. No signing happens.
	ProofType  = "Ed25519Signature2020"
	ProofValue = "z58DAdFfa9SkqZMVPxAQpic6FPCsJWa6SpsfDqwmUbHEVnWxeh"

	didEmail   = "did:email:"
	didExample = "did:example:"
)

func placeholderBadgeClass() *ob2.BadgeClass {
	return &ob2.BadgeClass{
		Name:        jsonld.NewText(PlaceholderBadgeName),
		Description: jsonld.NewText(PlaceholderBadgeDescription),
		Image:       jsonld.RefIRI[ob2.Image](PlaceholderImage),
		Criteria:    jsonld.Embed(&ob2.Criteria{Narrative: PlaceholderCriteria}),
		Issuer: jsonld.Embed(&ob2.Profile{
			ID:   PlaceholderIssuerID,
			Type: jsonld.Strings{ob2.TypeProfile},
			Name: jsonld.NewText(PlaceholderIssuerName),
			URL:  PlaceholderIssuerURL,
		}),
	}
}

// V2ToV3 converts an assertion into a verifiable credential. A badge given
// only by IRI is replaced by a placeholder BadgeClass that keeps the IRI as
// its id.
func V2ToV3(a *ob2.Assertion) *ob3.Credential {
	bc := a.BadgeClass()
	if bc == nil {
		bc = placeholderBadgeClass()
		bc.ID = a.Badge.IRI
	}

	achievement := ob3.Achievement{
		ID:          bc.ID,
		Type:        jsonld.Strings{ob3.TypeAchievement},
		Name:        bc.Name,
		Description: bc.Description,
		Alignments:  jsonld.Many[ob3.Alignment](),
	}
	switch {
	case bc.Criteria.Object != nil:
		c := bc.Criteria.Object
		achievement.Criteria = jsonld.Embed(&ob3.Criteria{ID: c.ID, Type: c.Type, Narrative: c.Narrative, Extra: c.Extra})
	case bc.Criteria.IRI != "":
		achievement.Criteria = jsonld.Embed(&ob3.Criteria{ID: bc.Criteria.IRI})
	}
	if img := imageIRI(bc.Image); img != "" {
		achievement.Image = jsonld.RefIRI[ob3.Image](img)
	}

	issuer := v2Issuer(bc.Issuer)
	issuerID := issuer.IRI
	if issuer.Object != nil {
		issuerID = issuer.Object.ID
	}

	subject := ob3.CredentialSubject{
		ID:          subjectID(a.Recipient),
		Achievement: jsonld.One(achievement),
	}

	return &ob3.Credential{
		Context:           []any{jsonld.VCContext, jsonld.OB3Context},
		ID:                a.ID,
		Type:              jsonld.Strings{ob3.TypeVerifiableCredential, ob3.TypeOpenBadgeCredential},
		Issuer:            issuer,
		IssuanceDate:      a.IssuedOn,
		ExpirationDate:    a.Expires,
		CredentialSubject: jsonld.One(subject),
		Proof: jsonld.One(ob3.Proof{
			Type:               jsonld.Strings{ProofType},
			Created:            a.IssuedOn,
			VerificationMethod: issuerID + "#keys-1",
			ProofPurpose:       "assertionMethod",
			ProofValue:         ProofValue,
		}),
		Evidence: v2Evidence(a.Evidence),
	}
}

func imageIRI(img ob2.ImageRef) string {
	if img.Object != nil {
		return img.Object.ID
	}
	return img.IRI
}

// v2Issuer keeps an IRI-only issuer as an IRI; an embedded profile keeps
// its id, type, name, url and email. A profile typed only with the 2.0
// synonym Issuer also gets Profile, which 3.0 requires.
func v2Issuer(ref ob2.ProfileRef) ob3.IssuerRef {
	p := ref.Object
	if p == nil {
		return jsonld.RefIRI[ob3.Issuer](ref.IRI)
	}
	typ := append(jsonld.Strings(nil), p.Type...)
	if len(typ) > 0 && !typ.Has(ob3.TypeProfile) {
		typ = append(typ, ob3.TypeProfile)
	}
	return jsonld.Embed(&ob3.Issuer{
		ID:    p.ID,
		Type:  typ,
		Name:  p.Name,
		URL:   p.URL,
		Email: p.Email,
	})
}

// subjectID derives a DID-like subject id from a recipient: the hex of a
// hashed identity under did:example, a plain identity under did:email.
func subjectID(r ob2.IdentityObject) string {
	if r.Hashed {
		return didExample + hex.EncodeToString([]byte(r.Identity))
	}
	return didEmail + r.Identity
}

func v2Evidence(list ob2.EvidenceList) ob3.EvidenceList {
	out := ob3.EvidenceList{Multiple: list.Multiple}
	for _, ref := range list.Items {
		e := ref.Object
		if e == nil {
			out.Items = append(out.Items, jsonld.RefIRI[ob3.Evidence](ref.IRI))
			continue
		}
		ev := &ob3.Evidence{
			ID:        e.ID,
			Type:      e.Type,
			Narrative: e.Narrative,
			Genre:     e.Genre,
			Audience:  e.Audience,
			Extra:     e.Extra,
		}
		if e.Name != "" {
			ev.Name = jsonld.NewText(e.Name)
		}
		if e.Description != "" {
			ev.Description = jsonld.NewText(e.Description)
		}
		out.Items = append(out.Items, jsonld.Embed(ev))
	}
	return out
}

// V3ToV2 converts a verifiable credential into an assertion with an embedded
// BadgeClass built from the first achievement. Only the first evidence id
// survives.
func V3ToV2(c *ob3.Credential) *ob2.Assertion {
	var ach ob3.Achievement
	if first, ok := c.Achievement(); ok {
		ach = *first
	}

	bc := &ob2.BadgeClass{
		Context:     jsonld.OB2Context,
		ID:          ach.ID,
		Type:        jsonld.Strings{ob2.TypeBadgeClass},
		Name:        jsonld.NewText(ach.Name.First()),
		Description: jsonld.NewText(ach.Description.First()),
		Image:       jsonld.RefIRI[ob2.Image](PlaceholderImage),
		Criteria:    jsonld.Embed(&ob2.Criteria{Narrative: PlaceholderCriteria}),
		Issuer:      v3Issuer(c.Issuer),
		Alignment:   v3Alignments(ach.Alignments),
	}
	if bc.ID == "" {
		bc.ID = c.ID + "/badge"
	}
	if bc.Name.IsZero() {
		bc.Name = jsonld.NewText(PlaceholderBadgeName)
	}
	if bc.Description.IsZero() {
		bc.Description = jsonld.NewText(PlaceholderDescription)
	}
	switch {
	case ach.Image.Object != nil:
		img := ach.Image.Object
		bc.Image = jsonld.Embed(&ob2.Image{ID: img.ID, Type: img.Type, Caption: img.Caption.First(), Extra: img.Extra})
	case ach.Image.IRI != "":
		bc.Image = jsonld.RefIRI[ob2.Image](ach.Image.IRI)
	}
	switch cr := ach.Criteria; {
	case cr.Object != nil:
		bc.Criteria = jsonld.Embed(&ob2.Criteria{ID: cr.Object.ID, Type: cr.Object.Type, Narrative: cr.Object.Narrative, Extra: cr.Object.Extra})
	case cr.IRI != "":
		bc.Criteria = jsonld.RefIRI[ob2.Criteria](cr.IRI)
	}

	a := &ob2.Assertion{
		Context:      jsonld.OB2Context,
		ID:           c.ID,
		Type:         jsonld.Strings{ob2.TypeAssertion},
		Recipient:    recipient(c),
		Badge:        jsonld.Embed(bc),
		Verification: ob2.VerificationObject{Type: jsonld.Strings{"hosted"}},
		IssuedOn:     c.Issued(),
		Expires:      c.Expires(),
	}
	if c.Evidence.Len() > 0 {
		a.Evidence = jsonld.One(jsonld.RefIRI[ob2.Evidence](firstEvidenceID(c.Evidence)))
	}
	return a
}

func v3Issuer(ref ob3.IssuerRef) ob2.ProfileRef {
	is := ref.Object
	if is == nil {
		return jsonld.RefIRI[ob2.Profile](ref.IRI)
	}
	name := is.Name.First()
	if name == "" {
		name = PlaceholderIssuerName
	}
	return jsonld.Embed(&ob2.Profile{
		ID:    is.ID,
		Type:  jsonld.Strings{ob2.TypeProfile},
		Name:  jsonld.NewText(name),
		URL:   is.URL,
		Email: is.Email,
	})
}

func v3Alignments(list ob3.Alignments) ob2.Alignments {
	if list.Len() == 0 {
		return ob2.Alignments{}
	}
	out := ob2.Alignments{Multiple: list.Multiple}
	for _, al := range list.Items {
		out.Items = append(out.Items, ob2.AlignmentObject{
			Type:              al.Type,
			TargetName:        al.TargetName,
			TargetURL:         al.TargetURL,
			TargetDescription: al.TargetDescription,
			TargetFramework:   al.TargetFramework,
			TargetCode:        al.TargetCode,
			Extra:             al.Extra,
		})
	}
	return out
}

// recipient reverses subjectID for did:email subjects. Any other subject id
// becomes an "id" identity.
func recipient(c *ob3.Credential) ob2.IdentityObject {
	id := "unknown"
	if s, ok := c.Subject(); ok && s.ID != "" {
		id = s.ID
	}
	if email, ok := strings.CutPrefix(id, didEmail); ok {
		return ob2.IdentityObject{Type: "email", Identity: email}
	}
	return ob2.IdentityObject{Type: "id", Identity: id}
}

func firstEvidenceID(list ob3.EvidenceList) string {
	first, _ := list.First()
	id := first.IRI
	if first.Object != nil {
		id = first.Object.ID
	}
	if id == "" {
		return PlaceholderEvidence
	}
	return id
}

// ConvertV2toV3 converts an untyped OB2 Assertion into an untyped OB3
// credential.
func ConvertV2toV3(value any) (map[string]any, error) {
	if !ob2.IsAssertion(value) {
		return nil, ErrNotAssertion
	}
	a, err := ob2.DecodeAssertion(value)
	if err != nil {
		return nil, fmt.Errorf("converter: %w", err)
	}
	return V2ToV3(a).ToMap(), nil
}

// ConvertV3toV2 converts an untyped OB3 credential into an untyped OB2
// Assertion.
func ConvertV3toV2(value any) (map[string]any, error) {
	if !ob3.IsVerifiableCredential(value) {
		return nil, ErrNotCredential
	}
	c, err := ob3.DecodeCredential(value)
	if err != nil {
		return nil, fmt.Errorf("converter: %w", err)
	}
	return V3ToV2(c).ToMap(), nil
}
