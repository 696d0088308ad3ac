package ob2

import (
	"fmt"

	"github.com/sirosfoundation/obkit/pkg/jsonld"
)

// Polymorphic fields of the 2.0 model.
type (
	// BadgeRef is the assertion's badge: an IRI or an embedded BadgeClass.
	BadgeRef = jsonld.Ref[BadgeClass]
	// ProfileRef is a BadgeClass issuer: an IRI or an embedded Profile.
	ProfileRef = jsonld.Ref[Profile]
	// ImageRef is an image IRI (often a data URI) or an Image object.
	ImageRef = jsonld.Ref[Image]
	// CriteriaRef is a criteria IRI or a Criteria object.
	CriteriaRef = jsonld.Ref[Criteria]
	// EvidenceRef is an evidence IRI or an Evidence object.
	EvidenceRef = jsonld.Ref[Evidence]
	// EvidenceList is one evidence entry or an array of them.
	EvidenceList = jsonld.OneOrMany[EvidenceRef]
	// Alignments is one alignment or an array of them.
	Alignments = jsonld.OneOrMany[AlignmentObject]
)

// Assertion is one awarded badge instance.
type Assertion struct {
	Context          any                `mapstructure:"@context"`
	ID               string             `mapstructure:"id"`
	Type             jsonld.Strings     `mapstructure:"type"`
	Recipient        IdentityObject     `mapstructure:"recipient"`
	Badge            BadgeRef           `mapstructure:"badge"`
	Verification     VerificationObject `mapstructure:"verification"`
	IssuedOn         string             `mapstructure:"issuedOn"`
	Expires          string             `mapstructure:"expires"`
	Image            ImageRef           `mapstructure:"image"`
	Evidence         EvidenceList       `mapstructure:"evidence"`
	Narrative        string             `mapstructure:"narrative"`
	Revoked          *bool              `mapstructure:"revoked"`
	RevocationReason string             `mapstructure:"revocationReason"`
	Extra            map[string]any     `mapstructure:",remain"`
}

// BadgeClass describes what was earned.
type BadgeClass struct {
	Context     any            `mapstructure:"@context"`
	ID          string         `mapstructure:"id"`
	Type        jsonld.Strings `mapstructure:"type"`
	Name        jsonld.Text    `mapstructure:"name"`
	Description jsonld.Text    `mapstructure:"description"`
	Image       ImageRef       `mapstructure:"image"`
	Criteria    CriteriaRef    `mapstructure:"criteria"`
	Issuer      ProfileRef     `mapstructure:"issuer"`
	Alignment   Alignments     `mapstructure:"alignment"`
	Tags        jsonld.Strings `mapstructure:"tags"`
	Extra       map[string]any `mapstructure:",remain"`
}

// Profile is the issuing entity.
type Profile struct {
	Context        any                 `mapstructure:"@context"`
	ID             string              `mapstructure:"id"`
	Type           jsonld.Strings      `mapstructure:"type"`
	Name           jsonld.Text         `mapstructure:"name"`
	Description    string              `mapstructure:"description"`
	URL            string              `mapstructure:"url"`
	Email          string              `mapstructure:"email"`
	Telephone      string              `mapstructure:"telephone"`
	Image          ImageRef            `mapstructure:"image"`
	Verification   *VerificationObject `mapstructure:"verification"`
	PublicKey      string              `mapstructure:"publicKey"`
	RevocationList string              `mapstructure:"revocationList"`
	Extra          map[string]any      `mapstructure:",remain"`
}

// IdentityObject identifies the recipient, in plain text or hashed.
type IdentityObject struct {
	Type     string         `mapstructure:"type"`
	Identity string         `mapstructure:"identity"`
	Hashed   bool           `mapstructure:"hashed"`
	Salt     string         `mapstructure:"salt"`
	Extra    map[string]any `mapstructure:",remain"`
}

// VerificationObject tells a verifier how to check the assertion.
type VerificationObject struct {
	Type                 jsonld.Strings `mapstructure:"type"`
	VerificationProperty string         `mapstructure:"verificationProperty"`
	StartsWith           jsonld.Strings `mapstructure:"startsWith"`
	AllowedOrigins       jsonld.Strings `mapstructure:"allowedOrigins"`
	Creator              string         `mapstructure:"creator"`
	Extra                map[string]any `mapstructure:",remain"`
}

// Evidence describes the work that led to the award.
type Evidence struct {
	ID          string         `mapstructure:"id"`
	Type        jsonld.Strings `mapstructure:"type"`
	Narrative   string         `mapstructure:"narrative"`
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Genre       string         `mapstructure:"genre"`
	Audience    string         `mapstructure:"audience"`
	Extra       map[string]any `mapstructure:",remain"`
}

// Criteria describes how the badge is earned. Narrative is Markdown.
type Criteria struct {
	ID        string         `mapstructure:"id"`
	Type      jsonld.Strings `mapstructure:"type"`
	Narrative string         `mapstructure:"narrative"`
	Extra     map[string]any `mapstructure:",remain"`
}

// Image is an image with optional metadata.
type Image struct {
	ID      string         `mapstructure:"id"`
	Type    jsonld.Strings `mapstructure:"type"`
	Caption string         `mapstructure:"caption"`
	Author  string         `mapstructure:"author"`
	Extra   map[string]any `mapstructure:",remain"`
}

// AlignmentObject links the badge to an external framework.
type AlignmentObject struct {
	Type              jsonld.Strings `mapstructure:"type"`
	TargetName        string         `mapstructure:"targetName"`
	TargetURL         string         `mapstructure:"targetUrl"`
	TargetDescription string         `mapstructure:"targetDescription"`
	TargetFramework   string         `mapstructure:"targetFramework"`
	TargetCode        string         `mapstructure:"targetCode"`
	Extra             map[string]any `mapstructure:",remain"`
}

// DecodeAssertion decodes an untyped assertion. Callers check IsAssertion
// first; DecodeAssertion only reports values that do not fit the model.
func DecodeAssertion(value any) (*Assertion, error) {
	var a Assertion
	if err := jsonld.Decode(value, &a); err != nil {
		return nil, fmt.Errorf("ob2: failed to decode assertion: %w", err)
	}
	return &a, nil
}

// DecodeBadgeClass decodes an untyped BadgeClass.
func DecodeBadgeClass(value any) (*BadgeClass, error) {
	var bc BadgeClass
	if err := jsonld.Decode(value, &bc); err != nil {
		return nil, fmt.Errorf("ob2: failed to decode badge class: %w", err)
	}
	return &bc, nil
}

// BadgeClass returns the embedded BadgeClass, or nil when the badge is only
// referenced by IRI.
func (a *Assertion) BadgeClass() *BadgeClass {
	return a.Badge.Object
}

// IsRevoked reports whether the assertion is marked revoked.
func (a *Assertion) IsRevoked() bool {
	return a.Revoked != nil && *a.Revoked
}

// ToMap encodes the assertion as an untyped JSON-LD object.
func (a *Assertion) ToMap() map[string]any {
	m := jsonld.NewMap(a.Extra)
	jsonld.Put(m, "@context", a.Context)
	jsonld.Put(m, "id", a.ID)
	jsonld.Put(m, "type", a.Type.Compact())
	m["recipient"] = a.Recipient.ToMap()
	jsonld.Put(m, "badge", a.Badge.Value((*BadgeClass).ToMap))
	m["verification"] = a.Verification.ToMap()
	jsonld.Put(m, "issuedOn", a.IssuedOn)
	jsonld.Put(m, "expires", a.Expires)
	jsonld.Put(m, "image", a.Image.Value((*Image).ToMap))
	jsonld.Put(m, "evidence", a.Evidence.Value(evidenceValue))
	jsonld.Put(m, "narrative", a.Narrative)
	if a.Revoked != nil {
		m["revoked"] = *a.Revoked
	}
	jsonld.Put(m, "revocationReason", a.RevocationReason)
	return m
}

func evidenceValue(r EvidenceRef) any {
	return r.Value((*Evidence).ToMap)
}

// ToMap encodes the badge class.
func (bc *BadgeClass) ToMap() map[string]any {
	m := jsonld.NewMap(bc.Extra)
	jsonld.Put(m, "@context", bc.Context)
	jsonld.Put(m, "id", bc.ID)
	jsonld.Put(m, "type", bc.Type.Compact())
	jsonld.Put(m, "name", bc.Name.Value())
	jsonld.Put(m, "description", bc.Description.Value())
	jsonld.Put(m, "image", bc.Image.Value((*Image).ToMap))
	jsonld.Put(m, "criteria", bc.Criteria.Value((*Criteria).ToMap))
	jsonld.Put(m, "issuer", bc.Issuer.Value((*Profile).ToMap))
	jsonld.Put(m, "alignment", bc.Alignment.Value(func(al AlignmentObject) any { return al.ToMap() }))
	jsonld.Put(m, "tags", bc.Tags.Compact())
	return m
}

// ToMap encodes the profile.
func (p *Profile) ToMap() map[string]any {
	m := jsonld.NewMap(p.Extra)
	jsonld.Put(m, "@context", p.Context)
	jsonld.Put(m, "id", p.ID)
	jsonld.Put(m, "type", p.Type.Compact())
	jsonld.Put(m, "name", p.Name.Value())
	jsonld.Put(m, "description", p.Description)
	jsonld.Put(m, "url", p.URL)
	jsonld.Put(m, "email", p.Email)
	jsonld.Put(m, "telephone", p.Telephone)
	jsonld.Put(m, "image", p.Image.Value((*Image).ToMap))
	if p.Verification != nil {
		m["verification"] = p.Verification.ToMap()
	}
	jsonld.Put(m, "publicKey", p.PublicKey)
	jsonld.Put(m, "revocationList", p.RevocationList)
	return m
}

// ToMap encodes the identity object. hashed is always written.
func (id IdentityObject) ToMap() map[string]any {
	m := jsonld.NewMap(id.Extra)
	jsonld.Put(m, "type", id.Type)
	m["identity"] = id.Identity
	m["hashed"] = id.Hashed
	jsonld.Put(m, "salt", id.Salt)
	return m
}

// ToMap encodes the verification object.
func (v VerificationObject) ToMap() map[string]any {
	m := jsonld.NewMap(v.Extra)
	jsonld.Put(m, "type", v.Type.Compact())
	jsonld.Put(m, "verificationProperty", v.VerificationProperty)
	jsonld.Put(m, "startsWith", v.StartsWith.Compact())
	jsonld.Put(m, "allowedOrigins", v.AllowedOrigins.Compact())
	jsonld.Put(m, "creator", v.Creator)
	return m
}

// ToMap encodes the evidence.
func (e *Evidence) ToMap() map[string]any {
	m := jsonld.NewMap(e.Extra)
	jsonld.Put(m, "id", e.ID)
	jsonld.Put(m, "type", e.Type.Compact())
	jsonld.Put(m, "narrative", e.Narrative)
	jsonld.Put(m, "name", e.Name)
	jsonld.Put(m, "description", e.Description)
	jsonld.Put(m, "genre", e.Genre)
	jsonld.Put(m, "audience", e.Audience)
	return m
}

// ToMap encodes the criteria.
func (c *Criteria) ToMap() map[string]any {
	m := jsonld.NewMap(c.Extra)
	jsonld.Put(m, "id", c.ID)
	jsonld.Put(m, "type", c.Type.Compact())
	jsonld.Put(m, "narrative", c.Narrative)
	return m
}

// ToMap encodes the image.
func (img *Image) ToMap() map[string]any {
	m := jsonld.NewMap(img.Extra)
	jsonld.Put(m, "id", img.ID)
	jsonld.Put(m, "type", img.Type.Compact())
	jsonld.Put(m, "caption", img.Caption)
	jsonld.Put(m, "author", img.Author)
	return m
}

// ToMap encodes the alignment.
func (al AlignmentObject) ToMap() map[string]any {
	m := jsonld.NewMap(al.Extra)
	jsonld.Put(m, "type", al.Type.Compact())
	jsonld.Put(m, "targetName", al.TargetName)
	jsonld.Put(m, "targetUrl", al.TargetURL)
	jsonld.Put(m, "targetDescription", al.TargetDescription)
	jsonld.Put(m, "targetFramework", al.TargetFramework)
	jsonld.Put(m, "targetCode", al.TargetCode)
	return m
}
