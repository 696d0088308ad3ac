package ob3

import (
	"fmt"

	"github.com/sirosfoundation/obkit/pkg/jsonld"
)

// Polymorphic fields of the 3.0 model.
type (
	// IssuerRef is an issuer IRI or an embedded Issuer profile.
	IssuerRef = jsonld.Ref[Issuer]
	// ImageRef is an image IRI or an Image object.
	ImageRef = jsonld.Ref[Image]
	// CriteriaRef is a criteria IRI or a Criteria object.
	CriteriaRef = jsonld.Ref[Criteria]
	// Identifiers is one identity object or an array of them.
	Identifiers = jsonld.OneOrMany[IdentityObject]
	// Subjects is one credential subject or an array of them.
	Subjects = jsonld.OneOrMany[CredentialSubject]
	// Achievements is one achievement or an array of them.
	Achievements = jsonld.OneOrMany[Achievement]
	// Proofs is one proof or an array of them.
	Proofs = jsonld.OneOrMany[Proof]
	// EvidenceList is one evidence entry or an array. Entries may be bare
	// IRIs.
	EvidenceList = jsonld.OneOrMany[jsonld.Ref[Evidence]]
	// Alignments is one alignment or an array of them.
	Alignments = jsonld.OneOrMany[Alignment]
	// ResultDescriptions is one result description or an array of them.
	ResultDescriptions = jsonld.OneOrMany[ResultDescription]
	// StatusEntries holds credentialStatus, refreshService or termsOfUse.
	StatusEntries = jsonld.OneOrMany[StatusEntry]
)

// Credential is an Open Badges 3.0 verifiable credential.
type Credential struct {
	Context           any            `mapstructure:"@context"`
	ID                string         `mapstructure:"id"`
	Type              jsonld.Strings `mapstructure:"type"`
	Name              jsonld.Text    `mapstructure:"name"`
	Description       jsonld.Text    `mapstructure:"description"`
	Issuer            IssuerRef      `mapstructure:"issuer"`
	IssuanceDate      string         `mapstructure:"issuanceDate"`
	ValidFrom         string         `mapstructure:"validFrom"`
	ExpirationDate    string         `mapstructure:"expirationDate"`
	ValidUntil        string         `mapstructure:"validUntil"`
	CredentialSubject Subjects       `mapstructure:"credentialSubject"`
	Proof             Proofs         `mapstructure:"proof"`
	Evidence          EvidenceList   `mapstructure:"evidence"`
	CredentialStatus  StatusEntries  `mapstructure:"credentialStatus"`
	RefreshService    StatusEntries  `mapstructure:"refreshService"`
	TermsOfUse        StatusEntries  `mapstructure:"termsOfUse"`
	Extra             map[string]any `mapstructure:",remain"`
}

// Issuer is the issuing profile.
type Issuer struct {
	ID          string         `mapstructure:"id"`
	Type        jsonld.Strings `mapstructure:"type"`
	Name        jsonld.Text    `mapstructure:"name"`
	Description jsonld.Text    `mapstructure:"description"`
	URL         string         `mapstructure:"url"`
	Email       string         `mapstructure:"email"`
	Telephone   string         `mapstructure:"telephone"`
	Image       ImageRef       `mapstructure:"image"`
	Extra       map[string]any `mapstructure:",remain"`
}

// CredentialSubject is the holder of the achievement.
type CredentialSubject struct {
	ID          string         `mapstructure:"id"`
	Type        jsonld.Strings `mapstructure:"type"`
	Name        jsonld.Text    `mapstructure:"name"`
	Email       string         `mapstructure:"email"`
	Role        string         `mapstructure:"role"`
	Achievement Achievements   `mapstructure:"achievement"`
	Identifier  Identifiers    `mapstructure:"identifier"`
	Extra       map[string]any `mapstructure:",remain"`
}

// IdentityObject is a hashed or plain recipient identifier.
type IdentityObject struct {
	Type         jsonld.Strings `mapstructure:"type"`
	IdentityHash string         `mapstructure:"identityHash"`
	IdentityType string         `mapstructure:"identityType"`
	Hashed       bool           `mapstructure:"hashed"`
	Salt         string         `mapstructure:"salt"`
	Extra        map[string]any `mapstructure:",remain"`
}

// Achievement describes what was accomplished.
type Achievement struct {
	ID                 string             `mapstructure:"id"`
	Type               jsonld.Strings     `mapstructure:"type"`
	Name               jsonld.Text        `mapstructure:"name"`
	Description        jsonld.Text        `mapstructure:"description"`
	Criteria           CriteriaRef        `mapstructure:"criteria"`
	Image              ImageRef           `mapstructure:"image"`
	Creator            IssuerRef          `mapstructure:"creator"`
	Alignments         Alignments         `mapstructure:"alignments"`
	ResultDescriptions ResultDescriptions `mapstructure:"resultDescriptions"`
	Tags               jsonld.Strings     `mapstructure:"tags"`
	Extra              map[string]any     `mapstructure:",remain"`
}

// Proof is the structural shape of a data integrity proof.
type Proof struct {
	Type               jsonld.Strings `mapstructure:"type"`
	Created            string         `mapstructure:"created"`
	VerificationMethod string         `mapstructure:"verificationMethod"`
	ProofPurpose       string         `mapstructure:"proofPurpose"`
	ProofValue         string         `mapstructure:"proofValue"`
	JWS                string         `mapstructure:"jws"`
	Extra              map[string]any `mapstructure:",remain"`
}

// Evidence describes supporting work.
type Evidence struct {
	ID          string         `mapstructure:"id"`
	Type        jsonld.Strings `mapstructure:"type"`
	Narrative   string         `mapstructure:"narrative"`
	Name        jsonld.Text    `mapstructure:"name"`
	Description jsonld.Text    `mapstructure:"description"`
	Genre       string         `mapstructure:"genre"`
	Audience    string         `mapstructure:"audience"`
	Extra       map[string]any `mapstructure:",remain"`
}

// Criteria describes how the achievement is earned.
type Criteria struct {
	ID        string         `mapstructure:"id"`
	Type      jsonld.Strings `mapstructure:"type"`
	Narrative string         `mapstructure:"narrative"`
	Extra     map[string]any `mapstructure:",remain"`
}

// Image is an image object.
type Image struct {
	ID      string         `mapstructure:"id"`
	Type    jsonld.Strings `mapstructure:"type"`
	Caption jsonld.Text    `mapstructure:"caption"`
	Extra   map[string]any `mapstructure:",remain"`
}

// Alignment links an achievement to an external framework.
type Alignment struct {
	Type              jsonld.Strings `mapstructure:"type"`
	TargetName        string         `mapstructure:"targetName"`
	TargetURL         string         `mapstructure:"targetUrl"`
	TargetDescription string         `mapstructure:"targetDescription"`
	TargetFramework   string         `mapstructure:"targetFramework"`
	TargetCode        string         `mapstructure:"targetCode"`
	Extra             map[string]any `mapstructure:",remain"`
}

// ResultDescription describes a possible result of an achievement.
type ResultDescription struct {
	ID    string         `mapstructure:"id"`
	Type  jsonld.Strings `mapstructure:"type"`
	Name  jsonld.Text    `mapstructure:"name"`
	Extra map[string]any `mapstructure:",remain"`
}

// StatusEntry is the common id/type shape of credentialStatus,
// refreshService and termsOfUse entries.
type StatusEntry struct {
	ID    string         `mapstructure:"id"`
	Type  jsonld.Strings `mapstructure:"type"`
	Extra map[string]any `mapstructure:",remain"`
}

// DecodeCredential decodes an untyped credential. Callers check
// IsVerifiableCredential first.
func DecodeCredential(value any) (*Credential, error) {
	var c Credential
	if err := jsonld.Decode(value, &c); err != nil {
		return nil, fmt.Errorf("ob3: failed to decode credential: %w", err)
	}
	return &c, nil
}

// DecodeAchievement decodes an untyped achievement.
func DecodeAchievement(value any) (*Achievement, error) {
	var a Achievement
	if err := jsonld.Decode(value, &a); err != nil {
		return nil, fmt.Errorf("ob3: failed to decode achievement: %w", err)
	}
	return &a, nil
}

// Issued returns the issuance timestamp, from issuanceDate or validFrom.
func (c *Credential) Issued() string {
	if c.IssuanceDate != "" {
		return c.IssuanceDate
	}
	return c.ValidFrom
}

// Expires returns the expiration timestamp, from expirationDate or
// validUntil.
func (c *Credential) Expires() string {
	if c.ExpirationDate != "" {
		return c.ExpirationDate
	}
	return c.ValidUntil
}

// Subject returns the first credential subject.
func (c *Credential) Subject() (*CredentialSubject, bool) {
	if c.CredentialSubject.Len() == 0 {
		return nil, false
	}
	return &c.CredentialSubject.Items[0], true
}

// Achievement returns the first achievement of the first subject.
func (c *Credential) Achievement() (*Achievement, bool) {
	s, ok := c.Subject()
	if !ok || s.Achievement.Len() == 0 {
		return nil, false
	}
	return &s.Achievement.Items[0], true
}

// ToMap encodes the credential. The root type is always written as an array,
// the usual form for verifiable credentials.
func (c *Credential) ToMap() map[string]any {
	m := jsonld.NewMap(c.Extra)
	jsonld.Put(m, "@context", c.Context)
	jsonld.Put(m, "id", c.ID)
	if len(c.Type) > 0 {
		m["type"] = c.Type.Array()
	}
	jsonld.Put(m, "name", c.Name.Value())
	jsonld.Put(m, "description", c.Description.Value())
	jsonld.Put(m, "issuer", c.Issuer.Value((*Issuer).ToMap))
	jsonld.Put(m, "issuanceDate", c.IssuanceDate)
	jsonld.Put(m, "validFrom", c.ValidFrom)
	jsonld.Put(m, "expirationDate", c.ExpirationDate)
	jsonld.Put(m, "validUntil", c.ValidUntil)
	jsonld.Put(m, "credentialSubject", c.CredentialSubject.Value(func(s CredentialSubject) any { return s.ToMap() }))
	jsonld.Put(m, "proof", c.Proof.Value(func(p Proof) any { return p.ToMap() }))
	jsonld.Put(m, "evidence", c.Evidence.Value(func(r jsonld.Ref[Evidence]) any { return r.Value((*Evidence).ToMap) }))
	jsonld.Put(m, "credentialStatus", c.CredentialStatus.Value(statusValue))
	jsonld.Put(m, "refreshService", c.RefreshService.Value(statusValue))
	jsonld.Put(m, "termsOfUse", c.TermsOfUse.Value(statusValue))
	return m
}

func statusValue(s StatusEntry) any {
	return s.ToMap()
}

// ToMap encodes the issuer.
func (is *Issuer) ToMap() map[string]any {
	m := jsonld.NewMap(is.Extra)
	jsonld.Put(m, "id", is.ID)
	jsonld.Put(m, "type", is.Type.Compact())
	jsonld.Put(m, "name", is.Name.Value())
	jsonld.Put(m, "description", is.Description.Value())
	jsonld.Put(m, "url", is.URL)
	jsonld.Put(m, "email", is.Email)
	jsonld.Put(m, "telephone", is.Telephone)
	jsonld.Put(m, "image", is.Image.Value((*Image).ToMap))
	return m
}

// ToMap encodes the subject.
func (s CredentialSubject) ToMap() map[string]any {
	m := jsonld.NewMap(s.Extra)
	jsonld.Put(m, "id", s.ID)
	jsonld.Put(m, "type", s.Type.Compact())
	jsonld.Put(m, "name", s.Name.Value())
	jsonld.Put(m, "email", s.Email)
	jsonld.Put(m, "role", s.Role)
	jsonld.Put(m, "achievement", s.Achievement.Value(func(a Achievement) any { return a.ToMap() }))
	jsonld.Put(m, "identifier", s.Identifier.Value(func(id IdentityObject) any { return id.ToMap() }))
	return m
}

// ToMap encodes the identity object.
func (id IdentityObject) ToMap() map[string]any {
	m := jsonld.NewMap(id.Extra)
	jsonld.Put(m, "type", id.Type.Compact())
	m["identityHash"] = id.IdentityHash
	jsonld.Put(m, "identityType", id.IdentityType)
	m["hashed"] = id.Hashed
	jsonld.Put(m, "salt", id.Salt)
	return m
}

// ToMap encodes the achievement.
func (a Achievement) ToMap() map[string]any {
	m := jsonld.NewMap(a.Extra)
	jsonld.Put(m, "id", a.ID)
	jsonld.Put(m, "type", a.Type.Compact())
	jsonld.Put(m, "name", a.Name.Value())
	jsonld.Put(m, "description", a.Description.Value())
	jsonld.Put(m, "criteria", a.Criteria.Value((*Criteria).ToMap))
	jsonld.Put(m, "image", a.Image.Value((*Image).ToMap))
	jsonld.Put(m, "creator", a.Creator.Value((*Issuer).ToMap))
	if a.Alignments.Multiple || a.Alignments.Len() > 0 {
		aligns := make([]any, a.Alignments.Len())
		for i, al := range a.Alignments.Items {
			aligns[i] = al.ToMap()
		}
		m["alignments"] = aligns
	}
	jsonld.Put(m, "resultDescriptions", a.ResultDescriptions.Value(func(r ResultDescription) any { return r.ToMap() }))
	jsonld.Put(m, "tags", a.Tags.Compact())
	return m
}

// ToMap encodes the proof.
func (p Proof) ToMap() map[string]any {
	m := jsonld.NewMap(p.Extra)
	jsonld.Put(m, "type", p.Type.Compact())
	jsonld.Put(m, "created", p.Created)
	jsonld.Put(m, "verificationMethod", p.VerificationMethod)
	jsonld.Put(m, "proofPurpose", p.ProofPurpose)
	jsonld.Put(m, "proofValue", p.ProofValue)
	jsonld.Put(m, "jws", p.JWS)
	return m
}

// ToMap encodes the evidence.
func (e *Evidence) ToMap() map[string]any {
	m := jsonld.NewMap(e.Extra)
	jsonld.Put(m, "id", e.ID)
	jsonld.Put(m, "type", e.Type.Compact())
	jsonld.Put(m, "narrative", e.Narrative)
	jsonld.Put(m, "name", e.Name.Value())
	jsonld.Put(m, "description", e.Description.Value())
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
	jsonld.Put(m, "caption", img.Caption.Value())
	return m
}

// ToMap encodes the alignment.
func (al Alignment) ToMap() map[string]any {
	m := jsonld.NewMap(al.Extra)
	jsonld.Put(m, "type", al.Type.Compact())
	jsonld.Put(m, "targetName", al.TargetName)
	jsonld.Put(m, "targetUrl", al.TargetURL)
	jsonld.Put(m, "targetDescription", al.TargetDescription)
	jsonld.Put(m, "targetFramework", al.TargetFramework)
	jsonld.Put(m, "targetCode", al.TargetCode)
	return m
}

// ToMap encodes the result description.
func (r ResultDescription) ToMap() map[string]any {
	m := jsonld.NewMap(r.Extra)
	jsonld.Put(m, "id", r.ID)
	jsonld.Put(m, "type", r.Type.Compact())
	jsonld.Put(m, "name", r.Name.Value())
	return m
}

// ToMap encodes the status entry.
func (s StatusEntry) ToMap() map[string]any {
	m := jsonld.NewMap(s.Extra)
	jsonld.Put(m, "id", s.ID)
	jsonld.Put(m, "type", s.Type.Compact())
	return m
}
