package models

import (
	"fmt"
	"strings"
)

// OwnerKind is the discriminator naming the table a polymorphic reference points into.
type OwnerKind string

// Supported owner kinds. The set is closed.
const (
	OwnerLocation      OwnerKind = "location"
	OwnerAccommodation OwnerKind = "accommodation"
	OwnerFood          OwnerKind = "food"
	OwnerArticle       OwnerKind = "article"
	OwnerOrganizer     OwnerKind = "organizer"
	OwnerEvent         OwnerKind = "event"
	OwnerCommunityPost OwnerKind = "community_post"
)

// MediaOwnerKinds lists the owners media may attach to.
var MediaOwnerKinds = []OwnerKind{
	OwnerLocation,
	OwnerAccommodation,
	OwnerFood,
	OwnerArticle,
	OwnerOrganizer,
	OwnerEvent,
	OwnerCommunityPost,
}

// RatingOwnerKinds lists the owners ratings may attach to.
var RatingOwnerKinds = []OwnerKind{
	OwnerLocation,
	OwnerAccommodation,
	OwnerFood,
}

// ParseOwnerKind normalizes s and checks it against the closed set.
func ParseOwnerKind(s string) (OwnerKind, error) {
	kind := OwnerKind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range MediaOwnerKinds {
		if k == kind {
			return kind, nil
		}
	}
	return "", NewValidationErrorKind(KindDiscriminator, fmt.Sprintf("unknown reference type %q", s))
}

// AllowedIn reports whether k is a member of kinds.
func (k OwnerKind) AllowedIn(kinds []OwnerKind) bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// OwnerRef identifies exactly one row in exactly one owner table.
type OwnerRef struct {
	Kind OwnerKind `json:"reference_type"`
	ID   uint      `json:"reference_id"`
}

func (r OwnerRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Referencer is implemented by records that carry a (reference_id, reference_type) pair.
// The pair is not a foreign key: the owner table varies with the type.
type Referencer interface {
	Ref() OwnerRef
}

// Owner is the minimal projection of a resolved owner row.
type Owner struct {
	Ref   OwnerRef `json:"ref"`
	Label string   `json:"label"`
}

// Resolution is the per-record outcome of resolving an owner.
// Orphan is true when the owner is soft-deleted or never existed; that is an expected state.
type Resolution struct {
	Ref    OwnerRef `json:"ref"`
	Owner  *Owner   `json:"owner,omitempty"`
	Orphan bool     `json:"orphan"`
}
