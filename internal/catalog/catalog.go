package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category groups stage archetypes by the party that runs the stage.
type Category string

const (
	CategoryInternal     Category = "internal"
	CategoryExternal     Category = "external"
	CategoryPartner      Category = "partner"
	CategoryClient       Category = "client"
	CategoryVerification Category = "verification"
)

var allCategories = []Category{
	CategoryInternal,
	CategoryExternal,
	CategoryPartner,
	CategoryClient,
	CategoryVerification,
}

var categorySet = func() map[Category]struct{} {
	set := make(map[Category]struct{}, len(allCategories))
	for _, category := range allCategories {
		set[category] = struct{}{}
	}
	return set
}()

// Archetype is a selectable stage blueprint: a display name plus the category
// a stage created from it inherits. Immutable reference data.
type Archetype struct {
	ID       string
	Name     string
	Category Category
}

var archetypes = []Archetype{
	{ID: "phone-screening", Name: "Phone Screening", Category: CategoryInternal},
	{ID: "internal-interview", Name: "Internal Interview", Category: CategoryInternal},
	{ID: "technical-assessment", Name: "Technical Assessment", Category: CategoryInternal},
	{ID: "external-interview", Name: "External Interview", Category: CategoryExternal},
	{ID: "agency-review", Name: "Agency Review", Category: CategoryPartner},
	{ID: "partner-interview", Name: "Partner Interview", Category: CategoryPartner},
	{ID: "client-interview", Name: "Client Interview", Category: CategoryClient},
	{ID: "client-presentation", Name: "Client Presentation", Category: CategoryClient},
	{ID: "reference-check", Name: "Reference Check", Category: CategoryVerification},
	{ID: "background-check", Name: "Background Check", Category: CategoryVerification},
	{ID: "offer-negotiation", Name: "Offer Negotiation", Category: CategoryClient},
}

var titleCaser = cases.Title(language.English)

// Archetypes returns the ordered list of selectable stage archetypes.
func Archetypes() []Archetype {
	cp := make([]Archetype, len(archetypes))
	copy(cp, archetypes)
	return cp
}

// AllCategories returns the ordered list of known categories.
func AllCategories() []Category {
	cp := make([]Category, len(allCategories))
	copy(cp, allCategories)
	return cp
}

// ParseCategory converts a string into a known Category.
func ParseCategory(value string) (Category, bool) {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := categorySet[normalized]
	return normalized, ok
}

// Lookup finds an archetype by identifier.
func Lookup(id string) (Archetype, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, archetype := range archetypes {
		if archetype.ID == id {
			return archetype, true
		}
	}
	return Archetype{}, false
}

// CanonicalName normalizes a user-entered stage name for display: trimmed,
// whitespace-collapsed, and title-cased.
func CanonicalName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return titleCaser.String(strings.ToLower(strings.Join(fields, " ")))
}

// Custom builds a one-off archetype for a stage that has no catalog entry.
// The name is canonicalized; the category must already be validated.
func Custom(name string, category Category) Archetype {
	return Archetype{
		ID:       slugify(name),
		Name:     CanonicalName(name),
		Category: category,
	}
}

func slugify(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "-")
}
