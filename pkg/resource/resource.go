package resource

import (
	"fmt"
	"strings"
)

// Type classifies a resource within the ownership hierarchy.
type Type string

// Resource types known to the scanner.
const (
	Organization Type = "organization"
	Folder       Type = "folder"
	Project      Type = "project"
	Bigquery     Type = "bigquery"
)

// Identity is the canonical (type, id) key for a resource. It is a
// comparable value type and is used directly as a map key by the rule
// book index.
type Identity struct {
	Type Type
	ID   string
}

// String returns the identity in type/id form.
func (i Identity) String() string {
	return fmt.Sprintf("%s/%s", i.Type, i.ID)
}

// Resource is a node in the resource hierarchy.
type Resource struct {
	Identity Identity

	// FullName is the slash-delimited ancestry path from the
	// hierarchy root to this resource, with a trailing slash:
	// "organization/org-1/project/proj-1/".
	FullName string
}

// New canonicalizes a raw id/type pair into a Resource. The type is
// lower-cased and both parts are trimmed of surrounding whitespace.
func New(id string, t Type) Resource {
	return Resource{
		Identity: Identity{
			Type: Type(strings.ToLower(strings.TrimSpace(string(t)))),
			ID:   strings.TrimSpace(id),
		},
	}
}
