package resource

import "strings"

// Ancestors returns the resource itself plus every containing resource
// encoded in fullName, ordered closest-first: the resource, then its
// parent, up to the hierarchy root. Callers treat this ordering as
// authoritative; the rule book never re-sorts it.
//
// fullName is a path of type/id segments ordered root-first. Malformed
// trailing segments (an odd type with no id) are ignored. When fullName
// is empty or does not end at r, r is still returned as the first
// element so lookups always consider the resource itself.
func Ancestors(r Resource, fullName string) []Resource {
	segments := splitPath(fullName)

	// Build the chain root-first, accumulating each ancestor's own
	// full name as the path prefix that ends at it.
	chain := make([]Resource, 0, len(segments)/2+1)
	var prefix strings.Builder
	for i := 0; i+1 < len(segments); i += 2 {
		prefix.WriteString(segments[i])
		prefix.WriteString("/")
		prefix.WriteString(segments[i+1])
		prefix.WriteString("/")
		chain = append(chain, Resource{
			Identity: Identity{Type: Type(segments[i]), ID: segments[i+1]},
			FullName: prefix.String(),
		})
	}

	// Reverse to closest-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	if len(chain) == 0 || chain[0].Identity != r.Identity {
		chain = append([]Resource{r}, chain...)
	}
	return chain
}

func splitPath(fullName string) []string {
	var segments []string
	for _, s := range strings.Split(fullName, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
