package audit

import (
	"github.com/cloudsift/cloudsift/pkg/bigquery"
	"github.com/cloudsift/cloudsift/pkg/resource"
)

// ViolationType tags every violation emitted by this engine.
const ViolationType = "BIGQUERY_VIOLATION"

// Violation records one access-control entry breaching one rule. It is
// immutable once emitted and carries every evaluated entry field for
// audit purposes. ResourceID is the entry's dataset ID, not the
// identifier of the resource the rule was registered on.
type Violation struct {
	ResourceType  resource.Type
	ResourceID    string
	FullName      string
	RuleName      string
	RuleIndex     int
	ViolationType string

	DatasetID    string
	Role         string
	SpecialGroup string
	UserEmail    string
	Domain       string
	GroupEmail   string
	View         bigquery.TableRef

	// ResourceData is the raw serialized access binding the entry was
	// decoded from.
	ResourceData string
}
