package bigquery

import (
	"encoding/json"
	"fmt"
)

// TableRef identifies a table granted access through a view entry.
type TableRef struct {
	ProjectID string `json:"projectId" yaml:"project_id"`
	DatasetID string `json:"datasetId" yaml:"dataset_id"`
	TableID   string `json:"tableId" yaml:"table_id"`
}

// IsZero reports whether the reference is empty (no view grant).
func (t TableRef) IsZero() bool {
	return t == TableRef{}
}

// AccessControl is one dataset access entry. Optional grantee fields
// are empty strings when the binding does not carry them; an empty
// field is never an error.
type AccessControl struct {
	ProjectID    string
	DatasetID    string
	FullName     string
	Role         string
	SpecialGroup string
	UserEmail    string
	Domain       string
	GroupEmail   string
	View         TableRef

	// RawJSON is the binding as it appeared in the inventory,
	// preserved verbatim for violation audit records.
	RawJSON string
}

// binding mirrors the BigQuery API dataset access entry shape.
type binding struct {
	Role         string   `json:"role"`
	SpecialGroup string   `json:"specialGroup"`
	UserByEmail  string   `json:"userByEmail"`
	Domain       string   `json:"domain"`
	GroupByEmail string   `json:"groupByEmail"`
	View         TableRef `json:"view"`
}

// FromBinding decodes a raw dataset access binding into an
// AccessControl attached to the given project, dataset, and full
// resource name.
func FromBinding(projectID, datasetID, fullName string, raw []byte) (AccessControl, error) {
	var b binding
	if err := json.Unmarshal(raw, &b); err != nil {
		return AccessControl{}, fmt.Errorf("decoding access binding for dataset %q: %w", datasetID, err)
	}

	return AccessControl{
		ProjectID:    projectID,
		DatasetID:    datasetID,
		FullName:     fullName,
		Role:         b.Role,
		SpecialGroup: b.SpecialGroup,
		UserEmail:    b.UserByEmail,
		Domain:       b.Domain,
		GroupEmail:   b.GroupByEmail,
		View:         b.View,
		RawJSON:      string(raw),
	}, nil
}
