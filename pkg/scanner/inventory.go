package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cloudsift/cloudsift/pkg/bigquery"
	"github.com/cloudsift/cloudsift/pkg/resource"
)

// Entry is one inventory resource together with its access-control
// entries.
type Entry struct {
	Resource       resource.Resource
	AccessControls []bigquery.AccessControl
}

// InventorySource supplies the resources to scan.
type InventorySource interface {
	// Resources returns every inventory entry to be scanned.
	Resources(ctx context.Context) ([]Entry, error)
}

// FileInventory reads entries from a YAML inventory dump. Each
// resource carries its type, id, ancestry path, and its raw access
// bindings in the BigQuery API shape:
//
//	resources:
//	  - type: bigquery
//	    id: sales
//	    project_id: proj-1
//	    full_name: organization/org-1/project/proj-1/bigquery/sales/
//	    access:
//	      - role: OWNER
//	        domain: external.com
type FileInventory struct {
	Path string
}

type inventoryFile struct {
	Resources []inventoryResource `yaml:"resources"`
}

type inventoryResource struct {
	Type      string           `yaml:"type"`
	ID        string           `yaml:"id"`
	ProjectID string           `yaml:"project_id"`
	FullName  string           `yaml:"full_name"`
	Access    []map[string]any `yaml:"access"`
}

// Resources implements InventorySource.
func (f FileInventory) Resources(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file %q: %w", f.Path, err)
	}

	var doc inventoryFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing inventory file %q: %w", f.Path, err)
	}

	entries := make([]Entry, 0, len(doc.Resources))
	for _, ir := range doc.Resources {
		res := resource.New(ir.ID, resource.Type(ir.Type))
		res.FullName = ir.FullName

		entry := Entry{Resource: res}
		for _, access := range ir.Access {
			// Re-encode the binding as JSON: FromBinding decodes the
			// API shape and keeps the raw form for audit records.
			raw, err := json.Marshal(access)
			if err != nil {
				return nil, fmt.Errorf("encoding access binding for %q: %w", ir.ID, err)
			}
			ac, err := bigquery.FromBinding(ir.ProjectID, ir.ID, ir.FullName, raw)
			if err != nil {
				return nil, err
			}
			entry.AccessControls = append(entry.AccessControls, ac)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
