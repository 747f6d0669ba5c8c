package audit

// ResourceScope names the resources a rule definition governs.
type ResourceScope struct {
	// Type is the resource type tag ("organization", "folder",
	// "project", "bigquery").
	Type string `yaml:"type"`

	// ResourceIDs lists the governed resource identifiers. It must be
	// non-empty; an empty list aborts the rule book build.
	ResourceIDs []string `yaml:"resource_ids"`
}

// RuleDefinition is one raw rule as authored in the rules file. Pattern
// fields left empty default to "*" (match anything); Mode left empty
// defaults to blacklist.
type RuleDefinition struct {
	Name     string          `yaml:"name"`
	Mode     string          `yaml:"mode"`
	Resource []ResourceScope `yaml:"resource"`

	DatasetID    string `yaml:"dataset_id"`
	SpecialGroup string `yaml:"special_group"`
	UserEmail    string `yaml:"user_email"`
	Domain       string `yaml:"domain"`
	GroupEmail   string `yaml:"group_email"`
	Role         string `yaml:"role"`
}

// ruleFile is the top-level rules file document.
type ruleFile struct {
	Rules []RuleDefinition `yaml:"rules"`
}

// applyDefaults fills absent pattern fields with the match-anything
// wildcard.
func (d *RuleDefinition) applyDefaults() {
	for _, field := range []*string{
		&d.DatasetID, &d.SpecialGroup, &d.UserEmail,
		&d.Domain, &d.GroupEmail, &d.Role,
	} {
		if *field == "" {
			*field = "*"
		}
	}
}
