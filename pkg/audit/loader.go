package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// maxRulesFileSize caps the rules file at 4 MiB. Rule files are
// hand-authored; anything larger is a mistake, not a policy.
const maxRulesFileSize = 4 << 20

// LoadRuleDefinitions reads and decodes the rules file at path. It
// validates the file before parsing (regular file, size cap, UTF-8)
// and rejects unknown fields so typos in rule definitions fail loudly
// at build time instead of silently matching nothing.
//
// A file with no rules yields an empty, valid definition list.
func LoadRuleDefinitions(path string) ([]RuleDefinition, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}

	if fileInfo.Size() > maxRulesFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), maxRulesFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	var doc ruleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		// An empty file decodes to EOF; treat it as no rules.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &ParseError{FilePath: path, Cause: err}
	}

	for i := range doc.Rules {
		doc.Rules[i].applyDefaults()
	}
	return doc.Rules, nil
}

// FileRuleSource is a RuleSource backed by a rules file on disk. Each
// load re-reads the file, so a rebuild picks up edits.
type FileRuleSource struct {
	Path string
}

// LoadRuleDefinitions implements RuleSource.
func (s FileRuleSource) LoadRuleDefinitions(ctx context.Context) ([]RuleDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadRuleDefinitions(s.Path)
}
