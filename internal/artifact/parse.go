package artifact

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gzhole/toolscout/internal/textscan"
)

// Queries written as plain list items ("- SELECT ...") fold into one line
// under YAML's default scalar rules; rewriting them as literal block
// scalars keeps the line structure the shell rule depends on.
var queryRegexp = regexp.MustCompile(`(?im)(^ +- +)(SELECT|LET|//)`)

func sanitizeYAML(data string) string {
	return queryRegexp.ReplaceAllStringFunc(data, func(m string) string {
		parts := queryRegexp.FindStringSubmatch(m)
		return parts[1] + "|\n" + strings.Repeat(" ", len(parts[1])) + parts[2]
	})
}

// knownFields are the top-level keys an artifact may carry. Only consulted
// in strict mode.
var knownFields = map[string]bool{
	"name":                 true,
	"aliases":              true,
	"description":          true,
	"author":               true,
	"reference":            true,
	"references":           true,
	"required_permissions": true,
	"implied_permissions":  true,
	"impersonate":          true,
	"resources":            true,
	"precondition":         true,
	"parameters":           true,
	"type":                 true,
	"sources":              true,
	"imports":              true,
	"export":               true,
	"reports":              true,
	"tools":                true,
	"column_types":         true,
	"level":                true,
}

// parseDefinition decodes one artifact document. A non-empty reason means
// the document was rejected.
func parseDefinition(data []byte, strict bool) (*Definition, string) {
	dec := yaml.NewDecoder(bytes.NewReader([]byte(sanitizeYAML(string(data)))))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ReasonEmptyDocument
		}
		return nil, invalidYAML(err)
	}
	if len(doc.Content) == 0 {
		return nil, ReasonEmptyDocument
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, ReasonEmptyDocument
	}
	if root.Kind != yaml.MappingNode {
		return nil, invalidYAML(errors.Errorf("line %d: top-level value is not a mapping", root.Line))
	}
	if strict {
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i]
			if !knownFields[key.Value] {
				return nil, invalidYAML(errors.Errorf("line %d: unknown field %q", key.Line, key.Value))
			}
		}
	}

	var def Definition
	if err := root.Decode(&def); err != nil {
		return nil, invalidYAML(err)
	}

	for i := range def.Sources {
		foldQueries(&def.Sources[i])
	}
	def.Warnings = sanitizeDefinition(&def)

	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return nil, ReasonMissingName
	}
	def.Type = strings.ToLower(strings.TrimSpace(def.Type))
	return &def, ""
}

// foldQueries merges the deprecated queries list into Query.
func foldQueries(s *Source) {
	if len(s.Queries) == 0 {
		return
	}
	blocks := make([]string, 0, len(s.Queries)+1)
	if s.Query != "" {
		blocks = append(blocks, strings.TrimRight(s.Query, "\n"))
	}
	for _, q := range s.Queries {
		blocks = append(blocks, strings.TrimRight(q, "\n"))
	}
	s.Query = strings.Join(blocks, "\n")
	s.Queries = nil
}

// sanitizeDefinition strips invisible characters from the fields tools are
// extracted from and describes what was found.
func sanitizeDefinition(def *Definition) []string {
	var warnings []string
	clean := func(field string, value *string) {
		res := textscan.Scan(*value)
		if res.Clean() {
			return
		}
		found := make([]string, 0, len(res.Findings))
		for _, f := range res.Findings {
			found = append(found, f.String())
		}
		warning := fmt.Sprintf("%s: %s", field, strings.Join(found, "; "))
		if n := res.Stripped(); n > 0 {
			warning += fmt.Sprintf(" (%d removed)", n)
		}
		warnings = append(warnings, warning)
		*value = res.Sanitized
	}

	clean("name", &def.Name)
	clean("precondition", &def.Precondition)
	for i := range def.Sources {
		s := &def.Sources[i]
		clean(fmt.Sprintf("sources[%d].precondition", i), &s.Precondition)
		clean(fmt.Sprintf("sources[%d].query", i), &s.Query)
	}
	for i := range def.Tools {
		clean(fmt.Sprintf("tools[%d].name", i), &def.Tools[i].Name)
	}
	return warnings
}
