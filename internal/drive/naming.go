package drive

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"hoclieu/internal/normalize"
)

//go:embed config/naming.yaml
var namingFiles embed.FS

// NamingRules holds the folder-name candidate patterns used when
// locating or creating grade folders on the remote side.
type NamingRules struct {
	GradePatterns []string `yaml:"grade_patterns"`
}

// LoadNamingRules parses the embedded naming configuration.
func LoadNamingRules() (*NamingRules, error) {
	data, err := namingFiles.ReadFile("config/naming.yaml")
	if err != nil {
		return nil, fmt.Errorf("read naming config: %w", err)
	}

	var rules NamingRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("unmarshal naming config: %w", err)
	}
	if len(rules.GradePatterns) == 0 {
		return nil, fmt.Errorf("naming config has no grade patterns")
	}

	return &rules, nil
}

// GradeCandidates expands a grade label into an ordered list of folder
// name candidates: each configured pattern applied to the bare grade
// token, then the label itself. "Lớp 6", "lop 6" and "6" all expand to
// the same candidate set.
func (r *NamingRules) GradeCandidates(gradeLabel string) []string {
	token := gradeToken(gradeLabel)

	var candidates []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok || strings.TrimSpace(name) == "" {
			return
		}
		seen[name] = struct{}{}
		candidates = append(candidates, name)
	}

	for _, pattern := range r.GradePatterns {
		add(fmt.Sprintf(pattern, token))
	}
	add(gradeLabel)

	return candidates
}

// SubjectCandidates expands a subject label into the literal form plus
// its diacritic-stripped form ("Toán" → ["Toán", "toan"]).
func (r *NamingRules) SubjectCandidates(subjectLabel string) []string {
	candidates := []string{subjectLabel}
	stripped := normalize.Normalize(subjectLabel)
	if stripped != "" && stripped != subjectLabel {
		candidates = append(candidates, stripped)
	}
	return candidates
}

// gradeToken extracts the bare grade token from a label: the last
// whitespace-separated field ("Lớp 6" → "6", "6" → "6").
func gradeToken(gradeLabel string) string {
	fields := strings.Fields(gradeLabel)
	if len(fields) == 0 {
		return gradeLabel
	}
	return fields[len(fields)-1]
}
