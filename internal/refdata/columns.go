package refdata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"payments-register/internal/domain"
)

// Rule lists the header aliases accepted for one logical field. A header
// matches when it contains any Contains entry or equals any Equals entry.
type Rule struct {
	Contains []string `yaml:"contains"`
	Equals   []string `yaml:"equals"`
}

func (r Rule) matches(header string) bool {
	for _, s := range r.Contains {
		if s != "" && strings.Contains(header, NormalizeHeader(s)) {
			return true
		}
	}
	for _, s := range r.Equals {
		if header == NormalizeHeader(s) {
			return true
		}
	}
	return false
}

type Aliases map[domain.Field]Rule

// DefaultAliases covers the Spanish headers of the collection spreadsheets
// and their English equivalents.
func DefaultAliases() Aliases {
	return Aliases{
		domain.FieldAdvisorDoc: {
			Contains: []string{"DOCUMENTO", "DOCUMENT"},
			Equals:   []string{"CC", "CÉDULA", "CEDULA", "ID"},
		},
		domain.FieldAdvisorName: {
			Contains: []string{"RESPONSABLE", "NOMBRE", "NAME"},
		},
		domain.FieldDebtorDoc: {
			Contains: []string{"DEUDOR", "DEBTOR"},
			Equals:   []string{"CEDULA", "CÉDULA", "DOCUMENTO", "DOCUMENT", "ID"},
		},
		domain.FieldObligation: {
			Contains: []string{"OBLIG"},
		},
		domain.FieldCampaign: {
			Contains: []string{"CAMPA", "CARTERA", "PORTFOLIO"},
		},
		domain.FieldBank: {
			Contains: []string{"BANCO", "PUNTO", "BANK", "POINT"},
		},
	}
}

// LoadAliases reads alias overrides from a YAML file keyed by field name.
// Fields absent from the file keep their defaults.
func LoadAliases(path string) (Aliases, error) {
	aliases := DefaultAliases()
	if path == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading column aliases: %w", err)
	}
	var overrides map[string]Rule
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing column aliases: %w", err)
	}
	for name, rule := range overrides {
		f := domain.Field(strings.ToUpper(strings.TrimSpace(name)))
		if _, ok := aliases[f]; !ok {
			return nil, fmt.Errorf("unknown column field %q", name)
		}
		aliases[f] = rule
	}
	return aliases, nil
}

// Resolve returns the first header, in declaration order, matching the
// field's aliases.
func (a Aliases) Resolve(headers []string, f domain.Field) (string, bool) {
	rule, ok := a[f]
	if !ok {
		return "", false
	}
	for _, h := range headers {
		if rule.matches(h) {
			return h, true
		}
	}
	return "", false
}

// ResolveColumns maps every logical field to a header of its table. Missing
// required fields are all reported in one ConfigError. The payment point
// column falls back to the first header.
func ResolveColumns(a Aliases, advisors, obligations, points domain.Table) (domain.Columns, error) {
	cols := make(domain.Columns)
	var missing []domain.Field

	required := []struct {
		table domain.Table
		field domain.Field
	}{
		{advisors, domain.FieldAdvisorDoc},
		{advisors, domain.FieldAdvisorName},
		{obligations, domain.FieldDebtorDoc},
		{obligations, domain.FieldObligation},
		{obligations, domain.FieldCampaign},
	}
	for _, req := range required {
		h, ok := a.Resolve(req.table.Headers, req.field)
		if !ok {
			missing = append(missing, req.field)
			continue
		}
		cols[req.field] = h
	}
	if len(missing) > 0 {
		return nil, &domain.ConfigError{Source: "columns", Missing: missing}
	}

	if h, ok := a.Resolve(points.Headers, domain.FieldBank); ok {
		cols[domain.FieldBank] = h
	} else if len(points.Headers) > 0 {
		cols[domain.FieldBank] = points.Headers[0]
	} else {
		return nil, &domain.ConfigError{Source: "columns", Missing: []domain.Field{domain.FieldBank}}
	}

	return cols, nil
}
