package service

import (
	"sort"
	"strings"

	"payments-register/internal/domain"
)

const maskRune = "•"

// Mask hides all but the last four characters of an identifier for display.
// Identifiers of four characters or fewer are returned unchanged.
func Mask(id string) string {
	r := []rune(id)
	if len(r) <= 4 {
		return id
	}
	return strings.Repeat(maskRune, len(r)-4) + string(r[len(r)-4:])
}

// FindAdvisor matches the trimmed document against the roster. When several
// rows match, the first one names the advisor.
func FindAdvisor(ref *domain.Reference, document string) (domain.Advisor, error) {
	doc := strings.TrimSpace(document)
	if doc == "" {
		return domain.Advisor{}, domain.ValidationErrors{{Field: "advisor_document", Message: "advisor document is required"}}
	}

	for _, row := range ref.Advisors.Rows {
		if strings.TrimSpace(row.Value(ref.Columns, domain.FieldAdvisorDoc)) != doc {
			continue
		}
		return domain.Advisor{
			Document: doc,
			Name:     strings.TrimSpace(row.Value(ref.Columns, domain.FieldAdvisorName)),
		}, nil
	}
	return domain.Advisor{}, domain.ErrAdvisorNotFound
}

// FindObligations returns every consolidated row of the debtor, in table
// order.
func FindObligations(ref *domain.Reference, document string) ([]domain.Obligation, error) {
	doc := strings.TrimSpace(document)
	if doc == "" {
		return nil, domain.ValidationErrors{{Field: "document", Message: "debtor document is required"}}
	}

	oblCol := ref.Columns[domain.FieldObligation]
	campCol := ref.Columns[domain.FieldCampaign]

	var out []domain.Obligation
	for _, row := range ref.Obligations.Rows {
		if strings.TrimSpace(row.Value(ref.Columns, domain.FieldDebtorDoc)) != doc {
			continue
		}
		o := domain.Obligation{
			ID:       strings.TrimSpace(row[oblCol]),
			Campaign: strings.TrimSpace(row[campCol]),
		}
		for _, h := range ref.Obligations.Headers {
			if h == oblCol || h == campCol {
				continue
			}
			o.Columns = append(o.Columns, domain.Column{Name: h, Value: cleanCell(row[h])})
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return nil, domain.ErrNoObligations
	}
	return out, nil
}

// PaymentPoints lists the distinct non-empty payment points, sorted.
func PaymentPoints(ref *domain.Reference) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range ref.PaymentPoints.Rows {
		p := strings.TrimSpace(row.Value(ref.Columns, domain.FieldBank))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func cleanCell(v string) string {
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.TrimSpace(v)
}
