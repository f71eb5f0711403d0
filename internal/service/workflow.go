package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"payments-register/internal/domain"
)

// The workflow steps below are pure: each takes the current state and one
// input and returns the next state. Persisting states is up to the caller.

// IdentifyAdvisor starts a workflow for the advisor with the given document.
// Any previous debtor data is dropped.
func IdentifyAdvisor(ref *domain.Reference, state domain.SessionState, document string) (domain.SessionState, error) {
	advisor, err := FindAdvisor(ref, document)
	if err != nil {
		return state, err
	}
	next := state
	next.Advisor = advisor
	next.DebtorDocument = ""
	next.Obligations = nil
	next.Selected = nil
	return next, nil
}

// LookupDebtor loads the debtor's obligations and clears the selection. When
// the debtor has no obligations the returned state has no debtor, together
// with domain.ErrNoObligations.
func LookupDebtor(ref *domain.Reference, state domain.SessionState, document string) (domain.SessionState, error) {
	if state.Advisor.Document == "" {
		return state, domain.ErrAdvisorNotFound
	}

	next := state
	next.DebtorDocument = ""
	next.Obligations = nil
	next.Selected = nil

	obligations, err := FindObligations(ref, document)
	if errors.Is(err, domain.ErrNoObligations) {
		return next, err
	}
	if err != nil {
		return state, err
	}

	next.DebtorDocument = strings.TrimSpace(document)
	next.Obligations = obligations
	return next, nil
}

// SelectObligations records which of the debtor's obligations the payment
// covers. Keys index state.Obligations; duplicates are collapsed.
func SelectObligations(state domain.SessionState, keys []int) (domain.SessionState, error) {
	if state.DebtorDocument == "" {
		return state, domain.ValidationErrors{{Field: "obligations", Message: "look up a debtor first"}}
	}
	if len(keys) == 0 {
		return state, domain.ValidationErrors{{Field: "obligations", Message: "select at least one obligation"}}
	}

	seen := make(map[int]bool, len(keys))
	selected := make([]int, 0, len(keys))
	for _, k := range keys {
		if k < 0 || k >= len(state.Obligations) {
			return state, domain.ValidationErrors{{Field: "obligations", Message: fmt.Sprintf("unknown obligation key %d", k)}}
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		selected = append(selected, k)
	}
	sort.Ints(selected)

	next := state
	next.Selected = selected
	return next, nil
}
