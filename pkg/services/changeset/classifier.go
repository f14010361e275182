package changeset

import "github.com/de-tools/changeguard/pkg/models/domain"

// Classified holds the two disjoint resource groupings of a change set.
type Classified struct {
	Modified *domain.ResourceGroups
	Created  *domain.ResourceGroups
	// Skipped counts changes with an action that is neither Modify nor Create.
	Skipped int
}

// Classify partitions changes by action, grouping them by logical id in input order.
func Classify(changes []domain.ResourceChange) Classified {
	out := Classified{
		Modified: domain.NewResourceGroups(),
		Created:  domain.NewResourceGroups(),
	}

	for _, change := range changes {
		switch change.Action {
		case domain.ActionModify:
			out.Modified.Add(change)
		case domain.ActionCreate:
			out.Created.Add(change)
		default:
			out.Skipped++
		}
	}
	return out
}
