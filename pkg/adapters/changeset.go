package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/models/domain"
)

func MapActionApiToDomain(action string) domain.ChangeAction {
	switch action {
	case "Modify":
		return domain.ActionModify
	case "Add":
		return domain.ActionCreate
	case "Remove":
		return domain.ActionRemove
	default:
		return domain.ActionOther
	}
}

func MapActionDomainToApi(action domain.ChangeAction) string {
	switch action {
	case domain.ActionCreate:
		return "Add"
	case domain.ActionModify, domain.ActionRemove:
		return string(action)
	default:
		return "Dynamic"
	}
}

// MapChangeSetApiToDomain decodes resource changes, keeping each raw change as
// the opaque detail. Non-resource changes are skipped.
func MapChangeSetApiToDomain(cs api.ChangeSet) ([]domain.ResourceChange, error) {
	changes := make([]domain.ResourceChange, 0, len(cs.Changes))
	for i, raw := range cs.Changes {
		var c api.Change
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("failed to decode change #%d: %w", i, err)
		}
		if c.Type != "" && c.Type != "Resource" {
			continue
		}

		changes = append(changes, domain.ResourceChange{
			LogicalID:    c.ResourceChange.LogicalResourceID,
			Action:       MapActionApiToDomain(c.ResourceChange.Action),
			ResourceType: c.ResourceChange.ResourceType,
			PhysicalID:   c.ResourceChange.PhysicalResourceID,
			Detail:       append(json.RawMessage(nil), raw...),
		})
	}
	return changes, nil
}

// MapResourceChangeDomainToApi returns the raw change payload, rebuilding a
// minimal one when the change carries no detail.
func MapResourceChangeDomainToApi(c domain.ResourceChange) (json.RawMessage, error) {
	if len(c.Detail) > 0 {
		return c.Detail, nil
	}
	return json.Marshal(api.Change{
		Type: "Resource",
		ResourceChange: api.ResourceChange{
			Action:             MapActionDomainToApi(c.Action),
			LogicalResourceID:  c.LogicalID,
			PhysicalResourceID: c.PhysicalID,
			ResourceType:       c.ResourceType,
		},
	})
}
