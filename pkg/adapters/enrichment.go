package adapters

import (
	"encoding/json"

	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/models/domain"
)

func MapAlertDomainToApi(a domain.Alert) (api.EnrichmentAlert, error) {
	changes := make([]json.RawMessage, 0, len(a.Changes))
	for _, c := range a.Changes {
		raw, err := MapResourceChangeDomainToApi(c)
		if err != nil {
			return api.EnrichmentAlert{}, err
		}
		changes = append(changes, raw)
	}

	return api.EnrichmentAlert{
		Source:             a.Source,
		PhysicalResourceID: a.PhysicalID,
		LogicalResourceID:  a.LogicalID,
		ResourceType:       a.ResourceType,
		Changes:            changes,
		CheckID:            a.PolicyID,
		CheckName:          a.PolicyName,
		Account:            a.Account,
		Region:             a.Region,
	}, nil
}

func MapRiskContextApiToDomain(c api.RiskContext) domain.RiskLevel {
	if c.Risk == nil {
		return domain.RiskNotEvaluated
	}
	return domain.ParseRiskLevel(c.Risk.RiskValue)
}

func MapDecoratedAlertApiToDomain(d api.DecoratedAlert) domain.DecoratedAlert {
	out := d.Dassana.Normalize.Output
	return domain.DecoratedAlert{
		ResourceID:   out.ResourceID,
		Service:      out.Service,
		ResourceType: out.ResourceType,
		VendorPolicy: out.VendorPolicy,
		VendorID:     out.VendorID,
		AlertID:      out.AlertID,
		GeneralRisk:  MapRiskContextApiToDomain(d.Dassana.GeneralContext),
		ResourceRisk: MapRiskContextApiToDomain(d.Dassana.ResourceContext),
		PolicyRisk:   MapRiskContextApiToDomain(d.Dassana.PolicyContext),
	}
}
