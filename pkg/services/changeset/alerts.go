package changeset

import "github.com/de-tools/changeguard/pkg/models/domain"

// Synthesize emits one alert per (modified resource, finding) pair, walking groups
// in first-seen order and findings in join order.
func Synthesize(modified *domain.ResourceGroups, account, region string) []domain.Alert {
	var alerts []domain.Alert
	for _, group := range modified.Groups() {
		for _, finding := range group.Findings {
			alerts = append(alerts, domain.Alert{
				Source:       domain.AlertSourceCheckov,
				PhysicalID:   group.PhysicalID,
				LogicalID:    group.LogicalID,
				ResourceType: group.ResourceType,
				Changes:      append([]domain.ResourceChange(nil), group.Changes...),
				PolicyID:     finding.PolicyID,
				PolicyName:   finding.PolicyName,
				Account:      account,
				Region:       region,
			})
		}
	}
	return alerts
}
