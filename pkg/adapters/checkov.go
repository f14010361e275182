package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/models/domain"
)

// ParseCheckovReports decodes checkov JSON output, which is a single report for
// one framework and a list of reports when several frameworks ran.
func ParseCheckovReports(data []byte) ([]api.CheckovReport, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty checkov report")
	}

	if trimmed[0] == '[' {
		var reports []api.CheckovReport
		if err := json.Unmarshal(trimmed, &reports); err != nil {
			return nil, fmt.Errorf("failed to parse checkov report list: %w", err)
		}
		return reports, nil
	}

	var report api.CheckovReport
	if err := json.Unmarshal(trimmed, &report); err != nil {
		return nil, fmt.Errorf("failed to parse checkov report: %w", err)
	}
	return []api.CheckovReport{report}, nil
}

func MapCheckovApiToDomain(reports []api.CheckovReport) []domain.Finding {
	var findings []domain.Finding
	for _, report := range reports {
		for _, check := range report.Results.FailedChecks {
			findings = append(findings, domain.Finding{
				PolicyID:           check.CheckID,
				PolicyName:         check.CheckName,
				TargetResourcePath: check.Resource,
			})
		}
	}
	return findings
}
