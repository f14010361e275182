package report

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/de-tools/changeguard/pkg/models/domain"
)

const (
	DefaultEditorBaseURL = "https://editor.dassana.io"

	riskPlaceholder = " -"
)

var (
	ModifiedColumns = []string{
		"Resource", "Type", "Policy Violation", "Policy ID",
		"General Risk", "Resource Risk", "Policy Risk", "Context",
	}
	CreatedColumns = []string{"Resource", "Type", "Policy Violation", "Policy ID"}
)

// FormatRisk maps a risk level onto its report cell.
func FormatRisk(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return "High 🔴"
	case domain.RiskMedium:
		return "Medium 🟡"
	case domain.RiskLow:
		return "Low ⚪"
	default:
		return riskPlaceholder
	}
}

// ServiceType strips the vendor namespace: AWS::S3::Bucket -> S3::Bucket.
func ServiceType(resourceType string) string {
	if _, rest, ok := strings.Cut(resourceType, "::"); ok {
		return rest
	}
	return resourceType
}

type Renderer struct {
	editorBaseURL string
}

func NewRenderer(editorBaseURL string) *Renderer {
	if editorBaseURL == "" {
		editorBaseURL = DefaultEditorBaseURL
	}
	return &Renderer{editorBaseURL: strings.TrimRight(editorBaseURL, "/")}
}

// ModifiedReport builds one row per decorated alert, in input order.
func (r *Renderer) ModifiedReport(alerts []domain.DecoratedAlert, modified *domain.ResourceGroups) domain.Report {
	report := domain.Report{Columns: ModifiedColumns}
	for _, alert := range alerts {
		report.Rows = append(report.Rows, []string{
			alert.ResourceID,
			alert.Service + ":" + alert.ResourceType,
			policyName(alert, modified),
			alert.VendorPolicy,
			FormatRisk(alert.GeneralRisk),
			FormatRisk(alert.ResourceRisk),
			FormatRisk(alert.PolicyRisk),
			r.contextLink(alert),
		})
	}
	return report
}

// CreatedReport builds one row per (resource, finding) pair. Resources without
// findings are omitted.
func (r *Renderer) CreatedReport(created *domain.ResourceGroups) domain.Report {
	report := domain.Report{Columns: CreatedColumns}
	for _, group := range created.Groups() {
		for _, finding := range group.Findings {
			report.Rows = append(report.Rows, []string{
				group.LogicalID,
				ServiceType(group.ResourceType),
				finding.PolicyName,
				finding.PolicyID,
			})
		}
	}
	return report
}

func (r *Renderer) RenderModified(alerts []domain.DecoratedAlert, modified *domain.ResourceGroups) string {
	return Markdown(r.ModifiedReport(alerts, modified))
}

func (r *Renderer) RenderCreated(created *domain.ResourceGroups) string {
	return Markdown(r.CreatedReport(created))
}

func (r *Renderer) contextLink(alert domain.DecoratedAlert) string {
	return fmt.Sprintf("[View](%s/?alertId=%s&vendorId=%s)",
		r.editorBaseURL, url.QueryEscape(alert.AlertID), url.QueryEscape(alert.VendorID))
}

// policyName recovers the violated policy's name from the group whose physical
// id matches the decorated resource.
func policyName(alert domain.DecoratedAlert, modified *domain.ResourceGroups) string {
	if alert.ResourceID == "" {
		return ""
	}
	for _, group := range modified.Groups() {
		if group.PhysicalID != alert.ResourceID {
			continue
		}
		for _, finding := range group.Findings {
			if finding.PolicyID == alert.VendorPolicy {
				return finding.PolicyName
			}
		}
	}
	return ""
}
