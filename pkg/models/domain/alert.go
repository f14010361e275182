package domain

const AlertSourceCheckov = "checkov"

// Alert pairs one modified resource with one finding for enrichment.
type Alert struct {
	Source       string
	PhysicalID   string
	LogicalID    string
	ResourceType string
	Changes      []ResourceChange
	PolicyID     string
	PolicyName   string
	Account      string
	Region       string
}

type RiskLevel string

const (
	RiskNotEvaluated RiskLevel = ""
	RiskHigh         RiskLevel = "high"
	RiskMedium       RiskLevel = "medium"
	RiskLow          RiskLevel = "low"
)

// ParseRiskLevel maps a remote risk value onto a known level; anything else is
// treated as not evaluated.
func ParseRiskLevel(value string) RiskLevel {
	switch RiskLevel(value) {
	case RiskHigh, RiskMedium, RiskLow:
		return RiskLevel(value)
	default:
		return RiskNotEvaluated
	}
}

// DecoratedAlert is the enrichment service's verdict on a single alert.
type DecoratedAlert struct {
	ResourceID   string
	Service      string
	ResourceType string
	VendorPolicy string
	VendorID     string
	AlertID      string

	GeneralRisk  RiskLevel
	ResourceRisk RiskLevel
	PolicyRisk   RiskLevel
}
