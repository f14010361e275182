package api

import "encoding/json"

// EnrichmentAlert is the request body submitted for decoration.
type EnrichmentAlert struct {
	Source             string            `json:"Source"`
	PhysicalResourceID string            `json:"PhysicalResourceId"`
	LogicalResourceID  string            `json:"LogicalResourceId"`
	ResourceType       string            `json:"ResourceType"`
	Changes            []json.RawMessage `json:"Changes"`
	CheckID            string            `json:"CheckId"`
	CheckName          string            `json:"CheckName"`
	Account            string            `json:"Account"`
	Region             string            `json:"Region"`
}

type DecoratedAlert struct {
	Dassana Decoration `json:"dassana"`
}

type Decoration struct {
	Normalize       Normalize   `json:"normalize"`
	GeneralContext  RiskContext `json:"general-context"`
	ResourceContext RiskContext `json:"resource-context"`
	PolicyContext   RiskContext `json:"policy-context"`
}

type Normalize struct {
	Output NormalizedAlert `json:"output"`
}

type NormalizedAlert struct {
	ResourceID   string `json:"resourceId"`
	Service      string `json:"service"`
	ResourceType string `json:"resourceType"`
	VendorPolicy string `json:"vendorPolicy"`
	VendorID     string `json:"vendorId"`
	AlertID      string `json:"alertId"`
}

type RiskContext struct {
	Risk *Risk `json:"risk,omitempty"`
}

type Risk struct {
	RiskValue string `json:"riskValue"`
}
