package api

import "encoding/json"

// ChangeSet mirrors the DescribeChangeSet output. Changes are kept raw so the
// original payload can be forwarded to the enrichment service unmodified.
type ChangeSet struct {
	ChangeSetName string            `json:"ChangeSetName,omitempty"`
	StackName     string            `json:"StackName,omitempty"`
	Status        string            `json:"Status,omitempty"`
	StatusReason  string            `json:"StatusReason,omitempty"`
	Changes       []json.RawMessage `json:"Changes"`
}

type Change struct {
	Type           string         `json:"Type"`
	ResourceChange ResourceChange `json:"ResourceChange"`
}

type ResourceChange struct {
	Action             string `json:"Action"`
	LogicalResourceID  string `json:"LogicalResourceId"`
	PhysicalResourceID string `json:"PhysicalResourceId,omitempty"`
	ResourceType       string `json:"ResourceType"`
	Replacement        string `json:"Replacement,omitempty"`
}
