package api

import "encoding/json"

type ReportRequest struct {
	ChangeSet ChangeSet       `json:"changeSet"`
	Checkov   json.RawMessage `json:"checkov"`
	Account   string          `json:"account"`
	Region    string          `json:"region"`
}

type ReportResponse struct {
	Modified string `json:"modified"`
	Created  string `json:"created"`
	Alerts   int    `json:"alerts"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Health struct {
	Status string `json:"status"`
}

type IssueComment struct {
	ID      int64  `json:"id,omitempty"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url,omitempty"`
}
