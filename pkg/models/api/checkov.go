package api

type CheckovReport struct {
	CheckType string         `json:"check_type"`
	Results   CheckovResults `json:"results"`
	Summary   CheckovSummary `json:"summary"`
}

type CheckovResults struct {
	FailedChecks []CheckovCheck `json:"failed_checks"`
}

type CheckovCheck struct {
	CheckID   string `json:"check_id"`
	CheckName string `json:"check_name"`
	Resource  string `json:"resource"`
	FilePath  string `json:"file_path,omitempty"`
	Guideline string `json:"guideline,omitempty"`
}

type CheckovSummary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}
