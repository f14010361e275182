package changeset

import (
	"strings"

	"github.com/de-tools/changeguard/pkg/models/domain"
)

// LogicalIDFromPath derives the owning logical id from a finding path such as
// "AWS::S3::Bucket.BucketA" or "aws_s3_bucket.BucketA.policy".
func LogicalIDFromPath(path string) (string, bool) {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Join appends each finding to the group owning it and returns how many were
// attached. Findings that resolve to no known group are dropped. Join is
// additive, so it must run once per classification.
func Join(findings []domain.Finding, classified Classified) int {
	joined := 0
	for _, finding := range findings {
		logicalID, ok := LogicalIDFromPath(finding.TargetResourcePath)
		if !ok {
			continue
		}

		group, ok := classified.Modified.Get(logicalID)
		if !ok {
			group, ok = classified.Created.Get(logicalID)
		}
		if !ok {
			continue
		}

		group.Findings = append(group.Findings, finding)
		joined++
	}
	return joined
}
