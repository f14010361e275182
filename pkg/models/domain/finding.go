package domain

// Finding is a static-policy violation attributed to a template resource.
type Finding struct {
	PolicyID           string // CKV_AWS_18
	PolicyName         string
	TargetResourcePath string // <kind>.<logicalId>[.<suffix>]
}
