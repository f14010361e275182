package cloudformation

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// AccountResolver resolves the AWS account the credentials belong to.
type AccountResolver struct {
	client CallerIdentityAPI
}

func NewAccountResolver(client CallerIdentityAPI) *AccountResolver {
	return &AccountResolver{client: client}
}

func NewAccountResolverFromConfig(cfg awssdk.Config) *AccountResolver {
	return NewAccountResolver(sts.NewFromConfig(cfg))
}

func (r *AccountResolver) Account(ctx context.Context) (string, error) {
	out, err := r.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to resolve AWS account: %w", err)
	}
	return awssdk.ToString(out.Account), nil
}

// StaticAccount returns a fixed account id, for offline runs.
type StaticAccount string

func (a StaticAccount) Account(context.Context) (string, error) {
	return string(a), nil
}
