package cloudformation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/changeguard/pkg/adapters"
	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultWaitDelay   = 5 * time.Second
	DefaultMaxAttempts = 50
)

type API interface {
	CreateChangeSet(ctx context.Context, params *cfn.CreateChangeSetInput, optFns ...func(*cfn.Options)) (*cfn.CreateChangeSetOutput, error)
	DescribeChangeSet(ctx context.Context, params *cfn.DescribeChangeSetInput, optFns ...func(*cfn.Options)) (*cfn.DescribeChangeSetOutput, error)
	DeleteChangeSet(ctx context.Context, params *cfn.DeleteChangeSetInput, optFns ...func(*cfn.Options)) (*cfn.DeleteChangeSetOutput, error)
}

type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Waiter blocks until a change set reaches a terminal state.
type Waiter interface {
	Wait(ctx context.Context, params *cfn.DescribeChangeSetInput, maxWaitDur time.Duration, optFns ...func(*cfn.ChangeSetCreateCompleteWaiterOptions)) error
}

type Settings struct {
	StackName    string
	Bucket       string
	TemplatePath string
	// TemplateKey defaults to the template's base name.
	TemplateKey string
	WaitDelay   time.Duration
	MaxAttempts int
	// Cleanup deletes the change set once it has been described.
	Cleanup bool
}

// Source uploads the template, creates an UPDATE change set and returns its
// resource changes.
type Source struct {
	settings Settings
	client   API
	uploader Uploader
	waiter   Waiter
}

func NewSource(settings Settings, client API, uploader Uploader, waiter Waiter) *Source {
	if settings.TemplateKey == "" {
		settings.TemplateKey = filepath.Base(settings.TemplatePath)
	}
	if settings.WaitDelay <= 0 {
		settings.WaitDelay = DefaultWaitDelay
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = DefaultMaxAttempts
	}
	return &Source{settings: settings, client: client, uploader: uploader, waiter: waiter}
}

func NewSourceFromConfig(settings Settings, cfg awssdk.Config) *Source {
	client := cfn.NewFromConfig(cfg)
	return NewSource(
		settings,
		client,
		manager.NewUploader(s3.NewFromConfig(cfg)),
		cfn.NewChangeSetCreateCompleteWaiter(client),
	)
}

func NewChangeSetName() string {
	return "cft-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Source) TemplateURL() string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.settings.Bucket, s.settings.TemplateKey)
}

func (s *Source) Changes(ctx context.Context) ([]domain.ResourceChange, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("stack", s.settings.StackName).
		Logger()

	if err := s.upload(ctx); err != nil {
		return nil, err
	}

	name := NewChangeSetName()
	_, err := s.client.CreateChangeSet(ctx, &cfn.CreateChangeSetInput{
		StackName:     awssdk.String(s.settings.StackName),
		ChangeSetName: awssdk.String(name),
		TemplateURL:   awssdk.String(s.TemplateURL()),
		ChangeSetType: types.ChangeSetTypeUpdate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create change set for stack %q: %w", s.settings.StackName, err)
	}
	logger.Info().Str("change_set", name).Msg("change set created")

	if s.settings.Cleanup {
		defer s.delete(ctx, name)
	}

	describeInput := &cfn.DescribeChangeSetInput{
		StackName:     awssdk.String(s.settings.StackName),
		ChangeSetName: awssdk.String(name),
	}
	maxWait := s.settings.WaitDelay * time.Duration(s.settings.MaxAttempts)
	waitErr := s.waiter.Wait(ctx, describeInput, maxWait, func(o *cfn.ChangeSetCreateCompleteWaiterOptions) {
		o.MinDelay = s.settings.WaitDelay
		o.MaxDelay = s.settings.WaitDelay
	})

	cs, err := s.describe(ctx, describeInput)
	if err != nil {
		return nil, err
	}

	if waitErr != nil {
		if noChanges(cs.StatusReason) {
			logger.Info().Str("change_set", name).Msg("template has no changes")
			return nil, nil
		}
		return nil, fmt.Errorf("change set %q for stack %q did not complete: %s: %w",
			name, s.settings.StackName, cs.StatusReason, waitErr)
	}

	return adapters.MapChangeSetApiToDomain(cs)
}

func (s *Source) upload(ctx context.Context) error {
	f, err := os.Open(s.settings.TemplatePath)
	if err != nil {
		return fmt.Errorf("failed to open template %q: %w", s.settings.TemplatePath, err)
	}
	defer f.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: awssdk.String(s.settings.Bucket),
		Key:    awssdk.String(s.settings.TemplateKey),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to upload template to bucket %q: %w", s.settings.Bucket, err)
	}
	return nil
}

// describe pages through the change set, collecting every change.
func (s *Source) describe(ctx context.Context, input *cfn.DescribeChangeSetInput) (api.ChangeSet, error) {
	var cs api.ChangeSet
	params := *input
	for {
		out, err := s.client.DescribeChangeSet(ctx, &params)
		if err != nil {
			return api.ChangeSet{}, fmt.Errorf("failed to describe change set for stack %q: %w", s.settings.StackName, err)
		}

		cs.ChangeSetName = awssdk.ToString(out.ChangeSetName)
		cs.StackName = awssdk.ToString(out.StackName)
		cs.Status = string(out.Status)
		cs.StatusReason = awssdk.ToString(out.StatusReason)
		for _, change := range out.Changes {
			raw, err := json.Marshal(change)
			if err != nil {
				return api.ChangeSet{}, fmt.Errorf("failed to encode change: %w", err)
			}
			cs.Changes = append(cs.Changes, raw)
		}

		if awssdk.ToString(out.NextToken) == "" {
			return cs, nil
		}
		params.NextToken = out.NextToken
	}
}

func (s *Source) delete(ctx context.Context, name string) {
	_, err := s.client.DeleteChangeSet(ctx, &cfn.DeleteChangeSetInput{
		StackName:     awssdk.String(s.settings.StackName),
		ChangeSetName: awssdk.String(name),
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("change_set", name).Msg("failed to delete change set")
	}
}

func noChanges(reason string) bool {
	reason = strings.ToLower(reason)
	return strings.Contains(reason, "didn't contain changes") ||
		strings.Contains(reason, "no updates are to be performed")
}
