package terminal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/de-tools/changeguard/pkg/runtime/terminal/commands"
	"github.com/de-tools/changeguard/pkg/services/config"
	"github.com/de-tools/changeguard/pkg/services/enrichment"
	"github.com/de-tools/changeguard/pkg/services/pipeline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const changeSetJSON = `{
  "ChangeSetName": "cft-0123",
  "StackName": "orders",
  "Changes": [
    {"Type": "Resource", "ResourceChange": {"Action": "Modify", "LogicalResourceId": "BucketA", "PhysicalResourceId": "bucket-a", "ResourceType": "AWS::S3::Bucket"}},
    {"Type": "Resource", "ResourceChange": {"Action": "Add", "LogicalResourceId": "QueueB", "ResourceType": "AWS::SQS::Queue"}}
  ]
}`

const checkovJSON = `[{
  "check_type": "cloudformation",
  "results": {"failed_checks": [
    {"check_id": "CKV_AWS_18", "check_name": "Ensure access logging", "resource": "AWS::S3::Bucket.BucketA"},
    {"check_id": "CKV_AWS_27", "check_name": "Ensure queue encryption", "resource": "AWS::SQS::Queue.QueueB"}
  ]}
}]`

const decoratedJSON = `[{
  "dassana": {
    "normalize": {"output": {"resourceId": "bucket-a", "service": "s3", "resourceType": "bucket", "vendorPolicy": "CKV_AWS_18", "vendorId": "checkov", "alertId": "a-1"}},
    "general-context": {"risk": {"riskValue": "high"}},
    "resource-context": {},
    "policy-context": {"risk": {"riskValue": "low"}}
  }
}]`

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Decorate(ctx context.Context, alert domain.Alert) (domain.DecoratedAlert, error) {
	args := m.Called(ctx, alert)
	return args.Get(0).(domain.DecoratedAlert), args.Error(1)
}

func (m *mockClient) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockCommenter struct {
	mock.Mock
}

func (m *mockCommenter) Post(ctx context.Context, body string) error {
	return m.Called(ctx, body).Error(0)
}

type fakeServices struct {
	client    *mockClient
	commenter *mockCommenter
	changeSet bool
}

func (f *fakeServices) Enrichment(*config.Config) (commands.EnrichmentClient, error) {
	return f.client, nil
}

func (f *fakeServices) ChangeSet(context.Context, *config.Config) (pipeline.ChangeSource, pipeline.AccountResolver, error) {
	f.changeSet = true
	return nil, nil, assert.AnError
}

func (f *fakeServices) Checkov(*config.Config) pipeline.FindingSource {
	return nil
}

func (f *fakeServices) Commenter(*config.Config, zerolog.Logger) (pipeline.Commenter, error) {
	return f.commenter, nil
}

func writeInputs(t *testing.T) (changeSet, checkov, decorated string) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	return write("changeset.json", changeSetJSON), write("checkov.json", checkovJSON), write("decorated.json", decoratedJSON)
}

func isolateEnv(t *testing.T) {
	t.Setenv("CHANGEGUARD_ENRICHMENT_API_KEY", "test-key")
	for _, env := range []string{"GITHUB_REPOSITORY", "GITHUB_SHA", "GITHUB_TOKEN", "GITHUB_PR", "CHANGEGUARD_ENRICHMENT_ENDPOINT"} {
		t.Setenv(env, "")
	}
}

func runCLI(t *testing.T, services commands.Services, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCLI(Options{
		Services:  services,
		Output:    &out,
		LogOutput: zerolog.NewTestWriter(t),
	})
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestAnalyze_DryRunOffline(t *testing.T) {
	isolateEnv(t)
	changeSet, checkov, _ := writeInputs(t)

	client := new(mockClient)
	client.On("Ping", mock.Anything).Return(nil)
	client.On("Decorate", mock.Anything, mock.MatchedBy(func(a domain.Alert) bool {
		return a.LogicalID == "BucketA" && a.Account == "123456789012" && a.Region == "eu-west-1"
	})).Return(domain.DecoratedAlert{
		ResourceID:   "bucket-a",
		Service:      "s3",
		ResourceType: "bucket",
		VendorPolicy: "CKV_AWS_18",
		GeneralRisk:  domain.RiskHigh,
	}, nil)
	services := &fakeServices{client: client}

	out, err := runCLI(t, services,
		"analyze",
		"--endpoint", "https://risk.example.com",
		"--region", "eu-west-1",
		"--change-set", changeSet,
		"--checkov", checkov,
		"--account", "123456789012",
		"--dry-run",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "<h3>Changes detected in your tracked CloudFormation template</h3>")
	assert.Contains(t, out, "| bucket-a | s3:bucket | Ensure access logging | CKV_AWS_18 | High 🔴 |")
	assert.Contains(t, out, "| QueueB | SQS::Queue | Ensure queue encryption | CKV_AWS_27 |")
	assert.NotContains(t, out, "test-key")
	assert.False(t, services.changeSet)
	client.AssertExpectations(t)
}

func TestAnalyze_PostsComment(t *testing.T) {
	isolateEnv(t)
	changeSet, checkov, _ := writeInputs(t)

	client := new(mockClient)
	client.On("Ping", mock.Anything).Return(nil)
	client.On("Decorate", mock.Anything, mock.Anything).Return(domain.DecoratedAlert{ResourceID: "bucket-a"}, nil)
	commenter := new(mockCommenter)
	commenter.On("Post", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	out, err := runCLI(t, &fakeServices{client: client, commenter: commenter},
		"analyze",
		"--endpoint", "https://risk.example.com",
		"--change-set", changeSet,
		"--checkov", checkov,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Change Analysis")
	assert.Contains(t, out, "posted")
	commenter.AssertNumberOfCalls(t, "Post", 1)
}

func TestAnalyze_EnrichmentUnavailableStopsBeforeChangeSet(t *testing.T) {
	isolateEnv(t)

	client := new(mockClient)
	client.On("Ping", mock.Anything).Return(enrichment.ErrUnavailable)
	services := &fakeServices{client: client}

	_, err := runCLI(t, services, "analyze", "--endpoint", "https://risk.example.com", "--dry-run")
	assert.ErrorIs(t, err, enrichment.ErrUnavailable)
	assert.False(t, services.changeSet)
	client.AssertNotCalled(t, "Decorate", mock.Anything, mock.Anything)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CHANGEGUARD_ENRICHMENT_API_KEY", "")

	services := &fakeServices{client: new(mockClient)}
	_, err := runCLI(t, services, "analyze", "--dry-run")
	assert.ErrorIs(t, err, enrichment.ErrNotConfigured)
	assert.False(t, services.changeSet)
}

func TestAnalyze_ChangeSetFailure(t *testing.T) {
	isolateEnv(t)

	client := new(mockClient)
	client.On("Ping", mock.Anything).Return(nil)
	services := &fakeServices{client: client}

	_, err := runCLI(t, services, "analyze", "--endpoint", "https://risk.example.com", "--dry-run")
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, services.changeSet)
}

func TestRender(t *testing.T) {
	isolateEnv(t)
	changeSet, checkov, decorated := writeInputs(t)

	out, err := runCLI(t, &fakeServices{},
		"render",
		"--change-set", changeSet,
		"--checkov", checkov,
		"--decorated", decorated,
		"--editor-url", "https://editor.example.com/",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "| bucket-a | s3:bucket | Ensure access logging | CKV_AWS_18 | High 🔴 |  - | Low ⚪ | [View](https://editor.example.com/?alertId=a-1&vendorId=checkov) |")
	assert.Contains(t, out, "#### New resources")
}

func TestRender_DecoratedCountMismatch(t *testing.T) {
	isolateEnv(t)
	changeSet, checkov, _ := writeInputs(t)
	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))

	_, err := runCLI(t, &fakeServices{},
		"render",
		"--change-set", changeSet,
		"--checkov", checkov,
		"--decorated", empty,
	)
	assert.ErrorContains(t, err, "holds 0 decorated alerts but the change set yields 1")
}

func TestPing(t *testing.T) {
	isolateEnv(t)

	client := new(mockClient)
	client.On("Ping", mock.Anything).Return(nil)

	out, err := runCLI(t, &fakeServices{client: client}, "ping", "--endpoint", "https://risk.example.com")
	require.NoError(t, err)
	assert.Equal(t, "enrichment service at https://risk.example.com is reachable\n", out)
}
