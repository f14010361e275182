package cloudformation

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) CreateChangeSet(ctx context.Context, params *cfn.CreateChangeSetInput, _ ...func(*cfn.Options)) (*cfn.CreateChangeSetOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cfn.CreateChangeSetOutput), args.Error(1)
}

func (m *mockAPI) DescribeChangeSet(ctx context.Context, params *cfn.DescribeChangeSetInput, _ ...func(*cfn.Options)) (*cfn.DescribeChangeSetOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cfn.DescribeChangeSetOutput), args.Error(1)
}

func (m *mockAPI) DeleteChangeSet(ctx context.Context, params *cfn.DeleteChangeSetInput, _ ...func(*cfn.Options)) (*cfn.DeleteChangeSetOutput, error) {
	args := m.Called(ctx, params)
	return &cfn.DeleteChangeSetOutput{}, args.Error(0)
}

type mockUploader struct {
	mock.Mock
	body string
}

func (m *mockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if input.Body != nil {
		data, _ := io.ReadAll(input.Body)
		m.body = string(data)
	}
	args := m.Called(ctx, awssdk.ToString(input.Bucket), awssdk.ToString(input.Key))
	return &manager.UploadOutput{}, args.Error(0)
}

type mockWaiter struct {
	mock.Mock
}

func (m *mockWaiter) Wait(ctx context.Context, params *cfn.DescribeChangeSetInput, maxWaitDur time.Duration, optFns ...func(*cfn.ChangeSetCreateCompleteWaiterOptions)) error {
	opts := cfn.ChangeSetCreateCompleteWaiterOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	args := m.Called(ctx, maxWaitDur, opts.MinDelay, opts.MaxDelay)
	return args.Error(0)
}

func writeTemplate(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Resources: {}\n"), 0o644))
	return path
}

func resourceChange(action types.ChangeAction, logicalID, physicalID, resourceType string) types.Change {
	rc := &types.ResourceChange{
		Action:            action,
		LogicalResourceId: awssdk.String(logicalID),
		ResourceType:      awssdk.String(resourceType),
	}
	if physicalID != "" {
		rc.PhysicalResourceId = awssdk.String(physicalID)
	}
	return types.Change{Type: types.ChangeTypeResource, ResourceChange: rc}
}

func TestSource_Changes(t *testing.T) {
	ctx := context.Background()
	client := new(mockAPI)
	uploader := new(mockUploader)
	waiter := new(mockWaiter)

	source := NewSource(Settings{
		StackName:    "boss-test",
		Bucket:       "cft-gh",
		TemplatePath: writeTemplate(t),
	}, client, uploader, waiter)

	uploader.On("Upload", mock.Anything, "cft-gh", "template.yaml").Return(nil)
	client.On("CreateChangeSet", mock.Anything, mock.MatchedBy(func(in *cfn.CreateChangeSetInput) bool {
		return awssdk.ToString(in.StackName) == "boss-test" &&
			strings.HasPrefix(awssdk.ToString(in.ChangeSetName), "cft-") &&
			awssdk.ToString(in.TemplateURL) == "https://cft-gh.s3.amazonaws.com/template.yaml" &&
			in.ChangeSetType == types.ChangeSetTypeUpdate
	})).Return(&cfn.CreateChangeSetOutput{}, nil)
	waiter.On("Wait", mock.Anything, 250*time.Second, 5*time.Second, 5*time.Second).Return(nil)

	client.On("DescribeChangeSet", mock.Anything, mock.MatchedBy(func(in *cfn.DescribeChangeSetInput) bool {
		return in.NextToken == nil
	})).Return(&cfn.DescribeChangeSetOutput{
		Status:    types.ChangeSetStatusCreateComplete,
		Changes:   []types.Change{resourceChange(types.ChangeActionModify, "BucketA", "bucket-a", "AWS::S3::Bucket")},
		NextToken: awssdk.String("page-2"),
	}, nil).Once()
	client.On("DescribeChangeSet", mock.Anything, mock.MatchedBy(func(in *cfn.DescribeChangeSetInput) bool {
		return awssdk.ToString(in.NextToken) == "page-2"
	})).Return(&cfn.DescribeChangeSetOutput{
		Status:  types.ChangeSetStatusCreateComplete,
		Changes: []types.Change{resourceChange(types.ChangeActionAdd, "QueueB", "", "AWS::SQS::Queue")},
	}, nil).Once()

	changes, err := source.Changes(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "BucketA", changes[0].LogicalID)
	assert.Equal(t, domain.ActionModify, changes[0].Action)
	assert.Equal(t, "bucket-a", changes[0].PhysicalID)
	assert.Equal(t, "QueueB", changes[1].LogicalID)
	assert.Equal(t, domain.ActionCreate, changes[1].Action)
	assert.NotEmpty(t, changes[1].Detail)
	assert.Equal(t, "Resources: {}\n", uploader.body)

	client.AssertExpectations(t)
	uploader.AssertExpectations(t)
	waiter.AssertExpectations(t)
	client.AssertNotCalled(t, "DeleteChangeSet", mock.Anything, mock.Anything)
}

func TestSource_NoChanges(t *testing.T) {
	client := new(mockAPI)
	uploader := new(mockUploader)
	waiter := new(mockWaiter)

	source := NewSource(Settings{
		StackName:    "boss-test",
		Bucket:       "cft-gh",
		TemplatePath: writeTemplate(t),
		WaitDelay:    time.Second,
		MaxAttempts:  3,
		Cleanup:      true,
	}, client, uploader, waiter)

	uploader.On("Upload", mock.Anything, "cft-gh", "template.yaml").Return(nil)
	client.On("CreateChangeSet", mock.Anything, mock.Anything).Return(&cfn.CreateChangeSetOutput{}, nil)
	waiter.On("Wait", mock.Anything, 3*time.Second, time.Second, time.Second).
		Return(errors.New("waiter state transitioned to Failure"))
	client.On("DescribeChangeSet", mock.Anything, mock.Anything).Return(&cfn.DescribeChangeSetOutput{
		Status:       types.ChangeSetStatusFailed,
		StatusReason: awssdk.String("The submitted information didn't contain changes. Submit different information to create a change set."),
	}, nil)
	client.On("DeleteChangeSet", mock.Anything, mock.Anything).Return(nil)

	changes, err := source.Changes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changes)
	client.AssertCalled(t, "DeleteChangeSet", mock.Anything, mock.Anything)
}

func TestSource_FailedChangeSet(t *testing.T) {
	client := new(mockAPI)
	uploader := new(mockUploader)
	waiter := new(mockWaiter)

	source := NewSource(Settings{StackName: "boss-test", Bucket: "cft-gh", TemplatePath: writeTemplate(t)}, client, uploader, waiter)

	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("CreateChangeSet", mock.Anything, mock.Anything).Return(&cfn.CreateChangeSetOutput{}, nil)
	waiter.On("Wait", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("waiter state transitioned to Failure"))
	client.On("DescribeChangeSet", mock.Anything, mock.Anything).Return(&cfn.DescribeChangeSetOutput{
		Status:       types.ChangeSetStatusFailed,
		StatusReason: awssdk.String("Template format error"),
	}, nil)

	_, err := source.Changes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boss-test")
	assert.Contains(t, err.Error(), "Template format error")
}

func TestSource_UploadFailureNamesBucket(t *testing.T) {
	client := new(mockAPI)
	uploader := new(mockUploader)

	source := NewSource(Settings{StackName: "boss-test", Bucket: "missing-bucket", TemplatePath: writeTemplate(t)}, client, uploader, new(mockWaiter))
	uploader.On("Upload", mock.Anything, "missing-bucket", "template.yaml").Return(errors.New("NoSuchBucket"))

	_, err := source.Changes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `bucket "missing-bucket"`)
	assert.Contains(t, err.Error(), "NoSuchBucket")
	client.AssertNotCalled(t, "CreateChangeSet", mock.Anything, mock.Anything)
}

func TestSource_CreateFailureNamesStack(t *testing.T) {
	client := new(mockAPI)
	uploader := new(mockUploader)

	source := NewSource(Settings{StackName: "missing-stack", Bucket: "cft-gh", TemplatePath: writeTemplate(t)}, client, uploader, new(mockWaiter))
	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("CreateChangeSet", mock.Anything, mock.Anything).Return(nil, errors.New("Stack [missing-stack] does not exist"))

	_, err := source.Changes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `stack "missing-stack"`)
}

func TestSource_MissingTemplate(t *testing.T) {
	source := NewSource(Settings{StackName: "s", Bucket: "b", TemplatePath: filepath.Join(t.TempDir(), "nope.yaml")}, new(mockAPI), new(mockUploader), new(mockWaiter))

	_, err := source.Changes(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewChangeSetName(t *testing.T) {
	name := NewChangeSetName()
	assert.True(t, strings.HasPrefix(name, "cft-"))
	assert.NotContains(t, strings.TrimPrefix(name, "cft-"), "-")
	assert.Len(t, name, len("cft-")+32)
	assert.NotEqual(t, name, NewChangeSetName())
}
