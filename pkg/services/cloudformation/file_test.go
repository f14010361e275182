package cloudformation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "change-set.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
	  "Changes": [
	    {"Type": "Resource", "ResourceChange": {"Action": "Modify", "LogicalResourceId": "BucketA", "ResourceType": "AWS::S3::Bucket"}},
	    {"Type": "Resource", "ResourceChange": {"Action": "Add", "LogicalResourceId": "QueueB", "ResourceType": "AWS::SQS::Queue"}}
	  ]
	}`), 0o644))

	changes, err := NewFileSource(path).Changes(context.Background())
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, domain.ActionModify, changes[0].Action)
	assert.Equal(t, domain.ActionCreate, changes[1].Action)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Changes(context.Background())
	assert.ErrorContains(t, err, "failed to read change set")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = NewFileSource(path).Changes(context.Background())
	assert.ErrorContains(t, err, "failed to parse change set")
}
