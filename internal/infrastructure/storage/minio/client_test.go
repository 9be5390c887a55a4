package minio

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

// GetObject can only fail: *minio.Object cannot be built without a server.
func (m *MockMinIOAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return nil, args.Error(1)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

type ClientTestSuite struct {
	suite.Suite
	log logging.Logger
}

func (s *ClientTestSuite) SetupTest() {
	s.log = logging.NewNopLogger()
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := &MinIOConfig{}
	applyDefaults(cfg)

	assert.Equal(s.T(), "us-east-1", cfg.Region)
	assert.Equal(s.T(), "solbench-artifacts", cfg.Bucket)
	assert.NotZero(s.T(), cfg.ConnectTimeout)
}

func (s *ClientTestSuite) TestEnsureBucket_Exists() {
	api := new(MockMinIOAPI)
	api.On("BucketExists", mock.Anything, "runs").Return(true, nil)

	c, err := NewMinIOClientWithAPI(context.Background(), api, &MinIOConfig{Bucket: "runs"}, s.log)
	s.Require().NoError(err)
	assert.Equal(s.T(), "runs", c.Bucket())
	api.AssertNotCalled(s.T(), "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientTestSuite) TestEnsureBucket_Creates() {
	api := new(MockMinIOAPI)
	api.On("BucketExists", mock.Anything, "runs").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "runs", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

	_, err := NewMinIOClientWithAPI(context.Background(), api, &MinIOConfig{Bucket: "runs", Region: "eu-west-1"}, s.log)
	s.Require().NoError(err)
	api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestEnsureBucket_Errors() {
	api := new(MockMinIOAPI)
	api.On("BucketExists", mock.Anything, "runs").Return(false, fmt.Errorf("connection refused"))
	_, err := NewMinIOClientWithAPI(context.Background(), api, &MinIOConfig{Bucket: "runs"}, s.log)
	assert.True(s.T(), errors.IsCode(err, errors.ErrCodeArtifactStoreFailed))

	api = new(MockMinIOAPI)
	api.On("BucketExists", mock.Anything, "runs").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "runs", mock.Anything).Return(fmt.Errorf("access denied"))
	_, err = NewMinIOClientWithAPI(context.Background(), api, &MinIOConfig{Bucket: "runs"}, s.log)
	assert.True(s.T(), errors.IsCode(err, errors.ErrCodeArtifactStoreFailed))
}

func (s *ClientTestSuite) TestNewMinIOClient_RequiresEndpoint() {
	_, err := NewMinIOClient(&MinIOConfig{}, s.log)
	assert.True(s.T(), errors.IsCode(err, errors.ErrCodeValidation))
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

//Personal.AI order the ending
