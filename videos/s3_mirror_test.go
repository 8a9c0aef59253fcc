package videos

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put    *s3.PutObjectInput
	body   string
	del    *s3.DeleteObjectInput
	putErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.put = in
	f.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.del = in
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3MirrorKey(t *testing.T) {
	tests := map[string]string{
		"":        "video-1-1.mp4",
		"videos":  "videos/video-1-1.mp4",
		"videos/": "videos/video-1-1.mp4",
		"/a/b":    "a/b/video-1-1.mp4",
	}
	for prefix, want := range tests {
		m := newS3Mirror(&fakeS3{}, "bucket", prefix)
		assert.Equal(t, want, m.Key("video-1-1.mp4"), prefix)
	}
}

func TestS3MirrorPut(t *testing.T) {
	client := &fakeS3{}
	m := newS3Mirror(client, "portfolio", "videos/")

	err := m.Put(context.Background(), "video-1-1.mp4", "video/mp4", strings.NewReader("clip"), 4)
	require.NoError(t, err)

	require.NotNil(t, client.put)
	assert.Equal(t, "portfolio", aws.ToString(client.put.Bucket))
	assert.Equal(t, "videos/video-1-1.mp4", aws.ToString(client.put.Key))
	assert.Equal(t, "video/mp4", aws.ToString(client.put.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(client.put.ContentLength))
	assert.Equal(t, "clip", client.body)
}

func TestS3MirrorPutError(t *testing.T) {
	client := &fakeS3{putErr: errors.New("throttled")}
	m := newS3Mirror(client, "portfolio", "videos/")

	err := m.Put(context.Background(), "video-1-1.mp4", "video/mp4", strings.NewReader("clip"), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://portfolio/videos/video-1-1.mp4")
	assert.ErrorIs(t, err, client.putErr)
}

func TestS3MirrorDelete(t *testing.T) {
	client := &fakeS3{}
	m := newS3Mirror(client, "portfolio", "videos/")

	require.NoError(t, m.Delete(context.Background(), "video-1-1.mp4"))
	require.NotNil(t, client.del)
	assert.Equal(t, "videos/video-1-1.mp4", aws.ToString(client.del.Key))
}

func TestNewS3MirrorRequiresBucket(t *testing.T) {
	_, err := NewS3Mirror(context.Background(), "", "videos/")
	assert.Error(t, err)
}
