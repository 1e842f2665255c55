package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	failPut error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Disk_Lifecycle(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	d := newS3DiskWithClient(fake, "organic", "https://cdn.example.com")

	require.NoError(t, d.Put(ctx, "a.png", strings.NewReader("png")))
	assert.Equal(t, []byte("png"), fake.objects["a.png"])

	ok, err := d.Exists(ctx, "a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := d.Open(ctx, "a.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "png", string(body))

	assert.Equal(t, "https://cdn.example.com/a.png", d.URL("a.png"))

	require.NoError(t, d.Delete(ctx, "a.png"))
	assert.Empty(t, fake.objects)
}

func TestS3Disk_Missing(t *testing.T) {
	ctx := context.Background()
	d := newS3DiskWithClient(newFakeS3(), "organic", "https://cdn.example.com")

	assert.ErrorIs(t, d.Delete(ctx, "none.png"), fs.ErrNotExist)

	_, err := d.Open(ctx, "none.png")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestS3Disk_PutError(t *testing.T) {
	fake := newFakeS3()
	fake.failPut = errors.New("access denied")
	d := newS3DiskWithClient(fake, "organic", "")

	err := d.Put(context.Background(), "a.png", strings.NewReader("x"))
	assert.ErrorContains(t, err, "access denied")
}

func TestNewS3Disk_RequiresBucket(t *testing.T) {
	_, err := NewS3Disk(context.Background(), S3Options{})
	assert.ErrorContains(t, err, "S3_BUCKET")
}

func TestNewS3Disk_DefaultURL(t *testing.T) {
	d, err := NewS3Disk(context.Background(), S3Options{
		Bucket: "organic",
		Region: "ap-south-1",
		Key:    "k",
		Secret: "s",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://organic.s3.ap-south-1.amazonaws.com/x.png", d.URL("x.png"))
}
