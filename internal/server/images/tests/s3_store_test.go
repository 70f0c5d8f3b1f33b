package tests

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/images"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

type fakeObject struct {
	data        []byte
	contentType string
}

// fakeS3 держит объекты в памяти. Multipart не нужен: картинки меньше одной части.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	// noLength - GetObject не сообщает ContentLength
	noLength bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]fakeObject{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = fakeObject{data: data, contentType: aws.ToString(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	mod := time.Unix(1_700_000_000, 0)
	out := &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   aws.String(obj.contentType),
		ContentLength: aws.Int64(int64(len(obj.data))),
		LastModified:  &mod,
	}
	if f.noLength {
		out.ContentLength = nil
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

var errMultipart = errors.New("multipart is not supported by fake")

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errMultipart
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errMultipart
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errMultipart
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errMultipart
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := images.NewS3Store(newFakeS3(), images.S3Options{})
	require.Error(t, err)
}

// Картинка через Intake попадает в bucket под префиксом и читается обратно
func TestS3Store_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	store, err := images.NewS3Store(fake, images.S3Options{Bucket: "art", Prefix: "/images/"})
	require.NoError(t, err)

	in := images.NewIntake(store, images.Options{})
	data := jpegBytes(100 << 10)

	name, err := in.Accept(context.Background(), images.Upload{
		Filename:    "sunset.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	require.NoError(t, err)

	stored, ok := fake.objects["art/images/"+name]
	require.True(t, ok)
	require.Equal(t, "image/jpeg", stored.contentType)

	obj, err := in.Open(context.Background(), name)
	require.NoError(t, err)
	defer obj.Body.Close()

	got, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.EqualValues(t, len(data), obj.Size)
	require.False(t, obj.ModTime.IsZero())

	require.NoError(t, in.Discard(context.Background(), name))
	_, err = in.Open(context.Background(), name)
	require.ErrorIs(t, err, serr.ErrNotFound)
}

// Без ContentLength размер неизвестен, а не нулевой
func TestS3Store_Open_UnknownLength(t *testing.T) {
	fake := newFakeS3()
	fake.noLength = true
	store, err := images.NewS3Store(fake, images.S3Options{Bucket: "art"})
	require.NoError(t, err)

	data := jpegBytes(1 << 10)
	require.NoError(t, store.Save(context.Background(), "1-a.jpg", bytes.NewReader(data), int64(len(data)), "image/jpeg"))

	obj, err := store.Open(context.Background(), "1-a.jpg")
	require.NoError(t, err)
	defer obj.Body.Close()

	require.EqualValues(t, -1, obj.Size)
	got, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestS3Store_BadName(t *testing.T) {
	store, err := images.NewS3Store(newFakeS3(), images.S3Options{Bucket: "art"})
	require.NoError(t, err)

	err = store.Save(context.Background(), "../x.png", strings.NewReader("x"), 1, "image/png")
	require.ErrorIs(t, err, serr.ErrBadFilename)
}
