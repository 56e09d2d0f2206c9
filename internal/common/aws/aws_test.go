package aws

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	lastPut *s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.objects[awssdk.ToString(in.Bucket)+"/"+awssdk.ToString(in.Key)] = body
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[awssdk.ToString(in.Bucket)+"/"+awssdk.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Store_PutGet(t *testing.T) {
	api := &fakeS3{objects: map[string][]byte{}}
	store := NewS3Store(api)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "bundles", "bot/1.zip", []byte("zip"), "application/zip"))
	assert.Equal(t, "application/zip", awssdk.ToString(api.lastPut.ContentType))
	assert.Equal(t, int64(3), awssdk.ToInt64(api.lastPut.ContentLength))

	got, err := store.Get(ctx, "bundles", "bot/1.zip")
	require.NoError(t, err)
	assert.Equal(t, []byte("zip"), got)

	_, err = store.Get(ctx, "bundles", "missing")
	assert.ErrorContains(t, err, "s3://bundles/missing")
}

func TestS3Store_PutError(t *testing.T) {
	store := NewS3Store(&fakeS3{objects: map[string][]byte{}, putErr: errors.New("denied")})

	err := store.Put(context.Background(), "b", "k", nil, "")

	assert.ErrorContains(t, err, "denied")
}

func TestS3URI(t *testing.T) {
	assert.Equal(t, "s3://bucket/a/b.zip", S3URI("bucket", "a/b.zip"))
}

type fakeSNS struct{ in *sns.PublishInput }

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	return &sns.PublishOutput{MessageId: awssdk.String("m-1")}, nil
}

func TestSNSClient_PublishAlert(t *testing.T) {
	api := &fakeSNS{}
	long := string(bytes.Repeat([]byte("x"), 150))

	id, err := NewSNSClient(api).PublishAlert(context.Background(), "arn:topic", "art-1", long, "body")

	require.NoError(t, err)
	assert.Equal(t, "m-1", id)
	assert.Len(t, awssdk.ToString(api.in.Subject), 100)
	assert.Equal(t, "art-1", awssdk.ToString(api.in.MessageAttributes["artifactId"].StringValue))
}

type fakeSES struct{ in *ses.SendEmailInput }

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = in
	return &ses.SendEmailOutput{MessageId: awssdk.String("e-1")}, nil
}

func TestSESClient_SendText(t *testing.T) {
	api := &fakeSES{}

	id, err := NewSESClient(api).SendText(context.Background(), "bots@example.com", "owner@example.com", "Build failed", "details")

	require.NoError(t, err)
	assert.Equal(t, "e-1", id)
	assert.Equal(t, []string{"owner@example.com"}, api.in.Destination.ToAddresses)
	assert.Equal(t, "details", awssdk.ToString(api.in.Message.Body.Text.Data))
}
