package s3

import (
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
)

func newTestClient(cfg *aws.Config) *Client {
	sess := session.Must(session.NewSession(cfg))
	return &Client{s3Client: s3.New(sess), bucket: "listing-media"}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("listings/abc", "Front Door.JPG")

	assert.True(t, strings.HasPrefix(key, "listings/abc/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ObjectKey("listings/abc", "Front Door.JPG"))
}

func TestPublicURL_AWS(t *testing.T) {
	client := newTestClient(&aws.Config{Region: aws.String("eu-west-1")})

	assert.Equal(t, "https://listing-media.s3.eu-west-1.amazonaws.com/listings/a/1.jpg", client.PublicURL("listings/a/1.jpg"))
}

func TestPublicURL_MinIO(t *testing.T) {
	client := newTestClient(&aws.Config{
		Region:           aws.String("us-east-1"),
		Endpoint:         aws.String("http://localhost:9000"),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(true),
	})

	assert.Equal(t, "http://localhost:9000/listing-media/listings/a/1.jpg", client.PublicURL("listings/a/1.jpg"))
}
