package locator

import (
	"fmt"
	"strings"

	"github.com/funktionslust/goconsolidate"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3LocatorConfig represents the S3Locator configurable fields model.
type S3LocatorConfig struct {
	AwsCfg *aws.Config
	// Bucket is the default bucket of asset URIs that carry no bucket of
	// their own.
	Bucket string `validate:"required"`
}

// NewS3Locator returns a new instance of the S3Locator.
func NewS3Locator(cfg S3LocatorConfig) *S3Locator {
	return &S3Locator{Cfg: cfg}
}

// S3Locator resolves s3:// asset URIs against an AWS S3 bucket. Only object
// metadata is requested; the data bytes are never read.
type S3Locator struct {
	goconsolidate.BaseStorage
	Cfg    S3LocatorConfig
	client *s3.S3
}

// Setup contains the storage preparations like connection etc. Is called only
// once at the very beginning of the work with the storage. As for the
// S3Locator, it checks whether the config is proper by connecting and
// performing a simple S3 API call.
func (l *S3Locator) Setup() error {
	sess, err := session.NewSession(l.Cfg.AwsCfg)
	if err != nil {
		return err
	}
	l.client = s3.New(sess)
	if _, err := l.client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(l.Cfg.Bucket)}); err != nil {
		return fmt.Errorf("failed to access bucket %s: %v", l.Cfg.Bucket, err)
	}
	return nil
}

// Locate resolves the passed URI to its object metadata, failing when no
// object exists there.
func (l *S3Locator) Locate(uri string) (*goconsolidate.AssetInfo, error) {
	bucket, key := l.splitURI(uri)
	head, err := l.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to locate asset %s: %v", uri, err)
	}
	info := &goconsolidate.AssetInfo{URI: uri}
	if head.ContentLength != nil {
		info.Size = *head.ContentLength
	}
	if head.LastModified != nil {
		info.LastModified = *head.LastModified
	}
	return info, nil
}

// splitURI splits an asset URI into its bucket and object key, falling back
// to the configured default bucket for plain keys.
func (l *S3Locator) splitURI(uri string) (string, string) {
	if strings.HasPrefix(uri, "s3://") {
		trimmed := strings.TrimPrefix(uri, "s3://")
		if idx := strings.Index(trimmed, "/"); idx >= 0 {
			return trimmed[:idx], trimmed[idx+1:]
		}
		return trimmed, ""
	}
	return l.Cfg.Bucket, strings.TrimPrefix(uri, "/")
}
