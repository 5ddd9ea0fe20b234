package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoDataTransfered = errors.New("no data transfered")
)

// S3 publishes finished exercise files to an S3 compatible bucket.
type S3 struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicUrl string
}

func NewS3FromEnv() (*S3, error) {
	endpoint, exists := os.LookupEnv("S3_HOSTNAME")
	if !exists {
		return nil, fmt.Errorf("missing env var S3_HOSTNAME")
	}
	publicurl, exists := os.LookupEnv("S3_PUBLICURL")
	if !exists {
		return nil, fmt.Errorf("missing env var S3_PUBLICURL")
	}
	region, exists := os.LookupEnv("S3_REGION")
	if !exists {
		region = "auto"
	}
	access, exists := os.LookupEnv("S3_ACCESS")
	if !exists || len(access) < 4 {
		return nil, fmt.Errorf("missing env var S3_ACCESS")
	}
	secret, exists := os.LookupEnv("S3_SECRET")
	if !exists || len(secret) < 4 {
		return nil, fmt.Errorf("missing env var S3_SECRET")
	}
	bucket, exists := os.LookupEnv("S3_BUCKET")
	if !exists {
		return nil, fmt.Errorf("missing env var S3_BUCKET")
	}

	logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"region":   region,
		"access":   access[:4],
		"public":   publicurl,
		"bucket":   bucket,
	}).Infoln("s3 configuration")

	return &S3{
		Endpoint:  endpoint,
		Region:    region,
		AccessKey: access,
		SecretKey: secret,
		Bucket:    bucket,
		PublicUrl: publicurl,
	}, nil
}

func (s *S3) session() (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(s.Region),
		Endpoint:         aws.String(s.Endpoint),
		Credentials:      credentials.NewStaticCredentials(s.AccessKey, s.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to s3; %w", err)
	}
	return sess, nil
}

// URL is where an uploaded key can be fetched publicly.
func (s *S3) URL(key string) string {
	return s.PublicUrl + "/" + key
}

// UploadFile streams a local file to key in chunks and confirms it landed.
func (s *S3) UploadFile(ctx context.Context, filename, key string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open upload; %w", err)
	}
	defer file.Close()

	sess, err := s.session()
	if err != nil {
		return err
	}

	uploader := s3manager.NewUploader(sess)
	_, err = uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("audio/wav"),
	}, func(u *s3manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024 // 10MB part size
		u.LeavePartsOnError = false   // on fail delete garbage
	})
	if err != nil {
		return fmt.Errorf("failed putobject; %w", err)
	}

	exists, err := s.KeyExists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check put succeeded; %w", err)
	}

	if !exists {
		return ErrNoDataTransfered
	}

	return nil
}

func (s *S3) KeyExists(ctx context.Context, key string) (bool, error) {
	sess, err := s.session()
	if err != nil {
		return false, err
	}

	s3Svc := s3.New(sess)

	out, err := s3Svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			code := aerr.Code()
			switch code {
			case s3.ErrCodeNoSuchKey, "NotFound":
				return false, nil
			default:
				return false, fmt.Errorf("failed to headobject; %w", err)
			}
		}
		return false, fmt.Errorf("failed to headobject not a awserr; %w", err)
	}
	// don't count a key as 'existing' if its 0 bytes
	if out.ContentLength != nil && *out.ContentLength == 0 {
		return false, nil
	}

	return true, nil
}
