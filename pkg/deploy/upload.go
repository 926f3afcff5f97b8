package deploy

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/events"
	"golang.org/x/sync/errgroup"
)

// PutObjectAPI is the part of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient builds an S3 client from the default AWS credential chain.
func NewClient(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// File is one object to upload.
type File struct {
	Path         string
	Key          string
	Size         int64
	CacheControl string
	ContentType  string
}

// List walks fsys and returns the objects a deploy to t would upload, in walk
// order.
func List(fsys fs.FS, t Target, cfg config.ConfigDeploy) ([]File, error) {
	var files []File
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, File{
			Path:         p,
			Key:          t.Prefix + p,
			Size:         info.Size(),
			CacheControl: CacheControl(p, cfg.LongTTL, cfg.ShortTTL),
			ContentType:  ContentType(p),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return files, nil
}

// Progress is reported after every finished upload.
type Progress struct {
	Done  int
	Total int
	Bytes int64
}

type Uploader struct {
	Client      PutObjectAPI
	Concurrency int
	Events      events.Handler
	OnProgress  func(Progress)
}

// Upload puts every file into bucket. The first failure cancels the remaining
// uploads; objects already written are left in place.
func (u *Uploader) Upload(ctx context.Context, fsys fs.FS, bucket string, files []File) (Progress, error) {
	handler := u.Events
	if handler == nil {
		handler = events.NoopHandler{}
	}

	var (
		done atomic.Int64
		sent atomic.Int64
	)

	g, ctx := errgroup.WithContext(ctx)
	if u.Concurrency > 0 {
		g.SetLimit(u.Concurrency)
	}

	for _, file := range files {
		g.Go(func() error {
			if err := u.put(ctx, fsys, bucket, file); err != nil {
				handler.Handle(events.Event{
					Level:   events.Error,
					Source:  file.Path,
					Message: "upload failed",
					Error:   err,
				})
				return fmt.Errorf("upload %s: %w", file.Path, err)
			}

			handler.Handle(events.Event{
				Level:   events.Debug,
				Source:  file.Path,
				Message: "uploaded " + file.Key,
			})

			p := Progress{
				Done:  int(done.Add(1)),
				Total: len(files),
				Bytes: sent.Add(file.Size),
			}
			if u.OnProgress != nil {
				u.OnProgress(p)
			}
			return nil
		})
	}

	err := g.Wait()
	return Progress{Done: int(done.Load()), Total: len(files), Bytes: sent.Load()}, err
}

func (u *Uploader) put(ctx context.Context, fsys fs.FS, bucket string, file File) error {
	body, err := fs.ReadFile(fsys, file.Path)
	if err != nil {
		return err
	}

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(file.Key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String(file.CacheControl),
		ContentType:   aws.String(file.ContentType),
	})
	return err
}
