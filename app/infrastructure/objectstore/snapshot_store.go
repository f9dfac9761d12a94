// Package objectstore writes catalog snapshots to an S3 compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	minio "github.com/minio/minio-go/v7"
	creds "github.com/minio/minio-go/v7/pkg/credentials"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

type SnapshotStore struct {
	client *minio.Client
}

func NewSnapshotStore(opts Options) (*SnapshotStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  creds.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create s3 client:%w", err)
	}
	return &SnapshotStore{client: client}, nil
}

func snapshotPrefix(prefix string) string {
	return fmt.Sprintf("catalog/%s/", prefix)
}

func SnapshotKey(prefix string, timestamp int64) string {
	return fmt.Sprintf("%s%d.json", snapshotPrefix(prefix), timestamp)
}

// parseSnapshotKey returns the timestamp encoded in a key written by SnapshotKey.
func parseSnapshotKey(prefix, key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, snapshotPrefix(prefix))
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok {
		return 0, false
	}
	timestamp, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return timestamp, true
}

// EnsureBucket creates bucket when it does not exist yet.
func (s *SnapshotStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("err from s3:%w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("could not create bucket %s:%w", bucket, err)
	}
	return nil
}

// PutSnapshot uploads snap as JSON and returns the object key.
func (s *SnapshotStore) PutSnapshot(ctx context.Context, bucket, prefix string, snap *catalog.Snapshot) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("could not encode snapshot:%w", err)
	}
	key := SnapshotKey(prefix, snap.TakenAt.Unix())
	_, err = s.client.PutObject(ctx, bucket, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("err from s3:%w", err)
	}
	logger.GetLogger().Infof("uploaded catalog snapshot %s (%d schemas)", key, len(snap.Schemas))
	return key, nil
}

// Cleanup removes snapshots under prefix older than retention. The newest snapshot is
// always kept.
func (s *SnapshotStore) Cleanup(ctx context.Context, bucket, prefix string, retention time.Duration, now time.Time) ([]string, error) {
	keys := []string{}
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: snapshotPrefix(prefix), Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("could not list snapshots:%w", object.Err)
		}
		keys = append(keys, object.Key)
	}

	expired := expiredSnapshots(prefix, keys, retention, now)
	for _, key := range expired {
		if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return nil, fmt.Errorf("unable to remove object: %w", err)
		}
		logger.GetLogger().Infof("removed catalog snapshot %s", key)
	}
	return expired, nil
}

func expiredSnapshots(prefix string, keys []string, retention time.Duration, now time.Time) []string {
	type stamped struct {
		key       string
		timestamp int64
	}
	snapshots := []stamped{}
	for _, key := range keys {
		if timestamp, ok := parseSnapshotKey(prefix, key); ok {
			snapshots = append(snapshots, stamped{key, timestamp})
		}
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].timestamp > snapshots[j].timestamp
	})

	cutoff := now.Add(-retention).Unix()
	expired := []string{}
	for i, snap := range snapshots {
		if i == 0 {
			continue
		}
		if snap.timestamp < cutoff {
			expired = append(expired, snap.key)
		}
	}
	return expired
}
