package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"grocer/core/api"
	"grocer/core/storage"
	"grocer/feature/basket"
	"grocer/feature/listing"
	"grocer/feature/product"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const contentType = "application/json"

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Object describes a stored export.
type Object struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// productsDocument is the uploaded form of a listing.
type productsDocument struct {
	Name       string         `json:"name"`
	ExportedAt time.Time      `json:"exported_at"`
	Total      int            `json:"total"`
	Products   []product.View `json:"products"`
}

// basketDocument is the uploaded form of a basket.
type basketDocument struct {
	ExportedAt time.Time   `json:"exported_at"`
	Basket     basket.View `json:"basket"`
}

// Service uploads JSON snapshots of listings and baskets to object storage.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an export service writing into cfg.Bucket under cfg.Prefix.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
		now:    time.Now,
	}
}

// Products walks every page of the listing and uploads the product snapshots.
// It returns the object name. Nothing is uploaded if any page fails.
func (s *Service) Products(ctx context.Context, name string, products *listing.Products) (string, error) {
	if products == nil {
		return "", fmt.Errorf("export: listing is nil: %w", api.ErrInvalidArgument)
	}
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("export: %q is not a valid name: %w", name, api.ErrInvalidArgument)
	}

	views := []product.View{}
	for p, err := range products.Each(ctx) {
		if err != nil {
			return "", fmt.Errorf("export %s: %w", name, err)
		}
		views = append(views, p.Snapshot())
	}

	now := s.now().UTC()
	doc := productsDocument{Name: name, ExportedAt: now, Total: len(views), Products: views}
	object := storage.ObjectName(s.prefix, fmt.Sprintf("%s-%d.json", name, now.Unix()))
	if err := s.upload(ctx, object, doc); err != nil {
		return "", err
	}
	s.logger.Info("Exported listing", zap.String("object", object), zap.Int("products", len(views)))
	return object, nil
}

// Basket uploads a snapshot of the basket's current local view.
func (s *Service) Basket(ctx context.Context, b *basket.Basket) (string, error) {
	if b == nil {
		return "", fmt.Errorf("export: basket is nil: %w", api.ErrInvalidArgument)
	}

	now := s.now().UTC()
	view := b.Snapshot()
	object := storage.ObjectName(s.prefix, fmt.Sprintf("basket-%s-%d.json", view.Owner, now.Unix()))
	if err := s.upload(ctx, object, basketDocument{ExportedAt: now, Basket: view}); err != nil {
		return "", err
	}
	s.logger.Info("Exported basket", zap.String("object", object), zap.Int("lines", len(view.Lines)))
	return object, nil
}

// List returns the stored exports, newest first.
func (s *Service) List(ctx context.Context) ([]Object, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return []Object{}, nil
	}

	prefix := strings.Trim(s.prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}

	objects := []Object{}
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list exports: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		objects = append(objects, Object{Name: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

// upload marshals doc and stores it, creating the bucket on first use.
func (s *Service) upload(ctx context.Context, object string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", object, err)
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
		s.logger.Info("Created export bucket", zap.String("bucket", s.bucket))
	}

	_, err = s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("Failed to upload export", zap.String("object", object), zap.Error(err))
		return fmt.Errorf("upload %s: %w", object, err)
	}
	return nil
}
