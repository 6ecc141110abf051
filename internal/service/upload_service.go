package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/storage"
)

const (
	UploadKindProduct = "products"
	UploadKindShop    = "shops"
	UploadKindSlip    = "slips"
)

var uploadKindPermission = map[string]authz.Permission{
	UploadKindProduct: authz.ManageProducts,
	UploadKindShop:    authz.ManageShops,
	UploadKindSlip:    authz.UploadPaymentSlip,
}

type UploadService interface {
	UploadImage(ctx context.Context, p *authz.Principal, kind string, data []byte) (string, error)
}

type uploadService struct {
	store    storage.Uploader
	maxBytes int64
	maxDim   int
}

// NewUploadService returns a service that reports ErrStorageDisabled on every
// call when store is nil.
func NewUploadService(store storage.Uploader, maxBytes int64, maxDim int) UploadService {
	return &uploadService{store: store, maxBytes: maxBytes, maxDim: maxDim}
}

func (s *uploadService) UploadImage(ctx context.Context, p *authz.Principal, kind string, data []byte) (string, error) {
	if err := authz.Authorize(p, authz.UploadImages); err != nil {
		return "", err
	}
	perm, ok := uploadKindPermission[kind]
	if !ok {
		return "", invalid("kind", "must be products, shops or slips")
	}
	if !p.Can(perm) {
		return "", ErrForbidden
	}
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	if len(data) == 0 {
		return "", invalid("file", "is required")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", invalid("file", fmt.Sprintf("must be at most %d bytes", s.maxBytes))
	}
	img, err := storage.ProcessImage(data, s.maxDim)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return "", invalid("file", "is not a supported image")
		}
		return "", err
	}
	path := fmt.Sprintf("%s/%s.jpg", kind, uuid.NewString())
	url, err := s.store.Put(ctx, path, "image/jpeg", img)
	if err != nil {
		log.Printf("[upload] rid=%s stage=put_fail path=%s err=%v", reqctx.RID(ctx), path, err)
		return "", err
	}
	log.Printf("[upload] rid=%s stage=stored path=%s bytes=%d user=%d", reqctx.RID(ctx), path, len(img), p.UserID)
	return url, nil
}
