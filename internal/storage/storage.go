package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nimasrn/debt-ledger/internal/model"
)

const MaxUploadSize = 1 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".pdf":  true,
}

var (
	ErrUnknownDriver  = errors.New("unknown storage driver")
	ErrObjectNotFound = errors.New("stored object not found")
)

// Kind groups uploads by what they are attached to.
type Kind string

const (
	KindDebtVoucher        Kind = "debt_voucher"
	KindTransactionVoucher Kind = "tran_voucher"
	KindProfilePic         Kind = "profile_pic"
)

func (k Kind) Valid() bool {
	switch k {
	case KindDebtVoucher, KindTransactionVoucher, KindProfilePic:
		return true
	}
	return false
}

// Store persists validated uploads. The reference returned by Save is the
// object key, whatever the backend.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, key string) (*Object, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Object is a stored upload read back for download.
type Object struct {
	Data        []byte
	ContentType string
}

type Upload struct {
	Filename    string
	Data        []byte
	ContentType string
}

// Validate checks extension, size and sniffed content of an upload. The
// declared content type of the request is ignored.
func Validate(filename string, data []byte) (*Upload, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, model.NewValidationError("file", "unsupported file extension, allowed: jpg, jpeg, png, bmp, pdf")
	}
	if len(data) == 0 {
		return nil, model.NewValidationError("file", "file is empty")
	}
	if len(data) > MaxUploadSize {
		return nil, model.NewValidationError("file", "file size must be under 1MB")
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") && !detected.Is("application/pdf") {
		return nil, model.NewValidationError("file", "invalid file type, only images and PDFs are allowed")
	}

	return &Upload{Filename: filename, Data: data, ContentType: detected.String()}, nil
}

// ObjectKey builds a collision free key such as
// "debt_voucher/42/2024/05/0b6f...png".
func ObjectKey(kind Kind, ownerID int64, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%s/%s%s", kind, ownerID, now.UTC().Format("2006/01"), uuid.NewString(), ext)
}

// cleanKey reports whether key is a relative slash separated path with no
// parent or empty segments.
func cleanKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, "/") && path.Clean(key) == key &&
		key != ".." && !strings.HasPrefix(key, "../")
}

// OwnedBy reports whether ref is an object key of the given kind uploaded by
// ownerID.
func OwnedBy(ref string, kind Kind, ownerID int64) bool {
	return cleanKey(ref) && strings.HasPrefix(ref, fmt.Sprintf("%s/%d/", kind, ownerID))
}
