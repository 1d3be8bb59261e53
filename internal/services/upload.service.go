package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/storage"
	"github.com/nimasrn/debt-ledger/pkg/logger"
)

type UploadService struct {
	store storage.Store
	users UserRepository
	now   func() time.Time
}

func NewUploadService(store storage.Store, users UserRepository) *UploadService {
	return &UploadService{store: store, users: users, now: time.Now}
}

// Upload validates and stores a file and returns the reference to attach
// to a debtor or transaction.
func (s *UploadService) Upload(ctx context.Context, actor model.Identity, kind storage.Kind, filename string, data []byte) (string, error) {
	if !kind.Valid() {
		return "", model.NewValidationError("kind", "unknown upload kind")
	}
	up, err := storage.Validate(filename, data)
	if err != nil {
		return "", err
	}

	key := storage.ObjectKey(kind, actor.UserID, up.Filename, s.now())
	ref, err := s.store.Save(ctx, key, up.Data, up.ContentType)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	logger.Info("file uploaded", "ref", ref, "kind", string(kind), "size", len(up.Data), "user_id", actor.UserID)
	return ref, nil
}

// SetProfilePic stores a profile picture and points the user at it.
func (s *UploadService) SetProfilePic(ctx context.Context, actor model.Identity, filename string, data []byte) (string, error) {
	ref, err := s.Upload(ctx, actor, storage.KindProfilePic, filename, data)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateProfilePic(ctx, actor.UserID, ref); err != nil {
		return "", mapUserError(err)
	}
	return ref, nil
}

// Verify accepts ref only when it names an existing upload of the given
// kind made by the actor. Failures are reported on the field named after
// the kind.
func (s *UploadService) Verify(ctx context.Context, actor model.Identity, kind storage.Kind, ref string) error {
	if !storage.OwnedBy(ref, kind, actor.UserID) {
		return model.NewValidationError(string(kind), "unknown voucher reference, upload the file first")
	}
	ok, err := s.store.Exists(ctx, ref)
	if err != nil {
		return fmt.Errorf("check upload: %w", err)
	}
	if !ok {
		return model.NewValidationError(string(kind), "unknown voucher reference, upload the file first")
	}
	return nil
}

// Open reads a stored upload back.
func (s *UploadService) Open(ctx context.Context, ref string) (*storage.Object, error) {
	obj, err := s.store.Open(ctx, ref)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrNotFound
	}
	return obj, err
}
