package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/repository"
	"github.com/nimasrn/debt-ledger/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

type memoryStore struct {
	saved map[string][]byte
	err   error
}

func (m *memoryStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[key] = data
	return key, nil
}

func (m *memoryStore) Open(_ context.Context, key string) (*storage.Object, error) {
	data, ok := m.saved[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{Data: data, ContentType: "application/pdf"}, nil
}

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.saved[key]
	return ok, nil
}

func TestUploadService_Upload(t *testing.T) {
	store := &memoryStore{}
	service := NewUploadService(store, nil)
	ctx := context.Background()
	actor := model.Identity{UserID: 5}

	ref, err := service.Upload(ctx, actor, storage.KindTransactionVoucher, "receipt.pdf", pdfBytes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "tran_voucher/5/"))
	assert.Len(t, store.saved, 1)

	_, err = service.Upload(ctx, actor, storage.KindTransactionVoucher, "receipt.exe", pdfBytes)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))

	_, err = service.Upload(ctx, actor, storage.Kind("avatar"), "receipt.pdf", pdfBytes)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "kind")

	store.err = errors.New("disk full")
	_, err = service.Upload(ctx, actor, storage.KindDebtVoucher, "receipt.pdf", pdfBytes)
	assert.Error(t, err)
}

func TestUploadService_SetProfilePic(t *testing.T) {
	users := repository.NewUserRepository(repository.NewTestDB(t))
	ctx := context.Background()
	u, err := users.Create(ctx, &model.User{Username: "pic", Email: "pic@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	service := NewUploadService(&memoryStore{}, users)
	ref, err := service.SetProfilePic(ctx, model.Identity{UserID: u.ID}, "me.pdf", pdfBytes)
	require.NoError(t, err)

	reloaded, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, ref, reloaded.ProfilePic)
}

func TestUploadService_VerifyAndOpen(t *testing.T) {
	service := NewUploadService(&memoryStore{}, nil)
	ctx := context.Background()
	owner := model.Identity{UserID: 5}
	other := model.Identity{UserID: 6}

	ref, err := service.Upload(ctx, owner, storage.KindDebtVoucher, "v.pdf", pdfBytes)
	require.NoError(t, err)

	require.NoError(t, service.Verify(ctx, owner, storage.KindDebtVoucher, ref))

	tests := []struct {
		name  string
		actor model.Identity
		kind  storage.Kind
		ref   string
	}{
		{"another user's upload", other, storage.KindDebtVoucher, ref},
		{"wrong kind", owner, storage.KindTransactionVoucher, ref},
		{"never uploaded", owner, storage.KindDebtVoucher, "debt_voucher/5/2024/01/missing.pdf"},
		{"external url", owner, storage.KindDebtVoucher, "https://example.com/v.pdf"},
		{"path escape", owner, storage.KindDebtVoucher, "debt_voucher/5/../6/v.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Verify(ctx, tt.actor, tt.kind, tt.ref)
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, string(tt.kind))
		})
	}

	obj, err := service.Open(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, obj.Data)

	_, err = service.Open(ctx, "debt_voucher/5/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}
