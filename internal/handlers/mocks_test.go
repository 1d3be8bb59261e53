package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/services"
	"github.com/nimasrn/debt-ledger/internal/storage"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

type MockDebtorService struct {
	mock.Mock
}

func (m *MockDebtorService) Create(ctx context.Context, actor model.Identity, in model.DebtorInput) (*model.Debtor, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Debtor), args.Error(1)
}

func (m *MockDebtorService) Get(ctx context.Context, actor model.Identity, debtorID string) (*model.DebtorDetail, error) {
	args := m.Called(ctx, actor, debtorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DebtorDetail), args.Error(1)
}

func (m *MockDebtorService) List(ctx context.Context, actor model.Identity, filter model.DebtorFilter) ([]*model.Debtor, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Debtor), args.Error(1)
}

func (m *MockDebtorService) RecycleBin(ctx context.Context, actor model.Identity) ([]*model.Debtor, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Debtor), args.Error(1)
}

func (m *MockDebtorService) Edit(ctx context.Context, actor model.Identity, debtorID string, in model.DebtorInput) (*model.Debtor, error) {
	args := m.Called(ctx, actor, debtorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Debtor), args.Error(1)
}

func (m *MockDebtorService) SoftDelete(ctx context.Context, actor model.Identity, debtorID string) error {
	return m.Called(ctx, actor, debtorID).Error(0)
}

func (m *MockDebtorService) Restore(ctx context.Context, actor model.Identity, debtorID string) error {
	return m.Called(ctx, actor, debtorID).Error(0)
}

func (m *MockDebtorService) HardDelete(ctx context.Context, actor model.Identity, debtorID string, confirmed bool) error {
	return m.Called(ctx, actor, debtorID, confirmed).Error(0)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Post(ctx context.Context, actor model.Identity, req model.PostingRequest) (*model.Transaction, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockLedgerService) Transaction(ctx context.Context, actor model.Identity, tranID string) (*model.Transaction, error) {
	args := m.Called(ctx, actor, tranID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockLedgerService) History(ctx context.Context, actor model.Identity, debtorID string) ([]*model.Transaction, error) {
	args := m.Called(ctx, actor, debtorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in model.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in model.LoginInput) (*services.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, actor model.Identity, in model.ChangePasswordInput) error {
	return m.Called(ctx, actor, in).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, actor model.Identity) (*model.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, actor model.Identity, kind storage.Kind, filename string, data []byte) (string, error) {
	args := m.Called(ctx, actor, kind, filename, data)
	return args.String(0), args.Error(1)
}

func (m *MockUploader) Open(ctx context.Context, ref string) (*storage.Object, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Object), args.Error(1)
}

func (m *MockUploader) SetProfilePic(ctx context.Context, actor model.Identity, filename string, data []byte) (string, error) {
	args := m.Called(ctx, actor, filename, data)
	return args.String(0), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Summary(ctx context.Context, actor model.Identity) (*model.Summary, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Summary), args.Error(1)
}

func (m *MockReportService) Debtors(ctx context.Context, actor model.Identity) ([]*model.Debtor, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Debtor), args.Error(1)
}

func (m *MockReportService) Statement(ctx context.Context, actor model.Identity, debtorID string) (*model.DebtorDetail, error) {
	args := m.Called(ctx, actor, debtorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DebtorDetail), args.Error(1)
}

func (m *MockReportService) Transactions(ctx context.Context, actor model.Identity) ([]*model.Transaction, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockReportService) Users(ctx context.Context, actor model.Identity) ([]*model.UserOverview, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserOverview), args.Error(1)
}

type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var (
	alice = model.Identity{UserID: 1, Username: "alice", Role: model.RoleUser}
	root  = model.Identity{UserID: 99, Username: "root", Role: model.RoleAdmin}
)

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

// asUser prepares a request that already passed authentication.
func asUser(ctx *xhttp.RequestCtx, id model.Identity) *xhttp.RequestCtx {
	ctx.SetUserValue(identityKey, id)
	return ctx
}

func multipartContext(path string, fields map[string]string, filename string, data []byte) *xhttp.RequestCtx {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if filename != "" {
		part, _ := w.CreateFormFile("file", filename)
		_, _ = part.Write(data)
	}
	_ = w.Close()

	ctx := setupTestContext("POST", path, buf.Bytes())
	ctx.Request.Header.SetContentType(w.FormDataContentType())
	return ctx
}
