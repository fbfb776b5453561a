package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"multicurrency_wallet/internal/avatar"
	"multicurrency_wallet/internal/domain"
	"multicurrency_wallet/internal/ledger"
	"multicurrency_wallet/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
}

// memStore implements UserStore, EntryStore and ledger.Store in memory
type memStore struct {
	users   map[uint]*domain.User
	entries []domain.WalletEntry
	nextID  uint
}

func newMemStore(users ...domain.User) *memStore {
	s := &memStore{users: map[uint]*domain.User{}, nextID: 100}
	for i := range users {
		u := users[i]
		s.users[u.ID] = &u
	}
	return s
}

func (s *memStore) FindUser(_ context.Context, id uint) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) FindUserByMail(_ context.Context, mail string) (*domain.User, error) {
	for _, u := range s.users {
		if u.MailID == mail {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *memStore) CreateUser(ctx context.Context, user *domain.User) error {
	if _, err := s.FindUserByMail(ctx, user.MailID); err == nil {
		return domain.ErrDuplicateMail
	}
	s.nextID++
	user.ID = s.nextID
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memStore) UpdateUser(_ context.Context, id uint, fields map[string]any) error {
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if mail, ok := fields["mail_id"].(string); ok {
		for _, other := range s.users {
			if other.ID != id && other.MailID == mail {
				return domain.ErrDuplicateMail
			}
		}
	}
	for k, v := range fields {
		s := v.(string)
		switch k {
		case "first_name":
			u.FirstName = s
		case "last_name":
			u.LastName = s
		case "mail_id":
			u.MailID = s
		case "password":
			u.Password = s
		case "default_currency":
			u.DefaultCurrency = s
		case "avatar":
			u.Avatar = s
		}
	}
	return nil
}

func (s *memStore) ListOtherUsers(_ context.Context, id uint) ([]domain.User, error) {
	var out []domain.User
	for _, u := range s.users {
		if u.ID != id {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) CreateWalletEntry(_ context.Context, e *domain.WalletEntry) error {
	s.nextID++
	e.ID = s.nextID
	e.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memStore) ListLedgerEntries(_ context.Context, userID uint) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, e := range s.entries {
		if e.CreatedByUserID != userID && e.DebitedToUserID != userID {
			continue
		}
		sender, recipient := s.users[e.CreatedByUserID], s.users[e.DebitedToUserID]
		out = append(out, domain.LedgerEntry{
			ID:                 e.ID,
			DebitedToUserID:    e.DebitedToUserID,
			CreatedByUserID:    e.CreatedByUserID,
			CurrencyType:       e.CurrencyType,
			Amount:             e.Amount,
			CreatedAt:          e.CreatedAt,
			SenderFirstName:    sender.FirstName,
			SenderLastName:     sender.LastName,
			RecipientFirstName: recipient.FirstName,
			RecipientLastName:  recipient.LastName,
		})
	}
	return out, nil
}

// tableConverter quotes every rate against USD
type tableConverter struct {
	rates map[string]string
	down  bool
}

func (t *tableConverter) Convert(_ context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	if t.down {
		return decimal.Zero, &domain.ConversionError{From: from, To: to, Err: io.ErrUnexpectedEOF}
	}
	fr, okFrom := t.rates[from]
	tr, okTo := t.rates[to]
	if !okFrom || !okTo {
		return decimal.Zero, &domain.ConversionError{From: from, To: to, Err: io.EOF}
	}
	usd := amount.Div(decimal.RequireFromString(fr))
	return usd.Mul(decimal.RequireFromString(tr)).Round(4), nil
}

func (t *tableConverter) Currencies(context.Context) ([]string, error) {
	if t.down {
		return nil, io.ErrUnexpectedEOF
	}
	codes := make([]string, 0, len(t.rates))
	for c := range t.rates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes, nil
}

// fakeAvatars accepts any allowed extension without looking at the bytes
type fakeAvatars struct {
	saved   []string
	removed []string
}

func (f *fakeAvatars) Save(filename string, r io.Reader) (string, error) {
	if !avatar.Allowed(filename) {
		return "", &domain.UploadError{Filename: filename, Reason: "extension"}
	}
	_, _ = io.Copy(io.Discard, r)
	f.saved = append(f.saved, filename)
	return "http://localhost:8080/uploads/stored-" + filename, nil
}

func (f *fakeAvatars) Remove(url string) error {
	f.removed = append(f.removed, url)
	return nil
}

type testApp struct {
	router  *gin.Engine
	store   *memStore
	conv    *tableConverter
	avatars *fakeAvatars
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// newTestApp seeds user A (id 1, USD) and user B (id 2, EUR)
func newTestApp(t *testing.T, opts ...func(*RouterConfig)) *testApp {
	t.Helper()
	store := newMemStore(
		domain.User{ID: 1, FirstName: "A", LastName: "Adams", MailID: "a@example.com", Password: hashed(t, "password-a"), DefaultCurrency: "USD"},
		domain.User{ID: 2, FirstName: "B", LastName: "Brown", MailID: "b@example.com", Password: hashed(t, "password-b"), DefaultCurrency: "EUR"},
	)
	conv := &tableConverter{rates: map[string]string{"USD": "1", "EUR": "0.5", "JPY": "150"}}
	avatars := &fakeAvatars{}
	cfg := RouterConfig{
		Users:      store,
		Entries:    store,
		Ledger:     ledger.NewBuilder(store, conv),
		Currencies: conv,
		Avatars:    avatars,
		JWTSecret:  testSecret,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	r, err := NewRouter(cfg)
	require.NoError(t, err)
	return &testApp{router: r, store: store, conv: conv, avatars: avatars}
}

func sessionCookie(t *testing.T, userID uint) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateJWT(userID, "", testSecret, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: utils.SessionCookie, Value: token}
}

func (a *testApp) do(req *http.Request, asUser uint) *httptest.ResponseRecorder {
	if asUser != 0 {
		token, _ := utils.GenerateJWT(asUser, "", testSecret, time.Hour)
		req.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string, asUser uint) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), asUser)
}

func (a *testApp) postForm(path string, form url.Values, asUser uint) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, asUser)
}

func httptestGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
