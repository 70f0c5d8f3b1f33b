package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/api"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/config"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/images"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/middleware"
	smodels "github.com/IvanChernomyrdin/go-artfolio/internal/server/models"
	nethttp "github.com/IvanChernomyrdin/go-artfolio/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

const signingKey = "supersecretkeysupersecretkey123456"

// ---- in-memory репозитории ----

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byMail map[string]smodels.User
}

func (m *memUsers) Create(_ context.Context, email, hash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(email)
	if _, ok := m.byMail[key]; ok {
		return 0, serr.ErrAlreadyExists
	}
	m.nextID++
	m.byMail[key] = smodels.User{ID: m.nextID, Email: key, PasswordHash: hash, CreatedAt: time.Now()}
	return m.nextID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (smodels.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byMail[strings.ToLower(email)]
	if !ok {
		return smodels.User{}, serr.ErrNotFound
	}
	return u, nil
}

var seedCategories = []models.Category{
	{ID: 1, Name: "Painting"},
	{ID: 2, Name: "Drawing"},
	{ID: 3, Name: "Photography"},
}

type memCategories struct{}

func (memCategories) List(context.Context) ([]models.Category, error) {
	out := append([]models.Category(nil), seedCategories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memArtworks struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Artwork
}

func categoryExists(id int64) bool {
	for _, c := range seedCategories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (m *memArtworks) List(_ context.Context, ownerID int64, categoryID *int64) ([]models.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Artwork
	for _, a := range m.rows {
		if a.OwnerUserID != ownerID {
			continue
		}
		if categoryID != nil && (a.CategoryID == nil || *a.CategoryID != *categoryID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memArtworks) Get(_ context.Context, ownerID, id int64) (models.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.OwnerUserID != ownerID {
		return models.Artwork{}, serr.ErrNotFound
	}
	return a, nil
}

func (m *memArtworks) Create(_ context.Context, ownerID int64, in service.NewArtwork) (models.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.CategoryID != nil && !categoryExists(*in.CategoryID) {
		return models.Artwork{}, serr.NewValidationError("category_id", "Category does not exist")
	}
	m.nextID++
	now := time.Now().UTC()
	a := models.Artwork{
		ID:          m.nextID,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		CategoryID:  in.CategoryID,
		OwnerUserID: ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.rows[a.ID] = a
	return a, nil
}

func (m *memArtworks) Update(_ context.Context, ownerID, id int64, p service.ArtworkPatch) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.OwnerUserID != ownerID {
		return nil, serr.ErrNotFound
	}
	prev := a.Image
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.DescriptionSet {
		a.Description = p.Description
	}
	if p.Image != nil {
		a.Image = p.Image
	}
	if p.CategoryID != nil {
		a.CategoryID = p.CategoryID
	}
	a.UpdatedAt = time.Now().UTC()
	m.rows[id] = a
	return prev, nil
}

func (m *memArtworks) Delete(_ context.Context, ownerID, id int64) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.OwnerUserID != ownerID {
		return nil, serr.ErrNotFound
	}
	delete(m.rows, id)
	return a.Image, nil
}

type memHealth struct{ err error }

func (h memHealth) Ping(context.Context) error { return h.err }

// ---- тестовый сервер ----

type testServer struct {
	t         *testing.T
	handler   http.Handler
	imagesDir string
	artworks  *memArtworks
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithHealth(t, nil)
}

func newTestServerWithHealth(t *testing.T, healthErr error) *testServer {
	t.Helper()

	cfg := &config.Config{
		Password: config.PasswordConfig{Hasher: "bcrypt", Bcrypt: config.BcryptConfig{Cost: 4}},
	}

	tokens, err := crypto.NewTokenService(crypto.JWTConfig{SigningKey: signingKey, AccessTTL: time.Hour})
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := images.NewDirStore(dir)
	require.NoError(t, err)
	intake := images.NewIntake(store, images.Options{})

	arts := &memArtworks{rows: map[int64]models.Artwork{}}
	repos := service.Repositories{
		Users:      &memUsers{byMail: map[string]smodels.User{}},
		Artworks:   arts,
		Categories: memCategories{},
		Health:     memHealth{err: healthErr},
	}
	svcs := service.NewServices(repos, cfg, tokens, intake)

	h := api.NewHandler(svcs, logger.Nop(), middleware.NewJWTVerifier(tokens))
	h.Images = intake

	return &testServer{
		t:         t,
		handler:   nethttp.NewRouter(h, nethttp.Options{}),
		imagesDir: dir,
		artworks:  arts,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

// formFile - файл в multipart-форме.
type formFile struct {
	field, filename, contentType string
	data                         []byte
}

func (s *testServer) multipart(method, path, token string, fields map[string]string, files ...formFile) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		hdr.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(s.t, err)
		_, err = part.Write(f.data)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

// registerAndSignIn возвращает токен нового пользователя.
func (s *testServer) registerAndSignIn(email string) string {
	s.t.Helper()
	creds := models.CredentialsRequest{Email: email, Password: "password123"}

	rec := s.json(http.MethodPost, "/users", "", creds)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.json(http.MethodPost, "/users/sign-in", "", creds)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var out models.SignInResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func jpegBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00})
	return b
}
