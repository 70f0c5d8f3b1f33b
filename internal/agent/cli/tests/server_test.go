package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/cli"
	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/config"
	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/memory"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

const testToken = "token-1"

// fakeServer - минимальный сервер artfolio для тестов CLI.
type fakeServer struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	artworks map[int64]models.Artwork
	nextID   int64

	// lastUpdate - тело последнего JSON PUT
	lastUpdate map[string]any
	// lastContentType - Content-Type последнего запроса на /artworks
	lastContentType string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{t: t, artworks: map[int64]models.Artwork{}, nextID: 1}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", fs.register)
	mux.HandleFunc("POST /users/sign-in", fs.signIn)
	mux.HandleFunc("GET /artworks", fs.auth(fs.list))
	mux.HandleFunc("POST /artworks", fs.auth(fs.create))
	mux.HandleFunc("GET /artworks/{id}", fs.auth(fs.get))
	mux.HandleFunc("PUT /artworks/{id}", fs.auth(fs.update))
	mux.HandleFunc("DELETE /artworks/{id}", fs.auth(fs.remove))
	mux.HandleFunc("GET /categories", fs.auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Category{{ID: 2, Name: "Drawing"}, {ID: 1, Name: "Painting"}})
	}))

	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) URL() string { return fs.srv.URL }

// seed кладёт работу в сервер.
func (fs *fakeServer) seed(title string, categoryID *int64) models.Artwork {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	a := models.Artwork{
		ID:          fs.nextID,
		Title:       title,
		CategoryID:  categoryID,
		OwnerUserID: 1,
		CreatedAt:   time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC),
	}
	fs.artworks[a.ID] = a
	fs.nextID++
	return a
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (fs *fakeServer) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid token"})
			return
		}
		next(w, r)
	}
}

func (fs *fakeServer) register(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fs.t.Errorf("decode register: %v", err)
	}
	if req.Email == "taken@example.com" {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Message: "Email already in use"})
		return
	}
	writeJSON(w, http.StatusCreated, models.MessageResponse{Message: "User created"})
}

func (fs *fakeServer) signIn(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fs.t.Errorf("decode sign-in: %v", err)
	}
	if req.Email != "test@example.com" || req.Password != "StrongPass123" {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, models.SignInResponse{Token: testToken})
}

func (fs *fakeServer) list(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	out := []models.Artwork{}
	raw := r.URL.Query().Get("category_id")
	for id := fs.nextID - 1; id > 0; id-- {
		a, ok := fs.artworks[id]
		if !ok {
			continue
		}
		if raw != "" && (a.CategoryID == nil || strconv.FormatInt(*a.CategoryID, 10) != raw) {
			continue
		}
		out = append(out, a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (fs *fakeServer) lookup(w http.ResponseWriter, r *http.Request) (models.Artwork, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed", Errors: map[string]string{"id": "Invalid id"}})
		return models.Artwork{}, false
	}
	a, ok := fs.artworks[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Message: "Not found"})
		return models.Artwork{}, false
	}
	return a, true
}

func (fs *fakeServer) get(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if a, ok := fs.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, a)
	}
}

func (fs *fakeServer) create(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.lastContentType = r.Header.Get("Content-Type")
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusUnsupportedMediaType, models.ErrorResponse{Message: "Unsupported media type"})
		return
	}

	a := models.Artwork{ID: fs.nextID, Title: r.FormValue("title"), OwnerUserID: 1}
	if d := r.MultipartForm.Value["description"]; len(d) > 0 {
		a.Description = &d[0]
	}
	if c := r.FormValue("category_id"); c != "" {
		id, _ := strconv.ParseInt(c, 10, 64)
		a.CategoryID = &id
	}
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		if ct := files[0].Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed", Errors: map[string]string{"image": "Only image files are allowed"}})
			return
		}
		name := strconv.FormatInt(a.ID, 10) + "-" + files[0].Filename
		a.Image = &name
	}

	fs.artworks[a.ID] = a
	fs.nextID++
	writeJSON(w, http.StatusCreated, a)
}

func (fs *fakeServer) update(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	a, ok := fs.lookup(w, r)
	if !ok {
		return
	}
	fs.lastContentType = r.Header.Get("Content-Type")

	if strings.HasPrefix(fs.lastContentType, "application/json") {
		body := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			fs.t.Errorf("decode update: %v", err)
		}
		fs.lastUpdate = body
		if v, ok := body["title"].(string); ok {
			a.Title = v
		}
		if v, ok := body["description"].(string); ok {
			if v == "" {
				a.Description = nil
			} else {
				a.Description = &v
			}
		}
	} else {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			fs.t.Errorf("parse multipart: %v", err)
		}
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			name := strconv.FormatInt(a.ID, 10) + "-" + files[0].Filename
			a.Image = &name
		}
	}

	fs.artworks[a.ID] = a
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Artwork updated", ID: a.ID})
}

func (fs *fakeServer) remove(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	a, ok := fs.lookup(w, r)
	if !ok {
		return
	}
	delete(fs.artworks, a.ID)
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Artwork deleted", ID: a.ID})
}

// newApp создаёт App с путями во временном каталоге.
func newApp(t *testing.T, serverURL, token string) *cli.App {
	t.Helper()
	dir := t.TempDir()
	return &cli.App{
		ServerURL:    serverURL,
		CredsPath:    filepath.Join(dir, "credentials.json"),
		Creds:        &config.Credentials{Token: token},
		ArtworksPath: filepath.Join(dir, "artworks.json"),
		Artworks:     memory.NewArtworks(),
	}
}
