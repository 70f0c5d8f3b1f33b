package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

// DirStore хранит картинки в локальном каталоге (по умолчанию public/images).
type DirStore struct {
	root string
}

// NewDirStore создаёт каталог, если его нет, и возвращает хранилище поверх него.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, errors.New("images dir is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Root - каталог хранилища.
func (s *DirStore) Root() string { return s.root }

func (s *DirStore) path(name string) (string, error) {
	if !ValidName(name) {
		return "", serr.ErrBadFilename
	}
	return filepath.Join(s.root, name), nil
}

// Save пишет файл во временный и переименовывает его: читатель никогда
// не увидит недописанную картинку.
func (s *DirStore) Save(ctx context.Context, name string, body io.Reader, _ int64, _ string) error {
	dst, err := s.path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // после успешного rename ничего не удалит

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod image: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}

// Open открывает файл; *os.File реализует io.ReadSeeker.
func (s *DirStore) Open(_ context.Context, name string) (*Object, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serr.ErrNotFound
		}
		return nil, fmt.Errorf("open image: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if st.IsDir() {
		f.Close()
		return nil, serr.ErrNotFound
	}

	return &Object{
		Body:        f,
		ContentType: ContentTypeByName(name),
		Size:        st.Size(),
		ModTime:     st.ModTime(),
	}, nil
}

func (s *DirStore) Remove(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

var _ Store = (*DirStore)(nil)
