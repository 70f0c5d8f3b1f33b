package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

// DefaultMaxBytes - лимит размера картинки по умолчанию (5 MiB).
const DefaultMaxBytes int64 = 5 << 20

// DefaultAllowedTypes - MIME-типы, которые принимаются по умолчанию.
var DefaultAllowedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}

// Upload - загруженный клиентом файл.
//
// Filename и ContentType приходят от клиента и доверия не заслуживают:
// Имя файла не используется вовсе. Заявленный ContentType должен быть в allow-list,
// но сохраняется тип по содержимому: при расхождении побеждает содержимое.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64 // -1, если неизвестен
	Body        io.Reader
}

// Options - настройки приёма картинок.
type Options struct {
	MaxBytes     int64
	AllowedTypes []string
}

// Intake проверяет загруженные картинки и кладёт их в Store.
type Intake struct {
	store    Store
	maxBytes int64
	allowed  map[string]struct{}

	now   func() time.Time
	newID func() string
}

// NewIntake создаёт Intake. Пустые опции заменяются значениями по умолчанию.
func NewIntake(store Store, opts Options) *Intake {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if len(opts.AllowedTypes) == 0 {
		opts.AllowedTypes = DefaultAllowedTypes
	}

	allowed := make(map[string]struct{}, len(opts.AllowedTypes))
	for _, t := range opts.AllowedTypes {
		allowed[normalizeType(t)] = struct{}{}
	}

	return &Intake{
		store:    store,
		maxBytes: opts.MaxBytes,
		allowed:  allowed,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock подменяет часы и генератор id (для тестов имени файла).
func (in *Intake) WithClock(now func() time.Time, newID func() string) *Intake {
	cp := *in
	if now != nil {
		cp.now = now
	}
	if newID != nil {
		cp.newID = newID
	}
	return &cp
}

// MaxBytes - текущий лимит размера.
func (in *Intake) MaxBytes() int64 { return in.maxBytes }

// Accept проверяет картинку, сохраняет её и возвращает сгенерированное имя файла.
//
// Проверки по порядку:
//   - заявленный MIME в allow-list, иначе serr.ErrImageType
//   - размер не больше лимита, иначе serr.ErrImageTooLarge
//   - тип, определённый по содержимому, тоже в allow-list, иначе serr.ErrImageType
//
// Имя: <unix millis>-<uuid><ext>, где ext соответствует типу по содержимому,
// чтобы отдача по расширению совпадала с байтами.
func (in *Intake) Accept(ctx context.Context, up Upload) (string, error) {
	if up.Body == nil {
		return "", serr.ErrImageType
	}
	if !in.isAllowed(up.ContentType) {
		return "", serr.ErrImageType
	}
	if up.Size > in.maxBytes {
		return "", serr.ErrImageTooLarge
	}

	// читаем на байт больше лимита, чтобы отличить "ровно лимит" от "больше"
	data, err := io.ReadAll(io.LimitReader(up.Body, in.maxBytes+1))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", serr.ErrImageTooLarge
		}
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > in.maxBytes {
		return "", serr.ErrImageTooLarge
	}

	sniffed := mimetype.Detect(data)
	if !in.isAllowed(sniffed.String()) {
		return "", serr.ErrImageType
	}

	name := fmt.Sprintf("%d-%s%s", in.now().UnixMilli(), in.newID(), extFor(sniffed))

	if err := in.store.Save(ctx, name, bytes.NewReader(data), int64(len(data)), normalizeType(sniffed.String())); err != nil {
		return "", fmt.Errorf("%w: save image: %v", serr.ErrInternal, err)
	}
	return name, nil
}

// Discard удаляет ранее сохранённый файл. Пустое имя игнорируется.
func (in *Intake) Discard(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return in.store.Remove(ctx, name)
}

// Open открывает сохранённый файл для отдачи клиенту.
func (in *Intake) Open(ctx context.Context, name string) (*Object, error) {
	if !ValidName(name) {
		return nil, serr.ErrNotFound
	}
	return in.store.Open(ctx, name)
}

func (in *Intake) isAllowed(contentType string) bool {
	_, ok := in.allowed[normalizeType(contentType)]
	return ok
}

// normalizeType отрезает параметры ("; charset=...") и приводит к нижнему регистру.
func normalizeType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}

// extFor - расширение по типу содержимого, ".jpeg" сводится к ".jpg".
func extFor(sniffed *mimetype.MIME) string {
	ext := strings.ToLower(sniffed.Extension())
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}
