// Package images отвечает за приём, хранение и отдачу картинок работ.
//
// Пакет состоит из двух частей:
//   - Intake - проверка загруженного файла (MIME, размер, сигнатура)
//     и генерация имени, под которым файл сохраняется;
//   - Store - хранилище файлов: локальный каталог (DirStore) или S3 (S3Store).
//
// В строке artworks хранится только сгенерированное имя файла.
// Имя, присланное клиентом, никуда не сохраняется.
package images

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// Store - хранилище файлов картинок.
type Store interface {
	// Save сохраняет файл под именем name. Существующий файл перезаписывается.
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	// Open открывает файл на чтение. Отсутствующий файл - serr.ErrNotFound.
	Open(ctx context.Context, name string) (*Object, error)
	// Remove удаляет файл. Отсутствующий файл ошибкой не считается.
	Remove(ctx context.Context, name string) error
}

// Object - открытый на чтение файл из хранилища.
//
// Body закрывает вызывающий. Если Body реализует io.ReadSeeker,
// api отдаёт файл через http.ServeContent (Range, If-Modified-Since).
// Size равен -1, если длина заранее неизвестна.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,254}$`)

// ValidName сообщает, что name - безопасное имя файла в хранилище:
// без разделителей пути, без "..", только латиница, цифры, точка, дефис и подчёркивание.
func ValidName(name string) bool {
	return nameRe.MatchString(name) && !strings.Contains(name, "..")
}

// типы, которые умеем отдавать, по расширению
var contentTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ContentTypeByName возвращает MIME по расширению имени файла.
func ContentTypeByName(name string) string {
	if ct, ok := contentTypeByExt[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
