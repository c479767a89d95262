// Package form разбирает тело запросов, которые могут прийти как multipart/form-data
// с файлом аватара или как JSON.
package form

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ajg/form"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

const (
	// AvatarField имя поля файла в multipart-форме.
	AvatarField = "avatar"
	// MaxAvatarSize максимальный размер аватара.
	MaxAvatarSize = 5 << 20

	maxFormOverhead = 1 << 20
)

// Decode заполняет dst из multipart-формы или JSON-тела и возвращает аватар, если он передан.
// Ошибки разбора имеют вид models.ErrValidation.
func Decode(w http.ResponseWriter, r *http.Request, dst any) (*models.Avatar, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := render.DecodeJSON(r.Body, dst); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, models.NewError(models.ErrValidation, "empty request")
			}
			return nil, models.NewError(models.ErrValidation, "failed to decode request")
		}
		return nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+maxFormOverhead)
	if err := r.ParseMultipartForm(MaxAvatarSize + maxFormOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, models.NewError(models.ErrValidation, "file too large, maximum size is 5MB")
		}
		return nil, models.NewError(models.ErrValidation, "failed to parse multipart form")
	}

	d := form.NewDecoder(nil)
	d.IgnoreUnknownKeys(true)
	if err := d.DecodeValues(dst, r.MultipartForm.Value); err != nil {
		return nil, models.NewError(models.ErrValidation, "failed to decode form fields")
	}

	return readAvatar(r)
}

func readAvatar(r *http.Request) (*models.Avatar, error) {
	file, header, err := r.FormFile(AvatarField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewError(models.ErrValidation, "failed to read avatar")
	}
	defer file.Close()

	if header.Size > MaxAvatarSize {
		return nil, models.NewError(models.ErrValidation, "file too large, maximum size is 5MB")
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, models.NewError(models.ErrValidation, "only image files are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("form.readAvatar: %w", err)
	}
	if len(data) > MaxAvatarSize {
		return nil, models.NewError(models.ErrValidation, "file too large, maximum size is 5MB")
	}
	return &models.Avatar{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
