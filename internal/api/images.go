package api

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"passvault/internal/apperr"
	"passvault/internal/storage"
)

// imageTypes are the upload extensions accepted, with the content type each must sniff as.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

const msgImageType = "Only PNG, JPEG, GIF and WebP images are allowed."

// sniffImage checks that file is an image matching the extension of name and rewinds it.
func sniffImage(file io.ReadSeeker, name string) (string, error) {
	want, ok := imageTypes[strings.ToLower(path.Ext(name))]
	if !ok {
		return "", apperr.Validation(msgImageType)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperr.Validation("Invalid file upload.")
	}
	if http.DetectContentType(head[:n]) != want {
		return "", apperr.Validation(msgImageType)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", apperr.Validation("Invalid file upload.")
	}
	return want, nil
}

func orDefault(url, def string) string {
	if url == "" {
		return def
	}
	return url
}

// uploadImage stores the multipart file in field under prefix. uploaded is false when
// the request carries no file there.
func (s *Server) uploadImage(r *http.Request, field, prefix string, userID int64) (url string, uploaded bool, err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", false, nil
		}
		return "", false, apperr.Validation("Invalid file upload.")
	}
	defer file.Close()

	if header.Filename == "" {
		return "", false, nil
	}

	contentType, err := sniffImage(file, header.Filename)
	if err != nil {
		return "", false, err
	}

	key := storage.ObjectKey(prefix, userID, header.Filename)
	url, err = s.storage.Upload(r.Context(), key, file, contentType)
	if err != nil {
		return "", false, apperr.Storage("Failed to upload image.", err)
	}
	return url, true, nil
}

func parseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return apperr.Validation("Invalid multipart form.")
	}
	return nil
}

// FilesHandler serves objects of the local storage driver under /files/.
func (s *Server) FilesHandler(w http.ResponseWriter, r *http.Request) {
	local, ok := s.storage.(*storage.LocalStorage)
	if !ok {
		http.NotFound(w, r)
		return
	}

	key := chi.URLParam(r, "*")
	file, err := local.Get(key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, ok := imageTypes[strings.ToLower(path.Ext(info.Name()))]; !ok {
		w.Header().Set("Content-Disposition", "attachment")
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
