package handlers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hongminglow/fanclub/internal/http/respond"
	"github.com/hongminglow/fanclub/internal/middleware"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// UploadURLPrefix is where stored images are served from.
const UploadURLPrefix = "/uploads/"

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var errImageTooLarge = errors.New("image is too large")

// UploadHandler stores images posted as multipart form field "image".
type UploadHandler struct {
	dir      string
	maxBytes int64
	authn    *middleware.Authenticator
}

// NewUploadHandler constructs the handler writing into dir.
func NewUploadHandler(dir string, maxBytes int64, authn *middleware.Authenticator) *UploadHandler {
	return &UploadHandler{dir: dir, maxBytes: maxBytes, authn: authn}
}

// Register attaches the upload endpoint and the static file route.
func (h *UploadHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.authn.Require(h.handleUpload))
	mux.Handle("GET "+UploadURLPrefix, http.StripPrefix(UploadURLPrefix, http.FileServer(filesOnly{http.Dir(h.dir)})))
}

func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<10))
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		respond.Error(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		respond.Error(w, http.StatusBadRequest, "failed to read image")
		return
	}
	contentType := strings.SplitN(http.DetectContentType(head[:n]), ";", 2)[0]
	ext, ok := imageExtensions[contentType]
	if !ok {
		respond.Error(w, http.StatusUnsupportedMediaType, "only png, jpeg, gif, and webp images are accepted")
		return
	}

	name := uuid.NewString() + ext
	if err := h.save(name, io.MultiReader(strings.NewReader(string(head[:n])), file)); err != nil {
		if errors.Is(err, errImageTooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		log.Printf("upload: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to store image")
		return
	}
	respond.JSON(w, http.StatusCreated, "image uploaded", dto.UploadResponse{URL: UploadURLPrefix + name})
}

// save writes src to the upload dir. Nothing is kept when src is larger
// than the limit.
func (h *UploadHandler) save(name string, src io.Reader) error {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(h.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, h.maxBytes+1))
	if closeErr := dst.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close file: %w", closeErr)
	} else if err != nil {
		err = fmt.Errorf("write file: %w", err)
	}
	if err == nil && written > h.maxBytes {
		err = errImageTooLarge
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// filesOnly serves stored files and answers 404 for directories.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
