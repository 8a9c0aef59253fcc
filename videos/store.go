// Package videos owns the upload directory: it validates and stores uploaded demo
// videos under generated names, serves them back and removes them.
package videos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
)

// DefaultField is the multipart field name uploads arrive under.
const DefaultField = "video"

// Upload is a single incoming video.
type Upload struct {
	Content      io.Reader
	ContentType  string
	Size         int64 // -1 when the client did not declare one
	OriginalName string
	Field        string
}

// Info describes a stored video on disk.
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Saved describes a stored upload. OriginalName is for display only.
type Saved struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
}

// Video is an open stored file. Callers must close Content.
type Video struct {
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
	Content     io.ReadSeekCloser
}

// Mirror replicates stored videos somewhere off-box.
type Mirror interface {
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, name string) error
}

// mirrorTimeout bounds a single background mirror call
const mirrorTimeout = 10 * time.Minute

type Store struct {
	dir      string
	maxBytes int64
	mirror   Mirror
	logger   zerolog.Logger
	now      func() time.Time

	// in-flight mirror calls
	pending sync.WaitGroup
}

type Option func(*Store)

func WithMirror(m Mirror) Option {
	return func(s *Store) {
		s.mirror = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates dir if needed and returns a store writing into it.
func NewStore(dir string, maxBytes int64, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.NewStorageWriteError("create upload directory", err)
	}

	s := &Store{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   log.With().Str("component", "videoStore").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Accept validates up and writes it to the upload directory. The file only appears
// under its generated name once it is complete on disk.
func (s *Store) Accept(ctx context.Context, up Upload) (*Saved, error) {
	if !IsVideoType(up.ContentType) {
		return nil, errs.NewUnsupportedMediaTypeError(up.ContentType)
	}
	if up.Size > s.maxBytes {
		return nil, errs.NewFileTooLargeError(s.maxBytes)
	}
	if up.Content == nil {
		return nil, errs.NewMissingFileError(fieldName(up.Field))
	}

	name, err := s.reserveName(up)
	if err != nil {
		return nil, err
	}

	pending, err := renameio.NewPendingFile(filepath.Join(s.dir, name), renameio.WithPermissions(0o644))
	if err != nil {
		return nil, errs.NewStorageWriteError("create video file", err)
	}
	defer func() { _ = pending.Cleanup() }()

	src := &trackingReader{r: io.LimitReader(up.Content, s.maxBytes+1)}
	written, err := io.Copy(pending, src)
	if src.err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(src.err, &maxErr) {
			return nil, errs.NewFileTooLargeError(s.maxBytes)
		}
		return nil, errs.NewMalformedPayloadError("video", src.err)
	}
	if err != nil {
		return nil, errs.NewStorageWriteError("write video file", err)
	}
	if written > s.maxBytes {
		return nil, errs.NewFileTooLargeError(s.maxBytes)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return nil, errs.NewStorageWriteError("store video file", err)
	}

	s.logger.Info().
		Str("filename", name).
		Str("originalName", up.OriginalName).
		Int64("size", written).
		Msg("video stored")

	s.mirrorPut(ctx, name, up.ContentType, written)

	return &Saved{
		Filename:     name,
		OriginalName: up.OriginalName,
		Size:         written,
		ContentType:  up.ContentType,
	}, nil
}

// Remove deletes filename. A file that is already gone is not an error.
func (s *Store) Remove(ctx context.Context, filename string) error {
	if err := ValidateName(filename); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.NewStorageWriteError("remove video file", err)
	}
	if err == nil {
		s.logger.Info().Str("filename", filename).Msg("video removed")
	}

	s.mirrorDelete(ctx, filename)
	return nil
}

// Fetch opens filename for reading.
func (s *Store) Fetch(_ context.Context, filename string) (*Video, error) {
	if err := ValidateName(filename); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.NewNotFound("video")
	}
	if err != nil {
		return nil, errs.NewStorageReadError("open video file", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.NewStorageReadError("stat video file", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, errs.NewNotFound("video")
	}

	contentType, err := detectContentType(f, filename)
	if err != nil {
		f.Close()
		return nil, errs.NewStorageReadError("read video file", err)
	}

	return &Video{
		Name:        filename,
		ContentType: contentType,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Content:     f,
	}, nil
}

// Exists reports whether filename is a stored video.
func (s *Store) Exists(_ context.Context, filename string) (bool, error) {
	if err := ValidateName(filename); err != nil {
		return false, err
	}

	info, err := os.Stat(filepath.Join(s.dir, filename))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, errs.NewStorageReadError("stat video file", err)
	}
	return info.Mode().IsRegular(), nil
}

// List returns all stored videos in lexical order. In-progress uploads are skipped.
func (s *Store) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errs.NewStorageReadError("list upload directory", err)
	}

	videos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errs.NewStorageReadError("stat video file", err)
		}
		videos = append(videos, Info{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return videos, nil
}

// Wait blocks until background mirror calls have finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

// mirrorPut copies a stored video to the mirror in the background. The request
// context only contributes its values; the copy outlives the request.
func (s *Store) mirrorPut(ctx context.Context, name, contentType string, size int64) {
	if s.mirror == nil {
		return
	}

	s.background(ctx, func(ctx context.Context) {
		f, err := os.Open(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn().Err(err).Str("filename", name).Msg("failed to reopen video for mirroring")
			return
		}
		defer f.Close()

		if err := s.mirror.Put(ctx, name, contentType, f, size); err != nil {
			s.logger.Warn().Err(err).Str("filename", name).Msg("failed to mirror video")
		}
	})
}

func (s *Store) mirrorDelete(ctx context.Context, name string) {
	if s.mirror == nil {
		return
	}

	s.background(ctx, func(ctx context.Context) {
		if err := s.mirror.Delete(ctx, name); err != nil {
			s.logger.Warn().Err(err).Str("filename", name).Msg("failed to delete mirrored video")
		}
	})
}

func (s *Store) background(ctx context.Context, fn func(ctx context.Context)) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// detectContentType prefers the extension and falls back to sniffing the header
// bytes. f is rewound before returning.
func detectContentType(f io.ReadSeeker, filename string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct, nil
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

// reserveName picks a generated name not yet present in the directory.
func (s *Store) reserveName(up Upload) (string, error) {
	for range 5 {
		name := newFilename(fieldName(up.Field), s.now(), up.OriginalName, up.ContentType)
		_, err := os.Lstat(filepath.Join(s.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", errs.NewStorageWriteError("check video filename", err)
		}
	}
	return "", errs.NewStorageWriteError("generate video filename", fmt.Errorf("no free name after 5 attempts"))
}

// newFilename builds <field>-<unixMillis>-<random><ext>.
func newFilename(field string, now time.Time, originalName, contentType string) string {
	return fmt.Sprintf("%s-%d-%d%s", field, now.UnixMilli(), uuid.New().ID()%1_000_000_000, extensionFor(originalName, contentType))
}

func extensionFor(originalName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(strings.ReplaceAll(originalName, `\`, "/")))
	if validExtension(ext) {
		return ext
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if mt := mimetype.Lookup(mediaType); mt != nil && mt.Extension() != "" {
			return mt.Extension()
		}
	}
	return ".bin"
}

func validExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 11 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func fieldName(field string) string {
	field = strings.TrimSpace(field)
	if field == "" {
		return DefaultField
	}
	for _, r := range field {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '_' {
			return DefaultField
		}
	}
	return field
}

// IsVideoType reports whether contentType names a video/* media type.
func IsVideoType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "video/") && len(mediaType) > len("video/")
}

// ValidateName rejects anything that could resolve outside the upload directory.
func ValidateName(filename string) error {
	if filename == "" ||
		strings.ContainsAny(filename, "/\\\x00") ||
		strings.Contains(filename, "..") ||
		strings.HasPrefix(filename, ".") {
		return errs.NewInvalidFilenameError(filename)
	}
	return nil
}

// trackingReader remembers the first non-EOF error of the underlying reader so a
// client-side failure can be told apart from a disk failure in io.Copy.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}
