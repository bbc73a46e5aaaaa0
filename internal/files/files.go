package files

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/commdesk/cts/internal/adapter"
)

// StoredFile describes a persisted attachment
type StoredFile struct {
	OriginalName string
	StoredName   string
	Size         int64
	MimeType     string
}

// Config holds attachment storage configuration
type Config struct {
	// Dir is the directory attachments are written to
	Dir string
	// MaxFileSize caps the size of a single attachment in bytes (0 = no cap)
	MaxFileSize int64
	// AllowedTypes restricts detected MIME types; empty allows everything.
	// Entries may be exact ("application/pdf") or prefixes ("image/").
	AllowedTypes []string
}

// Service persists attachment bytes and hands back stable stored names.
// The store only ever records the names returned from here.
//
//go:generate mockgen -source=files.go -destination=../mocks/files_service.go -package=mocks -mock_names=Service=MockFileService
type Service interface {
	// Save writes one attachment and returns its stored name and detected type
	Save(originalName string, data []byte) (*StoredFile, error)

	// Open opens a previously stored attachment for reading
	Open(storedName string) (adapter.File, error)

	// Exists reports whether a stored attachment is present on disk
	Exists(storedName string) bool
}

type service struct {
	cfg Config
	fs  adapter.FileSystem
}

// storedNamePattern matches the names Save generates: a UUID plus an
// optional sanitized extension. Anything else is rejected on read so a
// crafted stored name cannot escape the uploads directory.
var storedNamePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[0-9A-Za-z]{1,12})?$`)

// NewService creates a new attachment storage service rooted at cfg.Dir
func NewService(cfg Config, fs adapter.FileSystem) (Service, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("uploads directory is required")
	}
	if err := fs.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &service{cfg: cfg, fs: fs}, nil
}

// Save writes one attachment and returns its stored name and detected type
func (s *service) Save(originalName string, data []byte) (*StoredFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("attachment %q is empty", originalName)
	}
	if s.cfg.MaxFileSize > 0 && int64(len(data)) > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("attachment %q exceeds maximum size of %d bytes", originalName, s.cfg.MaxFileSize)
	}

	mtype := mimetype.Detect(data)
	if !s.typeAllowed(mtype.String()) {
		return nil, fmt.Errorf("attachment %q has disallowed type %s", originalName, mtype.String())
	}

	storedName := uuid.NewString() + sanitizeExt(originalName)
	path := filepath.Join(s.cfg.Dir, storedName)

	if err := s.fs.WriteFile(path, data, 0o640); err != nil {
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}

	return &StoredFile{
		OriginalName: originalName,
		StoredName:   storedName,
		Size:         int64(len(data)),
		MimeType:     mtype.String(),
	}, nil
}

// Open opens a previously stored attachment for reading
func (s *service) Open(storedName string) (adapter.File, error) {
	if !storedNamePattern.MatchString(storedName) {
		return nil, fmt.Errorf("invalid stored name: %q", storedName)
	}
	return s.fs.Open(filepath.Join(s.cfg.Dir, storedName))
}

// Exists reports whether a stored attachment is present on disk
func (s *service) Exists(storedName string) bool {
	if !storedNamePattern.MatchString(storedName) {
		return false
	}
	_, err := s.fs.Stat(filepath.Join(s.cfg.Dir, storedName))
	return err == nil
}

func (s *service) typeAllowed(detected string) bool {
	if len(s.cfg.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedTypes {
		if detected == allowed || (strings.HasSuffix(allowed, "/") && strings.HasPrefix(detected, allowed)) {
			return true
		}
	}
	return false
}

// sanitizeExt keeps the original extension when it is a plain alphanumeric
// suffix, otherwise drops it
func sanitizeExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" {
		return ""
	}
	if !regexp.MustCompile(`^\.[0-9a-z]{1,12}$`).MatchString(ext) {
		return ""
	}
	return ext
}
