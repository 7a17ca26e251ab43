package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

const jpegMIME = "image/jpeg"

// File is the raw-file input the storage layer consumes: a named byte stream
// with a declared content type. Multipart uploads adapt to it via
// MultipartFile; tests can supply their own implementation.
type File interface {
	Filename() string
	ContentType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type multipartFile struct {
	fh *multipart.FileHeader
}

// MultipartFile wraps a *multipart.FileHeader as a File.
func MultipartFile(fh *multipart.FileHeader) File {
	return &multipartFile{fh: fh}
}

func (f *multipartFile) Filename() string    { return filepath.Base(f.fh.Filename) }
func (f *multipartFile) ContentType() string { return f.fh.Header.Get("Content-Type") }
func (f *multipartFile) Size() int64         { return f.fh.Size }
func (f *multipartFile) Open() (io.ReadCloser, error) {
	return f.fh.Open()
}

// StorageService owns the on-disk content layout under a single root:
// covers/, comics/<folderID>/ and avatar/. It returns root-relative paths
// that a static file server resolves later; it never serves bytes itself.
type StorageService interface {
	StoreCover(file File) (string, error)
	StorePage(file File, folderID string) (string, error)
	StoreAvatar(file File, username string) (string, error)
	DeleteFolder(folderID string) error
}

type storageService struct {
	uploadDir string
}

func NewStorageService(uploadDir string) StorageService {
	return &storageService{uploadDir: uploadDir}
}

func (s *storageService) StoreCover(file File) (string, error) {
	if err := requireJPEG(file); err != nil {
		return "", err
	}
	return s.storeFile(file, "covers")
}

func (s *storageService) StorePage(file File, folderID string) (string, error) {
	if err := requireJPEG(file); err != nil {
		return "", err
	}
	return s.storeFile(file, filepath.Join("comics", folderID))
}

// StoreAvatar names the file <username>_avatar_<unix-millis><ext> so a new
// upload never overwrites the previous one (two uploads inside the same
// millisecond remain the only residual race).
func (s *storageService) StoreAvatar(file File, username string) (string, error) {
	if err := requireJPEG(file); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_avatar_%d%s", username, time.Now().UnixMilli(), filepath.Ext(file.Filename()))
	return s.storeFileAs(file, "avatar", name)
}

// DeleteFolder removes comics/<folderID> and everything under it.
// os.RemoveAll deletes children before parents and treats a missing
// folder as a no-op, which is exactly the contract here.
func (s *storageService) DeleteFolder(folderID string) error {
	target := filepath.Join(s.uploadDir, "comics", folderID)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("%w: remove folder %s: %v", ErrStorageFailure, folderID, err)
	}
	return nil
}

func requireJPEG(file File) error {
	if file.ContentType() != jpegMIME {
		return fmt.Errorf("%w: file %q must be JPEG, got %q", ErrValidation, file.Filename(), file.ContentType())
	}
	return nil
}

// storeFile writes the upload under subDir keeping its original filename.
// Identical filenames overwrite each other (last write wins) — behavior
// inherited from the original system, kept rather than silently changed.
func (s *storageService) storeFile(file File, subDir string) (string, error) {
	return s.storeFileAs(file, subDir, file.Filename())
}

func (s *storageService) storeFileAs(file File, subDir, name string) (string, error) {
	dir := filepath.Join(s.uploadDir, subDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create dir %s: %v", ErrStorageFailure, subDir, err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open upload %s: %v", ErrStorageFailure, name, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: create file %s: %v", ErrStorageFailure, name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("%w: write file %s: %v", ErrStorageFailure, name, err)
	}

	// returned paths always use forward slashes, they are URL material
	return filepath.ToSlash(filepath.Join(subDir, name)), nil
}
