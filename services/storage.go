package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	storage "github.com/supabase-community/storage-go"

	"memoai/config"
)

const (
	videoFolder    = "videos"
	storageTimeout = 60 * time.Second
)

// Format invariants for persisted storage references. Results from the
// provider are checked against these at the boundary, never trusted blindly.
var (
	storageIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	storageURLPattern = regexp.MustCompile(`^https?://`)
)

// UploadResult is what the media store hands back for a stored object.
type UploadResult struct {
	StorageID string   `json:"storage_id"`
	URL       string   `json:"url"`
	SecureURL string   `json:"secure_url"`
	Format    string   `json:"format"`
	Duration  *float64 `json:"duration,omitempty"`
}

// Validate checks the result against the format invariants before it is
// allowed anywhere near persistence.
func (r *UploadResult) Validate() error {
	if !storageIDPattern.MatchString(r.StorageID) {
		return fmt.Errorf("%w: storage id %q violates [A-Za-z0-9_-]+", ErrProvider, r.StorageID)
	}
	if !storageURLPattern.MatchString(r.SecureURL) {
		return fmt.Errorf("%w: storage url %q is not http(s)", ErrProvider, r.SecureURL)
	}
	if r.Duration != nil && *r.Duration <= 0 {
		return fmt.Errorf("%w: duration %v is not positive", ErrProvider, *r.Duration)
	}
	return nil
}

// StorageService stores uploaded video files in Supabase Storage.
type StorageService struct {
	baseURL    string
	apiKey     string
	bucket     string
	client     *storage.Client
	httpClient *http.Client
}

func NewStorageService(cfg config.Config) *StorageService {
	base := strings.TrimRight(cfg.SupabaseURL, "/")
	return &StorageService{
		baseURL:    base,
		apiKey:     cfg.SupabaseKey,
		bucket:     cfg.SupabaseBucket,
		client:     storage.NewClient(base+"/storage/v1", cfg.SupabaseKey, nil),
		httpClient: &http.Client{Timeout: storageTimeout},
	}
}

// Upload pushes video bytes to the bucket under videos/<slug>-<uuid>.<ext>.
// Bytes that do not sniff as a video never leave the process.
func (s *StorageService) Upload(data []byte, title, contentType string) (*UploadResult, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "video/") {
		return nil, fmt.Errorf("%w: content sniffed as %s, not a video", ErrInvalidMedia, mt.String())
	}

	id := uuid.New().String()
	if name := slug.Make(title); name != "" {
		id = name + "-" + id
	}
	ext := mt.Extension()
	objectPath := fmt.Sprintf("%s/%s%s", videoFolder, id, ext)

	ct := contentType
	if ct == "" {
		ct = mt.String()
	}
	options := storage.FileOptions{
		ContentType: &ct,
	}

	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), options); err != nil {
		return nil, fmt.Errorf("%w: upload to storage: %v", ErrProvider, err)
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
	result := &UploadResult{
		StorageID: id,
		URL:       publicURL,
		SecureURL: publicURL,
		Format:    strings.TrimPrefix(ext, "."),
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the object behind a public URL from Supabase Storage. The
// object path is parsed out of the URL; the storage id alone does not carry
// the file extension.
func (s *StorageService) Delete(publicURL string) error {
	if publicURL == "" {
		return nil
	}

	const marker = "/storage/v1/object/"
	idx := strings.Index(publicURL, marker)
	if idx == -1 {
		return fmt.Errorf("%w: no object path in URL %q", ErrProvider, publicURL)
	}

	rest := strings.TrimPrefix(publicURL[idx+len(marker):], "public/")

	// rest => "<bucket>/<path/to/object>"
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 {
		return fmt.Errorf("%w: cannot parse bucket/object from URL %q", ErrProvider, publicURL)
	}
	bucket := parts[0]
	object := parts[1]
	if qIdx := strings.Index(object, "?"); qIdx != -1 {
		object = object[:qIdx]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, object)

	req, err := http.NewRequest(http.MethodDelete, deleteURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build delete request: %v", ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: delete from storage: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: delete from storage: status=%d body=%s", ErrProvider, resp.StatusCode, string(body))
	}
	return nil
}
