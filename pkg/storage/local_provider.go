package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider stores documents on the local filesystem and hands out
// upload URLs that point back at the API's own PUT endpoint.
type LocalProvider struct {
	baseDir   string
	publicURL string
	ttlSecs   int
}

func NewLocalProvider(baseDir, publicURL string) (*LocalProvider, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalProvider{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
		ttlSecs:   3600,
	}, nil
}

func (p *LocalProvider) IssueUploadURL(_ context.Context, key string) (*UploadTicket, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return &UploadTicket{
		UploadURL: fmt.Sprintf("%s/api/upload/v1/object/%s", p.publicURL, key),
		Key:       key,
		ExpiresIn: p.ttlSecs,
	}, nil
}

func (p *LocalProvider) Write(_ context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	path := filepath.Join(p.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (p *LocalProvider) Read(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(p.baseDir, filepath.FromSlash(key)))
}

func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
