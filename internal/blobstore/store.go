// Package blobstore writes and removes uploaded video bytes in object storage.
package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("video-uploader/blobstore")

const defaultContentType = "application/octet-stream"

// Store is an object-storage bucket addressed by key.
type Store interface {
	// Put writes data under key and returns the URL the object is served from.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// CredentialsError reports missing or incomplete storage credentials.
type CredentialsError struct {
	Partial bool
}

func (e *CredentialsError) Error() string {
	if e.Partial {
		return "Incomplete AWS credentials"
	}
	return "AWS credentials not found"
}

// StorageError is any backend failure other than missing credentials.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewKey returns a storage key for filename that is unique across uploads
// sharing the same original name. The filename is used as-is.
func NewKey(filename string) string {
	return uuid.NewString() + "_" + filename
}

// KeyFromURL recovers the storage key from an object URL built by this
// package for bucket. Virtual-hosted URLs carry the key as the whole path;
// path-style URLs carry it after the first "/<bucket>/" segment.
func KeyFromURL(rawURL, bucket string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return ""
	}
	p := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || strings.HasPrefix(u.Host, bucket+".") {
		return p
	}
	if i := strings.Index("/"+p, "/"+bucket+"/"); i >= 0 {
		return p[i+len(bucket)+1:]
	}
	return p
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// checkStatic classifies a static key pair. Both empty means no static
// credentials were configured.
func checkStatic(accessKey, secretKey string) error {
	if (accessKey == "") != (secretKey == "") {
		return &CredentialsError{Partial: true}
	}
	return nil
}

func contentTypeOrDefault(contentType string) string {
	if contentType == "" {
		return defaultContentType
	}
	return contentType
}
