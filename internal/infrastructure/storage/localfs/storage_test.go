package localfs

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestPutThenGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	key := "documents/doc-1/source.pdf"
	payload := []byte("%PDF-1.7 payload")
	if err := store.Put(context.Background(), key, bytes.NewReader(payload), int64(len(payload))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rc, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if !bytes.Equal(raw, payload) {
		t.Fatalf("round trip mismatch: %q", raw)
	}
}

func TestGetMissingKey(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := store.Get(context.Background(), "documents/none/source.pdf"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestPutOverwritesExistingObject(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	key := "documents/doc-1/signed.pdf"
	ctx := context.Background()
	if err := store.Put(ctx, key, bytes.NewReader([]byte("v1")), 2); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, key, bytes.NewReader([]byte("v2")), 2); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)
	if string(raw) != "v2" {
		t.Fatalf("object = %q, want latest write", raw)
	}
}
