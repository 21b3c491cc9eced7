package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestVoucherKey(t *testing.T) {
	at := time.UnixMilli(1710081000123)
	key := VoucherKey("laudos", "João  da Silva", at)

	pattern := regexp.MustCompile(`^laudos/laudo_João_da_Silva_1710081000123_[0-9a-f]{8}\.pdf$`)
	if !pattern.MatchString(key) {
		t.Fatalf("VoucherKey() = %q", key)
	}

	other := VoucherKey("laudos", "João  da Silva", at)
	if key == other {
		t.Error("two keys generated in the same millisecond collided")
	}
}

func TestVoucherKeyStripsPathCharacters(t *testing.T) {
	key := VoucherKey("laudos-pecas", "../etc/passwd", time.UnixMilli(1))
	if !strings.HasPrefix(key, "laudos-pecas/laudo_etcpasswd_1_") {
		t.Fatalf("VoucherKey() = %q", key)
	}
}

func TestKeyFromURL(t *testing.T) {
	base := "https://storage.googleapis.com/motoboy-documents"
	key, ok := keyFromURL(base, base+"/laudos/laudo_x_1_abcd.pdf?v=2")
	if !ok || key != "laudos/laudo_x_1_abcd.pdf" {
		t.Fatalf("keyFromURL() = %q, %v", key, ok)
	}
	if _, ok := keyFromURL(base, "https://elsewhere.example.com/laudos/x.pdf"); ok {
		t.Error("foreign URL accepted")
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/files/")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	url, err := store.Upload(ctx, "laudos/laudo_a_1_x.pdf", []byte("%PDF-1.3"), ContentTypePDF)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url != "http://localhost:8080/files/laudos/laudo_a_1_x.pdf" {
		t.Errorf("Upload() url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "laudos", "laudo_a_1_x.pdf")); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	if err := store.Delete(ctx, url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, url); err != nil {
		t.Errorf("deleting a missing object should be a no-op, got %v", err)
	}
	if err := store.Delete(ctx, "https://other.example.com/x.pdf"); !errors.Is(err, ErrForeignURL) {
		t.Errorf("expected ErrForeignURL, got %v", err)
	}
}

func TestLocalStoreFindFirst(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), "http://localhost/files")
	if err != nil {
		t.Fatal(err)
	}

	prefix := EvidencePrefix("abc")
	if _, found, err := store.FindFirst(ctx, prefix); err != nil || found {
		t.Fatalf("FindFirst() on empty prefix = %v, %v", found, err)
	}

	if _, err := store.Upload(ctx, prefix+"b.jpg", []byte{1}, "image/jpeg"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Upload(ctx, prefix+"a.jpg", []byte{1}, "image/jpeg"); err != nil {
		t.Fatal(err)
	}

	url, found, err := store.FindFirst(ctx, prefix)
	if err != nil || !found {
		t.Fatalf("FindFirst() = %v, %v", found, err)
	}
	if url != "http://localhost/files/evidencias/abc/a.jpg" {
		t.Errorf("FindFirst() url = %q", url)
	}
}
