// Package storage keeps generated vouchers and evidence photos in an object
// store and hands back long-lived public URLs.
package storage

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentTypePDF is the content type vouchers are uploaded with.
const ContentTypePDF = "application/pdf"

// ErrForeignURL is returned by Delete when the URL does not belong to the store.
var ErrForeignURL = errors.New("url does not belong to this store")

// ObjectStore is the contract the lifecycle controller depends on.
type ObjectStore interface {
	// Upload writes data under key and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, publicURL string) error
	// FindFirst returns the URL of the first object under prefix, if any.
	FindFirst(ctx context.Context, prefix string) (string, bool, error)
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// VoucherKey builds "<folder>/laudo_<name>_<unix-millis>_<short-id>.pdf".
// The short id keeps two uploads in the same millisecond apart.
func VoucherKey(folder, nome string, at time.Time) string {
	name := strings.Join(strings.Fields(nome), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	if name == "" {
		name = "motoboy"
	}
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return folder + "/laudo_" + name + "_" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + short + ".pdf"
}

// EvidencePrefix is where photos of the part to be replaced are dropped for a request.
func EvidencePrefix(solicitationID string) string {
	return "evidencias/" + solicitationID + "/"
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// keyFromURL strips base from a public URL. ok is false for foreign URLs.
func keyFromURL(base, publicURL string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key, key != ""
}
