// Package storage holds the product image stores. Both stores name objects
// with a random key under products/ and hand back a URL as the reference.
package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const keyPrefix = "products/"

// objectKey builds a collision-free key that keeps the upload's extension.
func objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return keyPrefix + uuid.NewString() + ext
}

// refFor joins base and key into a reference URL.
func refFor(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// keyFor recovers the object key from a reference produced by refFor.
func keyFor(base, ref string) (string, error) {
	prefix := strings.TrimRight(base, "/") + "/"
	key, ok := strings.CutPrefix(ref, prefix)
	if !ok || !strings.HasPrefix(key, keyPrefix) || strings.Contains(key, "..") {
		return "", fmt.Errorf("image reference %q is not owned by this store", ref)
	}
	return key, nil
}
