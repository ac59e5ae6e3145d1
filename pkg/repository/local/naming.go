package local

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/secmon-lab/zenmemory/pkg/domain/model"
)

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9]+`)

const (
	placeholderName = "unknown"
	maxBaseLength   = 64
)

// PartitionName maps an owner to its directory name. The readable part
// replaces every run of non-alphanumeric characters with "_" and trims "_"
// at both ends, falling back to "unknown". A short digest of the raw owner
// follows so owners that sanitize identically still get separate
// directories.
func PartitionName(owner model.Owner) string {
	base := strings.Trim(unsafeRun.ReplaceAllString(string(owner), "_"), "_")
	if len(base) > maxBaseLength {
		base = strings.TrimRight(base[:maxBaseLength], "_")
	}
	if base == "" {
		base = placeholderName
	}

	sum := sha256.Sum256([]byte(owner))
	return base + "-" + hex.EncodeToString(sum[:4])
}
