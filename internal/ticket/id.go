package ticket

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	idHashLength  = 4
	maxIDAttempts = 100
)

// Namespace derives the ID prefix from a project directory name:
// the first letter of each hyphenated/underscored segment, falling back
// to the first three characters. "next-widget" becomes "nw".
func Namespace(workDir string) string {
	dirName := filepath.Base(workDir)

	segments := strings.FieldsFunc(dirName, func(r rune) bool {
		return r == '-' || r == '_'
	})

	var prefix strings.Builder

	for _, segment := range segments {
		if len(segment) > 0 {
			prefix.WriteByte(segment[0])
		}
	}

	if prefix.Len() > 0 {
		return strings.ToLower(prefix.String())
	}

	if len(dirName) >= 3 {
		return strings.ToLower(dirName[:3])
	}

	if dirName == "" || dirName == string(filepath.Separator) || dirName == "." {
		return "tk"
	}

	return strings.ToLower(dirName)
}

// generateID creates a short, human-typeable ID: namespace prefix plus a
// 4-hex-char token hashed from pid, time, and the attempt counter.
// IDs are non-monotonic; uniqueness comes from the existence check in
// GenerateUniqueID, not from the token itself.
func generateID(namespace string, attempt int) string {
	entropy := fmt.Sprintf("%d-%d-%d", os.Getpid(), time.Now().UnixNano(), attempt)
	hash := sha256.Sum256([]byte(entropy))
	token := fmt.Sprintf("%x", hash)[:idHashLength]

	return namespace + "-" + token
}

// GenerateUniqueID generates an ID that doesn't exist in the ticket
// directory, retrying with fresh entropy on collision.
func GenerateUniqueID(ticketDir, namespace string) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := generateID(namespace, attempt)

		if !Exists(ticketDir, candidate) {
			return candidate, nil
		}
	}

	return "", ErrIDGenerationFailed
}

// Exists checks if a ticket ID exists in the ticket directory.
func Exists(ticketDir, ticketID string) bool {
	_, statErr := os.Stat(Path(ticketDir, ticketID))

	return statErr == nil
}

// Path returns the full path to a ticket file.
func Path(ticketDir, ticketID string) string {
	return filepath.Join(ticketDir, ticketID+".md")
}
