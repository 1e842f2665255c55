package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const transactionIDBytes = 16

// GenerateTransactionID returns 32 lowercase hex chars read from crypto/rand.
func GenerateTransactionID() (string, error) {
	b := make([]byte, transactionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ImageFileName builds "<field>_<unix-nanos><ext>" from the uploaded file name.
func ImageFileName(field, original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	return fmt.Sprintf("%s_%d%s", field, now.UnixNano(), ext)
}
