// Package importer implements the Importer/Segmenter: consuming a row-view
// plus a column mapping, producing segments and an existing-target baseline,
// and fingerprinting the source schema for profile reuse.
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// BuildSignatureInput renders the literal string a schema signature hashes:
// "{FILETYPE}|{SHEET}|colcount={N}|cols={c1,c2,...}".
func BuildSignatureInput(fileType, sheetName string, columns []string) string {
	return fmt.Sprintf("%s|%s|colcount=%d|cols=%s",
		strings.ToUpper(fileType), sheetName, len(columns), strings.Join(columns, ","))
}

// ComputeSchemaSignature returns the SHA-256 hex digest of the signature
// input for (fileType, sheetName, columns).
func ComputeSchemaSignature(fileType, sheetName string, columns []string) string {
	sum := sha256.Sum256([]byte(BuildSignatureInput(fileType, sheetName, columns)))
	return hex.EncodeToString(sum[:])
}
