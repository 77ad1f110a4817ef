package ident

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	// Prefix keeps confession ids recognizable in logs and URLs without
	// leaking anything about the record.
	Prefix = "conf_"

	idBytes = 16
)

// New returns a fresh confession id: the conf_ prefix followed by 16
// crypto-random bytes, base64url encoded. No timestamp component, so the
// id carries no metadata.
func New() string {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(buf)
}
