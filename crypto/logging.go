package crypto

import "encoding/hex"

// keyIDPrefix returns a short hex prefix of a key identifier for log output.
// Full identifiers are long and not secret, but truncating keeps log lines
// readable.
func keyIDPrefix(id KeyID) string {
	return hex.EncodeToString(id[:8])
}
