package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeyIDSize is the size of a KeyID in bytes: one type tag byte followed by a
// 32-byte SHA-256 digest of the key's canonical byte representation.
const KeyIDSize = 33

// KeyID is the stable, content-derived identifier of a public key. Two public
// keys that are mathematically equal always produce the same KeyID. It is used
// as the map key associating a recipient with their wrapped data key.
type KeyID [KeyIDSize]byte

// CalculateKeyID computes the identifier of a public key: the key type tag
// (1 for RSA, 2 for EC) followed by SHA-256 over the RSA modulus in unsigned
// big-endian form, or over the EC point in uncompressed encoding.
func CalculateKeyID(key *PublicKey) (KeyID, error) {
	var id KeyID
	if key == nil {
		return id, newKeyError("nil public key", nil)
	}
	switch key.keyType {
	case KeyTypeRSA:
		digest := sha256.Sum256(key.rsa.N.Bytes())
		id[0] = 1
		copy(id[1:], digest[:])
	case KeyTypeEllipticCurves:
		point, err := key.ec.ECDH()
		if err != nil {
			return id, newKeyError("cannot encode EC public point", err)
		}
		digest := sha256.Sum256(point.Bytes())
		id[0] = 2
		copy(id[1:], digest[:])
	default:
		return id, newKeyError(fmt.Sprintf("unsupported key type %v", key.keyType), nil)
	}
	return id, nil
}

// CalculateID computes the identifier of this public key.
func (k *PublicKey) CalculateID() (KeyID, error) {
	return CalculateKeyID(k)
}

// String returns the canonical hex encoding of the 33 raw bytes.
func (id KeyID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns a copy of the raw 33-byte value.
func (id KeyID) Bytes() []byte {
	out := make([]byte, KeyIDSize)
	copy(out, id[:])
	return out
}

// KeyIDFromBytes reconstructs a KeyID from its raw 33-byte form.
func KeyIDFromBytes(raw []byte) (KeyID, error) {
	var id KeyID
	if len(raw) != KeyIDSize {
		return id, newKeyError(fmt.Sprintf("key id must be %d bytes, got %d", KeyIDSize, len(raw)), nil)
	}
	copy(id[:], raw)
	return id, nil
}

// KeyIDFromString parses the canonical hex encoding produced by String.
func KeyIDFromString(s string) (KeyID, error) {
	var id KeyID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, newKeyError("invalid key id encoding", err)
	}
	return KeyIDFromBytes(raw)
}

// MarshalText encodes the KeyID as its canonical hex string. This also makes
// KeyID usable as a JSON object key.
func (id KeyID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the canonical hex string encoding.
func (id *KeyID) UnmarshalText(text []byte) error {
	parsed, err := KeyIDFromString(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
