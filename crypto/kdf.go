package crypto

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
)

const (
	// DataKeySize is the size of a symmetric data key in bytes.
	DataKeySize = 32
	// NonceSize is the size of an AES-CCM nonce in bytes.
	NonceSize = 7
)

// kdf2SHA256 implements the IEEE 1363a KDF2 counter-mode key derivation
// function over SHA-256: the output is the concatenation of
// SHA-256(secret || counter || sharedInfo) for counter = 1, 2, ...
// truncated to length bytes.
func kdf2SHA256(secret, sharedInfo []byte, length int) []byte {
	out := make([]byte, 0, length+sha256.Size)
	var counter [4]byte
	for i := uint32(1); len(out) < length; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		h := sha256.New()
		h.Write(secret)
		h.Write(counter[:])
		h.Write(sharedInfo)
		out = h.Sum(out)
	}
	return out[:length]
}

// DeriveKeyAndIV derives a 32-byte AES key and a 7-byte CCM nonce from an ECDH
// agreement secret, binding the result to the encoded sender public key used in
// that agreement. Using the sender key as KDF shared info prevents derived keys
// from colliding across different ephemeral keys.
func DeriveKeyAndIV(agreementSecret, senderPublicKey []byte) (key, iv []byte, err error) {
	if len(agreementSecret) == 0 {
		return nil, nil, newKeyError("empty agreement secret", nil)
	}
	if len(senderPublicKey) == 0 {
		return nil, nil, newKeyError("empty sender public key", nil)
	}
	derived := kdf2SHA256(agreementSecret, senderPublicKey, DataKeySize+NonceSize)
	return derived[:DataKeySize], derived[DataKeySize:], nil
}

// EncodeECPublicKey encodes an elliptic-curve public key in the standard
// SubjectPublicKeyInfo DER form. The encoding is used both as the wire format
// for ephemeral message keys and as KDF shared info.
func EncodeECPublicKey(key *PublicKey) ([]byte, error) {
	if key == nil {
		return nil, newKeyError("nil public key", nil)
	}
	if key.keyType != KeyTypeEllipticCurves {
		return nil, newKeyError("not an elliptic-curve key", nil)
	}
	return encodeECPublicKey(key.ec)
}

func encodeECPublicKey(key *ecdsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, newKeyError("cannot encode EC public key", err)
	}
	return der, nil
}

// DecodeECPublicKey parses an elliptic-curve public key from its
// SubjectPublicKeyInfo DER encoding.
func DecodeECPublicKey(encoded []byte) (*PublicKey, error) {
	key, err := decodeECPublicKey(encoded)
	if err != nil {
		return nil, err
	}
	return &PublicKey{keyType: KeyTypeEllipticCurves, ec: key}, nil
}

func decodeECPublicKey(encoded []byte) (*ecdsa.PublicKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(encoded)
	if err != nil {
		return nil, newKeyError("cannot decode EC public key", err)
	}
	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, newKeyError("encoded key is not an elliptic-curve key", nil)
	}
	return key, nil
}

// ecdhAgreement computes the Diffie-Hellman shared secret between an EC
// private key and a peer EC public key on the same curve. The secret is the
// X coordinate of the shared point in fixed-length big-endian form.
func ecdhAgreement(private *ecdsa.PrivateKey, peer *ecdsa.PublicKey) ([]byte, error) {
	priv, err := private.ECDH()
	if err != nil {
		return nil, newKeyError("private key not usable for ECDH", err)
	}
	pub, err := peer.ECDH()
	if err != nil {
		return nil, newKeyError("peer key not usable for ECDH", err)
	}
	secret, err := priv.ECDH(pub)
	if err != nil {
		return nil, newKeyError("ECDH agreement failed", err)
	}
	return secret, nil
}
