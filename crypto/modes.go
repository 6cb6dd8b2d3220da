package crypto

import "fmt"

// KeyType identifies the asymmetric algorithm family of a key.
type KeyType int

const (
	// KeyTypeRSA marks RSA keys. Data keys are wrapped for RSA recipients
	// with RSA-PKCS1v1.5 directly.
	KeyTypeRSA KeyType = 1
	// KeyTypeEllipticCurves marks elliptic-curve keys. Data keys are wrapped
	// for EC recipients via ECDH + KDF2-SHA256 + AES-256-CCM.
	KeyTypeEllipticCurves KeyType = 2
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeRSA:
		return "RSA"
	case KeyTypeEllipticCurves:
		return "EllipticCurves"
	default:
		return fmt.Sprintf("KeyType(%d)", int(t))
	}
}

// DataEncryptionMode selects how the data streams of an object are encrypted.
type DataEncryptionMode int

const (
	// DataModeUnencrypted passes stream bytes through verbatim. No data key
	// exists; intended for testing and debug paths.
	DataModeUnencrypted DataEncryptionMode = iota
	// DataModeAES256CCM encrypts each stream with AES-256-CCM under the
	// object's data key and a per-stream 7-byte nonce.
	DataModeAES256CCM
)

func (m DataEncryptionMode) String() string {
	switch m {
	case DataModeUnencrypted:
		return "Unencrypted"
	case DataModeAES256CCM:
		return "AES_256_CCM"
	default:
		return fmt.Sprintf("DataEncryptionMode(%d)", int(m))
	}
}

// MarshalText encodes the mode as its canonical string name.
func (m DataEncryptionMode) MarshalText() ([]byte, error) {
	switch m {
	case DataModeUnencrypted, DataModeAES256CCM:
		return []byte(m.String()), nil
	default:
		return nil, newEncryptionError(fmt.Sprintf("unknown data encryption mode %d", int(m)), nil)
	}
}

// UnmarshalText decodes a mode from its canonical string name.
func (m *DataEncryptionMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Unencrypted":
		*m = DataModeUnencrypted
	case "AES_256_CCM":
		*m = DataModeAES256CCM
	default:
		return newDecryptionError("unknown data encryption mode "+string(text), nil)
	}
	return nil
}

// KeyEncryptionMode selects how one recipient's copy of the data key was
// wrapped.
type KeyEncryptionMode int

const (
	// KeyModeRSAPKCS1 wraps the raw data key with RSA-PKCS1v1.5.
	KeyModeRSAPKCS1 KeyEncryptionMode = iota
	// KeyModeECDHKDF2SHA256AES256CCM wraps the data key with AES-256-CCM
	// under a key derived from an ECDH agreement via KDF2-SHA256.
	KeyModeECDHKDF2SHA256AES256CCM
)

func (m KeyEncryptionMode) String() string {
	switch m {
	case KeyModeRSAPKCS1:
		return "RSA_PKCS1"
	case KeyModeECDHKDF2SHA256AES256CCM:
		return "ECDH_KDF2_SHA256_AES_256_CCM"
	default:
		return fmt.Sprintf("KeyEncryptionMode(%d)", int(m))
	}
}

// MarshalText encodes the mode as its canonical string name.
func (m KeyEncryptionMode) MarshalText() ([]byte, error) {
	switch m {
	case KeyModeRSAPKCS1, KeyModeECDHKDF2SHA256AES256CCM:
		return []byte(m.String()), nil
	default:
		return nil, newEncryptionError(fmt.Sprintf("unknown key encryption mode %d", int(m)), nil)
	}
}

// UnmarshalText decodes a mode from its canonical string name.
func (m *KeyEncryptionMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "RSA_PKCS1":
		*m = KeyModeRSAPKCS1
	case "ECDH_KDF2_SHA256_AES_256_CCM":
		*m = KeyModeECDHKDF2SHA256AES256CCM
	default:
		return newDecryptionError("unknown key encryption mode "+string(text), nil)
	}
	return nil
}
