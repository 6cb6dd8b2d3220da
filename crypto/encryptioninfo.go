package crypto

import "fmt"

// DataKeyInfo is one recipient's wrapped copy of a data key.
type DataKeyInfo struct {
	// Mode selects the wrapping algorithm this copy was produced with.
	Mode KeyEncryptionMode `json:"mode"`
	// EncryptedKey is the wrapped data key.
	EncryptedKey []byte `json:"encryptedKey"`
	// MessagePublicKey is the DER-encoded ephemeral EC public key used for
	// this recipient's ECDH agreement. It is present only when the recipient
	// used a recipient-specific ephemeral key pair rather than the shared one
	// carried in EncryptionInfo.
	MessagePublicKey []byte `json:"messagePublicKey,omitempty"`
}

// EncryptionInfo is the complete, transmissible metadata envelope for one
// encrypted data object: the per-stream nonces, the per-recipient wrapped data
// keys, and the optional shared ephemeral public key. It carries no secret
// material; the raw data key never appears in it.
type EncryptionInfo struct {
	// DataMode is how the object's data streams are encrypted.
	DataMode DataEncryptionMode `json:"dataMode"`
	// IVs holds one nonce per logical stream, in stream-index order.
	IVs [][]byte `json:"ivs"`
	// DataKeys maps each authorized recipient's KeyID to their wrapped copy
	// of the data key.
	DataKeys map[KeyID]DataKeyInfo `json:"dataKeys"`
	// MessagePublicKey is the DER-encoded shared ephemeral EC public key,
	// present iff at least one recipient used the shared-key optimization.
	MessagePublicKey []byte `json:"messagePublicKey,omitempty"`
}

// Validate checks the structural invariants of the envelope: DataKeys must be
// non-empty unless the object is unencrypted, and every nonce must have the
// CCM nonce length.
func (info *EncryptionInfo) Validate() error {
	if info == nil {
		return newDecryptionError("nil encryption info", nil)
	}
	switch info.DataMode {
	case DataModeUnencrypted:
		return nil
	case DataModeAES256CCM:
		if len(info.DataKeys) == 0 {
			return newDecryptionError("encryption info carries no wrapped data keys", nil)
		}
		for i, iv := range info.IVs {
			if len(iv) != NonceSize {
				return newDecryptionError(fmt.Sprintf("IV for stream %d has %d bytes, want %d",
					i, len(iv), NonceSize), nil)
			}
		}
		return nil
	default:
		return newDecryptionError(fmt.Sprintf("unknown data encryption mode %d", int(info.DataMode)), nil)
	}
}
