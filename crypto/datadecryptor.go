package crypto

import (
	"fmt"
	"io"
)

// DataDecryptor decrypts the logical streams of one data object once the data
// key has been recovered.
type DataDecryptor struct {
	mode    DataEncryptionMode
	dataKey []byte
	ivs     [][]byte
}

// NewDataDecryptor creates a decryptor directly from a recovered data key and
// the per-stream nonces. dataMode must be AES_256_CCM or Unencrypted.
func NewDataDecryptor(dataMode DataEncryptionMode, ivs [][]byte, dataKey []byte) (*DataDecryptor, error) {
	switch dataMode {
	case DataModeUnencrypted:
		return &DataDecryptor{mode: DataModeUnencrypted}, nil
	case DataModeAES256CCM:
		if len(dataKey) != DataKeySize {
			return nil, newDecryptionError(fmt.Sprintf("data key must be %d bytes, got %d", DataKeySize, len(dataKey)), nil)
		}
		copied := make([][]byte, len(ivs))
		for i, iv := range ivs {
			if len(iv) != NonceSize {
				return nil, newDecryptionError(fmt.Sprintf("IV for stream %d has %d bytes, want %d",
					i, len(iv), NonceSize), nil)
			}
			copied[i] = append([]byte(nil), iv...)
		}
		return &DataDecryptor{
			mode:    dataMode,
			dataKey: append([]byte(nil), dataKey...),
			ivs:     copied,
		}, nil
	default:
		return nil, newDecryptionError(fmt.Sprintf("unsupported data encryption mode %d", int(dataMode)), nil)
	}
}

// DataDecryptorFromEncryptionInfo recovers the data key through the given key
// decryptor and builds the matching stream decryptor. It returns nil, nil when
// the key decryptor's key pair is not an authorized recipient of the object,
// mirroring KeyDecryptor.DecryptKey. Unencrypted envelopes never need a key
// lookup.
func DataDecryptorFromEncryptionInfo(info *EncryptionInfo, keyDecryptor *KeyDecryptor) (*DataDecryptor, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if info.DataMode == DataModeUnencrypted {
		return NewDataDecryptor(DataModeUnencrypted, info.IVs, nil)
	}
	if keyDecryptor == nil {
		return nil, newDecryptionError("nil key decryptor", nil)
	}
	dataKey, err := keyDecryptor.DecryptKey(info)
	if err != nil {
		return nil, err
	}
	if dataKey == nil {
		return nil, nil
	}
	defer ZeroBytes(dataKey)
	return NewDataDecryptor(info.DataMode, info.IVs, dataKey)
}

// Mode returns the decryptor's data encryption mode.
func (d *DataDecryptor) Mode() DataEncryptionMode { return d.mode }

func (d *DataDecryptor) checkStreamIndex(streamIndex int) error {
	if streamIndex < 0 {
		return ErrStreamIndexOutOfRange
	}
	// Unencrypted envelopes carry no nonces and accept any index.
	if d.mode == DataModeAES256CCM && streamIndex >= len(d.ivs) {
		return ErrStreamIndexOutOfRange
	}
	return nil
}

// DecryptData decrypts an in-memory ciphertext buffer for the given stream
// index. Authentication failure, corruption or truncation surface as a
// DecryptionError; no plaintext is returned in that case.
func (d *DataDecryptor) DecryptData(cipherText []byte, streamIndex int) ([]byte, error) {
	if err := d.checkStreamIndex(streamIndex); err != nil {
		return nil, err
	}
	if d.mode == DataModeUnencrypted {
		return append([]byte(nil), cipherText...), nil
	}
	aead, err := newAESCCM(d.dataKey)
	if err != nil {
		return nil, newDecryptionError("cannot initialize data cipher", err)
	}
	clear, err := aead.Open(nil, d.ivs[streamIndex], cipherText, nil)
	if err != nil {
		return nil, newDecryptionError("data authentication failed", err)
	}
	return clear, nil
}

// OpenDecryptionReadStream returns a ReadCloser yielding the decrypted bytes
// of one stream. The whole input is read and authenticated before the first
// byte of plaintext is returned, so a tampered or truncated stream fails on
// the first Read with a DecryptionError and never yields unverified bytes.
func (d *DataDecryptor) OpenDecryptionReadStream(input io.Reader, streamIndex int) (io.ReadCloser, error) {
	if err := d.checkStreamIndex(streamIndex); err != nil {
		return nil, err
	}
	if d.mode == DataModeUnencrypted {
		return &passthroughReader{in: input}, nil
	}
	aead, err := newAESCCM(d.dataKey)
	if err != nil {
		return nil, newDecryptionError("cannot initialize data cipher", err)
	}
	return &decryptReader{aead: aead, iv: d.ivs[streamIndex], in: input}, nil
}

// Close wipes the data key. The decryptor must not be used afterwards.
func (d *DataDecryptor) Close() error {
	if d.dataKey != nil {
		ZeroBytes(d.dataKey)
		d.dataKey = nil
	}
	return nil
}
