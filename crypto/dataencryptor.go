package crypto

import (
	"io"

	"github.com/sirupsen/logrus"
)

// DataEncryptor encrypts the logical streams of one data object. It generates
// a 32-byte data key and one 7-byte nonce per stream at construction and is
// immutable afterwards. Create one per data object and Close it once the
// object's EncryptionInfo has been generated.
type DataEncryptor struct {
	mode       DataEncryptionMode
	dataKey    []byte
	ivs        [][]byte
	numStreams int
}

// NewDataEncryptor creates an AES-256-CCM encryptor for numberOfStreams
// logical streams, drawing the data key and all nonces from random.
func NewDataEncryptor(random io.Reader, numberOfStreams int) (*DataEncryptor, error) {
	if random == nil {
		return nil, newEncryptionError("nil random source", nil)
	}
	if numberOfStreams < 1 {
		return nil, newEncryptionError("number of streams must be at least 1", nil)
	}
	dataKey := make([]byte, DataKeySize)
	if _, err := io.ReadFull(random, dataKey); err != nil {
		return nil, newEncryptionError("cannot generate data key", err)
	}
	ivs := make([][]byte, numberOfStreams)
	for i := range ivs {
		ivs[i] = make([]byte, NonceSize)
		if _, err := io.ReadFull(random, ivs[i]); err != nil {
			ZeroBytes(dataKey)
			return nil, newEncryptionError("cannot generate stream nonce", err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewDataEncryptor",
		"streams":  numberOfStreams,
	}).Debug("Generated data key and stream nonces")
	return &DataEncryptor{
		mode:       DataModeAES256CCM,
		dataKey:    dataKey,
		ivs:        ivs,
		numStreams: numberOfStreams,
	}, nil
}

// NewUnencryptedDataEncryptor creates a pass-through encryptor that copies
// stream bytes verbatim. No data key exists in this mode; it is intended for
// testing and debug paths.
func NewUnencryptedDataEncryptor(numberOfStreams int) (*DataEncryptor, error) {
	if numberOfStreams < 1 {
		return nil, newEncryptionError("number of streams must be at least 1", nil)
	}
	return &DataEncryptor{mode: DataModeUnencrypted, numStreams: numberOfStreams}, nil
}

// Mode returns the encryptor's data encryption mode.
func (e *DataEncryptor) Mode() DataEncryptionMode { return e.mode }

// StreamCount returns the number of logical streams.
func (e *DataEncryptor) StreamCount() int { return e.numStreams }

func (e *DataEncryptor) checkStreamIndex(streamIndex int) error {
	if streamIndex < 0 || streamIndex >= e.numStreams {
		return ErrStreamIndexOutOfRange
	}
	return nil
}

// EncryptData encrypts an in-memory buffer for the given stream index. It is
// the one-shot equivalent of writing the buffer to an encryption stream and
// closing it.
func (e *DataEncryptor) EncryptData(clear []byte, streamIndex int) ([]byte, error) {
	if err := e.checkStreamIndex(streamIndex); err != nil {
		return nil, err
	}
	if e.mode == DataModeUnencrypted {
		return append([]byte(nil), clear...), nil
	}
	aead, err := newAESCCM(e.dataKey)
	if err != nil {
		return nil, newEncryptionError("cannot initialize data cipher", err)
	}
	return aead.Seal(nil, e.ivs[streamIndex], clear, nil), nil
}

// OpenEncryptionWriteStream returns a WriteCloser that authenticated-encrypts
// the clear bytes written to it and writes the ciphertext, including the
// authentication tag, to output when the stream is closed. CCM is not an
// incremental mode, so plaintext is buffered until Close.
func (e *DataEncryptor) OpenEncryptionWriteStream(output io.Writer, streamIndex int) (io.WriteCloser, error) {
	if err := e.checkStreamIndex(streamIndex); err != nil {
		return nil, err
	}
	if e.mode == DataModeUnencrypted {
		return &passthroughWriter{out: output}, nil
	}
	aead, err := newAESCCM(e.dataKey)
	if err != nil {
		return nil, newEncryptionError("cannot initialize data cipher", err)
	}
	return &encryptWriter{aead: aead, iv: e.ivs[streamIndex], out: output}, nil
}

// GenerateEncryptionInfo wraps the data key for the key encryptor's recipients
// and assembles the complete metadata envelope for this object. The envelope,
// not the encryptor, is what gets persisted alongside the ciphertext.
func (e *DataEncryptor) GenerateEncryptionInfo(keyEncryptor *KeyEncryptor) (*EncryptionInfo, error) {
	if e.mode == DataModeUnencrypted {
		return &EncryptionInfo{
			DataMode: DataModeUnencrypted,
			IVs:      [][]byte{},
			DataKeys: map[KeyID]DataKeyInfo{},
		}, nil
	}
	if keyEncryptor == nil {
		return nil, newEncryptionError("nil key encryptor", nil)
	}
	dataKeys, sharedPublicKey, err := keyEncryptor.EncryptDataKey(e.dataKey)
	if err != nil {
		return nil, err
	}
	ivs := make([][]byte, len(e.ivs))
	for i, iv := range e.ivs {
		ivs[i] = append([]byte(nil), iv...)
	}
	return &EncryptionInfo{
		DataMode:         e.mode,
		IVs:              ivs,
		DataKeys:         dataKeys,
		MessagePublicKey: sharedPublicKey,
	}, nil
}

// Close wipes the data key. The encryptor must not be used afterwards.
func (e *DataEncryptor) Close() error {
	if e.dataKey != nil {
		ZeroBytes(e.dataKey)
		e.dataKey = nil
	}
	return nil
}
