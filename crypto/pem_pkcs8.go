package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// PBES2 (RFC 8018) encrypted PKCS#8 containers with PBKDF2 key derivation and
// AES-256-CBC, the scheme OpenSSL and BouncyCastle emit for encrypted
// "ENCRYPTED PRIVATE KEY" PEM blocks.

var (
	oidPBES2          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 13}
	oidPBKDF2         = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 12}
	oidHMACWithSHA1   = asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 7}
	oidHMACWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 9}
	oidAES256CBC      = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 42}
)

const (
	// pbkdf2Iterations follows the NIST recommendation.
	pbkdf2Iterations = 100000
	pbkdf2SaltSize   = 16
	aes256KeySize    = 32
)

type pbkdf2Params struct {
	Salt           []byte
	IterationCount int
	PRF            pkix.AlgorithmIdentifier `asn1:"optional"`
}

type pbkdf2Algorithm struct {
	Algorithm asn1.ObjectIdentifier
	Params    pbkdf2Params
}

type pbes2EncryptionScheme struct {
	Algorithm asn1.ObjectIdentifier
	IV        []byte
}

type pbes2Params struct {
	KeyDerivationFunc pbkdf2Algorithm
	EncryptionScheme  pbes2EncryptionScheme
}

type pbes2Algorithm struct {
	Algorithm asn1.ObjectIdentifier
	Params    pbes2Params
}

type encryptedPrivateKeyInfo struct {
	Algorithm     pbes2Algorithm
	EncryptedData []byte
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, false
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, false
		}
	}
	return data[:len(data)-padding], true
}

// encryptPKCS8 wraps a plain PKCS#8 DER key in an EncryptedPrivateKeyInfo.
func encryptPKCS8(der, password []byte) ([]byte, error) {
	salt := make([]byte, pbkdf2SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, newPemError("cannot generate salt", err)
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, newPemError("cannot generate IV", err)
	}
	key := pbkdf2.Key(password, salt, pbkdf2Iterations, aes256KeySize, sha256.New)
	defer ZeroBytes(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, newPemError("cannot initialize key encryption cipher", err)
	}
	padded := pkcs7Pad(der, aes.BlockSize)
	defer ZeroBytes(padded)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, padded)

	info := encryptedPrivateKeyInfo{
		Algorithm: pbes2Algorithm{
			Algorithm: oidPBES2,
			Params: pbes2Params{
				KeyDerivationFunc: pbkdf2Algorithm{
					Algorithm: oidPBKDF2,
					Params: pbkdf2Params{
						Salt:           salt,
						IterationCount: pbkdf2Iterations,
						PRF: pkix.AlgorithmIdentifier{
							Algorithm:  oidHMACWithSHA256,
							Parameters: asn1.NullRawValue,
						},
					},
				},
				EncryptionScheme: pbes2EncryptionScheme{
					Algorithm: oidAES256CBC,
					IV:        iv,
				},
			},
		},
		EncryptedData: encrypted,
	}
	out, err := asn1.Marshal(info)
	if err != nil {
		return nil, newPemError("cannot encode encrypted private key", err)
	}
	return out, nil
}

func prfHash(prf pkix.AlgorithmIdentifier) (func() hash.Hash, error) {
	switch {
	case len(prf.Algorithm) == 0, prf.Algorithm.Equal(oidHMACWithSHA1):
		return sha1.New, nil
	case prf.Algorithm.Equal(oidHMACWithSHA256):
		return sha256.New, nil
	default:
		return nil, newPemError("unsupported PBKDF2 pseudo-random function", nil)
	}
}

// decryptPKCS8 unwraps an EncryptedPrivateKeyInfo and parses the contained
// key. A wrong password surfaces as a DecryptionError.
func decryptPKCS8(der, password []byte) (any, error) {
	var info encryptedPrivateKeyInfo
	if rest, err := asn1.Unmarshal(der, &info); err != nil || len(rest) > 0 {
		return nil, newPemError("malformed encrypted private key", err)
	}
	if !info.Algorithm.Algorithm.Equal(oidPBES2) {
		return nil, newPemError("unsupported private key encryption scheme", nil)
	}
	params := info.Algorithm.Params
	if !params.KeyDerivationFunc.Algorithm.Equal(oidPBKDF2) {
		return nil, newPemError("unsupported key derivation function", nil)
	}
	if !params.EncryptionScheme.Algorithm.Equal(oidAES256CBC) {
		return nil, newPemError("unsupported private key cipher", nil)
	}
	if len(params.EncryptionScheme.IV) != aes.BlockSize {
		return nil, newPemError("malformed private key cipher IV", nil)
	}
	prf, err := prfHash(params.KeyDerivationFunc.Params.PRF)
	if err != nil {
		return nil, err
	}
	kdf := params.KeyDerivationFunc.Params
	key := pbkdf2.Key(password, kdf.Salt, kdf.IterationCount, aes256KeySize, prf)
	defer ZeroBytes(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, newPemError("cannot initialize key decryption cipher", err)
	}
	encrypted := info.EncryptedData
	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return nil, newPemError("malformed encrypted private key payload", nil)
	}
	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, params.EncryptionScheme.IV).CryptBlocks(decrypted, encrypted)
	defer ZeroBytes(decrypted)
	unpadded, ok := pkcs7Unpad(decrypted, aes.BlockSize)
	if !ok {
		return nil, newDecryptionError("incorrect password or corrupted private key", nil)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(unpadded)
	if err != nil {
		return nil, newDecryptionError("incorrect password or corrupted private key", err)
	}
	return parsed, nil
}
