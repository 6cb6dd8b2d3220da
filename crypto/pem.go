package crypto

import (
	"crypto/x509"
	"encoding/pem"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	pemTypePublicKey           = "PUBLIC KEY"
	pemTypePrivateKey          = "PRIVATE KEY"
	pemTypeEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	pemTypeRSAPrivateKey       = "RSA PRIVATE KEY"
	pemTypeECPrivateKey        = "EC PRIVATE KEY"
	pemTypeCertificate         = "CERTIFICATE"
)

// readPemBlocks decodes every PEM block in the input.
func readPemBlocks(r io.Reader) ([]*pem.Block, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newPemError("cannot read PEM input", err)
	}
	var blocks []*pem.Block
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// LoadPublicKeyFromPem reads the first public key from PEM input. A container
// without a "PUBLIC KEY" block fails with a PemError.
func LoadPublicKeyFromPem(r io.Reader) (*PublicKey, error) {
	blocks, err := readPemBlocks(r)
	if err != nil {
		return nil, err
	}
	for _, block := range blocks {
		if block.Type != pemTypePublicKey {
			continue
		}
		return parsePublicKeyBlock(block)
	}
	return nil, newPemError("no public key found in PEM input", nil)
}

// LoadPublicKeysFromPem reads all public keys from PEM input, skipping blocks
// of other types.
func LoadPublicKeysFromPem(r io.Reader) ([]*PublicKey, error) {
	blocks, err := readPemBlocks(r)
	if err != nil {
		return nil, err
	}
	var keys []*PublicKey
	for _, block := range blocks {
		if block.Type != pemTypePublicKey {
			continue
		}
		key, err := parsePublicKeyBlock(block)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func parsePublicKeyBlock(block *pem.Block) (*PublicKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, newPemError("cannot parse public key", err)
	}
	key, err := NewPublicKey(parsed)
	if err != nil {
		return nil, newPemError("unsupported public key in PEM input", err)
	}
	return key, nil
}

// StoreToPem writes the public key as a PKIX "PUBLIC KEY" PEM block.
func (k *PublicKey) StoreToPem(w io.Writer) error {
	der, err := x509.MarshalPKIXPublicKey(k.raw())
	if err != nil {
		return newPemError("cannot encode public key", err)
	}
	return pem.Encode(w, &pem.Block{Type: pemTypePublicKey, Bytes: der})
}

// LoadPrivateKeyFromPem reads the first private key from PEM input and returns
// it as a key pair with the public half derived. Supported block types are
// PKCS#8 ("PRIVATE KEY"), encrypted PKCS#8 ("ENCRYPTED PRIVATE KEY", requiring
// a password), and the legacy "RSA PRIVATE KEY" / "EC PRIVATE KEY" forms.
func LoadPrivateKeyFromPem(r io.Reader, password []byte) (*KeyPair, error) {
	blocks, err := readPemBlocks(r)
	if err != nil {
		return nil, err
	}
	for _, block := range blocks {
		var parsed any
		switch block.Type {
		case pemTypePrivateKey:
			parsed, err = x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, newPemError("cannot parse PKCS#8 private key", err)
			}
		case pemTypeEncryptedPrivateKey:
			if len(password) == 0 {
				return nil, newPemError("private key is encrypted, a password is required", nil)
			}
			parsed, err = decryptPKCS8(block.Bytes, password)
			if err != nil {
				return nil, err
			}
		case pemTypeRSAPrivateKey:
			parsed, err = x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, newPemError("cannot parse RSA private key", err)
			}
		case pemTypeECPrivateKey:
			parsed, err = x509.ParseECPrivateKey(block.Bytes)
			if err != nil {
				return nil, newPemError("cannot parse EC private key", err)
			}
		default:
			continue
		}
		private, err := NewPrivateKey(parsed)
		if err != nil {
			return nil, newPemError("unsupported private key in PEM input", err)
		}
		logrus.WithFields(logrus.Fields{
			"function": "LoadPrivateKeyFromPem",
			"key_type": private.keyType.String(),
		}).Debug("Loaded private key from PEM")
		return KeyPairFromPrivate(private)
	}
	return nil, newPemError("no private key found in PEM input", nil)
}

// StoreToPem writes the key pair's private key as a PKCS#8 PEM block. With a
// non-empty password the key is stored encrypted (PBES2 with PBKDF2-SHA256 and
// AES-256-CBC); the public half is derivable and not stored separately.
func (kp *KeyPair) StoreToPem(w io.Writer, password []byte) error {
	der, err := x509.MarshalPKCS8PrivateKey(kp.private.raw())
	if err != nil {
		return newPemError("cannot encode private key", err)
	}
	defer ZeroBytes(der)
	if len(password) == 0 {
		return pem.Encode(w, &pem.Block{Type: pemTypePrivateKey, Bytes: der})
	}
	encrypted, err := encryptPKCS8(der, password)
	if err != nil {
		return err
	}
	return pem.Encode(w, &pem.Block{Type: pemTypeEncryptedPrivateKey, Bytes: encrypted})
}

// LoadCertificateFromPem reads the first certificate from PEM input.
func LoadCertificateFromPem(r io.Reader) (*Certificate, error) {
	blocks, err := readPemBlocks(r)
	if err != nil {
		return nil, err
	}
	for _, block := range blocks {
		if block.Type != pemTypeCertificate {
			continue
		}
		return parseCertificateBlock(block)
	}
	return nil, newPemError("no certificate found in PEM input", nil)
}

// LoadCertificatesFromPem reads all certificates from PEM input, skipping
// blocks of other types.
func LoadCertificatesFromPem(r io.Reader) ([]*Certificate, error) {
	blocks, err := readPemBlocks(r)
	if err != nil {
		return nil, err
	}
	var certs []*Certificate
	for _, block := range blocks {
		if block.Type != pemTypeCertificate {
			continue
		}
		cert, err := parseCertificateBlock(block)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

func parseCertificateBlock(block *pem.Block) (*Certificate, error) {
	parsed, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, newPemError("cannot parse certificate", err)
	}
	return &Certificate{wrapped: parsed}, nil
}

// StoreToPem writes the certificate as a "CERTIFICATE" PEM block.
func (c *Certificate) StoreToPem(w io.Writer) error {
	return pem.Encode(w, &pem.Block{Type: pemTypeCertificate, Bytes: c.wrapped.Raw})
}
