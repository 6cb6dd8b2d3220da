package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// PublicKey wraps an RSA or elliptic-curve public key. The wrapper is
// immutable once constructed; the underlying library key is never exposed
// across the package boundary.
type PublicKey struct {
	keyType KeyType
	rsa     *rsa.PublicKey
	ec      *ecdsa.PublicKey
}

// NewPublicKey wraps an *rsa.PublicKey or *ecdsa.PublicKey.
func NewPublicKey(key any) (*PublicKey, error) {
	switch k := key.(type) {
	case *rsa.PublicKey:
		return &PublicKey{keyType: KeyTypeRSA, rsa: k}, nil
	case *ecdsa.PublicKey:
		return &PublicKey{keyType: KeyTypeEllipticCurves, ec: k}, nil
	default:
		return nil, newKeyError(fmt.Sprintf("unsupported public key type %T", key), nil)
	}
}

// Type returns the key's algorithm family.
func (k *PublicKey) Type() KeyType { return k.keyType }

// Equal reports whether both wrappers hold mathematically equal key material.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.keyType != other.keyType {
		return false
	}
	switch k.keyType {
	case KeyTypeRSA:
		return k.rsa.Equal(other.rsa)
	case KeyTypeEllipticCurves:
		return k.ec.Equal(other.ec)
	default:
		return false
	}
}

// Curve returns the named curve of an elliptic-curve key, or nil for RSA keys.
func (k *PublicKey) Curve() elliptic.Curve {
	if k.keyType != KeyTypeEllipticCurves {
		return nil
	}
	return k.ec.Curve
}

// PrivateKey wraps an RSA or elliptic-curve private key.
type PrivateKey struct {
	keyType KeyType
	rsa     *rsa.PrivateKey
	ec      *ecdsa.PrivateKey
}

// NewPrivateKey wraps an *rsa.PrivateKey or *ecdsa.PrivateKey.
func NewPrivateKey(key any) (*PrivateKey, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return &PrivateKey{keyType: KeyTypeRSA, rsa: k}, nil
	case *ecdsa.PrivateKey:
		return &PrivateKey{keyType: KeyTypeEllipticCurves, ec: k}, nil
	default:
		return nil, newKeyError(fmt.Sprintf("unsupported private key type %T", key), nil)
	}
}

// Type returns the key's algorithm family.
func (k *PrivateKey) Type() KeyType { return k.keyType }

// Equal reports whether both wrappers hold mathematically equal key material.
func (k *PrivateKey) Equal(other *PrivateKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.keyType != other.keyType {
		return false
	}
	switch k.keyType {
	case KeyTypeRSA:
		return k.rsa.Equal(other.rsa)
	case KeyTypeEllipticCurves:
		return k.ec.Equal(other.ec)
	default:
		return false
	}
}

// DerivePublicKey computes the matching public key. For RSA the public
// components are already present in the private key; for elliptic curves the
// public point is the curve generator multiplied by the private scalar.
func (k *PrivateKey) DerivePublicKey() (*PublicKey, error) {
	switch k.keyType {
	case KeyTypeRSA:
		return &PublicKey{keyType: KeyTypeRSA, rsa: &k.rsa.PublicKey}, nil
	case KeyTypeEllipticCurves:
		return &PublicKey{keyType: KeyTypeEllipticCurves, ec: &k.ec.PublicKey}, nil
	default:
		return nil, newKeyError(fmt.Sprintf("cannot derive public key for key type %v", k.keyType), nil)
	}
}

// KeyPair is the ownership pairing of one public and one private key of the
// same type.
type KeyPair struct {
	public  *PublicKey
	private *PrivateKey
}

// NewKeyPair pairs a public and a private key, validating that both have the
// same key type.
func NewKeyPair(public *PublicKey, private *PrivateKey) (*KeyPair, error) {
	if public == nil || private == nil {
		return nil, newKeyError("key pair requires both a public and a private key", nil)
	}
	if public.keyType != private.keyType {
		return nil, newKeyError(fmt.Sprintf("key type mismatch: public is %v, private is %v",
			public.keyType, private.keyType), nil)
	}
	return &KeyPair{public: public, private: private}, nil
}

// KeyPairFromPrivate builds a key pair by deriving the public key from the
// given private key.
func KeyPairFromPrivate(private *PrivateKey) (*KeyPair, error) {
	if private == nil {
		return nil, newKeyError("nil private key", nil)
	}
	public, err := private.DerivePublicKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{public: public, private: private}, nil
}

// Public returns the public half of the pair.
func (kp *KeyPair) Public() *PublicKey { return kp.public }

// Private returns the private half of the pair.
func (kp *KeyPair) Private() *PrivateKey { return kp.private }

// curveForBitLength maps a requested key size to a NIST curve.
func curveForBitLength(bits int) (elliptic.Curve, error) {
	switch bits {
	case 256:
		return elliptic.P256(), nil
	case 384:
		return elliptic.P384(), nil
	case 521:
		return elliptic.P521(), nil
	default:
		return nil, newKeyError(fmt.Sprintf("no named curve for %d bit keys", bits), nil)
	}
}

// GenerateKeyPair produces a fresh key pair from the given random source.
// For elliptic-curve keys an explicit curve may be passed; when curve is nil
// one is chosen to match the requested bit length (256, 384 or 521).
// The bit length is ignored for elliptic-curve keys with an explicit curve.
func GenerateKeyPair(random io.Reader, keyType KeyType, bits int, curve elliptic.Curve) (*KeyPair, error) {
	if random == nil {
		return nil, newKeyError("nil random source", nil)
	}
	switch keyType {
	case KeyTypeRSA:
		key, err := rsa.GenerateKey(random, bits)
		if err != nil {
			return nil, newKeyError("RSA key generation failed", err)
		}
		logrus.WithFields(logrus.Fields{
			"function": "GenerateKeyPair",
			"key_type": keyType.String(),
			"bits":     bits,
		}).Debug("Generated key pair")
		return &KeyPair{
			public:  &PublicKey{keyType: KeyTypeRSA, rsa: &key.PublicKey},
			private: &PrivateKey{keyType: KeyTypeRSA, rsa: key},
		}, nil
	case KeyTypeEllipticCurves:
		if curve == nil {
			var err error
			curve, err = curveForBitLength(bits)
			if err != nil {
				return nil, err
			}
		}
		key, err := ecdsa.GenerateKey(curve, random)
		if err != nil {
			return nil, newKeyError("EC key generation failed", err)
		}
		logrus.WithFields(logrus.Fields{
			"function": "GenerateKeyPair",
			"key_type": keyType.String(),
			"curve":    curve.Params().Name,
		}).Debug("Generated key pair")
		return &KeyPair{
			public:  &PublicKey{keyType: KeyTypeEllipticCurves, ec: &key.PublicKey},
			private: &PrivateKey{keyType: KeyTypeEllipticCurves, ec: key},
		}, nil
	default:
		return nil, newKeyError(fmt.Sprintf("unsupported key type %v", keyType), nil)
	}
}
