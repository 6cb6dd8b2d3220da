package crypto

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	// Register the SHA-2 hashes selected through SignatureDigest.
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"hash"
	"io"
)

// SignatureDigest selects the hash function used for signing and verification.
type SignatureDigest int

const (
	DigestSHA256 SignatureDigest = iota
	DigestSHA384
	DigestSHA512
)

func (d SignatureDigest) String() string {
	switch d {
	case DigestSHA256:
		return "SHA-256"
	case DigestSHA384:
		return "SHA-384"
	case DigestSHA512:
		return "SHA-512"
	default:
		return fmt.Sprintf("SignatureDigest(%d)", int(d))
	}
}

func (d SignatureDigest) hashFunc() (stdcrypto.Hash, error) {
	switch d {
	case DigestSHA256:
		return stdcrypto.SHA256, nil
	case DigestSHA384:
		return stdcrypto.SHA384, nil
	case DigestSHA512:
		return stdcrypto.SHA512, nil
	default:
		return 0, newKeyError(fmt.Sprintf("unsupported digest %d", int(d)), nil)
	}
}

// SignatureGenerator signs arbitrary-length content fed through Write. The
// concrete algorithm (RSA-PKCS1v1.5 or ECDSA) follows from the private key's
// type combined with the digest.
type SignatureGenerator struct {
	private *PrivateKey
	hashID  stdcrypto.Hash
	hash    hash.Hash
}

// NewSignatureGenerator creates a streaming signer for the given key and
// digest.
func NewSignatureGenerator(private *PrivateKey, digest SignatureDigest) (*SignatureGenerator, error) {
	if private == nil {
		return nil, newKeyError("nil private key", nil)
	}
	switch private.keyType {
	case KeyTypeRSA, KeyTypeEllipticCurves:
	default:
		return nil, newKeyError(fmt.Sprintf("unsupported key type %v for signing", private.keyType), nil)
	}
	hashID, err := digest.hashFunc()
	if err != nil {
		return nil, err
	}
	return &SignatureGenerator{private: private, hashID: hashID, hash: hashID.New()}, nil
}

// Write feeds content into the signer. It never fails; the io.Writer shape
// allows io.Copy from any content stream.
func (g *SignatureGenerator) Write(p []byte) (int, error) {
	return g.hash.Write(p)
}

// Sign produces the signature over all content written so far.
func (g *SignatureGenerator) Sign(random io.Reader) ([]byte, error) {
	digest := g.hash.Sum(nil)
	switch g.private.keyType {
	case KeyTypeRSA:
		sig, err := rsa.SignPKCS1v15(random, g.private.rsa, g.hashID, digest)
		if err != nil {
			return nil, newSignatureError("RSA signing failed", err)
		}
		return sig, nil
	case KeyTypeEllipticCurves:
		sig, err := ecdsa.SignASN1(random, g.private.ec, digest)
		if err != nil {
			return nil, newSignatureError("ECDSA signing failed", err)
		}
		return sig, nil
	default:
		return nil, newSignatureError(fmt.Sprintf("unsupported key type %v", g.private.keyType), nil)
	}
}

// SignatureVerifier verifies a signature over content fed through Write. The
// content must be byte-identical to what was signed.
type SignatureVerifier struct {
	public *PublicKey
	hashID stdcrypto.Hash
	hash   hash.Hash
}

// NewSignatureVerifier creates a streaming verifier for the given key and
// digest.
func NewSignatureVerifier(public *PublicKey, digest SignatureDigest) (*SignatureVerifier, error) {
	if public == nil {
		return nil, newKeyError("nil public key", nil)
	}
	switch public.keyType {
	case KeyTypeRSA, KeyTypeEllipticCurves:
	default:
		return nil, newKeyError(fmt.Sprintf("unsupported key type %v for verification", public.keyType), nil)
	}
	hashID, err := digest.hashFunc()
	if err != nil {
		return nil, err
	}
	return &SignatureVerifier{public: public, hashID: hashID, hash: hashID.New()}, nil
}

// Write feeds content into the verifier.
func (v *SignatureVerifier) Write(p []byte) (int, error) {
	return v.hash.Write(p)
}

// CheckSignature verifies the signature over all content written so far,
// returning a SignatureError on mismatch.
func (v *SignatureVerifier) CheckSignature(signature []byte) error {
	digest := v.hash.Sum(nil)
	switch v.public.keyType {
	case KeyTypeRSA:
		if err := rsa.VerifyPKCS1v15(v.public.rsa, v.hashID, digest, signature); err != nil {
			return newSignatureError("signature does not match content", err)
		}
		return nil
	case KeyTypeEllipticCurves:
		if !ecdsa.VerifyASN1(v.public.ec, digest, signature) {
			return newSignatureError("signature does not match content", nil)
		}
		return nil
	default:
		return newSignatureError(fmt.Sprintf("unsupported key type %v", v.public.keyType), nil)
	}
}

// IsValidSignature reports whether the signature matches the written content.
func (v *SignatureVerifier) IsValidSignature(signature []byte) bool {
	return v.CheckSignature(signature) == nil
}
