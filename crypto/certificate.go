package crypto

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"
)

// Certificate wraps an X.509 certificate. The underlying library object is an
// internal handle; consumers interact with it through the accessors below.
type Certificate struct {
	wrapped *x509.Certificate
}

// SubjectName returns the certificate's subject distinguished name.
func (c *Certificate) SubjectName() string { return c.wrapped.Subject.String() }

// IssuerName returns the certificate's issuer distinguished name.
func (c *Certificate) IssuerName() string { return c.wrapped.Issuer.String() }

// NotBefore returns the start of the validity window.
func (c *Certificate) NotBefore() time.Time { return c.wrapped.NotBefore }

// NotAfter returns the end of the validity window.
func (c *Certificate) NotAfter() time.Time { return c.wrapped.NotAfter }

// PublicKey returns the key embedded in the certificate.
func (c *Certificate) PublicKey() (*PublicKey, error) {
	key, err := NewPublicKey(c.wrapped.PublicKey)
	if err != nil {
		return nil, newCertificateError("certificate carries an unsupported key", err)
	}
	return key, nil
}

// KeyID returns the identifier of the certificate's embedded public key.
func (c *Certificate) KeyID() (KeyID, error) {
	key, err := c.PublicKey()
	if err != nil {
		return KeyID{}, err
	}
	return CalculateKeyID(key)
}

// Raw returns the DER encoding of the certificate.
func (c *Certificate) Raw() []byte {
	return append([]byte(nil), c.wrapped.Raw...)
}

// CertificateCheckResult classifies the outcome of a certificate validity
// check. Routine invalidity is a result value, not an error, so callers can
// branch on the reason without exception-style control flow.
type CertificateCheckResult int

const (
	CertificateValid CertificateCheckResult = iota
	CertificateOutOfValidityPeriod
	CertificateInvalidSignature
	CertificateOtherError
)

func (r CertificateCheckResult) String() string {
	switch r {
	case CertificateValid:
		return "Valid"
	case CertificateOutOfValidityPeriod:
		return "OutOfValidityPeriod"
	case CertificateInvalidSignature:
		return "InvalidSignature"
	case CertificateOtherError:
		return "OtherError"
	default:
		return fmt.Sprintf("CertificateCheckResult(%d)", int(r))
	}
}

func digestForSignatureAlgorithm(alg x509.SignatureAlgorithm) (SignatureDigest, bool) {
	switch alg {
	case x509.SHA256WithRSA, x509.ECDSAWithSHA256:
		return DigestSHA256, true
	case x509.SHA384WithRSA, x509.ECDSAWithSHA384:
		return DigestSHA384, true
	case x509.SHA512WithRSA, x509.ECDSAWithSHA512:
		return DigestSHA512, true
	default:
		return 0, false
	}
}

// CheckCertificate verifies the certificate's time-validity window at the
// given instant and its signature against a trusted issuer public key. It
// never returns an error result for routine invalidity; only setup problems
// (nil inputs, unsupported signature algorithm) yield CertificateOtherError.
func CheckCertificate(cert *Certificate, issuerKey *PublicKey, now time.Time) CertificateCheckResult {
	if cert == nil || cert.wrapped == nil || issuerKey == nil {
		return CertificateOtherError
	}
	if now.Before(cert.wrapped.NotBefore) || now.After(cert.wrapped.NotAfter) {
		return CertificateOutOfValidityPeriod
	}
	digest, ok := digestForSignatureAlgorithm(cert.wrapped.SignatureAlgorithm)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function":  "CheckCertificate",
			"algorithm": cert.wrapped.SignatureAlgorithm.String(),
		}).Warn("Certificate uses an unsupported signature algorithm")
		return CertificateOtherError
	}
	verifier, err := NewSignatureVerifier(issuerKey, digest)
	if err != nil {
		return CertificateOtherError
	}
	if _, err := verifier.Write(cert.wrapped.RawTBSCertificate); err != nil {
		return CertificateOtherError
	}
	if !verifier.IsValidSignature(cert.wrapped.Signature) {
		return CertificateInvalidSignature
	}
	return CertificateValid
}

func signatureAlgorithmFor(keyType KeyType, digest SignatureDigest) (x509.SignatureAlgorithm, error) {
	switch keyType {
	case KeyTypeRSA:
		switch digest {
		case DigestSHA256:
			return x509.SHA256WithRSA, nil
		case DigestSHA384:
			return x509.SHA384WithRSA, nil
		case DigestSHA512:
			return x509.SHA512WithRSA, nil
		}
	case KeyTypeEllipticCurves:
		switch digest {
		case DigestSHA256:
			return x509.ECDSAWithSHA256, nil
		case DigestSHA384:
			return x509.ECDSAWithSHA384, nil
		case DigestSHA512:
			return x509.ECDSAWithSHA512, nil
		}
	}
	return 0, newCertificateError(fmt.Sprintf("no signature algorithm for key type %v with digest %v", keyType, digest), nil)
}

func (k *PublicKey) raw() any {
	switch k.keyType {
	case KeyTypeRSA:
		return k.rsa
	case KeyTypeEllipticCurves:
		return k.ec
	default:
		return nil
	}
}

func (k *PrivateKey) raw() any {
	switch k.keyType {
	case KeyTypeRSA:
		return k.rsa
	case KeyTypeEllipticCurves:
		return k.ec
	default:
		return nil
	}
}

// CreateCertificate issues a certificate binding subjectKey to subjectName,
// signed by the issuer key pair. When issuerName equals subjectName and the
// issuer key pair matches subjectKey, the result is self-signed.
func CreateCertificate(random io.Reader, subjectName string, subjectKey *PublicKey,
	issuerName string, issuerKeyPair *KeyPair,
	notBefore, notAfter time.Time, digest SignatureDigest) (*Certificate, error) {
	if random == nil {
		random = rand.Reader
	}
	if subjectKey == nil || issuerKeyPair == nil {
		return nil, newCertificateError("subject key and issuer key pair are required", nil)
	}
	if !notAfter.After(notBefore) {
		return nil, newCertificateError("validity period is empty", nil)
	}
	sigAlg, err := signatureAlgorithmFor(issuerKeyPair.private.keyType, digest)
	if err != nil {
		return nil, err
	}
	serialLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(random, serialLimit)
	if err != nil {
		return nil, newCertificateError("cannot generate serial number", err)
	}
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: subjectName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		SignatureAlgorithm:    sigAlg,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		BasicConstraintsValid: true,
	}
	parent := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: issuerName},
	}
	der, err := x509.CreateCertificate(random, template, parent, subjectKey.raw(), issuerKeyPair.private.raw())
	if err != nil {
		return nil, newCertificateError("certificate creation failed", err)
	}
	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, newCertificateError("cannot parse created certificate", err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "CreateCertificate",
		"subject":  subjectName,
		"issuer":   issuerName,
	}).Debug("Issued certificate")
	return &Certificate{wrapped: parsed}, nil
}
