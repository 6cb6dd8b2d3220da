package crypto

import "errors"

// ErrStreamClosed is returned by encryption and decryption streams after Close.
var ErrStreamClosed = errors.New("stream already closed")

// ErrStreamIndexOutOfRange is returned when a stream index is negative or not
// below the number of streams the encryptor or decryptor was created for.
var ErrStreamIndexOutOfRange = errors.New("stream index out of range")

// KeyError reports malformed, mismatched or undecodable key material, or an
// unsupported key algorithm.
type KeyError struct {
	msg   string
	cause error
}

func newKeyError(msg string, cause error) *KeyError {
	return &KeyError{msg: msg, cause: cause}
}

func (e *KeyError) Error() string {
	if e.cause != nil {
		return "key error: " + e.msg + ": " + e.cause.Error()
	}
	return "key error: " + e.msg
}

func (e *KeyError) Unwrap() error { return e.cause }

// EncryptionError reports a failure while wrapping a data key or encrypting
// data.
type EncryptionError struct {
	msg   string
	cause error
}

func newEncryptionError(msg string, cause error) *EncryptionError {
	return &EncryptionError{msg: msg, cause: cause}
}

func (e *EncryptionError) Error() string {
	if e.cause != nil {
		return "encryption error: " + e.msg + ": " + e.cause.Error()
	}
	return "encryption error: " + e.msg
}

func (e *EncryptionError) Unwrap() error { return e.cause }

// DecryptionError reports a failure while unwrapping a data key or decrypting
// data, including AEAD authentication failures.
type DecryptionError struct {
	msg   string
	cause error
}

func newDecryptionError(msg string, cause error) *DecryptionError {
	return &DecryptionError{msg: msg, cause: cause}
}

func (e *DecryptionError) Error() string {
	if e.cause != nil {
		return "decryption error: " + e.msg + ": " + e.cause.Error()
	}
	return "decryption error: " + e.msg
}

func (e *DecryptionError) Unwrap() error { return e.cause }

// SignatureError reports a signing failure or a signature that did not verify.
type SignatureError struct {
	msg   string
	cause error
}

func newSignatureError(msg string, cause error) *SignatureError {
	return &SignatureError{msg: msg, cause: cause}
}

func (e *SignatureError) Error() string {
	if e.cause != nil {
		return "signature error: " + e.msg + ": " + e.cause.Error()
	}
	return "signature error: " + e.msg
}

func (e *SignatureError) Unwrap() error { return e.cause }

// PemError reports a PEM container that did not hold the expected object type,
// or was empty when one object was required.
type PemError struct {
	msg   string
	cause error
}

func newPemError(msg string, cause error) *PemError {
	return &PemError{msg: msg, cause: cause}
}

func (e *PemError) Error() string {
	if e.cause != nil {
		return "pem error: " + e.msg + ": " + e.cause.Error()
	}
	return "pem error: " + e.msg
}

func (e *PemError) Unwrap() error { return e.cause }

// CertificateError reports a certificate construction or validation setup
// failure. Routine invalidity (expiry, bad signature) is reported through
// CertificateCheckResult instead.
type CertificateError struct {
	msg   string
	cause error
}

func newCertificateError(msg string, cause error) *CertificateError {
	return &CertificateError{msg: msg, cause: cause}
}

func (e *CertificateError) Error() string {
	if e.cause != nil {
		return "certificate error: " + e.msg + ": " + e.cause.Error()
	}
	return "certificate error: " + e.msg
}

func (e *CertificateError) Unwrap() error { return e.cause }
