// Package crypto implements end-to-end envelope encryption with multi-recipient
// key wrapping.
//
// Every data object is encrypted under a fresh 256-bit symmetric data key using
// AES-256-CCM, and the data key is wrapped once per authorized recipient: with
// RSA-PKCS1v1.5 for RSA recipients, or with an ECDH agreement plus KDF2-SHA256
// and AES-256-CCM for elliptic-curve recipients. The resulting metadata envelope
// ([EncryptionInfo]) lets any authorized recipient recover the data key without
// the sender needing recipient-specific logic at the call site.
//
// # Core Types
//
//   - [KeyPair], [PublicKey], [PrivateKey]: tagged wrappers around RSA or
//     elliptic-curve keys, with stable content-derived identifiers ([KeyID])
//   - [DataEncryptor] / [DataDecryptor]: per-object symmetric encryption of one
//     or more logical streams
//   - [KeyEncryptor] / [KeyDecryptor]: recipient fanout wrapping and unwrapping
//     of the data key
//   - [EncryptionInfo]: the serializable envelope (nonces + wrapped keys)
//
// # Encrypting for multiple recipients
//
//	enc, _ := crypto.NewDataEncryptor(rand.Reader, 1)
//	defer enc.Close()
//	ciphertext, _ := enc.EncryptData(plaintext, 0)
//
//	ke, _ := crypto.NewKeyEncryptor(recipients, rand.Reader, true)
//	info, _ := enc.GenerateEncryptionInfo(ke)
//	// persist ciphertext and info together
//
// # Decrypting as one recipient
//
//	kd, _ := crypto.NewKeyDecryptor(myKeyPair)
//	dec, _ := crypto.DataDecryptorFromEncryptionInfo(info, kd)
//	if dec == nil {
//	    // this key pair is not an authorized recipient; not an error
//	}
//	plaintext, _ := dec.DecryptData(ciphertext, 0)
//
// # Signatures and certificates
//
// [SignatureGenerator] and [SignatureVerifier] sign and verify arbitrary byte
// streams with RSA or ECDSA over a selectable digest. [CheckCertificate]
// classifies a certificate's validity against a trusted issuer key without
// exception-style control flow.
//
// # Secure Memory Handling
//
// Raw data keys and derived AES keys are wiped with [SecureWipe] as soon as the
// owning operation completes. Callers should Close encryptors and decryptors
// when done so buffered key material is zeroed.
//
// # Shared ephemeral keys
//
// When a [KeyEncryptor] is constructed with allowSharedMessageKeyPair, one
// ephemeral EC key pair is generated for the most common recipient curve and
// reused for every recipient on that curve. Per-recipient secrecy is preserved
// because each AES wrapping key is derived from that recipient's own ECDH
// agreement; sharing only saves ephemeral key generation cost.
package crypto
