package crypto

import (
	"bytes"
	"crypto/cipher"
	"io"
)

// encryptWriter buffers plaintext and seals it in one piece on Close, writing
// ciphertext plus authentication tag to the underlying writer. A failed Close
// discards the stream; no trustworthy bytes have been produced.
type encryptWriter struct {
	aead   cipher.AEAD
	iv     []byte
	out    io.Writer
	buf    bytes.Buffer
	closed bool
}

func (w *encryptWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrStreamClosed
	}
	return w.buf.Write(p)
}

func (w *encryptWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	clear := w.buf.Bytes()
	cipherText := w.aead.Seal(nil, w.iv, clear, nil)
	ZeroBytes(clear)
	w.buf.Reset()
	if _, err := w.out.Write(cipherText); err != nil {
		return newEncryptionError("cannot write ciphertext", err)
	}
	return nil
}

// decryptReader reads and authenticates the entire ciphertext before serving
// the first plaintext byte, so unverified plaintext is never observable.
type decryptReader struct {
	aead   cipher.AEAD
	iv     []byte
	in     io.Reader
	plain  []byte
	reader *bytes.Reader
	closed bool
}

func (r *decryptReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrStreamClosed
	}
	if r.reader == nil {
		cipherText, err := io.ReadAll(r.in)
		if err != nil {
			return 0, newDecryptionError("cannot read ciphertext", err)
		}
		r.plain, err = r.aead.Open(nil, r.iv, cipherText, nil)
		if err != nil {
			r.closed = true
			return 0, newDecryptionError("data authentication failed", err)
		}
		r.reader = bytes.NewReader(r.plain)
	}
	return r.reader.Read(p)
}

func (r *decryptReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.plain != nil {
		ZeroBytes(r.plain)
		r.plain = nil
		r.reader = nil
	}
	return nil
}

// passthroughWriter copies bytes verbatim for unencrypted mode.
type passthroughWriter struct {
	out    io.Writer
	closed bool
}

func (w *passthroughWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrStreamClosed
	}
	return w.out.Write(p)
}

func (w *passthroughWriter) Close() error {
	w.closed = true
	return nil
}

// passthroughReader copies bytes verbatim for unencrypted mode.
type passthroughReader struct {
	in     io.Reader
	closed bool
}

func (r *passthroughReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrStreamClosed
	}
	return r.in.Read(p)
}

func (r *passthroughReader) Close() error {
	r.closed = true
	return nil
}
