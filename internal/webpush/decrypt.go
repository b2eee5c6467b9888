package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// aes128gcm content coding per RFC 8188, keyed per RFC 8291: the push
// service's ephemeral public key travels in the header keyid field.

const (
	headerMinLen = 16 + 4 + 1
	tagLen       = 16
	minRecordLen = tagLen + 1 // tag plus the padding delimiter
)

var ErrTruncated = errors.New("webpush: truncated payload")

// Decrypt opens an aes128gcm push payload with the subscription's UA keys
// and returns the plaintext message body.
func Decrypt(keys *UAKeys, body []byte) ([]byte, error) {
	if keys == nil || keys.PrivateKey == nil {
		return nil, errors.New("webpush: no subscription keys")
	}
	if len(body) < headerMinLen {
		return nil, ErrTruncated
	}

	salt := body[:16]
	rs := binary.BigEndian.Uint32(body[16:20])
	idLen := int(body[20])
	if rs < minRecordLen+1 {
		return nil, fmt.Errorf("webpush: record size %d too small", rs)
	}
	if len(body) < headerMinLen+idLen {
		return nil, ErrTruncated
	}
	keyID := body[headerMinLen : headerMinLen+idLen]
	records := body[headerMinLen+idLen:]
	if len(records) == 0 {
		return nil, ErrTruncated
	}

	asPub, err := ecdh.P256().NewPublicKey(keyID)
	if err != nil {
		return nil, fmt.Errorf("webpush: bad sender key: %w", err)
	}
	shared, err := keys.PrivateKey.ECDH(asPub)
	if err != nil {
		return nil, err
	}

	// RFC 8291 section 3.3/3.4 key derivation.
	uaPub := keys.PrivateKey.PublicKey().Bytes()
	keyInfo := append(append([]byte("WebPush: info\x00"), uaPub...), keyID...)
	ikm, err := readHKDF(shared, keys.AuthSecret, keyInfo, 32)
	if err != nil {
		return nil, err
	}
	cek, err := readHKDF(ikm, salt, []byte("Content-Encoding: aes128gcm\x00"), 16)
	if err != nil {
		return nil, err
	}
	baseNonce, err := readHKDF(ikm, salt, []byte("Content-Encoding: nonce\x00"), 12)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	var plaintext []byte
	var seq uint64
	for len(records) > 0 {
		n := int(rs)
		if n > len(records) {
			n = len(records)
		}
		if n < minRecordLen {
			return nil, ErrTruncated
		}
		record := records[:n]
		records = records[n:]
		last := len(records) == 0

		chunk, err := gcm.Open(nil, recordNonce(baseNonce, seq), record, nil)
		if err != nil {
			return nil, fmt.Errorf("webpush: decrypt failed: %w", err)
		}
		chunk, err = stripPadding(chunk, last)
		if err != nil {
			return nil, err
		}
		plaintext = append(plaintext, chunk...)
		seq++
	}
	return plaintext, nil
}

func readHKDF(secret, salt, info []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, err
	}
	return out, nil
}

// recordNonce XORs the record sequence number into the base nonce.
func recordNonce(base []byte, seq uint64) []byte {
	nonce := make([]byte, len(base))
	copy(nonce, base)
	for i := 0; i < 8; i++ {
		nonce[len(nonce)-1-i] ^= byte(seq >> (8 * i))
	}
	return nonce
}

// stripPadding removes the RFC 8188 delimiter (0x02 on the final record,
// 0x01 otherwise) and any trailing zero padding.
func stripPadding(chunk []byte, last bool) ([]byte, error) {
	i := len(chunk) - 1
	for i >= 0 && chunk[i] == 0 {
		i--
	}
	if i < 0 {
		return nil, errors.New("webpush: all-zero record")
	}
	want := byte(0x01)
	if last {
		want = 0x02
	}
	if chunk[i] != want {
		return nil, fmt.Errorf("webpush: bad padding delimiter %#x", chunk[i])
	}
	return chunk[:i], nil
}
