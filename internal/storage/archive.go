package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Encrypted export archives. The passphrase is only ever used to derive the
// key and is never written into the archive; the same passphrase must be
// supplied again to restore.

var (
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	ErrInvalidArchive    = errors.New("invalid archive format")
)

const (
	MinPassphraseLength = 8

	archiveMagic     = "SELARC1"
	archiveSaltSize  = 32
	archiveNonceSize = 12
	pbkdf2Iterations = 100_000
	derivedKeySize   = 32
)

// EncryptArchive seals payload with AES-256-GCM under a key derived from the
// passphrase via PBKDF2-SHA256. Layout: magic, salt, nonce, ciphertext.
func EncryptArchive(payload []byte, passphrase string) ([]byte, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLength)
	}

	salt := make([]byte, archiveSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, archiveNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealer, err := newArchiveSealer(passphrase, salt)
	if err != nil {
		return nil, err
	}

	ciphertext := sealer.Seal(nil, nonce, payload, nil)

	archive := make([]byte, 0, len(archiveMagic)+archiveSaltSize+archiveNonceSize+len(ciphertext))
	archive = append(archive, archiveMagic...)
	archive = append(archive, salt...)
	archive = append(archive, nonce...)
	archive = append(archive, ciphertext...)
	return archive, nil
}

// DecryptArchive opens an archive produced by EncryptArchive. An
// authentication failure reports ErrInvalidPassphrase, since a wrong
// passphrase and a tampered archive are indistinguishable.
func DecryptArchive(archive []byte, passphrase string) ([]byte, error) {
	headerSize := len(archiveMagic) + archiveSaltSize + archiveNonceSize
	if len(archive) < headerSize {
		return nil, ErrInvalidArchive
	}
	if !bytes.HasPrefix(archive, []byte(archiveMagic)) {
		return nil, ErrInvalidArchive
	}

	salt := archive[len(archiveMagic) : len(archiveMagic)+archiveSaltSize]
	nonce := archive[len(archiveMagic)+archiveSaltSize : headerSize]
	ciphertext := archive[headerSize:]

	opener, err := newArchiveSealer(passphrase, salt)
	if err != nil {
		return nil, err
	}

	payload, err := opener.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPassphrase, err)
	}
	return payload, nil
}

func newArchiveSealer(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, derivedKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return aead, nil
}
