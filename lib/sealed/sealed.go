// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"
)

// Keypair is an age x25519 keypair in its string encodings.
type Keypair struct {
	// PrivateKey is the AGE-SECRET-KEY-1... identity. It must never be
	// logged or passed on a command line.
	PrivateKey string

	// PublicKey is the age1... recipient.
	PublicKey string
}

// GenerateKeypair returns a fresh x25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}
	return &Keypair{
		PrivateKey: identity.String(),
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// WriteIdentityFile writes keypair to path in age-keygen format with
// mode 0600. An existing file is never overwritten.
func WriteIdentityFile(path string, keypair *Keypair, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating identity directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating identity file: %w", err)
	}
	_, err = fmt.Fprintf(file, "# created: %s\n# public key: %s\n%s\n",
		now.Format(time.RFC3339), keypair.PublicKey, keypair.PrivateKey)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("writing identity file: %w", err)
	}
	return nil
}

// ParsePublicKey validates an age1... recipient string.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}

// Sealer encrypts to a fixed recipient set and decrypts with one
// identity.
type Sealer struct {
	identity   *age.X25519Identity
	recipients []age.Recipient
	publicKeys []string
}

// NewSealer returns a Sealer for the given private key. The key's own
// recipient is always included; extraRecipients are added after it.
func NewSealer(privateKey string, extraRecipients []string) (*Sealer, error) {
	identity, err := age.ParseX25519Identity(privateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid age private key: %w", err)
	}

	own := identity.Recipient()
	sealer := &Sealer{
		identity:   identity,
		recipients: []age.Recipient{own},
		publicKeys: []string{own.String()},
	}
	for _, key := range extraRecipients {
		if key == own.String() {
			continue
		}
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		sealer.recipients = append(sealer.recipients, recipient)
		sealer.publicKeys = append(sealer.publicKeys, key)
	}
	return sealer, nil
}

// LoadSealer reads the first x25519 identity from identityFile.
func LoadSealer(identityFile string, extraRecipients []string) (*Sealer, error) {
	data, err := os.ReadFile(identityFile)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}
	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing identity file %s: %w", identityFile, err)
	}
	for _, identity := range identities {
		if x25519, ok := identity.(*age.X25519Identity); ok {
			return NewSealer(x25519.String(), extraRecipients)
		}
	}
	return nil, fmt.Errorf("identity file %s holds no x25519 identity", identityFile)
}

// Recipients returns the public keys documents are sealed to, the
// sealer's own first.
func (s *Sealer) Recipients() []string {
	return append([]string(nil), s.publicKeys...)
}

// Seal encrypts plaintext to every recipient. The result is the binary
// age format.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, s.recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// ErrNotSealedForUs is returned by Open when the document was sealed
// without this sealer's recipient.
var ErrNotSealedForUs = errors.New("document is not sealed to this identity")

// Open decrypts a document produced by Seal.
func (s *Sealer) Open(ciphertext []byte) ([]byte, error) {
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), s.identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrNotSealedForUs
		}
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}
