package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/MatiasV55/eligibility-chatbot/pkg/ports"
)

// ErrNotSealed is returned when a stored turn is not an encrypted envelope.
var ErrNotSealed = errors.New("turn is missing encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.TranscriptStore
	config EncryptionConfig
}

// sealedPayload is the plaintext inside an envelope.
type sealedPayload struct {
	Role domain.Role `json:"role"`
	Text string      `json:"text"`
}

// NewEncryptionMiddleware creates a middleware that seals each turn with AES-256-GCM.
// The session id and seq are bound as associated data, so an envelope moved to another
// slot fails to open.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes (AES-256)", i)
		}
	}
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func associatedData(sessionID string, seq int) []byte {
	return []byte(sessionID + "\x00" + strconv.Itoa(seq))
}

func (m *encryptionMiddleware) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	plainText, err := json.Marshal(sealedPayload{Role: turn.Role, Text: turn.Text})
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey, associatedData(sessionID, turn.Seq))
	if err != nil {
		return fmt.Errorf("failed to encrypt turn: %w", err)
	}

	// Seq and At stay visible for ordering and auditing. Role and text are hidden.
	envelope := domain.Turn{
		Seq:  turn.Seq,
		Role: domain.RoleSealed,
		Text: base64.StdEncoding.EncodeToString(ciphertext),
		At:   turn.At,
	}

	return m.next.Append(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	envelopes, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	turns := make([]domain.Turn, 0, len(envelopes))
	for _, envelope := range envelopes {
		// Fail secure: plaintext turns are never passed through.
		if envelope.Role != domain.RoleSealed {
			return nil, fmt.Errorf("turn %d: %w", envelope.Seq, ErrNotSealed)
		}

		ciphertext, err := base64.StdEncoding.DecodeString(envelope.Text)
		if err != nil {
			return nil, fmt.Errorf("turn %d: failed to decode ciphertext base64: %w", envelope.Seq, err)
		}

		aad := associatedData(sessionID, envelope.Seq)
		plainText, err := decryptWithRotation(ciphertext, aad, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("turn %d: failed to decrypt: %w", envelope.Seq, err)
		}

		var payload sealedPayload
		if err := json.Unmarshal(plainText, &payload); err != nil {
			return nil, fmt.Errorf("turn %d: failed to unmarshal decrypted turn: %w", envelope.Seq, err)
		}

		turns = append(turns, domain.Turn{
			Seq:  envelope.Seq,
			Role: payload.Role,
			Text: payload.Text,
			At:   envelope.At,
		})
	}

	return turns, nil
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *encryptionMiddleware) Close() error {
	return m.next.Close()
}

// Helpers

func encrypt(plaintext, key, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, aad), nil
}

func decryptWithRotation(ciphertext, aad, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, aad, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, aad, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, aad, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, aad)
}
