package security

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrMalformedHash は保存されたハッシュ文字列を解釈できないことを表す。
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrInvalidParams はargon2idのTimeまたはThreadsが0であることを表す。
	ErrInvalidParams = errors.New("argon2 time and threads must be at least 1")
)

const (
	argonSaltLen = 16
	argonKeyLen  = 32
)

// Argon2Params はargon2idのコストパラメータ。
type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// PasswordHasher はargon2idでパスワードをハッシュ化・照合する。
// 出力はPHC形式の文字列で、ソルトとパラメータを含む。
// 計算はCPUとメモリを大量に使うため、同時実行数をセマフォで制限する。
type PasswordHasher struct {
	params Argon2Params
	sem    *semaphore.Weighted

	dummyOnce sync.Once
	dummyHash string
}

// NewPasswordHasher はPasswordHasherを生成する。maxConcurrentが1未満の場合は1とする。
func NewPasswordHasher(params Argon2Params, maxConcurrent int) *PasswordHasher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PasswordHasher{
		params: params,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash はパスワードのargon2idハッシュをPHC形式で返す。
// ctxがキャンセルされた場合は計算枠の取得を諦めてエラーを返す。
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := h.derive(ctx, password, salt, h.params, argonKeyLen)
	if err != nil {
		return "", err
	}

	return encodeHash(h.params, salt, key), nil
}

// Verify はpasswordがencodedと一致するかを定数時間で照合する。
// 不一致はfalse, nilを返す。エラーはハッシュ形式の不正かctxのキャンセル時のみ。
func (h *PasswordHasher) Verify(ctx context.Context, encoded, password string) (bool, error) {
	params, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	got, err := h.derive(ctx, password, salt, params, uint32(len(want)))
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// VerifyDummy は存在しないユーザーのログイン時に呼び、照合と同じ計算コストを消費する。
// 結果は常に不一致として扱う。
func (h *PasswordHasher) VerifyDummy(ctx context.Context, password string) error {
	h.dummyOnce.Do(func() {
		h.dummyHash = encodeHash(h.params, make([]byte, argonSaltLen), make([]byte, argonKeyLen))
	})
	_, err := h.Verify(ctx, h.dummyHash, password)
	return err
}

// derive は計算枠を1つ確保してargon2idの鍵を導出する。
// 枠は導出が途中で失敗しても必ず返却される。
func (h *PasswordHasher) derive(ctx context.Context, password string, salt []byte, p Argon2Params, keyLen uint32) ([]byte, error) {
	if p.Time < 1 || p.Threads < 1 {
		return nil, ErrInvalidParams
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	return argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Threads, keyLen), nil
}

// encodeHash は $argon2id$v=19$m=...,t=...,p=...$salt$key 形式の文字列を組み立てる。
func encodeHash(p Argon2Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if p.Time == 0 || p.Threads == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	return p, salt, key, nil
}
