package itemid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
)

// ID is a Jellyfin item identifier. Jellyfin derives it from an item's
// path and .NET type name rather than storing it independently, and the
// database persists it in GUID little-endian ("bytes_le") field order.
type ID struct {
	uuid.UUID
}

// FromBytesLE builds an ID from the 16-byte little-endian GUID layout used
// in library.db BLOB columns.
func FromBytesLE(raw []byte) (ID, error) {
	if len(raw) != 16 {
		return ID{}, fmt.Errorf("guid blob: expected 16 bytes, got %d", len(raw))
	}
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = raw[3], raw[2], raw[1], raw[0]
	u[4], u[5] = raw[5], raw[4]
	u[6], u[7] = raw[7], raw[6]
	copy(u[8:], raw[8:])
	return ID{u}, nil
}

// ParseHex parses the 32-character canonical hex rendering (no dashes).
func ParseHex(value string) (ID, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) != 32 {
		return ID{}, fmt.Errorf("guid hex: expected 32 characters, got %d", len(trimmed))
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return ID{}, fmt.Errorf("guid hex: %w", err)
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		return ID{}, fmt.Errorf("guid hex: %w", err)
	}
	return ID{u}, nil
}

// BytesLE returns the database BLOB representation.
func (id ID) BytesLE() []byte {
	raw := make([]byte, 16)
	raw[0], raw[1], raw[2], raw[3] = id.UUID[3], id.UUID[2], id.UUID[1], id.UUID[0]
	raw[4], raw[5] = id.UUID[5], id.UUID[4]
	raw[6], raw[7] = id.UUID[7], id.UUID[6]
	copy(raw[8:], id.UUID[8:])
	return raw
}

// Hex returns the canonical 32-character hex rendering used by
// metadata folder names and text columns such as TopParentId.
func (id ID) Hex() string {
	return hex.EncodeToString(id.UUID[:])
}

// Shard returns the two-character directory shard metadata folders are
// grouped under.
func (id ID) Shard() string {
	return id.Hex()[:2]
}

// IsZero reports whether the identifier is the all-zero GUID.
func (id ID) IsZero() bool {
	return id.UUID == uuid.Nil
}

// Hasher recomputes Jellyfin item identifiers. The algorithm is a fixed
// external contract (Jellyfin LibraryManager.GetNewItemIdInternal); any
// deviation yields identifiers the server will not recognize.
type Hasher struct {
	// ProgramData is the data path from the server's own perspective
	// (e.g. /config inside a container). Paths under it are hashed
	// relative, with backslash separators.
	ProgramData string

	// CaseSensitive matches the server's case sensitivity setting.
	// Current Jellyfin defaults to case sensitive.
	CaseSensitive bool
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Hash derives the identifier for a path and dotted .NET type name.
func (h Hasher) Hash(path, typeName string) (ID, error) {
	key := path
	if h.ProgramData != "" && strings.HasPrefix(key, h.ProgramData) {
		key = strings.TrimLeft(key[len(h.ProgramData):], "/\\")
		key = strings.ReplaceAll(key, "/", "\\")
	}
	if !h.CaseSensitive {
		key = strings.ToLower(key)
	}
	key = typeName + key

	encoded, err := utf16le.NewEncoder().Bytes([]byte(key))
	if err != nil {
		return ID{}, fmt.Errorf("encode hash key: %w", err)
	}
	sum := md5.Sum(encoded)
	return FromBytesLE(sum[:])
}
