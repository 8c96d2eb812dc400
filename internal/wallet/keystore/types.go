package keystore

import "github.com/pkg/errors"

var (
	ErrNotFound      = errors.New("keystore not found")
	ErrAlreadyExists = errors.New("keystore already exists")
	ErrInvalidPass   = errors.New("invalid password: MAC mismatch")
)

// KeyType identifies the curve of the stored secret
type KeyType string

const (
	KeyTypeSecp256k1 KeyType = "secp256k1"
	KeyTypeEd25519   KeyType = "ed25519"
)

// Keystore is a single encrypted key file
type Keystore struct {
	KeystoreJSON
	Path string `json:"-"`
}

// KeystoreJSON represents the Ethereum keystore v3 JSON structure,
// extended with the key type so ed25519 seeds can share the format.
//
//nolint:revive // KeystoreJSON is the standard name for Ethereum keystore JSON structure
type KeystoreJSON struct {
	Version int     `json:"version"`
	ID      string  `json:"id"`
	Address string  `json:"address"`
	KeyType KeyType `json:"keyType"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// ScryptParams defines scrypt KDF parameters
type ScryptParams struct {
	DKLen int // Derived key length (32 bytes)
	Salt  []byte
	N     int // CPU/memory cost parameter (262144)
	R     int // Block size parameter (8)
	P     int // Parallelization parameter (1)
}

// DefaultScryptParams returns default scrypt parameters for Ethereum keystore v3
func DefaultScryptParams() *ScryptParams {
	const (
		scryptDKLen = 32     // Derived key length (32 bytes)
		scryptN     = 262144 // CPU/memory cost parameter (2^18)
		scryptR     = 8      // Block size parameter
		scryptP     = 1      // Parallelization parameter
	)

	return &ScryptParams{
		DKLen: scryptDKLen,
		N:     scryptN,
		R:     scryptR,
		P:     scryptP,
	}
}

// LightScryptParams trades strength for speed, for tests and throwaway keys
func LightScryptParams() *ScryptParams {
	params := DefaultScryptParams()
	params.N = 1 << 12
	return params
}
