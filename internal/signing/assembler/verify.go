package assembler

import "crypto/ed25519"

func verifyEd25519(pub []byte, message []byte, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(pub, message, sig)
}
