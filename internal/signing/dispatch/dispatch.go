package dispatch

import (
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signerrors"
)

// Select maps an account profile to the backend that can sign for it.
// The first matching rule wins.
func Select(profile request.AccountProfile) request.Backend {
	switch {
	case profile.IsReadOnly:
		return request.BackendReadOnly
	case profile.IsHardware:
		return request.BackendHardware
	case profile.IsExternal && profile.IsMultisig:
		return request.BackendInternal
	case profile.IsExternal && profile.IsProxied:
		return request.BackendInternal
	case profile.IsExternal:
		return request.BackendExternalQr
	case profile.IsInjected:
		return request.BackendInternal
	default:
		return request.BackendLocal
	}
}

// Refuse returns an UnsupportedFeatureError for profiles that must never reach a signer
func Refuse(profile request.AccountProfile) error {
	if Select(profile) == request.BackendReadOnly {
		return signerrors.NewUnsupportedFeature("account %s is read-only and cannot sign", profile.Address)
	}

	return nil
}
