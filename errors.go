package schnorr

import (
	"github.com/privacybydesign/schnorr/group"
	"github.com/privacybydesign/schnorr/internal/common"
	"github.com/privacybydesign/schnorr/replay"
)

// ErrorKind classifies the errors returned by this package. Returned errors carry a stack trace
// and detail, and match their kind with errors.Is.
type ErrorKind = common.ErrorKind

const (
	ErrInvalidState      ErrorKind = "operation not valid in the current session state"
	ErrInvalidCommitment ErrorKind = "commitment out of range"
	ErrInvalidChallenge  ErrorKind = "challenge out of range"
	ErrInvalidResponse   ErrorKind = "malformed response"
	ErrInvalidPublicKey  ErrorKind = "public key is not in the subgroup"
	ErrSessionMismatch   ErrorKind = "message belongs to another session"

	ErrParameterGeneration = group.ErrParameterGeneration
	ErrInvalidParameters   = group.ErrInvalidParameters
	ErrReplayDetected      = replay.ErrReplayDetected
)
