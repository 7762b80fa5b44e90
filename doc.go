// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schnorr implements the Schnorr identification protocol: a prover convinces a verifier
// that it knows the discrete logarithm x of its public key y = g^x mod p, without revealing x.
//
// A session consists of three moves. The Prover sends a Commitment r = g^k for a fresh random k,
// the Verifier answers with a random Challenge c, and the Prover sends the Response
// s = k + c*x mod q. The Verifier accepts if g^s = r*y^c mod p. Both sides are explicit state
// machines; a Prover or Verifier handles exactly one session and is discarded afterwards.
// Verifiers share a ReplayGuard, such as replay.Window, that refuses commitments seen before.
//
// Prove and VerifyProof implement the non-interactive variant, in which the challenge is derived
// from a hash of the group, the public key, the commitment and a caller-supplied context.
//
// Transport of the messages is left to the caller; Commitment, Challenge and Response have
// deterministic CBOR encodings for that purpose. See schnorr_test.go for complete examples.
package schnorr
