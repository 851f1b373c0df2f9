// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import "errors"

// Sentinel errors surfaced by Engine.Send and friends. Decode/integrity
// errors (ErrCOBSMalformed, ErrCRCMismatch, ErrZeroID, ErrFrameTooShort,
// ErrBlockOverflow) are never returned to a caller of Send — the
// receiver loop (Engine.readLoop) drops them, logging every one except
// ErrFrameTooShort, which it drops silently.

// ErrRetriesExhausted is returned by Send when all attempts for a command
// timed out without a matching ACK.
var ErrRetriesExhausted = errors.New("linkproto: no ack after max attempts")

// ErrEngineClosed is returned by Send (and any other blocking call) once
// the engine's Close method has run.
var ErrEngineClosed = errors.New("linkproto: engine closed")
