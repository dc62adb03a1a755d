package streamdecode

import "encoding/base64"

// decodeBase64 decodes a bytes field's accumulated string value per proto3
// JSON rules (spec.md §4.6): length must be a multiple of 4, and '='
// padding is legal only in the final 4-character chunk, as either one
// trailing '=' or two. This repo keeps the original's padding strictness
// (DESIGN.md "Open-question decisions"), delegating the actual decode to
// the standard library rather than a hand-rolled 256-entry table (see
// DESIGN.md "stdlib justifications").
func decodeBase64(s []byte) ([]byte, error) {
	if len(s)%4 != 0 {
		return nil, base64Errorf("base64 input length %d is not a multiple of 4", len(s))
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			continue
		}
		inFinalChunk := i >= len(s)-4
		inTrailingPosition := i >= len(s)-2
		if !inFinalChunk || !inTrailingPosition {
			return nil, base64Errorf("unexpected padding character '=' at offset %d", i)
		}
	}
	if len(s) >= 4 {
		final := s[len(s)-4:]
		if final[2] == '=' && final[3] != '=' {
			return nil, base64Errorf("invalid padding in final chunk %q", final)
		}
	}
	out := make([]byte, base64.StdEncoding.DecodedLen(len(s)))
	n, err := base64.StdEncoding.Decode(out, s)
	if err != nil {
		return nil, base64Errorf("%s", err)
	}
	return out[:n], nil
}
