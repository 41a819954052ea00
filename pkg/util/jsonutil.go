package util

import "errors"

// ErrNoJSONObject indicates the model response contained no JSON object.
var ErrNoJSONObject = errors.New("no JSON object in response")

// ExtractJSONObject slices the substring between the first '{' and the last
// '}' of a model response, inclusive. Generative services tend to wrap JSON
// in prose or code fences; this strips the wrapping without attempting any
// deeper repair. Callers still have to decode the slice and fall back to
// their stage-specific default when decoding fails.
func ExtractJSONObject(raw string) (string, error) {
	first := -1
	last := -1
	for i := 0; i < len(raw); i++ {
		if raw[i] == '{' {
			first = i
			break
		}
	}
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] == '}' {
			last = i
			break
		}
	}
	if first == -1 || last == -1 || last < first {
		return "", ErrNoJSONObject
	}
	return raw[first : last+1], nil
}
