package core

import "github.com/bytedance/sonic"

// JSON is the codec used for envelopes, parameters and exchange responses.
// Numbers decode as json.Number so values are re-emitted exactly as received.
// Invalid UTF-8 is rejected on decode and replaced on encode, so every
// emitted line is valid UTF-8.
var JSON = sonic.Config{
	UseNumber:        true,
	SortMapKeys:      true,
	CompactMarshaler: true,
	CopyString:       true,
	ValidateString:   true,
}.Froze()
