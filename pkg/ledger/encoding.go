package ledger

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// EncodingBase64 is the only account data encoding requested from the store.
const EncodingBase64 = "base64"

// DecodeData decodes the [payload, encoding] pair the store returns for
// account data.
func DecodeData(pair []string) ([]byte, error) {
	if len(pair) != 2 {
		return nil, fmt.Errorf("%w: account data has %d elements, expected 2", ErrStoreUnavailable, len(pair))
	}
	if pair[1] != EncodingBase64 {
		return nil, fmt.Errorf("%w: account data encoding %q, expected %q", ErrStoreUnavailable, pair[1], EncodingBase64)
	}
	data, err := base64.StdEncoding.DecodeString(pair[0])
	if err != nil {
		return nil, fmt.Errorf("%w: account data is not base64: %v", ErrStoreUnavailable, err)
	}
	return data, nil
}

// EncodeData renders account data the way the write path expects it.
func EncodeData(data []byte) string {
	return hex.EncodeToString(data)
}
