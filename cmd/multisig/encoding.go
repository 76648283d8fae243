package main

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	encodingHex    = "hex"
	encodingBase58 = "base58"
	encodingBase64 = "base64"
)

func encodeBytes(data []byte, encoding string) (string, error) {
	switch encoding {
	case encodingHex:
		return hex.EncodeToString(data), nil
	case encodingBase58:
		return base58.Encode(data), nil
	case encodingBase64:
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return "", errors.Errorf("unknown encoding %q", encoding)
}

func decodeBytes(value, encoding string) ([]byte, error) {
	value = strings.TrimSpace(value)

	var decoded []byte
	var err error
	switch encoding {
	case encodingHex:
		decoded, err = hex.DecodeString(strings.TrimPrefix(value, "0x"))
	case encodingBase58:
		decoded, err = base58.Decode(value)
	case encodingBase64:
		decoded, err = base64.StdEncoding.DecodeString(value)
	default:
		return nil, errors.Errorf("unknown encoding %q", encoding)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s data", encoding)
	}
	return decoded, nil
}
