// Package appauth proves this service's identity: it normalizes the GitHub App
// private key, mints app assertions and signs install state tokens.
package appauth

import (
	encoding_asn1 "encoding/asn1"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	custom_errors "commit-lens/internal/errors"
)

const (
	pkcs1BlockType = "RSA PRIVATE KEY"
	pkcs8BlockType = "PRIVATE KEY"
)

var oidRSAEncryption = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}

// NormalizePrivateKey returns the key as a PKCS#8 PEM block.
//
// GitHub hands out PKCS#1 ("BEGIN RSA PRIVATE KEY") keys. Those are wrapped in a
// PrivateKeyInfo with the rsaEncryption algorithm identifier. Keys that are
// already PKCS#8 are returned unchanged.
func NormalizePrivateKey(raw string) (string, error) {
	key := strings.ReplaceAll(raw, `\n`, "\n")

	switch {
	case strings.Contains(key, "-----BEGIN "+pkcs8BlockType+"-----"):
		return key, nil
	case strings.Contains(key, "-----BEGIN "+pkcs1BlockType+"-----"):
	default:
		return "", &custom_errors.InvalidKeyMaterialError{Reason: "missing PEM header; use the contents of the .pem file, not the client secret"}
	}

	pkcs1, err := decodePKCS1Body(key)
	if err != nil {
		return "", &custom_errors.InvalidKeyMaterialError{Reason: "malformed PEM body"}
	}

	der, err := wrapPKCS1(pkcs1)
	if err != nil {
		return "", &custom_errors.InvalidKeyMaterialError{Reason: err.Error()}
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: pkcs8BlockType, Bytes: der})), nil
}

// decodePKCS1Body base64-decodes the text between the PKCS#1 markers with all
// whitespace removed, so keys whose newlines were collapsed still decode.
func decodePKCS1Body(key string) ([]byte, error) {
	const (
		begin = "-----BEGIN " + pkcs1BlockType + "-----"
		end   = "-----END " + pkcs1BlockType + "-----"
	)
	_, body, _ := strings.Cut(key, begin)
	body, _, found := strings.Cut(body, end)
	if !found {
		return nil, errors.New("missing PEM footer")
	}
	der, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(body), ""))
	if err != nil {
		return nil, err
	}
	if len(der) == 0 {
		return nil, errors.New("empty PEM body")
	}
	return der, nil
}

// wrapPKCS1 builds
//
//	PrivateKeyInfo ::= SEQUENCE {
//	  version             INTEGER (0),
//	  algorithm           AlgorithmIdentifier { rsaEncryption, NULL },
//	  privateKey          OCTET STRING (the PKCS#1 key)
//	}
//
// cryptobyte emits the long length form for anything above 127 bytes.
func wrapPKCS1(pkcs1 []byte) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidRSAEncryption)
			b.AddASN1NULL()
		})
		b.AddASN1OctetString(pkcs1)
	})
	return b.Bytes()
}
