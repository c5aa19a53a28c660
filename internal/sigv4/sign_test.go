package sigv4

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	AccessKeyID:     "AKIDEXAMPLE",
	SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
}

func withFixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time { return ts }
	t.Cleanup(func() { nowFunc = orig })
}

func TestSign_KnownVector(t *testing.T) {
	withFixedNow(t, time.Date(2024, 1, 5, 13, 7, 9, 0, time.UTC))

	h := Sign("PUT", "acct.r2.cloudflarestorage.com", "notes/2024/01/05/pic.png",
		"image/png", []byte("hello world"), testCreds)

	assert.Equal(t,
		"b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		h.Get("x-amz-content-sha256"))
	assert.Equal(t, "20240105T130709Z", h.Get("x-amz-date"))
	assert.Equal(t, "image/png", h.Get("Content-Type"))
	assert.Equal(t,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20240105/auto/s3/aws4_request, "+
			"SignedHeaders=host;x-amz-content-sha256;x-amz-date, "+
			"Signature=a6bf99f9bfc08d0e00c720b7ed10b79af6406803d96cc86d5c6472014e15fef7",
		h.Get("Authorization"))
}

func TestSign_DeterministicAtFixedInstant(t *testing.T) {
	withFixedNow(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	payload := []byte{0x00, 0x01, 0x02}
	a := Sign("PUT", "h.example", "k.png", "image/png", payload, testCreds)
	b := Sign("PUT", "h.example", "k.png", "image/png", payload, testCreds)

	assert.Equal(t, a.Get("Authorization"), b.Get("Authorization"))
	assert.Equal(t, a.Get("x-amz-content-sha256"), b.Get("x-amz-content-sha256"))
}

func TestSign_PayloadByteFlipChangesSignature(t *testing.T) {
	withFixedNow(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	a := Sign("PUT", "h.example", "k.png", "image/png", []byte("aaaa"), testCreds)
	b := Sign("PUT", "h.example", "k.png", "image/png", []byte("aaab"), testCreds)

	require.NotEqual(t, a.Get("x-amz-content-sha256"), b.Get("x-amz-content-sha256"))
	require.NotEqual(t, a.Get("Authorization"), b.Get("Authorization"))
}

func TestSign_UTCConversion(t *testing.T) {
	// A zoned clock must produce the same headers as its UTC equivalent.
	loc := time.FixedZone("UTC+3", 3*3600)
	withFixedNow(t, time.Date(2024, 1, 5, 16, 7, 9, 0, loc))

	h := Sign("PUT", "h.example", "k.png", "image/png", nil, testCreds)
	assert.Equal(t, "20240105T130709Z", h.Get("x-amz-date"))
}

func TestDeriveSigningKey_DependsOnDate(t *testing.T) {
	t.Parallel()

	k1 := deriveSigningKey("secret", "20240101")
	k2 := deriveSigningKey("secret", "20240102")
	assert.NotEqual(t, k1, k2)
	assert.Len(t, k1, 32)
}
