// Package sigv4 computes AWS Signature Version 4 headers for a single
// request to an S3-compatible endpoint, using only local crypto
// primitives. No SDK, no network round-trip for credentials.
//
// Region is the literal "auto" and service is "s3", the Cloudflare R2
// convention; any S3-compatible store that honors SigV4 accepts the
// resulting headers.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const (
	region  = "auto"
	service = "s3"

	algorithm     = "AWS4-HMAC-SHA256"
	signedHeaders = "host;x-amz-content-sha256;x-amz-date"
)

// nowFunc is a test seam for the clock.
var nowFunc = time.Now

// Credentials is a static access/secret key pair.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Sign computes the SigV4 headers for sending payload to
// https://<host>/<key> with the given method and content type.
//
// key must already be in percent-safe, unencoded-slash form and must not
// start with '/'. The caller must transmit exactly the payload bytes that
// were signed: if the transport re-encodes the body, the payload hash no
// longer matches and the store rejects the request with an auth error.
func Sign(method, host, key, contentType string, payload []byte, creds Credentials) http.Header {
	now := nowFunc().UTC()
	dateStamp := now.Format("20060102")
	amzDate := now.Format("20060102T150405Z")

	payloadHash := sha256Hex(payload)

	canonicalRequest := strings.Join([]string{
		method,
		"/" + key,
		"", // canonical query string: object PUT carries no query
		"host:" + host + "\n" +
			"x-amz-content-sha256:" + payloadHash + "\n" +
			"x-amz-date:" + amzDate + "\n",
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := dateStamp + "/" + region + "/" + service + "/aws4_request"

	stringToSign := strings.Join([]string{
		algorithm,
		amzDate,
		scope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	signingKey := deriveSigningKey(creds.SecretAccessKey, dateStamp)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	authorization := algorithm +
		" Credential=" + creds.AccessKeyID + "/" + scope +
		", SignedHeaders=" + signedHeaders +
		", Signature=" + signature

	h := http.Header{}
	h.Set("Authorization", authorization)
	h.Set("x-amz-content-sha256", payloadHash)
	h.Set("x-amz-date", amzDate)
	h.Set("Content-Type", contentType)
	return h
}

// deriveSigningKey runs the chained HMAC key derivation:
// AWS4+secret -> date -> region -> service -> aws4_request.
func deriveSigningKey(secret, dateStamp string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}

func hmacSHA256(key []byte, data string) []byte {
	m := hmac.New(sha256.New, key)
	m.Write([]byte(data))
	return m.Sum(nil)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
