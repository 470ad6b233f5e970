package objstore

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/domain"
)

const s3Scheme = "s3://"

// S3Store talks to an S3-compatible bucket over plain HTTP with SigV4
// request signing. No SDK; the object operations used here are three verbs
// against one bucket.
type S3Store struct {
	endpoint   string
	region     string
	bucket     string
	accessKey  string
	secretKey  string
	httpClient *http.Client
	clock      func() time.Time
}

func NewS3Store(endpoint, region, bucket, accessKey, secretKey string) (*S3Store, error) {
	if endpoint == "" || region == "" || bucket == "" || accessKey == "" || secretKey == "" {
		return nil, errors.New("s3 endpoint, region, bucket, and credentials are required")
	}
	return &S3Store{
		endpoint:   strings.TrimRight(endpoint, "/"),
		region:     region,
		bucket:     bucket,
		accessKey:  accessKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		clock:      time.Now,
	}, nil
}

func NewS3StoreFromConfig(cfg config.Config) (*S3Store, error) {
	return NewS3Store(cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
}

func (s *S3Store) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	key, err := newObjectName(contentType)
	if err != nil {
		return "", err
	}
	headers := map[string]string{"Content-Type": contentType}
	if _, err := s.do(ctx, http.MethodPut, key, data, headers); err != nil {
		return "", err
	}
	return s3Scheme + s.bucket + "/" + key, nil
}

func (s *S3Store) Get(ctx context.Context, ref string) ([]byte, error) {
	key, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return s.do(ctx, http.MethodGet, key, nil, nil)
}

func (s *S3Store) Delete(ctx context.Context, ref string) error {
	key, err := s.resolve(ref)
	if err != nil {
		return err
	}
	_, err = s.do(ctx, http.MethodDelete, key, nil, nil)
	return err
}

func (s *S3Store) resolve(ref string) (string, error) {
	rest, ok := strings.CutPrefix(ref, s3Scheme)
	if !ok {
		return "", domain.ErrNotFound
	}
	key, ok := strings.CutPrefix(rest, s.bucket+"/")
	if !ok || key == "" {
		return "", domain.ErrNotFound
	}
	return key, nil
}

func (s *S3Store) do(ctx context.Context, method, key string, body []byte, extraHeaders map[string]string) ([]byte, error) {
	target := s.endpoint + "/" + s.bucket + "/" + key
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	now := s.clock().UTC()
	amzDate := now.Format("20060102T150405Z")
	payloadHash := sha256Hex(body)
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	if err := s.signRequest(req, payloadHash, amzDate); err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("s3 %s %s: status %d", method, key, resp.StatusCode)
	}
	return respBody, nil
}

func (s *S3Store) signRequest(req *http.Request, payloadHash, amzDate string) error {
	parsed, err := url.Parse(req.URL.String())
	if err != nil {
		return err
	}
	if parsed.Host == "" {
		return errors.New("s3 host missing")
	}
	req.Header.Set("Host", parsed.Host)

	date := amzDate[:8]
	const service = "s3"

	canonicalHeaders, signedHeaders := buildCanonicalHeaders(req.Header)
	canonicalRequest := strings.Join([]string{
		req.Method,
		parsed.EscapedPath(),
		"",
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := date + "/" + s.region + "/" + service + "/aws4_request"
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	signingKey := deriveSigningKey(s.secretKey, date, s.region, service)
	signature := hmacHex(signingKey, []byte(stringToSign))
	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		s.accessKey, scope, signedHeaders, signature,
	))
	return nil
}

func buildCanonicalHeaders(headers http.Header) (string, string) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, strings.ToLower(k))
	}
	sort.Strings(keys)
	var canonical strings.Builder
	for _, key := range keys {
		values := headers.Values(key)
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
		canonical.WriteString(key)
		canonical.WriteString(":")
		canonical.WriteString(strings.Join(values, ","))
		canonical.WriteString("\n")
	}
	return canonical.String(), strings.Join(keys, ";")
}

func deriveSigningKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(date))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte("aws4_request"))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func hmacHex(key, data []byte) string {
	return hex.EncodeToString(hmacSHA256(key, data))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
