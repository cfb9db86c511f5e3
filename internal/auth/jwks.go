package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// KeySource resolves the RSA public key for a token's kid header.
type KeySource interface {
	Get(kid string) (*rsa.PublicKey, error)
}

// StaticKeys is a fixed kid -> key set, used by tests and local setups.
type StaticKeys map[string]*rsa.PublicKey

func (s StaticKeys) Get(kid string) (*rsa.PublicKey, error) {
	if k, ok := s[kid]; ok {
		return k, nil
	}
	return nil, errors.New("jwks: key not found")
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksJSON struct {
	Keys []jwkKey `json:"keys"`
}

// JWKS caches RSA public keys by kid.
type JWKS struct {
	url    string
	client *http.Client
	logger *zap.Logger
	mu     sync.RWMutex
	keys   map[string]*rsa.PublicKey
	ticker *time.Ticker
	quit   chan struct{}
}

// NewJWKS creates a JWKS instance and loads keys immediately. It also starts
// a background refresh every refreshInterval. Pass 0 to use default 15m.
func NewJWKS(url string, refreshInterval time.Duration, logger *zap.Logger) (*JWKS, error) {
	if refreshInterval <= 0 {
		refreshInterval = 15 * time.Minute
	}
	j := &JWKS{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		keys:   map[string]*rsa.PublicKey{},
		ticker: time.NewTicker(refreshInterval),
		quit:   make(chan struct{}),
	}
	if err := j.refresh(context.Background()); err != nil {
		j.ticker.Stop()
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	go j.loop()
	return j, nil
}

func (j *JWKS) loop() {
	for {
		select {
		case <-j.ticker.C:
			if err := j.refresh(context.Background()); err != nil {
				j.logger.Warn("JWKS refresh failed", zap.String("url", j.url), zap.Error(err))
			}
		case <-j.quit:
			return
		}
	}
}

// Close stops background refresh.
func (j *JWKS) Close() {
	close(j.quit)
	j.ticker.Stop()
}

func (j *JWKS) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return err
	}
	resp, err := j.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw jwksJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return err
	}

	keys, err := parseKeys(raw.Keys)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.keys = keys
	return nil
}

func parseKeys(raw []jwkKey) (map[string]*rsa.PublicKey, error) {
	keys := make(map[string]*rsa.PublicKey)
	for _, k := range raw {
		if k.Kty != "RSA" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("key %s: bad modulus: %w", k.Kid, err)
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("key %s: bad exponent: %w", k.Kid, err)
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(new(big.Int).SetBytes(eBytes).Int64()),
		}
	}
	return keys, nil
}

// Get returns the key for kid, refreshing once when it is unknown so key
// rotation is picked up without waiting for the ticker.
func (j *JWKS) Get(kid string) (*rsa.PublicKey, error) {
	j.mu.RLock()
	p := j.keys[kid]
	j.mu.RUnlock()
	if p != nil {
		return p, nil
	}
	if err := j.refresh(context.Background()); err != nil {
		return nil, err
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	p = j.keys[kid]
	if p == nil {
		return nil, errors.New("jwks: key not found")
	}
	return p, nil
}
