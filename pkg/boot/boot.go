// Package boot loads bridge configuration and establishes the NATS
// connection using credentials held in Vault.
package boot

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// Config holds bootstrap configuration read from environment variables.
type Config struct {
	VaultAddr       string
	VaultToken      string
	NATSUrl         string
	VaultNKEYPath   string
	VaultTLSPath    string
	NATSRequireMTLS bool

	// Source is the subject source token and CloudEvent source for outbound calls.
	Source            string
	InboundSubject    string
	InboundQueue      string
	DLQSubject        string
	PermissionSubject string
	PermissionTimeout time.Duration
	// MappingFile is an optional YAML e-commerce mapping; empty keeps the built-in table.
	MappingFile string
	MetricsAddr string
	// TapAddr enables the websocket call tap when set.
	TapAddr string
}

// TLSMaterial holds PEM-encoded TLS certificate material fetched from Vault.
type TLSMaterial struct {
	Cert []byte
	Key  []byte
	CA   []byte
}

// vaultReader abstracts Vault read operations for testing.
type vaultReader interface {
	Read(path string) (*vault.Secret, error)
}

// LoadConfig reads bootstrap configuration from environment variables.
func LoadConfig(service string) Config {
	requireMTLS, _ := strconv.ParseBool(os.Getenv("NATS_REQUIRE_MTLS"))
	permTimeout, err := time.ParseDuration(envOrDefault("BRIDGE_PERMISSION_TIMEOUT", "2s"))
	if err != nil || permTimeout <= 0 {
		log.Printf("config: invalid BRIDGE_PERMISSION_TIMEOUT, using 2s")
		permTimeout = 2 * time.Second
	}
	cfg := Config{
		VaultAddr:       envOrDefault("VAULT_ADDR", "http://127.0.0.1:8201"),
		VaultToken:      os.Getenv("VAULT_TOKEN"),
		NATSUrl:         envOrDefault("NATS_URL", "tls://localhost:4222"),
		VaultNKEYPath:   envOrDefault("VAULT_NKEY_PATH", "secret/data/braze-bridge/nats/"+service),
		VaultTLSPath:    envOrDefault("VAULT_TLS_PATH", "secret/data/braze-bridge/tls/"+service),
		NATSRequireMTLS: requireMTLS,

		Source:            envOrDefault("BRIDGE_SOURCE", service),
		InboundSubject:    envOrDefault("BRIDGE_INBOUND_SUBJECT", "gtm.events.tag.>"),
		InboundQueue:      envOrDefault("BRIDGE_INBOUND_QUEUE", service),
		DLQSubject:        os.Getenv("BRIDGE_DLQ_SUBJECT"),
		PermissionSubject: envOrDefault("BRIDGE_PERMISSION_SUBJECT", "device.commands.notification.authorization"),
		PermissionTimeout: permTimeout,
		MappingFile:       os.Getenv("BRIDGE_MAPPING_FILE"),
		MetricsAddr:       envOrDefault("BRIDGE_METRICS_ADDR", ":9102"),
		TapAddr:           os.Getenv("BRIDGE_TAP_ADDR"),
	}

	// Reject plaintext Vault in production
	if os.Getenv("ENVIRONMENT") == "production" && strings.HasPrefix(cfg.VaultAddr, "http://") {
		log.Fatalf("vault: VAULT_ADDR uses plaintext HTTP (%s); HTTPS required in production", cfg.VaultAddr)
	}

	return cfg
}

// newVaultClient creates a configured Vault client.
func newVaultClient(addr, token string) (*vault.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("VAULT_TOKEN is not set")
	}

	cfg := vault.DefaultConfig()
	cfg.Address = addr

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	client.SetToken(token)
	return client, nil
}

// FetchNATSSeed retrieves the NATS NKEY seed from Vault KV v2.
func FetchNATSSeed(addr, token, path string) (string, error) {
	client, err := newVaultClient(addr, token)
	if err != nil {
		return "", err
	}

	var seed string
	err = withRetry(func() error {
		var fetchErr error
		seed, fetchErr = fetchSeed(client.Logical(), path)
		return fetchErr
	})
	return seed, err
}

// FetchNATSTLS retrieves TLS client certificate material from Vault KV v2.
func FetchNATSTLS(addr, token, path string) (*TLSMaterial, error) {
	client, err := newVaultClient(addr, token)
	if err != nil {
		return nil, err
	}

	var mat *TLSMaterial
	err = withRetry(func() error {
		var fetchErr error
		mat, fetchErr = fetchTLS(client.Logical(), path)
		return fetchErr
	})
	return mat, err
}

// readKV returns the inner data map of a Vault KV v2 secret.
func readKV(r vaultReader, path string) (map[string]interface{}, error) {
	secret, err := r.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no data at %s", path)
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected data format at %s", path)
	}
	return data, nil
}

func kvString(data map[string]interface{}, field, path string) (string, error) {
	v, ok := data[field].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing %s in %s", field, path)
	}
	return v, nil
}

// fetchSeed reads the NKEY seed from a Vault KV v2 path.
func fetchSeed(r vaultReader, path string) (string, error) {
	data, err := readKV(r, path)
	if err != nil {
		return "", err
	}
	return kvString(data, "seed", path)
}

// fetchTLS reads client cert, key and CA from a Vault KV v2 path.
func fetchTLS(r vaultReader, path string) (*TLSMaterial, error) {
	data, err := readKV(r, path)
	if err != nil {
		return nil, err
	}
	var pem [3]string
	for i, field := range []string{"cert", "key", "ca"} {
		if pem[i], err = kvString(data, field, path); err != nil {
			return nil, err
		}
	}
	return &TLSMaterial{
		Cert: []byte(pem[0]),
		Key:  []byte(pem[1]),
		CA:   []byte(pem[2]),
	}, nil
}

// ConnectNATS establishes a NATS connection using NKEY auth and mTLS.
func ConnectNATS(cfg Config, name, seed string, tlsMat *TLSMaterial) (*nats.Conn, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}

	opts := []nats.Option{
		nats.Nkey(pub, func(nonce []byte) ([]byte, error) {
			return kp.Sign(nonce)
		}),
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("nats: disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats: reconnected to %s", nc.ConnectedUrl())
		}),
	}

	if requiresTLS(cfg) {
		if tlsMat == nil {
			return nil, fmt.Errorf("TLS material is required for mTLS connection")
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(tlsMat.CA) {
			return nil, fmt.Errorf("failed to parse CA certificate from Vault")
		}

		clientCert, err := tls.X509KeyPair(tlsMat.Cert, tlsMat.Key)
		if err != nil {
			return nil, fmt.Errorf("parse client certificate from Vault: %w", err)
		}

		tlsCfg := &tls.Config{
			RootCAs:      pool,
			Certificates: []tls.Certificate{clientCert},
			MinVersion:   tls.VersionTLS13,
		}
		opts = append(opts, nats.Secure(tlsCfg))
	}

	nc, err := nats.Connect(cfg.NATSUrl, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return nc, nil
}

// Connect fetches the NKEY seed (and TLS material when the URL or
// NATS_REQUIRE_MTLS asks for it) from Vault and connects to NATS.
func Connect(cfg Config, name string) (*nats.Conn, error) {
	seed, err := FetchNATSSeed(cfg.VaultAddr, cfg.VaultToken, cfg.VaultNKEYPath)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	log.Printf("vault: fetched NATS seed from %s", cfg.VaultNKEYPath)

	var tlsMat *TLSMaterial
	if requiresTLS(cfg) {
		tlsMat, err = FetchNATSTLS(cfg.VaultAddr, cfg.VaultToken, cfg.VaultTLSPath)
		if err != nil {
			return nil, fmt.Errorf("vault: %w", err)
		}
		log.Printf("vault: fetched NATS TLS material from %s", cfg.VaultTLSPath)
	}

	nc, err := ConnectNATS(cfg, name, seed, tlsMat)
	if err != nil {
		return nil, fmt.Errorf("nats: %w", err)
	}
	return nc, nil
}

func requiresTLS(cfg Config) bool {
	return strings.HasPrefix(cfg.NATSUrl, "tls://") || cfg.NATSRequireMTLS
}

// withRetry retries fn up to 3 times with exponential backoff (1s, 2s, 4s).
func withRetry(fn func() error) error {
	delays := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	var err error
	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i < len(delays) {
			log.Printf("vault: retry %d/%d after error: %v", i+1, len(delays), err)
			time.Sleep(delays[i])
		}
	}
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
