// Package servertransport wraps github.com/awcullen/opcua's server.Server,
// the opaque wire codec on the server side: PKI bootstrap
// (self-signed certificate generation), address-space registration, and
// the listening endpoint itself.
//
// Address-space registration (nodes.go) is grounded entirely on the
// library's own usage elsewhere in this codebase's history, which never
// exercises a per-node Read/Write/Call callback-registration hook: every
// application value reaches a client only by the application pushing it
// outward with VariableNode.SetValue. Inbound writes and method calls
// from a real client therefore have no confirmed hook to route into the
// dispatcher; SyncValues in nodes.go implements the outward half of that
// push model, and the missing inbound half is recorded in the project's
// design notes rather than bridged with a fabricated method call.
package servertransport

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/rs/zerolog"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
)

// Options configures the server transport: bind address/port/name, the
// application identity advertised to clients, and the node store whose
// contents get registered as the server's address space.
type Options struct {
	BindAddress     string
	BindPort        int
	ServerName      string
	ApplicationURI  string
	ProductURI      string
	ApplicationName string
	PKIDir          string
	Store           *addrspace.Store
}

// Transport owns the listening OPC UA TCP endpoint.
type Transport struct {
	opts Options
	log  zerolog.Logger
	srv  *server.Server

	variableNodes map[string]*server.VariableNode
}

// New constructs a Transport that has not yet started listening. logger is
// held, not read from a package global, so every log line this transport
// emits carries whatever fields the caller's logger was built with.
func New(opts Options, logger zerolog.Logger) *Transport {
	if opts.PKIDir == "" {
		opts.PKIDir = "./pki"
	}
	return &Transport{opts: opts, log: logger}
}

func (t *Transport) certPath() string { return t.opts.PKIDir + "/server.crt" }
func (t *Transport) keyPath() string  { return t.opts.PKIDir + "/server.key" }

// ensurePKI creates the PKI directory and a self-signed certificate if
// none exists yet.
func (t *Transport) ensurePKI() error {
	if _, err := os.Stat(t.certPath()); err == nil {
		t.log.Info().Str("certFile", t.certPath()).Msg("using existing PKI certificates")
		return nil
	}
	t.log.Info().Msg("generating self-signed certificate for OPC UA server")
	if err := os.MkdirAll(t.opts.PKIDir, 0755); err != nil {
		return fmt.Errorf("failed to create PKI directory: %w", err)
	}
	return t.createSelfSignedCert()
}

func (t *Transport) createSelfSignedCert() error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   t.opts.ApplicationName,
			Organization: []string{"edge-opcuad"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", t.opts.ServerName},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("0.0.0.0")},
		URIs:                  []*url.URL{{Scheme: "urn", Opaque: t.opts.ApplicationURI}},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	certFile, err := os.Create(t.certPath())
	if err != nil {
		return fmt.Errorf("failed to create cert file: %w", err)
	}
	defer certFile.Close()
	if err := pem.Encode(certFile, &pem.Block{Type: "CERTIFICATE", Bytes: certDER}); err != nil {
		return fmt.Errorf("failed to encode certificate: %w", err)
	}

	keyFile, err := os.Create(t.keyPath())
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	defer keyFile.Close()
	keyDER := x509.MarshalPKCS1PrivateKey(privateKey)
	if err := pem.Encode(keyFile, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: keyDER}); err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	t.log.Info().Str("certPath", t.certPath()).Str("keyPath", t.keyPath()).Msg("self-signed certificate generated")
	return nil
}

// Start brings up the listening endpoint.
func (t *Transport) Start(ctx context.Context) error {
	if err := t.ensurePKI(); err != nil {
		return fmt.Errorf("PKI bootstrap failed: %w", err)
	}

	endpoint := fmt.Sprintf("opc.tcp://%s:%d", t.opts.BindAddress, t.opts.BindPort)
	srv, err := server.New(
		ua.ApplicationDescription{
			ApplicationURI:  t.opts.ApplicationURI,
			ProductURI:      t.opts.ProductURI,
			ApplicationName: ua.LocalizedText{Text: t.opts.ApplicationName, Locale: "en"},
			ApplicationType: ua.ApplicationTypeServer,
		},
		t.certPath(),
		t.keyPath(),
		endpoint,
		server.WithAnonymousIdentity(true),
		server.WithSecurityPolicyNone(true),
		server.WithInsecureSkipVerify(),
	)
	if err != nil {
		return fmt.Errorf("failed to create OPC UA server: %w", err)
	}
	t.srv = srv

	if t.opts.Store != nil {
		registered, skipped := t.registerAddressSpace(t.opts.Store)
		t.log.Info().Int("registered", registered).Int("skipped", skipped).
			Msg("address space registered with server transport")
	}

	t.log.Info().Str("endpoint", endpoint).Msg("starting OPC UA server transport")
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			t.log.Error().Err(err).Msg("OPC UA server transport stopped")
		}
	}()
	return nil
}

// Stop closes the listening endpoint.
func (t *Transport) Stop(ctx context.Context) error {
	if t.srv == nil {
		return nil
	}
	return t.srv.Close()
}
