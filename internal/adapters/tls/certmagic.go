// Package tls serves the API over HTTPS with certificates managed by
// CertMagic.
package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/libdns/azure"
)

// Config holds TLS configuration.
type Config struct {
	Enabled  bool
	Domains  []string
	Email    string
	CacheDir string
	Staging  bool // Use Let's Encrypt staging environment
	DNS      DNSConfig
}

// DNSConfig holds Azure DNS provider configuration for DNS-01 challenges.
// Without a subscription the default HTTP-01 and TLS-ALPN-01 challenges are
// used.
type DNSConfig struct {
	SubscriptionID    string
	ResourceGroupName string
	ClientID          string // User Assigned Managed Identity client ID (optional)
}

// Validate checks that an enabled configuration can obtain certificates.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Domains) == 0 {
		return errors.New("TLS enabled but no domains specified")
	}
	if c.Email == "" {
		return errors.New("TLS enabled but no email specified")
	}
	if c.DNS.SubscriptionID != "" && c.DNS.ResourceGroupName == "" {
		return errors.New("DNS-01 challenge requires a resource group")
	}
	return nil
}

// Server wraps an HTTP server with automatic TLS.
type Server struct {
	config Config
	logger *slog.Logger
	magic  *certmagic.Config
	server *http.Server
}

// NewServer creates a server for handler. A disabled configuration yields a
// plain HTTP server.
func NewServer(cfg Config, handler http.Handler, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		logger: logger,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if !cfg.Enabled {
		return s, nil
	}

	magic := certmagic.NewDefault()
	if cfg.CacheDir != "" {
		magic.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	}

	issuer := certmagic.ACMEIssuer{
		CA:     certmagic.LetsEncryptProductionCA,
		Email:  cfg.Email,
		Agreed: true,
	}
	if cfg.Staging {
		issuer.CA = certmagic.LetsEncryptStagingCA
	}
	if cfg.DNS.SubscriptionID != "" {
		issuer.DNS01Solver = &certmagic.DNS01Solver{
			DNSManager: certmagic.DNSManager{
				DNSProvider: &azure.Provider{
					SubscriptionId:    cfg.DNS.SubscriptionID,
					ResourceGroupName: cfg.DNS.ResourceGroupName,
					ClientId:          cfg.DNS.ClientID, // Empty = System Assigned Managed Identity
				},
			},
		}
	}
	magic.Issuers = []certmagic.Issuer{certmagic.NewACMEIssuer(magic, issuer)}

	s.magic = magic
	s.server.TLSConfig = magic.TLSConfig()
	return s, nil
}

// ManageCertificates obtains or renews certificates for the configured
// domains before the server starts accepting connections.
func (s *Server) ManageCertificates(ctx context.Context) error {
	if s.magic == nil {
		return nil
	}

	s.logger.Info("obtaining certificates", "domains", s.config.Domains)
	if err := s.magic.ManageSync(ctx, s.config.Domains); err != nil {
		return fmt.Errorf("managing certificates: %w", err)
	}
	s.logger.Info("certificates obtained")
	return nil
}

// ListenAndServe starts the server with TLS if enabled.
func (s *Server) ListenAndServe(addr string) error {
	s.server.Addr = addr
	if s.magic == nil {
		s.logger.Info("starting HTTP server (TLS disabled)", "address", addr)
		return s.server.ListenAndServe()
	}

	s.logger.Info("starting HTTPS server",
		"address", addr,
		"domains", s.config.Domains,
		"dns01", s.config.DNS.SubscriptionID != "",
	)
	return s.server.ListenAndServeTLS("", "")
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// TLSConfig returns the TLS configuration, or nil when TLS is disabled.
func (s *Server) TLSConfig() *tls.Config {
	return s.server.TLSConfig
}
