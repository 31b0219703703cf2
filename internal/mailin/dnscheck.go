package mailin

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// DNSCheckResult contains the results of the mail domain DNS check
type DNSCheckResult struct {
	MXVerified bool     `json:"mx_verified"`
	AVerified  bool     `json:"a_verified"`
	Healthy    bool     `json:"healthy"`
	Errors     []string `json:"errors,omitempty"`
}

// DNSCheckConfig holds configuration for the mail domain DNS check
type DNSCheckConfig struct {
	MailDomain    string
	ServerIP      string // optional; when empty the A check only requires resolution
	MaxRetries    int
	RetryDelay    time.Duration
	LookupTimeout time.Duration
}

// DefaultDNSCheckConfig returns default configuration for the DNS check
func DefaultDNSCheckConfig(mailDomain string) DNSCheckConfig {
	return DNSCheckConfig{
		MailDomain:    mailDomain,
		MaxRetries:    3,
		RetryDelay:    5 * time.Second,
		LookupTimeout: 10 * time.Second,
	}
}

// DNSResolver interface for DNS lookups (allows mocking in tests)
type DNSResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// defaultDNSResolver implements DNSResolver using net package
type defaultDNSResolver struct {
	resolver *net.Resolver
}

func newDefaultDNSResolver(timeout time.Duration) *defaultDNSResolver {
	return &defaultDNSResolver{
		resolver: &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				d := net.Dialer{
					Timeout: timeout,
				}
				return d.DialContext(ctx, network, address)
			},
		},
	}
}

func (r *defaultDNSResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	return r.resolver.LookupMX(ctx, name)
}

func (r *defaultDNSResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return r.resolver.LookupHost(ctx, host)
}

// DNSCheck verifies that the configured mail domain actually routes mail to
// this server. Tenant replies silently vanish when the MX record is wrong,
// so the check runs at startup and complains loudly instead of failing.
type DNSCheck struct {
	config   DNSCheckConfig
	resolver DNSResolver
	logger   *slog.Logger
}

// NewDNSCheck creates a DNSCheck with the default resolver
func NewDNSCheck(config DNSCheckConfig, logger *slog.Logger) *DNSCheck {
	return &DNSCheck{
		config:   config,
		resolver: newDefaultDNSResolver(config.LookupTimeout),
		logger:   logger,
	}
}

// NewDNSCheckWithResolver creates a DNSCheck with a custom resolver (for testing)
func NewDNSCheckWithResolver(config DNSCheckConfig, resolver DNSResolver, logger *slog.Logger) *DNSCheck {
	return &DNSCheck{
		config:   config,
		resolver: resolver,
		logger:   logger,
	}
}

// getParentDomain extracts the parent domain from a mail domain
// e.g., "mail.example.com" -> "example.com", "example.com" -> "example.com"
func getParentDomain(domainName string) string {
	if strings.HasPrefix(strings.ToLower(domainName), "mail.") {
		return domainName[5:]
	}
	return domainName
}

// getMailHostname returns the mail hostname for a domain
// e.g., "example.com" -> "mail.example.com", "mail.example.com" -> "mail.example.com"
func getMailHostname(domainName string) string {
	if strings.HasPrefix(strings.ToLower(domainName), "mail.") {
		return domainName
	}
	return fmt.Sprintf("mail.%s", domainName)
}

// Check verifies the MX and A records for the configured mail domain with a
// retry mechanism. It never returns an error; partial results plus the Errors
// slice describe what failed.
func (c *DNSCheck) Check(ctx context.Context) *DNSCheckResult {
	result := &DNSCheckResult{
		Errors: make([]string, 0),
	}

	parentDomain := getParentDomain(c.config.MailDomain)
	mailHostname := getMailHostname(c.config.MailDomain)

	mxVerified, err := c.verifyWithRetry(ctx, func(ctx context.Context) (bool, error) {
		return c.verifyMXRecord(ctx, parentDomain, mailHostname)
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("MX verification failed: %v", err))
	}
	result.MXVerified = mxVerified

	aVerified, err := c.verifyWithRetry(ctx, func(ctx context.Context) (bool, error) {
		return c.verifyARecord(ctx, mailHostname, c.config.ServerIP)
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("A record verification failed: %v", err))
	}
	result.AVerified = aVerified

	result.Healthy = result.MXVerified && result.AVerified

	if c.logger != nil {
		if result.Healthy {
			c.logger.Info("mail domain DNS check passed",
				slog.String("mail_domain", c.config.MailDomain))
		} else {
			c.logger.Warn("mail domain DNS check failed, tenant replies may not arrive",
				slog.String("mail_domain", c.config.MailDomain),
				slog.Bool("mx_verified", result.MXVerified),
				slog.Bool("a_verified", result.AVerified),
				slog.Any("errors", result.Errors))
		}
	}

	return result
}

// verifyWithRetry executes a verification function with retry mechanism
func (c *DNSCheck) verifyWithRetry(ctx context.Context, verifyFunc func(context.Context) (bool, error)) (bool, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		verified, err := verifyFunc(ctx)
		if err == nil && verified {
			return true, nil
		}

		if err != nil {
			lastErr = err
		}

		// Don't sleep on the last attempt
		if attempt < c.config.MaxRetries {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}
	}

	if lastErr != nil {
		return false, lastErr
	}
	return false, nil
}

// verifyMXRecord checks if an MX record points to the expected mail host
func (c *DNSCheck) verifyMXRecord(ctx context.Context, domainName, expectedHost string) (bool, error) {
	if domainName == "" {
		return false, fmt.Errorf("domain name cannot be empty")
	}

	expectedHost = strings.TrimSuffix(strings.ToLower(expectedHost), ".")

	mxRecords, err := c.resolver.LookupMX(ctx, domainName)
	if err != nil {
		return false, fmt.Errorf("MX lookup failed for %s: %w", domainName, err)
	}

	if len(mxRecords) == 0 {
		return false, fmt.Errorf("no MX records found for %s", domainName)
	}

	for _, mx := range mxRecords {
		mxHost := strings.TrimSuffix(strings.ToLower(mx.Host), ".")
		if mxHost == expectedHost {
			return true, nil
		}
	}

	return false, fmt.Errorf("MX record mismatch: expected %s, found %s", expectedHost, mxRecords[0].Host)
}

// verifyARecord checks that the mail hostname resolves, and when a server IP
// is configured, that one of the addresses matches it
func (c *DNSCheck) verifyARecord(ctx context.Context, hostname, expectedIP string) (bool, error) {
	if hostname == "" {
		return false, fmt.Errorf("hostname cannot be empty")
	}

	ips, err := c.resolver.LookupHost(ctx, hostname)
	if err != nil {
		return false, fmt.Errorf("A record lookup failed for %s: %w", hostname, err)
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("no A records found for %s", hostname)
	}

	if expectedIP == "" {
		return true, nil
	}

	expectedIP = strings.TrimSpace(expectedIP)
	for _, ip := range ips {
		if strings.TrimSpace(ip) == expectedIP {
			return true, nil
		}
	}

	return false, fmt.Errorf("A record mismatch: expected %s, found %v", expectedIP, ips)
}
