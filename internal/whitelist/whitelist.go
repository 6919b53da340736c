package whitelist

import (
	"strings"

	"github.com/funneltechie/inboxreadybotclassifier/internal/detector"
	"go.uber.org/zap"
)

// Checker decides whether an address belongs to a trusted domain
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new trusted-domain checker. A leading "*." entry also
// trusts every subdomain.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	set := make(map[string]struct{}, len(domains))
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := detector.Normalize(strings.TrimSpace(domain))
		if d == "" {
			continue
		}
		set[d] = struct{}{}
		normalized = append(normalized, d)
	}

	if len(normalized) > 0 {
		logger.Info("Initialized trusted domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: set,
		logger:  logger,
	}
}

// Len returns the number of trusted domain entries
func (c *Checker) Len() int {
	return len(c.domains)
}

// IsWhitelisted checks if the address's domain is trusted
func (c *Checker) IsWhitelisted(email string) bool {
	if len(c.domains) == 0 {
		return false
	}

	_, domain := detector.SplitAddress(detector.Normalize(email))
	if domain == "" {
		return false
	}

	if _, ok := c.domains[domain]; ok {
		c.logger.Debug("Domain is trusted",
			zap.String("domain", domain),
			zap.String("email", email))
		return true
	}

	for parent := domain; ; {
		_, rest, ok := strings.Cut(parent, ".")
		if !ok || rest == "" {
			return false
		}
		if _, ok := c.domains["*."+rest]; ok {
			c.logger.Debug("Parent domain is trusted",
				zap.String("domain", domain),
				zap.String("parent", rest))
			return true
		}
		parent = rest
	}
}
