package jwt

// Service is a wrapper for JWT operations with an explicit secret, so the
// verification key is injected instead of read from the environment on
// every call
type Service struct {
	secretKey string
}

// NewService creates a new JWT service
func NewService(secretKey string) *Service {
	if secretKey == "" {
		secretKey = getSecretKey()
	}

	return &Service{secretKey: secretKey}
}

// ValidateToken validates a token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return validateWithSecret(tokenString, s.secretKey)
}

// GenerateToken mints a token with this service's secret (tests and local
// development only)
func (s *Service) GenerateToken(subject, email, name string) (string, error) {
	return generateWithSecret(subject, email, name, s.secretKey)
}
