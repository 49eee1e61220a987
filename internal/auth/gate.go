// Package auth establishes who is calling a protected endpoint.
package auth

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/identity"
)

const bearerScheme = "bearer"

// Gate converts an Authorization header into an authenticated user. It holds
// no per-request state and is shared by all requests.
type Gate struct {
	resolver identity.Resolver
	logger   logrus.FieldLogger
}

func NewGate(resolver identity.Resolver, logger logrus.FieldLogger) *Gate {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Gate{resolver: resolver, logger: logger}
}

// Authenticate resolves the caller behind header. Every failure, whatever its
// cause, is reported as the same domain Unauthenticated error.
func (g *Gate) Authenticate(ctx context.Context, header string) (*domain.AuthenticatedUser, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, domain.Unauthenticated()
	}

	user, err := g.resolver.ResolveUser(ctx, token)
	if err != nil {
		g.logger.WithError(err).Debug("identity provider rejected bearer token")
		return nil, domain.Unauthenticated()
	}
	if user == nil || user.ID == "" {
		g.logger.Debug("identity provider returned no user")
		return nil, domain.Unauthenticated()
	}
	return user, nil
}

// BearerToken extracts the credential from an Authorization header value of
// the form "Bearer <token>".
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
