package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mansetdig/goAset/backend"
	"github.com/mansetdig/goAset/permission"
)

var (
	// ErrSessionExpired means the backend no longer accepts the session; it
	// has been invalidated and the user must log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrNoSession means there is no authenticated session to load with.
	ErrNoSession = errors.New("no authenticated session")
)

// Session is the part of the session manager the catalog needs.
type Session interface {
	Credential(ctx context.Context) (string, error)
	Role(ctx context.Context) permission.Role
	Invalidate(ctx context.Context) error
}

// Lister fetches the raw product list. *backend.Client satisfies it.
type Lister interface {
	ListProducts(ctx context.Context, token, role string) (*backend.ProductList, error)
}

// Service loads products visible to the current session.
type Service struct {
	session Session
	lister  Lister
	logger  *slog.Logger
}

// New returns a Service. A nil logger discards output.
func New(session Session, lister Lister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{session: session, lister: lister, logger: logger}
}

// Load fetches the product list for the session's role, which defaults to
// permission.DefaultRole while unresolved. Out-of-stock products are hidden
// from the user role.
func (s *Service) Load(ctx context.Context) ([]backend.Product, error) {
	token, err := s.session.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	role := s.session.Role(ctx)
	if role == "" {
		role = permission.DefaultRole
	}

	list, err := s.lister.ListProducts(ctx, token, role.String())
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			if ierr := s.session.Invalidate(ctx); ierr != nil {
				s.logger.Warn("goAset: invalidate after 401 failed", "op", "list_products", "err", ierr)
			}
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("catalog: load products: %w", err)
	}

	products := list.Products
	if role == permission.RoleUser {
		products = InStock(products)
	}
	s.logger.Debug("goAset: catalog loaded", "role", role.String(), "count", len(products))
	return products, nil
}

// InStock returns the products with positive stock, in order.
func InStock(products []backend.Product) []backend.Product {
	out := make([]backend.Product, 0, len(products))
	for _, p := range products {
		if p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out
}
