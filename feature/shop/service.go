package shop

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"grocer/core/api"
	"grocer/core/cache"
	"grocer/feature/basket"
	"grocer/feature/catalogue"
	"grocer/feature/listing"
	"grocer/feature/product"

	"go.uber.org/zap"
)

// Listing commands.
const (
	CommandOffers     = "listproductoffers"
	CommandFavourites = "listfavourites"
	CommandByCategory = "listproductsbycategory"
)

const departmentsKey = "departments"

// Service is the entry point of the library. It owns the product identity map
// and the basket registry for one session.
type Service struct {
	session     api.Session
	products    *product.Registry
	baskets     *basket.Registry
	departments *cache.Store[[]catalogue.Department]
	logger      *zap.Logger
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	catalogueTTL time.Duration
}

// WithCatalogueTTL sets how long the department hierarchy is cached.
func WithCatalogueTTL(ttl time.Duration) Option {
	return func(o *serviceOptions) { o.catalogueTTL = ttl }
}

// NewService creates a new shop service over session.
func NewService(session api.Session, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := serviceOptions{catalogueTTL: time.Hour}
	for _, opt := range opts {
		opt(&o)
	}

	products := product.NewRegistry(session, logger)
	return &Service{
		session:     session,
		products:    products,
		baskets:     basket.NewRegistry(session, products, logger),
		departments: cache.New[[]catalogue.Department](o.catalogueTTL),
		logger:      logger,
	}
}

// Login authenticates as the given customer. Empty credentials log in anonymously.
func (s *Service) Login(ctx context.Context, email, password string) error {
	if err := s.session.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.logger.Info("Logged in", zap.Bool("anonymous", s.session.Anonymous()))
	return nil
}

// Anonymous reports whether no customer is logged in.
func (s *Service) Anonymous() bool {
	return s.session.Anonymous()
}

// Customer returns the logged-in customer.
func (s *Service) Customer() (api.Customer, error) {
	return s.session.Customer()
}

// Products returns the product identity map shared by every listing.
func (s *Service) Products() *product.Registry {
	return s.products
}

// Search lists the products matching q.
func (s *Service) Search(ctx context.Context, q string) (*listing.Products, error) {
	return s.list(ctx, product.CommandSearch, api.Params{"searchtext": q})
}

// OnOffer lists the products currently on promotion.
func (s *Service) OnOffer(ctx context.Context) (*listing.Products, error) {
	return s.list(ctx, CommandOffers, api.Params{})
}

// Favourites lists the customer's favourite products.
func (s *Service) Favourites(ctx context.Context) (*listing.Products, error) {
	if s.session.Anonymous() {
		return nil, fmt.Errorf("favourites: %w", api.ErrNotAuthenticated)
	}
	return s.list(ctx, CommandFavourites, api.Params{})
}

// ProductsByCategory lists the products on the shelf with the given id.
func (s *Service) ProductsByCategory(ctx context.Context, shelfID string) (*listing.Products, error) {
	if !catalogue.ValidShelfID(shelfID) {
		return nil, fmt.Errorf("%q is not a shelf id: %w", shelfID, api.ErrInvalidArgument)
	}
	return s.list(ctx, CommandByCategory, api.Params{"category": shelfID})
}

// Departments returns the catalogue hierarchy, cached for the catalogue TTL.
func (s *Service) Departments(ctx context.Context) ([]catalogue.Department, error) {
	return s.departments.GetOrBuild(ctx, departmentsKey, func(ctx context.Context) ([]catalogue.Department, error) {
		resp, err := s.session.Request(ctx, catalogue.CommandCategories, api.Params{})
		if err != nil {
			return nil, fmt.Errorf("list departments: %w", err)
		}
		depts := catalogue.Build(resp.Record)
		s.logger.Debug("Catalogue loaded", zap.Int("departments", len(depts)))
		return depts, nil
	})
}

// Shelves returns every shelf of the catalogue.
func (s *Service) Shelves(ctx context.Context) ([]catalogue.Shelf, error) {
	depts, err := s.Departments(ctx)
	if err != nil {
		return nil, err
	}
	return catalogue.Shelves(depts), nil
}

// SearchShelves returns the shelves whose name matches re.
func (s *Service) SearchShelves(ctx context.Context, re *regexp.Regexp) ([]catalogue.Shelf, error) {
	if re == nil {
		return nil, fmt.Errorf("shelf pattern is nil: %w", api.ErrInvalidArgument)
	}
	shelves, err := s.Shelves(ctx)
	if err != nil {
		return nil, err
	}
	return catalogue.Search(shelves, re)
}

// Product returns the product with the given id, loading its details if they
// are not known yet.
func (s *Service) Product(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.products.GetOrCreate(id, nil)
	if err != nil {
		return nil, err
	}
	if _, err := p.Name(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Reference returns the product with the given id without fetching anything.
func (s *Service) Reference(id string) (*product.Product, error) {
	return s.products.GetOrCreate(id, nil)
}

// Basket returns the logged-in customer's basket.
func (s *Service) Basket(ctx context.Context) (*basket.Basket, error) {
	return s.baskets.ForCustomer(ctx, s.session)
}

// FlushBaskets forgets every cached basket so the next access resyncs.
func (s *Service) FlushBaskets() {
	s.baskets.Flush()
}

// Request sends any command directly. Non-zero status codes still fail.
func (s *Service) Request(ctx context.Context, command string, params api.Params) (*api.Response, error) {
	if params == nil {
		params = api.Params{}
	}
	return s.session.Request(ctx, command, params)
}

func (s *Service) list(ctx context.Context, command string, params api.Params) (*listing.Products, error) {
	resp, err := s.session.Request(ctx, command, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}
	return listing.NewProducts(s.products, s.session, resp)
}
