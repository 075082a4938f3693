package shop

import (
	"context"
	"regexp"
	"testing"
	"time"

	"grocer/core/api"
	"grocer/core/api/mocks"
	"grocer/feature/basket"
	"grocer/feature/catalogue"
	"grocer/feature/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func productsResponse(command string, params api.Params, ids ...string) *api.Response {
	records := make([]api.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, api.Record{"ProductId": id, "Name": "Product " + id, "MaximumPurchaseQuantity": 5})
	}
	return &api.Response{
		Record: api.Record{
			"StatusCode":        0,
			"PageNumber":        1,
			"TotalPageCount":    1,
			"PageProductCount":  len(ids),
			"TotalProductCount": len(ids),
			"Products":          records,
		},
		Command: command,
		Params:  params,
	}
}

func categoriesResponse() *api.Response {
	return &api.Response{
		Record: api.Record{
			"StatusCode": 0,
			"Departments": []api.Record{{
				"Id":   "1",
				"Name": "Fresh Food",
				"Aisles": []api.Record{{
					"Id":   "10",
					"Name": "Dairy",
					"Shelves": []api.Record{
						{"Id": "100", "Name": "Milk"},
						{"Id": "101", "Name": "Cheese"},
					},
				}},
			}},
		},
		Command: catalogue.CommandCategories,
	}
}

func TestSearch_SharesProducts(t *testing.T) {
	session := new(mocks.Session)
	svc := NewService(session, zap.NewNop())
	ctx := context.Background()

	session.On("Request", mock.Anything, product.CommandSearch, api.Params{"searchtext": "milk"}).
		Return(productsResponse(product.CommandSearch, api.Params{"searchtext": "milk"}, "1", "2"), nil)
	session.On("Request", mock.Anything, CommandOffers, api.Params{}).
		Return(productsResponse(CommandOffers, api.Params{}, "2"), nil)

	search, err := svc.Search(ctx, "milk")
	require.NoError(t, err)
	offers, err := svc.OnOffer(ctx)
	require.NoError(t, err)

	fromSearch, err := search.At(ctx, 1)
	require.NoError(t, err)
	fromOffers, err := offers.At(ctx, 0)
	require.NoError(t, err)
	assert.Same(t, fromSearch, fromOffers)
	assert.Equal(t, 2, svc.Products().Len())
}

func TestFavourites_RequiresCustomer(t *testing.T) {
	session := new(mocks.Session)
	svc := NewService(session, nil)
	session.On("Anonymous").Return(true).Once()

	_, err := svc.Favourites(context.Background())
	assert.ErrorIs(t, err, api.ErrNotAuthenticated)

	session.On("Anonymous").Return(false)
	session.On("Request", mock.Anything, CommandFavourites, api.Params{}).
		Return(productsResponse(CommandFavourites, api.Params{}, "7"), nil).Once()

	favs, err := svc.Favourites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, favs.Len())
	session.AssertExpectations(t)
}

func TestProductsByCategory(t *testing.T) {
	session := new(mocks.Session)
	svc := NewService(session, nil)

	for _, id := range []string{"0", "-1", "abc", ""} {
		_, err := svc.ProductsByCategory(context.Background(), id)
		assert.ErrorIs(t, err, api.ErrInvalidArgument, id)
	}
	session.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything)

	session.On("Request", mock.Anything, CommandByCategory, api.Params{"category": "100"}).
		Return(productsResponse(CommandByCategory, api.Params{"category": "100"}, "1"), nil).Once()
	results, err := svc.ProductsByCategory(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, 1, results.Len())
}

func TestDepartments_Cached(t *testing.T) {
	session := new(mocks.Session)
	svc := NewService(session, nil, WithCatalogueTTL(time.Minute))
	ctx := context.Background()

	session.On("Request", mock.Anything, catalogue.CommandCategories, api.Params{}).
		Return(categoriesResponse(), nil).Once()

	depts, err := svc.Departments(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 1)

	shelves, err := svc.Shelves(ctx)
	require.NoError(t, err)
	assert.Len(t, shelves, 2)

	matches, err := svc.SearchShelves(ctx, regexp.MustCompile(`(?i)^milk`))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "100", matches[0].ID)

	_, err = svc.SearchShelves(ctx, nil)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	session.AssertExpectations(t)
}

func TestProduct_LoadsDetails(t *testing.T) {
	session := new(mocks.Session)
	svc := NewService(session, nil)

	session.On("Request", mock.Anything, product.CommandSearch, api.Params{"searchtext": "42"}).
		Return(productsResponse(product.CommandSearch, nil, "42"), nil).Once()

	p, err := svc.Product(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, p.Detailed())

	again, err := svc.Product(context.Background(), "42")
	require.NoError(t, err)
	assert.Same(t, p, again)

	_, err = svc.Product(context.Background(), "nope")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	session.AssertExpectations(t)
}

func TestBasket_AndFlush(t *testing.T) {
	session := new(mocks.Session)
	svc := NewService(session, nil)
	ctx := context.Background()

	session.On("CustomerID").Return("42", nil)
	session.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(&api.Response{Record: api.Record{"StatusCode": 0, "BasketId": "1"}}, nil).Twice()

	first, err := svc.Basket(ctx)
	require.NoError(t, err)
	same, err := svc.Basket(ctx)
	require.NoError(t, err)
	assert.Same(t, first, same)

	svc.FlushBaskets()
	fresh, err := svc.Basket(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	session.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	session := new(mocks.Session)
	svc := NewService(session, nil)

	session.On("Login", mock.Anything, "a@b.com", "pw").Return(nil).Once()
	session.On("Anonymous").Return(false)
	session.On("Customer").Return(api.Customer{ID: "42", Name: "Mr Alan Bee"}, nil)

	require.NoError(t, svc.Login(context.Background(), "a@b.com", "pw"))
	assert.False(t, svc.Anonymous())
	cust, err := svc.Customer()
	require.NoError(t, err)
	assert.Equal(t, "Mr Alan Bee", cust.Name)
}

func TestRequest_EscapeHatch(t *testing.T) {
	session := new(mocks.Session)
	svc := NewService(session, nil)

	session.On("Request", mock.Anything, "listdeliveryslots", api.Params{}).
		Return(&api.Response{Record: api.Record{"StatusCode": 0, "Slots": 3}}, nil).Once()

	resp, err := svc.Request(context.Background(), "listdeliveryslots", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Int("Slots"))
}
