package basket_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"grocer/core/api"
	"grocer/core/api/mocks"
	"grocer/core/reconcile"
	"grocer/feature/basket"
	"grocer/feature/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	requester *mocks.Requester
	identity  *mocks.Identity
	products  *product.Registry
	baskets   *basket.Registry
}

func newFixture() *fixture {
	requester := new(mocks.Requester)
	products := product.NewRegistry(requester, nil)
	return &fixture{
		requester: requester,
		identity:  new(mocks.Identity),
		products:  products,
		baskets:   basket.NewRegistry(requester, products, nil),
	}
}

// product registers a detailed product so quantity checks need no fetch.
func (f *fixture) product(t *testing.T, id string) *product.Product {
	t.Helper()
	p, err := f.products.GetOrCreate(id, api.Record{"ProductId": id, "Name": "Product " + id, "MaximumPurchaseQuantity": 10})
	require.NoError(t, err)
	return p
}

// open returns the basket of customer 42 synced from lines.
func (f *fixture) open(t *testing.T, lines ...api.Record) *basket.Basket {
	t.Helper()
	f.identity.On("CustomerID").Return("42", nil)
	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(lines...), nil).Once()
	b, err := f.baskets.ForCustomer(context.Background(), f.identity)
	require.NoError(t, err)
	return b
}

func (f *fixture) expectChange(params api.Params) *mock.Call {
	return f.requester.On("Request", mock.Anything, basket.CommandChange, params).
		Return(&api.Response{Record: api.Record{"StatusCode": 0}, Command: basket.CommandChange}, nil)
}

func (f *fixture) assertNoChange(t *testing.T) {
	t.Helper()
	f.requester.AssertNotCalled(t, "Request", mock.Anything, basket.CommandChange, mock.Anything)
}

func listResponse(lines ...api.Record) *api.Response {
	quantity := 0
	for _, l := range lines {
		quantity += l.Int("BasketLineQuantity")
	}
	return &api.Response{
		Record: api.Record{
			"StatusCode":                 0,
			"BasketId":                   "777",
			"BasketGuidePrice":           "12.50",
			"BasketGuideMultiBuySavings": "1.25",
			"BasketTotalClubcardPoints":  12,
			"BasketQuantity":             quantity,
			"BasketLines":                lines,
		},
		Command: basket.CommandList,
	}
}

func line(id string, quantity int, note string) api.Record {
	return api.Record{
		"ProductId":               id,
		"Name":                    "Product " + id,
		"MaximumPurchaseQuantity": 10,
		"BasketLineQuantity":      quantity,
		"NoteForPersonalShopper":  note,
		"BasketLineErrorMessage":  "",
		"BasketLinePromoMessage":  "",
	}
}

func change(id, delta string) api.Params {
	return api.Params{"productid": id, "changequantity": delta}
}

func TestForCustomer_SyncsOnFirstUse(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("100", 1, "ripe please"), line("200", 2, ""))

	again, err := f.baskets.ForCustomer(context.Background(), f.identity)
	require.NoError(t, err)
	assert.Same(t, b, again)

	assert.True(t, b.Synced())
	assert.Equal(t, "42", b.Owner())
	assert.Equal(t, "777", b.ID())
	assert.True(t, b.GuidePrice().Equal(decimal.RequireFromString("12.50")))
	assert.True(t, b.MultiBuySavings().Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, 12, b.ClubcardPoints())
	assert.Equal(t, 3, b.Quantity())
	assert.Equal(t, 2, b.Len())

	// Lines share identity with the product registry.
	p := f.product(t, "100")
	item, ok := b.Item(p)
	require.True(t, ok)
	assert.Same(t, p, item.Product)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "ripe please", item.Note)

	name, err := item.Name(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Product 100", name)

	f.requester.AssertExpectations(t)
}

func TestForCustomer_RequiresCustomer(t *testing.T) {
	f := newFixture()
	f.identity.On("CustomerID").Return("", api.ErrNotAuthenticated)

	_, err := f.baskets.ForCustomer(context.Background(), f.identity)
	assert.ErrorIs(t, err, api.ErrNotAuthenticated)
	f.requester.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything)
}

func TestForCustomer_FailedSyncIsNotCached(t *testing.T) {
	f := newFixture()
	f.identity.On("CustomerID").Return("42", nil)
	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(nil, errors.New("connection reset")).Once()
	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(), nil).Once()

	_, err := f.baskets.ForCustomer(context.Background(), f.identity)
	require.Error(t, err)
	assert.Empty(t, f.baskets.Customers())

	b, err := f.baskets.ForCustomer(context.Background(), f.identity)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
	f.requester.AssertExpectations(t)
}

func TestForCustomer_OneBasketPerCustomer(t *testing.T) {
	f := newFixture()
	alice, bob := new(mocks.Identity), new(mocks.Identity)
	alice.On("CustomerID").Return("42", nil)
	bob.On("CustomerID").Return("99", nil)
	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(), nil).Twice()

	a, err := f.baskets.ForCustomer(context.Background(), alice)
	require.NoError(t, err)
	b, err := f.baskets.ForCustomer(context.Background(), bob)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, []string{"42", "99"}, f.baskets.Customers())
	f.requester.AssertExpectations(t)
}

func TestForCustomer_ConcurrentFirstUseSyncsOnce(t *testing.T) {
	f := newFixture()
	f.identity.On("CustomerID").Return("42", nil)
	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(), nil).Once()

	var wg sync.WaitGroup
	got := make([]*basket.Basket, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = f.baskets.ForCustomer(context.Background(), f.identity)
		}(i)
	}
	wg.Wait()

	for _, b := range got {
		assert.Same(t, got[0], b)
	}
	f.requester.AssertExpectations(t)
}

func TestFlush_ForgetsBaskets(t *testing.T) {
	f := newFixture()
	first := f.open(t)

	f.baskets.Flush()
	assert.Empty(t, f.baskets.Customers())

	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(line("100", 1, "")), nil).Once()
	second, err := f.baskets.ForCustomer(context.Background(), f.identity)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 1, second.Len())
	f.requester.AssertExpectations(t)
}

func TestFlush_DuringFirstSyncForcesResync(t *testing.T) {
	f := newFixture()
	f.identity.On("CustomerID").Return("42", nil)

	started, release := make(chan struct{}), make(chan struct{})
	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(listResponse(), nil).Once()

	done := make(chan *basket.Basket)
	go func() {
		b, _ := f.baskets.ForCustomer(context.Background(), f.identity)
		done <- b
	}()

	<-started
	f.baskets.Flush()
	close(release)
	stale := <-done
	require.NotNil(t, stale)
	assert.Empty(t, f.baskets.Customers())

	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(line("100", 1, "")), nil).Once()
	fresh, err := f.baskets.ForCustomer(context.Background(), f.identity)
	require.NoError(t, err)
	assert.NotSame(t, stale, fresh)
	assert.Equal(t, 1, fresh.Len())
	assert.Equal(t, []string{"42"}, f.baskets.Customers())
	f.requester.AssertExpectations(t)
}

func TestSetQuantity_SendsDeltas(t *testing.T) {
	f := newFixture()
	b := f.open(t)
	p := f.product(t, "100")
	ctx := context.Background()

	f.expectChange(change("100", "3")).Once()
	f.expectChange(change("100", "-2")).Once()

	require.NoError(t, b.SetQuantity(ctx, p, 3, ""))
	item, _ := b.Item(p)
	assert.Equal(t, 3, item.Quantity)

	require.NoError(t, b.SetQuantity(ctx, p, 1, ""))
	item, _ = b.Item(p)
	assert.Equal(t, 1, item.Quantity)

	f.requester.AssertExpectations(t)
}

func TestSetQuantity_Bounds(t *testing.T) {
	f := newFixture()
	b := f.open(t)
	p := f.product(t, "100")

	for _, amount := range []int{-1, 11} {
		err := b.SetQuantity(context.Background(), p, amount, "")
		assert.ErrorIs(t, err, api.ErrInvalidArgument, "amount %d", amount)
	}
	assert.ErrorIs(t, b.SetQuantity(context.Background(), nil, 1, ""), api.ErrInvalidArgument)
	f.assertNoChange(t)
}

func TestSetQuantity_FetchesMaxQuantityLazily(t *testing.T) {
	f := newFixture()
	b := f.open(t)
	p, err := f.products.GetOrCreate("300", nil)
	require.NoError(t, err)

	f.requester.On("Request", mock.Anything, product.CommandSearch, api.Params{"searchtext": "300"}).
		Return(&api.Response{Record: api.Record{"Products": []api.Record{
			{"ProductId": "300", "Name": "Eggs", "MaximumPurchaseQuantity": 2},
		}}}, nil).Once()

	err = b.SetQuantity(context.Background(), p, 5, "")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.True(t, p.Detailed())
	f.assertNoChange(t)
	f.requester.AssertExpectations(t)
}

func TestSetQuantity_FailureKeepsLocalView(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("100", 2, ""))
	p := f.product(t, "100")

	f.requester.On("Request", mock.Anything, basket.CommandChange, change("100", "3")).
		Return(nil, &api.APIError{Command: basket.CommandChange, StatusCode: 300}).Once()

	err := b.SetQuantity(context.Background(), p, 5, "")
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)

	item, ok := b.Item(p)
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("100", 2, ""))
	p := f.product(t, "100")

	f.expectChange(change("100", "-2")).Once()

	require.NoError(t, b.SetQuantity(context.Background(), p, 0, ""))
	_, ok := b.Item(p)
	assert.False(t, ok)
	f.requester.AssertExpectations(t)
}

func TestSetQuantity_UnchangedSkipsRequest(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("100", 2, ""))
	p := f.product(t, "100")

	require.NoError(t, b.SetQuantity(context.Background(), p, 2, ""))
	f.assertNoChange(t)

	// A note alone is still sent, as a zero delta.
	f.expectChange(change("100", "0").With("noteforshopper", "no substitutes")).Once()
	require.NoError(t, b.SetQuantity(context.Background(), p, 2, "no substitutes"))
	item, _ := b.Item(p)
	assert.Equal(t, "no substitutes", item.Note)
	f.requester.AssertExpectations(t)
}

func TestAdd_IncrementsByOne(t *testing.T) {
	f := newFixture()
	b := f.open(t)
	milk, bread := f.product(t, "100"), f.product(t, "200")
	ctx := context.Background()

	f.expectChange(change("100", "1").With("noteforshopper", "fresh")).Once()
	f.expectChange(change("200", "1").With("noteforshopper", "fresh")).Once()
	f.expectChange(change("100", "1")).Once()

	require.NoError(t, b.Add(ctx, []*product.Product{milk, bread}, "fresh"))
	require.NoError(t, b.Add(ctx, []*product.Product{milk}, ""))

	items := b.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "100", items[0].ID())
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "fresh", items[0].Note)
	assert.Equal(t, 1, items[1].Quantity)
	f.requester.AssertExpectations(t)
}

func TestAdd_RejectsNilBeforeAnyRequest(t *testing.T) {
	f := newFixture()
	b := f.open(t)

	err := b.Add(context.Background(), []*product.Product{f.product(t, "100"), nil}, "")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Equal(t, 0, b.Len())
	f.assertNoChange(t)
}

func TestAdd_FailureAddsNothing(t *testing.T) {
	f := newFixture()
	b := f.open(t)
	p := f.product(t, "100")

	f.requester.On("Request", mock.Anything, basket.CommandChange, change("100", "1")).
		Return(nil, errors.New("timeout")).Once()

	require.Error(t, b.Add(context.Background(), []*product.Product{p}, ""))
	_, ok := b.Item(p)
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("100", 3, ""))
	inBasket, absent := f.product(t, "100"), f.product(t, "200")

	// Not in the basket: no request at all.
	require.NoError(t, b.Remove(context.Background(), absent))
	f.assertNoChange(t)

	f.expectChange(change("100", "-3")).Once()
	require.NoError(t, b.Remove(context.Background(), inBasket, absent))
	assert.Equal(t, 0, b.Len())
	f.requester.AssertExpectations(t)
}

func TestSetNote(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("100", 1, "old"))
	p := f.product(t, "100")

	f.expectChange(change("100", "0").With("noteforshopper", "new")).Once()
	f.expectChange(change("100", "0").With("noteforshopper", "")).Once()

	require.NoError(t, b.SetNote(context.Background(), p, "new"))
	item, _ := b.Item(p)
	assert.Equal(t, "new", item.Note)
	assert.Equal(t, 1, item.Quantity)

	require.NoError(t, b.SetNote(context.Background(), p, ""))
	item, _ = b.Item(p)
	assert.Empty(t, item.Note)
	f.requester.AssertExpectations(t)
}

func TestSetNote_NotInBasket(t *testing.T) {
	f := newFixture()
	b := f.open(t)

	err := b.SetNote(context.Background(), f.product(t, "100"), "note")
	assert.ErrorIs(t, err, api.ErrNotFound)
	f.assertNoChange(t)
}

func TestClear_OneRequestPerLineInOrder(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("300", 1, ""), line("100", 2, ""), line("200", 4, ""))

	var order []string
	f.requester.On("Request", mock.Anything, basket.CommandChange, mock.Anything).
		Run(func(args mock.Arguments) {
			params := args.Get(2).(api.Params)
			order = append(order, params["productid"]+":"+params["changequantity"])
		}).
		Return(&api.Response{Record: api.Record{"StatusCode": 0}}, nil)

	require.NoError(t, b.Clear(context.Background()))
	assert.Equal(t, []string{"100:-2", "200:-4", "300:-1"}, order)
	assert.Equal(t, 0, b.Len())
}

func TestOwnership_RejectsOtherCustomer(t *testing.T) {
	f := newFixture()
	f.identity.On("CustomerID").Return("42", nil).Once()
	f.identity.On("CustomerID").Return("99", nil)
	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(line("100", 1, "")), nil).Once()

	b, err := f.baskets.ForCustomer(context.Background(), f.identity)
	require.NoError(t, err)
	require.Equal(t, "42", b.Owner())
	p := f.product(t, "100")
	ctx := context.Background()

	assert.ErrorIs(t, b.Add(ctx, []*product.Product{p}, ""), api.ErrNotAuthenticated)
	assert.ErrorIs(t, b.SetQuantity(ctx, p, 2, ""), api.ErrNotAuthenticated)
	assert.ErrorIs(t, b.Remove(ctx, p), api.ErrNotAuthenticated)
	assert.ErrorIs(t, b.SetNote(ctx, p, "x"), api.ErrNotAuthenticated)
	assert.ErrorIs(t, b.Clear(ctx), api.ErrNotAuthenticated)
	_, err = b.Sync(ctx)
	assert.ErrorIs(t, err, api.ErrNotAuthenticated)

	f.assertNoChange(t)
	f.requester.AssertNumberOfCalls(t, "Request", 1)

	// The local view is untouched.
	item, ok := b.Item(p)
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
}

func TestSync_RebuildsAndReportsChanges(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("100", 1, ""), line("200", 2, ""))
	ctx := context.Background()

	local := f.product(t, "300")
	f.expectChange(change("300", "1")).Once()
	require.NoError(t, b.Add(ctx, []*product.Product{local}, ""))

	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(line("100", 4, ""), line("400", 1, "")), nil).Once()

	plan, err := b.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, reconcile.PlanSummary{TotalItems: 4, Added: 1, Removed: 2, Changed: 1}, plan.Summary)
	require.Len(t, plan.Actions, 4)
	assert.Equal(t, reconcile.ActionUpdate, plan.Actions[0].Type)
	assert.Equal(t, "100", plan.Actions[0].Key)
	assert.Equal(t, reconcile.ActionRemove, plan.Actions[1].Type)
	assert.Equal(t, reconcile.ActionRemove, plan.Actions[2].Type)
	assert.Equal(t, "300", plan.Actions[2].Key)
	assert.Equal(t, reconcile.ActionAdd, plan.Actions[3].Type)
	assert.Equal(t, "400", plan.Actions[3].Key)

	// Local-only lines are gone.
	_, ok := b.Item(local)
	assert.False(t, ok)
	ids := []string{}
	for _, item := range b.Items() {
		ids = append(ids, item.ID())
	}
	assert.Equal(t, []string{"100", "400"}, ids)
	assert.Equal(t, 5, b.Quantity())
	f.requester.AssertExpectations(t)
}

func TestSync_InvalidLineKeepsPreviousView(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("100", 1, ""))

	f.requester.On("Request", mock.Anything, basket.CommandList, mock.Anything).
		Return(listResponse(api.Record{"ProductId": "oops"}), nil).Once()

	_, err := b.Sync(context.Background())
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Equal(t, 1, b.Len())
}

func TestConcurrentAdds(t *testing.T) {
	f := newFixture()
	b := f.open(t)
	p := f.product(t, "100")
	f.expectChange(change("100", "1")).Times(10)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Add(context.Background(), []*product.Product{p}, "")
		}()
	}
	wg.Wait()

	item, ok := b.Item(p)
	require.True(t, ok)
	assert.Equal(t, 10, item.Quantity)
	f.requester.AssertExpectations(t)
}

func TestSnapshot(t *testing.T) {
	f := newFixture()
	b := f.open(t, line("200", 2, "ripe"), line("100", 1, ""))

	v := b.Snapshot()
	assert.Equal(t, "777", v.ID)
	assert.Equal(t, "42", v.Owner)
	assert.Equal(t, "12.5", v.GuidePrice.String())
	require.Len(t, v.Lines, 2)
	assert.Equal(t, "100", v.Lines[0].Product.ID)
	assert.Equal(t, "ripe", v.Lines[1].Note)
	assert.Equal(t, 2, v.Lines[1].Quantity)
}
