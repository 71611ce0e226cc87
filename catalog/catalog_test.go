package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansetdig/goAset/backend"
	"github.com/mansetdig/goAset/permission"
)

type fakeSession struct {
	token       string
	credErr     error
	role        permission.Role
	invalidated int
}

func (f *fakeSession) Credential(context.Context) (string, error) { return f.token, f.credErr }
func (f *fakeSession) Role(context.Context) permission.Role        { return f.role }
func (f *fakeSession) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

type fakeLister struct {
	products []backend.Product
	err      error
	token    string
	role     string
	calls    int
}

func (f *fakeLister) ListProducts(_ context.Context, token, role string) (*backend.ProductList, error) {
	f.calls++
	f.token, f.role = token, role
	if f.err != nil {
		return nil, f.err
	}
	return &backend.ProductList{Products: f.products}, nil
}

func sampleProducts() []backend.Product {
	return []backend.Product{
		{ID: "p1", Name: "Proyektor Epson", Stock: 2},
		{ID: "p2", Name: "Kabel HDMI", Stock: 0},
		{ID: "p3", Name: "Laptop", Stock: 5},
	}
}

func TestLoadHidesOutOfStockForUser(t *testing.T) {
	sess := &fakeSession{token: "tok", role: permission.RoleUser}
	lister := &fakeLister{products: sampleProducts()}

	got, err := New(sess, lister, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok", lister.token)
	assert.Equal(t, "user", lister.role)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p3", got[1].ID)
}

func TestLoadKeepsEverythingForAdmin(t *testing.T) {
	sess := &fakeSession{token: "tok", role: permission.RoleAdmin}
	lister := &fakeLister{products: sampleProducts()}

	got, err := New(sess, lister, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "admin", lister.role)
}

func TestLoadDefaultsUnresolvedRoleToUser(t *testing.T) {
	sess := &fakeSession{token: "tok"}
	lister := &fakeLister{products: sampleProducts()}

	got, err := New(sess, lister, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user", lister.role)
	assert.Len(t, got, 2)
}

func TestLoadUnauthorizedInvalidatesSession(t *testing.T) {
	sess := &fakeSession{token: "tok", role: permission.RoleUser}
	lister := &fakeLister{err: &backend.StatusError{Op: "list_products", Status: http.StatusUnauthorized}}

	_, err := New(sess, lister, nil).Load(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, sess.invalidated)
}

func TestLoadOtherFailuresKeepSession(t *testing.T) {
	sess := &fakeSession{token: "tok", role: permission.RoleUser}
	lister := &fakeLister{err: &backend.StatusError{Op: "list_products", Status: http.StatusInternalServerError, Message: "boom"}}

	_, err := New(sess, lister, nil).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrUnexpectedStatus)
	assert.Zero(t, sess.invalidated)
}

func TestLoadWithoutSessionSkipsBackend(t *testing.T) {
	sess := &fakeSession{credErr: errors.New("not authenticated")}
	lister := &fakeLister{}

	_, err := New(sess, lister, nil).Load(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
	assert.Zero(t, lister.calls)
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	got := Filter(sampleProducts(), "EPSON")
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)

	assert.Len(t, Filter(sampleProducts(), ""), 3)
	assert.Empty(t, Filter(sampleProducts(), "kursi"))
}

func manyProducts(n int) []backend.Product {
	out := make([]backend.Product, n)
	for i := range out {
		out[i] = backend.Product{ID: fmt.Sprintf("p%02d", i), Name: fmt.Sprintf("Aset %02d", i), Stock: 1}
	}
	return out
}

func TestPaginate(t *testing.T) {
	products := manyProducts(30)

	tests := []struct {
		name      string
		number    int
		wantNum   int
		wantLen   int
		wantFirst string
	}{
		{"first page", 1, 1, 12, "p00"},
		{"second page", 2, 2, 12, "p12"},
		{"last partial page", 3, 3, 6, "p24"},
		{"past the end clamps", 9, 3, 6, "p24"},
		{"zero clamps", 0, 1, 12, "p00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Paginate(products, tc.number, 0)
			assert.Equal(t, 3, p.Total)
			assert.Equal(t, tc.wantNum, p.Number)
			require.Len(t, p.Items, tc.wantLen)
			assert.Equal(t, tc.wantFirst, p.Items[0].ID)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 3, PerPage)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 0, p.Total)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrev())
}

func TestViewSearchResetsPageAndReloads(t *testing.T) {
	sess := &fakeSession{token: "tok", role: permission.RoleAdmin}
	lister := &fakeLister{products: manyProducts(30)}
	v := NewView(New(sess, lister, nil))
	require.NoError(t, v.Reload(context.Background()))

	assert.Equal(t, 2, v.Next().Number)
	assert.Equal(t, 3, v.Next().Number)
	assert.Equal(t, 3, v.Next().Number)

	v.SetSearch("aset 2")
	p := v.Current()
	assert.Equal(t, 1, p.Number)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, "aset 2", v.Search())
	assert.Equal(t, 1, v.Prev().Number)

	lister.products = append(lister.products, backend.Product{ID: "new", Name: "Aset 2 baru", Stock: 1})
	require.NoError(t, v.AssetAdded(context.Background()))
	assert.Len(t, v.Current().Items, 11)
	assert.Equal(t, 2, lister.calls)
}

func TestViewKeepsProductsOnReloadError(t *testing.T) {
	sess := &fakeSession{token: "tok", role: permission.RoleAdmin}
	lister := &fakeLister{products: sampleProducts()}
	v := NewView(New(sess, lister, nil))
	require.NoError(t, v.Reload(context.Background()))

	lister.err = &backend.StatusError{Status: http.StatusBadGateway}
	require.Error(t, v.Reload(context.Background()))
	assert.Len(t, v.Current().Items, 3)
}

func TestBorrowClampsToStock(t *testing.T) {
	var b Borrow
	p := backend.Product{ID: "p1", Stock: 2}

	assert.Equal(t, 1, b.Increment(p))
	assert.Equal(t, 2, b.Increment(p))
	assert.Equal(t, 2, b.Increment(p))
	assert.Equal(t, 1, b.Decrement("p1"))
	assert.Equal(t, 0, b.Decrement("p1"))
	assert.Equal(t, 0, b.Decrement("p1"))
	assert.Equal(t, 0, b.Quantity("p1"))

	assert.Equal(t, 0, b.Increment(backend.Product{ID: "empty", Stock: 0}))
	assert.Empty(t, b.Lines(sampleProducts()))
}

func TestBorrowLinesFollowProductOrder(t *testing.T) {
	var b Borrow
	products := sampleProducts()
	b.Increment(products[2])
	b.Increment(products[0])

	lines := b.Lines(products)
	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].Product.ID)
	assert.Equal(t, "p3", lines[1].Product.ID)

	b.Reset()
	assert.Zero(t, b.Quantity("p1"))
}
