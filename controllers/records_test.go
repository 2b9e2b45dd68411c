package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"custemoapi/metrics"
	"custemoapi/models"
	"custemoapi/store"
	"custemoapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   "Ada Lovelace",
		Line1:      "12 Marylebone Rd",
		City:       "London",
		PostalCode: "NW1 5LR",
		Country:    "UK",
	}
}

func TestSaveAndListDesigns(t *testing.T) {
	reg := metrics.NewRegistry()
	e, s := setupServer(t, Dependencies{Metrics: reg})
	user := test.FakeUser(t, s, "")

	cfg := models.DefaultGarmentConfiguration()
	cfg.Fabric = models.FabricPureLinen
	rec := serve(e, test.NewJSONRequest("POST", "/designs", models.SaveDesignIn{UserID: user.ID, State: cfg}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	first := decode[models.SavedDesign](t, rec)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.True(t, strings.HasSuffix(first.Name, " Pure Linen Shirt"), first.Name)
	assert.Equal(t, models.FabricPureLinen, first.Configuration().Fabric)

	rec = serve(e, test.NewJSONRequest("POST", "/designs", models.SaveDesignIn{UserID: user.ID, Name: "Gala", State: cfg}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, test.NewJSONRequest("GET", "/designs/"+user.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	designs := decode[[]models.SavedDesign](t, rec)
	require.Len(t, designs, 2)
	assert.Equal(t, "Gala", designs[0].Name)
	assert.Equal(t, first.ID, designs[1].ID)

	rec = serve(e, test.NewJSONRequest("GET", "/designs/someone-else", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, int64(2), reg.Value("records_written_total", map[string]string{"kind": "design"}))
}

func TestSaveDesignRejectsBadConfiguration(t *testing.T) {
	e, s := setupServer(t, Dependencies{})
	user := test.FakeUser(t, s, "")

	cfg := models.DefaultGarmentConfiguration()
	cfg.Fabric = "Plastic"
	rec := serve(e, test.NewJSONRequest("POST", "/designs", models.SaveDesignIn{UserID: user.ID, State: cfg}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	cfg = models.DefaultGarmentConfiguration()
	cfg.Color = "white"
	rec = serve(e, test.NewJSONRequest("POST", "/designs", models.SaveDesignIn{UserID: user.ID, State: cfg}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderLifecycle(t *testing.T) {
	e, s := setupServer(t, Dependencies{})
	user := test.FakeUser(t, s, "")

	design, err := s.SaveDesign(context.Background(), models.SaveDesignIn{UserID: user.ID, Name: "Linen", State: models.DefaultGarmentConfiguration()})
	require.NoError(t, err)

	rec := serve(e, test.NewJSONRequest("POST", "/orders", models.CreateOrderIn{
		UserID:          user.ID,
		Items:           []models.SavedDesign{*design, *design},
		ShippingAddress: shippingAddress(),
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 275.0, order.TotalAmount)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "London", order.ShippingAddress.Data().City)

	rec = serve(e, test.NewJSONRequest("GET", "/orders/"+user.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Order](t, rec), 1)

	rec = serve(e, test.NewJSONRequest("PATCH", "/admin/orders/"+order.ID+"/status", models.UpdateOrderStatusIn{Status: models.OrderShipped}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderShipped, decode[models.Order](t, rec).Status)

	rec = serve(e, test.NewJSONRequest("PATCH", "/admin/orders/"+order.ID+"/status", models.UpdateOrderStatusIn{Status: models.OrderPending}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(e, test.NewJSONRequest("PATCH", "/admin/orders/"+order.ID+"/status", models.UpdateOrderStatusIn{Status: "lost"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, test.NewJSONRequest("PATCH", "/admin/orders/missing/status", models.UpdateOrderStatusIn{Status: models.OrderShipped}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	e, s := setupServer(t, Dependencies{})
	user := test.FakeUser(t, s, "")

	rec := serve(e, test.NewJSONRequest("POST", "/orders", models.CreateOrderIn{UserID: user.ID, ShippingAddress: shippingAddress()}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	design, err := s.SaveDesign(context.Background(), models.SaveDesignIn{UserID: user.ID, Name: "Linen", State: models.DefaultGarmentConfiguration()})
	require.NoError(t, err)
	rec = serve(e, test.NewJSONRequest("POST", "/orders", models.CreateOrderIn{UserID: user.ID, Items: []models.SavedDesign{*design}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteOrder(t *testing.T) {
	e, _ := setupServer(t, Dependencies{})

	rec := serve(e, test.NewJSONRequest("POST", "/orders/quote", models.QuoteIn{Items: 3}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items": 3, "subtotal": 375, "shipping": 0, "tax": 37.5, "total": 412.5}`, rec.Body.String())

	rec = serve(e, test.NewJSONRequest("POST", "/orders/quote", models.QuoteIn{Items: 0}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminListsEverything(t *testing.T) {
	e, s := setupServer(t, Dependencies{})
	ada := test.FakeUser(t, s, "ada@example.com")
	bob := test.FakeUser(t, s, "bob@example.com")

	for _, u := range []string{ada.ID, bob.ID} {
		_, err := s.SaveDesign(context.Background(), models.SaveDesignIn{UserID: u, Name: "Mine", State: models.DefaultGarmentConfiguration()})
		require.NoError(t, err)
	}

	rec := serve(e, test.NewJSONRequest("GET", "/admin/designs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	designs := decode[[]models.SavedDesign](t, rec)
	require.Len(t, designs, 2)
	assert.Equal(t, bob.ID, designs[0].UserID)

	rec = serve(e, test.NewJSONRequest("GET", "/admin/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// The remote backend is pointed at this API's own record routes.
func TestRemoteStoreAgainstRecordRoutes(t *testing.T) {
	e, _ := setupServer(t, Dependencies{})
	srv := httptest.NewServer(e)
	defer srv.Close()

	ctx := context.Background()
	remote := store.NewRemoteStore(srv.URL, srv.Client())

	user, err := remote.RegisterUser(ctx, models.RegisterIn{Email: "remote@example.com", Name: "remote user"})
	require.NoError(t, err)
	assert.Equal(t, "Remote User", user.Name)

	_, err = remote.RegisterUser(ctx, models.RegisterIn{Email: "remote@example.com", Name: "Again"})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	found, err := remote.FindUserByEmail(ctx, "REMOTE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = remote.FindUserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	byID, err := remote.FindUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "remote@example.com", byID.Email)

	design, err := remote.SaveDesign(ctx, models.SaveDesignIn{UserID: user.ID, Name: "Remote", State: models.DefaultGarmentConfiguration()})
	require.NoError(t, err)
	assert.NotEmpty(t, design.ID)

	designs, err := remote.ListDesignsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, designs, 1)
	assert.Equal(t, models.GarmentShirt, designs[0].Configuration().GarmentType)

	order, err := remote.CreateOrder(ctx, models.CreateOrderIn{UserID: user.ID, Items: designs, ShippingAddress: shippingAddress()})
	require.NoError(t, err)
	assert.Equal(t, 137.5, order.TotalAmount)

	updated, err := remote.UpdateOrderStatus(ctx, order.ID, models.OrderProduction)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProduction, updated.Status)

	_, err = remote.UpdateOrderStatus(ctx, order.ID, models.OrderPending)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	all, err := remote.ListOrders(ctx, models.AllOrders())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	mine, err := remote.ListOrders(ctx, models.OrdersOf(user.ID))
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
