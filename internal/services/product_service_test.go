package services_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda/internal/models"
	"tienda/internal/services"
	pkgerrors "tienda/pkg/errors"
)

// uploadedFile builds a real multipart file header for name.
func uploadedFile(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("imagen", name)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["imagen"][0]
}

func TestProductService_Home(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "Vestido", 200, e.women)
	e.product(t, "Camisa B", 100, e.men)
	e.product(t, "Camisa A", 100, e.men)

	home, err := e.catalog.Home(ctx)
	require.NoError(t, err)
	require.Len(t, home.Sections, 2)
	assert.Equal(t, models.CategoryMen, home.Sections[0].Type)
	assert.Equal(t, "Camisa A", home.Sections[0].Products[0].Name)
	assert.Equal(t, models.CategoryWomen, home.Sections[1].Type)
	assert.Len(t, home.Categories, 2)
}

func TestProductService_DetailShowsOwnPendingComments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shirt := e.product(t, "Camisa", 100, e.men)
	e.product(t, "Camisa 2", 120, e.men)
	e.product(t, "Vestido", 200, e.women)
	author := e.register(t, models.Actor{}, "ana@example.com")

	_, err := e.moderation.AddProductComment(ctx, author, services.CommentInput{ProductID: fmt.Sprint(shirt.ID), Rating: "2", Body: "regular"})
	require.NoError(t, err)

	detail, err := e.catalog.Detail(ctx, author, shirt.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 1)
	require.Len(t, detail.Related, 1)
	assert.Equal(t, "Camisa 2", detail.Related[0].Name)

	detail, err = e.catalog.Detail(ctx, models.Actor{}, shirt.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Comments)

	_, err = e.catalog.Detail(ctx, models.Actor{}, 999)
	assert.Equal(t, "Producto no encontrado", pkgerrors.PublicMessage(err))
}

func TestProductService_DeactivationKeepsOrderSnapshot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	visitor := guest("sid")
	order := placeOrder(t, e, visitor, validCheckout())

	found, err := e.catalog.Search(ctx, "Producto A", "")
	require.NoError(t, err)
	require.Len(t, found.Products, 1)
	productID := found.Products[0].ID

	require.NoError(t, e.catalog.DeleteProduct(ctx, adminActor, productID))

	found, err = e.catalog.Search(ctx, "Producto A", "")
	require.NoError(t, err)
	assert.Empty(t, found.Products)
	home, err := e.catalog.Home(ctx)
	require.NoError(t, err)
	assert.Empty(t, home.Sections)

	stored, err := e.orders.GetForViewer(ctx, adminActor, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Details.Items, 1)
	assert.Equal(t, "Producto A", stored.Details.Items[0].ProductName)

	// still reachable through the admin lookup
	product, err := e.catalog.GetProduct(ctx, productID)
	require.NoError(t, err)
	assert.False(t, product.Active)

	err = e.catalog.DeleteProduct(ctx, adminActor, 999)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestProductService_CreateProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.CreateProduct(ctx, guest("sid"), services.ProductInput{Name: "X", Price: "10"}, nil)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))

	invalid := []struct {
		in  services.ProductInput
		msg string
	}{
		{services.ProductInput{Price: "10"}, "El nombre es requerido"},
		{services.ProductInput{Name: "Gorra"}, "El precio es requerido"},
		{services.ProductInput{Name: "Gorra", Price: "-5"}, "El precio debe ser un número válido mayor a 0"},
		{services.ProductInput{Name: "Gorra", Price: "10", Stock: "muchos"}, "El stock debe ser un número válido"},
		{services.ProductInput{Name: "Gorra", Price: "10", CategoryID: "999"}, "Categoría inválida"},
	}
	for _, tc := range invalid {
		_, err := e.catalog.CreateProduct(ctx, adminActor, tc.in, nil)
		assert.Equal(t, tc.msg, pkgerrors.PublicMessage(err))
	}

	product, err := e.catalog.CreateProduct(ctx, adminActor, services.ProductInput{
		Name:       "Gorra",
		Price:      "65.5",
		CategoryID: fmt.Sprint(e.men.ID),
	}, uploadedFile(t, "mi gorra.PNG"))
	require.NoError(t, err)
	assert.Equal(t, 100, product.Stock)
	assert.True(t, product.Active)
	assert.True(t, decimal.RequireFromString("65.5").Equal(product.Price))
	assert.True(t, strings.HasPrefix(product.Image, "/static/images/productos/hombres/mi_gorra_"), product.Image)
	assert.True(t, strings.HasSuffix(product.Image, ".png"))

	_, err = e.catalog.CreateProduct(ctx, adminActor, services.ProductInput{Name: "Gorra", Price: "10"}, uploadedFile(t, "script.exe"))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestProductService_UpdateProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shirt := e.product(t, "Camisa", 100, e.men)

	_, err := e.catalog.UpdateProduct(ctx, adminActor, shirt.ID, services.ProductInput{Name: "Camisa"}, nil)
	assert.Equal(t, "Nombre y precio son requeridos", pkgerrors.PublicMessage(err))

	_, err = e.catalog.UpdateProduct(ctx, adminActor, shirt.ID, services.ProductInput{Name: "Camisa", Price: "0"}, nil)
	assert.Equal(t, "Precio inválido", pkgerrors.PublicMessage(err))

	_, err = e.catalog.UpdateProduct(ctx, adminActor, 999, services.ProductInput{Name: "Camisa", Price: "10"}, nil)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	updated, err := e.catalog.UpdateProduct(ctx, adminActor, shirt.ID, services.ProductInput{Name: "Camisa Nueva", Price: "110", Stock: "7"}, nil)
	require.NoError(t, err)
	assert.Equal(t, e.men.ID, *updated.CategoryID)

	stored, err := e.catalog.GetProduct(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camisa Nueva", stored.Name)
	assert.Equal(t, 7, stored.Stock)
	assert.True(t, decimal.NewFromInt(110).Equal(stored.Price))
	assert.Equal(t, models.CategoryMen, stored.CategoryType())

	moved, err := e.catalog.UpdateProduct(ctx, adminActor, shirt.ID, services.ProductInput{Name: "Camisa Nueva", Price: "110", CategoryID: fmt.Sprint(e.women.ID)}, nil)
	require.NoError(t, err)
	assert.Equal(t, e.women.ID, *moved.CategoryID)
	assert.Equal(t, 100, moved.Stock)
}

func TestDiskImageStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := services.NewDiskImageStore(dir, "/static/images/productos")
	store.Now = func() time.Time { return time.Unix(1700000000, 0) }

	public, err := store.Save(uploadedFile(t, "../../etc/Foto Linda.jpg"), "")
	require.NoError(t, err)
	assert.Equal(t, "/static/images/productos/general/Foto_Linda_1700000000.jpg", public)

	data, err := os.ReadFile(filepath.Join(dir, "general", "Foto_Linda_1700000000.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))

	_, err = store.Save(uploadedFile(t, "doc.pdf"), "ninos")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
