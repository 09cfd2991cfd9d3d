package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokodash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/"})
}

func TestClient_ListItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/stores/items", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"success":true,"items":[{"item_id":1,"name":"Mug","price":12.5,"quantity":5,"image_url":null}]}`)
	})

	items, err := c.ListItems(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Nil(t, items[0].ImageURL)
}

func TestClient_ListItems_Unsuccessful(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false}`)
	})

	_, err := c.ListItems(context.Background(), "tok")
	var re *models.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusOK, re.StatusCode)
}

func TestClient_CreateItem_SendsNullImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "image_url")
		assert.Nil(t, body["image_url"])
		assert.Equal(t, "Mug", body["name"])
		assert.Equal(t, 12.5, body["price"])
		assert.Equal(t, float64(5), body["quantity"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"item_id":9,"name":"Mug","price":12.5,"quantity":5}`)
	})

	item, err := c.CreateItem(context.Background(), "tok", models.ItemFields{Name: "Mug", Price: 12.5, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(9), item.ID)
}

func TestClient_UpdateItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/stores/items/7", r.URL.Path)
		var fields models.ItemFields
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		require.NotNil(t, fields.ImageURL)
		_ = json.NewEncoder(w).Encode(models.Item{ID: 7}.WithFields(fields))
	})

	prev := "http://img/old.jpg"
	item, err := c.UpdateItem(context.Background(), "tok", 7, models.ItemFields{Name: "New", Price: 1, ImageURL: &prev})
	require.NoError(t, err)
	assert.Equal(t, "New", item.Name)
	assert.Equal(t, prev, *item.ImageURL)
}

func TestClient_DeleteItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/stores/items/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, c.DeleteItem(context.Background(), "tok", 3))
}

func TestClient_ServerMessageSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Item name already used","error":"duplicate"}`)
	})

	err := c.DeleteItem(context.Background(), "tok", 3)
	var re *models.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusConflict, re.StatusCode)
	assert.Equal(t, "Item name already used", re.Message)
	assert.Equal(t, "Item name already used", models.ServerMessage(err))
}

func TestClient_NonJSONErrorHasNoMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.ListItems(context.Background(), "tok")
	var re *models.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)
	assert.Empty(t, re.Message)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := New(Config{BaseURL: srv.URL})
	srv.Close()

	_, err := c.ListItems(context.Background(), "tok")
	var re *models.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 0, re.StatusCode)
	assert.Error(t, re.Unwrap())
}

func TestClient_UploadImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files/upload", r.URL.Path)
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "mug.png", header.Filename)
		assert.Equal(t, []byte("pngbytes"), data)
		_, _ = io.WriteString(w, `{"url":"http://img/mug.jpg"}`)
	})

	res, err := c.UploadImage(context.Background(), "tok", models.ImageFile{Name: "mug.png", Data: []byte("pngbytes")})
	require.NoError(t, err)
	assert.Equal(t, "http://img/mug.jpg", res.URL)
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid username or password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"jwt"}`)
	})

	token, err := c.Login(context.Background(), "merchant", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)

	_, err = c.Login(context.Background(), "merchant", "wrong")
	assert.Equal(t, "Invalid username or password", models.ServerMessage(err))
}
