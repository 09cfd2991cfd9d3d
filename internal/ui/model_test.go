package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"tokodash/internal/client/clienttest"
	"tokodash/internal/dashboard"
	"tokodash/internal/form"
	"tokodash/internal/models"
	"tokodash/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    "u1",
		"username":   "clara",
		"store_name": "Clay Co",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func newTestModel(t *testing.T, files map[string][]byte) (Model, *clienttest.MockItemService, string) {
	t.Helper()
	store := session.NewStore()
	tok := signToken(t)
	require.NoError(t, store.Login(tok))

	svc := new(clienttest.MockItemService)
	shell := dashboard.New(dashboard.Options{Session: store, Items: svc})
	t.Cleanup(shell.Close)

	m := New(context.Background(), Options{
		Shell: shell,
		ReadFile: func(name string) ([]byte, error) {
			if data, ok := files[name]; ok {
				return data, nil
			}
			return nil, errors.New("no such file")
		},
	})
	return m, svc, tok
}

// send delivers msg and runs every returned command to completion, feeding
// the results back in.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		out := cmd()
		if out == nil {
			break
		}
		if _, quit := out.(tea.QuitMsg); quit {
			break
		}
		next, cmd = m.Update(out)
		m = next.(Model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText types s into the focused input. Cursor blink commands are dropped.
func typeText(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestModel_ItemsPanelShowsCards(t *testing.T) {
	m, svc, tok := newTestModel(t, nil)
	svc.On("ListItems", mock.Anything, tok).
		Return([]models.Item{{ID: 1, Name: "Mug", Price: 12.5, Quantity: 5}}, nil).Once()

	m = send(t, m, key("2"))

	assert.Equal(t, dashboard.PanelItems, m.shell.Panel())
	out := m.View()
	assert.Contains(t, out, "Mug")
	assert.Contains(t, out, "CA$12.5")
	assert.Contains(t, out, "Clay Co")
}

func TestModel_CreateItemThroughForm(t *testing.T) {
	m, svc, tok := newTestModel(t, map[string][]byte{"mug.png": []byte("png")})
	svc.On("ListItems", mock.Anything, tok).Return([]models.Item{}, nil).Once()
	m = send(t, m, key("2"))

	m = send(t, m, key("n"))
	assert.Contains(t, m.View(), "New item")

	m = typeText(m, "Mug")
	m = send(t, m, key("tab"))
	m = send(t, m, key("tab"))
	m = typeText(m, "5")
	m = send(t, m, key("tab"))
	m = typeText(m, "12.5")
	m = send(t, m, key("tab"))
	m = typeText(m, "mug.png")

	url := "http://cdn/mug.jpg"
	svc.On("UploadImage", mock.Anything, tok, models.ImageFile{Name: "mug.png", Data: []byte("png")}).
		Return(models.UploadResult{URL: url}, nil).Once()
	svc.On("CreateItem", mock.Anything, tok, models.ItemFields{Name: "Mug", Quantity: 5, Price: 12.5, ImageURL: &url}).
		Return(models.Item{ID: 1}, nil).Once()
	svc.On("ListItems", mock.Anything, tok).
		Return([]models.Item{{ID: 1, Name: "Mug", Price: 12.5, Quantity: 5, ImageURL: &url}}, nil).Once()

	m = send(t, m, key("enter"))

	assert.Equal(t, form.StateClosed, m.shell.Form.View().State)
	out := m.View()
	assert.Contains(t, out, form.MsgCreated)
	assert.Contains(t, out, "Mug")
	svc.AssertExpectations(t)
}

func TestModel_FormShowsValidationErrors(t *testing.T) {
	m, svc, tok := newTestModel(t, nil)
	svc.On("ListItems", mock.Anything, tok).Return([]models.Item{}, nil).Once()
	m = send(t, m, key("2"))

	m = send(t, m, key("n"))
	m = send(t, m, key("enter"))

	out := m.View()
	assert.Contains(t, out, "Item name is required")
	assert.Contains(t, out, "Price is required")

	m = send(t, m, key("esc"))
	assert.Equal(t, form.StateClosed, m.shell.Form.View().State)
	svc.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestModel_DeleteWithConfirmation(t *testing.T) {
	m, svc, tok := newTestModel(t, nil)
	svc.On("ListItems", mock.Anything, tok).Return([]models.Item{
		{ID: 1, Name: "Mug", Price: 1},
		{ID: 3, Name: "Plate", Price: 2},
	}, nil).Once()
	m = send(t, m, key("2"))

	m = send(t, m, key("j"))
	m = send(t, m, key("d"))
	assert.Contains(t, m.View(), `Delete "Plate"?`)

	m = send(t, m, key("n"))
	assert.Nil(t, m.shell.Items.View().PendingDelete)

	svc.On("DeleteItem", mock.Anything, tok, int64(3)).Return(nil).Once()
	m = send(t, m, key("d"))
	m = send(t, m, key("y"))

	assert.Len(t, m.shell.Items.View().Items, 1)
	assert.Contains(t, m.View(), "Item deleted successfully!")
	svc.AssertExpectations(t)
}

func TestModel_FavoriteToggle(t *testing.T) {
	m, svc, tok := newTestModel(t, nil)
	svc.On("ListItems", mock.Anything, tok).Return([]models.Item{{ID: 1, Name: "Mug", Price: 1}}, nil).Once()
	m = send(t, m, key("2"))

	m = send(t, m, key("f"))
	assert.True(t, m.favorites.Has(1))
	assert.Contains(t, m.View(), "♥")

	m = send(t, m, key("f"))
	assert.False(t, m.favorites.Has(1))
}

func TestModel_OverviewWhenLoggedOut(t *testing.T) {
	shell := dashboard.New(dashboard.Options{Session: session.NewStore(), Items: new(clienttest.MockItemService)})
	t.Cleanup(shell.Close)
	m := New(context.Background(), Options{Shell: shell})

	assert.Contains(t, m.View(), "Not logged in")
}
