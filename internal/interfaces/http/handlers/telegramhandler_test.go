package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/application/account/usecases"
	"github.com/orris-inc/leasebot/internal/domain/telegram"
	"github.com/orris-inc/leasebot/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type mockTelegramLinkUC struct {
	cmd      usecases.LinkTelegramCommand
	unlinked string
	link     *telegram.Link
	err      error
}

func (m *mockTelegramLinkUC) Link(ctx context.Context, cmd usecases.LinkTelegramCommand) (*telegram.Link, error) {
	m.cmd = cmd
	return m.link, m.err
}

func (m *mockTelegramLinkUC) Unlink(ctx context.Context, username string) error {
	m.unlinked = username
	return m.err
}

func TestTelegramHandler_Link(t *testing.T) {
	mockUC := &mockTelegramLinkUC{link: telegram.ReconstructLink(1, 4242, 1, "alice_tg", "Alice", "", testNow)}
	handler := NewTelegramHandler(mockUC, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/telegram/link", LinkTelegramRequest{
		Token:          "0d7c5c1e-0000-4000-8000-000000000001",
		TelegramUserID: 4242,
		Username:       "alice_tg",
		FirstName:      "Alice",
	})

	handler.Link(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(4242), mockUC.cmd.TelegramUserID)
	assert.Equal(t, "0d7c5c1e-0000-4000-8000-000000000001", mockUC.cmd.Token)

	var data TelegramLinkResponse
	_, err := testutil.ParseData(w, &data)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), data.TelegramUserID)
	assert.Equal(t, "alice_tg", data.Username)
	assert.NotEmpty(t, data.DisplayName)
}

func TestTelegramHandler_LinkRequiresTokenAndChat(t *testing.T) {
	mockUC := &mockTelegramLinkUC{}
	handler := NewTelegramHandler(mockUC, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/telegram/link", map[string]any{"token": "abc"})

	handler.Link(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockUC.cmd.TelegramUserID)
}

func TestTelegramHandler_LinkConflict(t *testing.T) {
	handler := NewTelegramHandler(&mockTelegramLinkUC{err: errors.NewConflictError("user already linked")}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/telegram/link", LinkTelegramRequest{Token: "abc", TelegramUserID: 1})

	handler.Link(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTelegramHandler_Unlink(t *testing.T) {
	mockUC := &mockTelegramLinkUC{}
	handler := NewTelegramHandler(mockUC, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/telegram/alice", nil)
	testutil.SetURLParam(c, "username", "alice")

	handler.Unlink(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", mockUC.unlinked)
}
