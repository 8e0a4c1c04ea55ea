package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/blues/pas/internal/party"
	"github.com/stretchr/testify/require"
)

func TestStatusForSentinels(t *testing.T) {
	require := require.New(t)

	require.Equal(http.StatusNotFound, statusFor(party.ErrCampaignNotFound))
	require.Equal(http.StatusNotFound, statusFor(party.ErrNotContributor))
	require.Equal(http.StatusBadRequest, statusFor(party.ErrZeroContribution))
	require.Equal(http.StatusForbidden, statusFor(party.ErrOnlyOperator))
	require.Equal(http.StatusConflict, statusFor(party.ErrAlreadyClaimed))
	require.Equal(http.StatusConflict, statusFor(party.ErrOperationInFlight))
	require.Equal(http.StatusBadGateway, statusFor(party.ErrBuyFailed))
	require.Equal(http.StatusInternalServerError, statusFor(errors.New("database is down")))

	// 外层包装不影响映射
	wrapped := fmt.Errorf("claim for campaign 7: %w", party.ErrNotFinalized)
	require.Equal(http.StatusConflict, statusFor(wrapped))
}

func TestParseWei(t *testing.T) {
	require := require.New(t)

	v, err := parseWei("1000000000000000000")
	require.NoError(err)
	require.Equal("1000000000000000000", v.String())

	_, err = parseWei("-5")
	require.Error(err)
	_, err = parseWei("1.5")
	require.Error(err)
	_, err = parseWei("abc")
	require.Error(err)
}
