package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tokensniper/src/model"
)

func TestTradeHistoryAppendAndAttachExit(t *testing.T) {
	repo := NewTradeHistoryRepository().WithDB(newTestDB(t))
	ctx := context.Background()

	sell := &model.TradeRecord{
		UserID:       testUserID,
		TokenAddress: "TokenAAA",
		Action:       model.TradeActionSell,
		Amount:       20,
		Price:        0.6,
		Status:       model.TradeStatusSuccess,
		Signature:    "sig-1",
	}
	require.NoError(t, repo.Append(ctx, sell))
	require.NotEmpty(t, sell.ID)

	require.NoError(t, repo.AttachExit(ctx, sell.ID, 0.5, 0.6, 20))

	records, err := repo.ListByUser(ctx, testUserID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].EntryPrice)
	require.NotNil(t, records[0].ExitPrice)
	require.NotNil(t, records[0].ProfitLossPct)
	require.InDelta(t, 0.5, *records[0].EntryPrice, 1e-9)
	require.InDelta(t, 0.6, *records[0].ExitPrice, 1e-9)
	require.InDelta(t, 20, *records[0].ProfitLossPct, 1e-9)
}

func TestTradeHistoryListNewestFirst(t *testing.T) {
	repo := NewTradeHistoryRepository().WithDB(newTestDB(t))
	ctx := context.Background()

	older := &model.TradeRecord{
		UserID:       testUserID,
		TokenAddress: model.SystemTokenAddress,
		Action:       model.TradeActionBotStarted,
		Status:       model.TradeStatusSuccess,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &model.TradeRecord{
		UserID:       testUserID,
		TokenAddress: "TokenAAA",
		Action:       model.TradeActionBuy,
		Status:       model.TradeStatusSuccess,
		CreatedAt:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Append(ctx, older))
	require.NoError(t, repo.Append(ctx, newer))

	records, err := repo.ListByUser(ctx, testUserID, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, model.TradeActionBuy, records[0].Action)
	require.Equal(t, model.TradeActionBotStarted, records[1].Action)
}
