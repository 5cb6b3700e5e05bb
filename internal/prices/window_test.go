package prices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inveskit/trade-mentor/internal/types"
)

func pp(date string, close float64) types.PricePoint {
	return types.PricePoint{Date: date, ClosePrice: close}
}

func TestWindow_BoundaryInclusive(t *testing.T) {
	points := []types.PricePoint{
		pp("2024-03-04", 100), // one day before the look-back boundary
		pp("2024-03-05", 101), // look-back boundary, included
		pp("2024-03-20", 102), // look-ahead boundary, included
		pp("2024-03-21", 103), // one day past the look-ahead boundary
	}

	got, err := DefaultWindow().Around("2024-03-15", points)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-05", got[0].Date)
	assert.Equal(t, "2024-03-20", got[1].Date)
}

func TestWindow_ChronologicalOrder(t *testing.T) {
	points := []types.PricePoint{
		pp("2024-03-14", 102),
		pp("2024-03-10", 100),
		pp("2024-03-12", 101),
	}

	got, err := DefaultWindow().Around("2024-03-15", points)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-10", got[0].Date)
	assert.Equal(t, "2024-03-12", got[1].Date)
	assert.Equal(t, "2024-03-14", got[2].Date)
}

func TestWindow_NoMatchingPoints(t *testing.T) {
	points := []types.PricePoint{
		pp("2023-01-01", 100),
		pp("2025-01-01", 200),
	}

	got, err := DefaultWindow().Around("2024-03-15", points)
	require.NoError(t, err)
	assert.Empty(t, got, "points far outside the window should yield an empty sequence")
}

func TestWindow_BadTradeDate(t *testing.T) {
	_, err := DefaultWindow().Around("15/03/2024", []types.PricePoint{pp("2024-03-10", 100)})
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestWindow_BadPricePointSkipped(t *testing.T) {
	points := []types.PricePoint{
		pp("not-a-date", 100),
		pp("2024-03-14", 101),
	}

	got, err := DefaultWindow().Around("2024-03-15", points)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-14", got[0].Date)
}
