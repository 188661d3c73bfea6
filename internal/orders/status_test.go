package orders

import (
	"testing"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" SHIPPED ")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("returned")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	assert.ErrorContains(t, err, "pending, processing, shipped, delivered, cancelled")
}

func TestLifecycle(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusProcessing, StatusCancelled))
	assert.False(t, CanTransition(StatusShipped, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusPending))

	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, Status("lost").Valid())

	assert.Equal(t, []Status{StatusPending, StatusProcessing}, cancellable())
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: defaultPageSize}, Page{}.normalize())
	assert.Equal(t, Page{Limit: maxPageSize, Offset: 0}, Page{Limit: 1000, Offset: -5}.normalize())
}
