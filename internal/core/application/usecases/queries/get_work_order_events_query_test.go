package queries_test

import (
	"testing"

	"github.com/smartfixosapp/smartfixos/internal/core/application/usecases/queries"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetWorkOrderEventsQuery_Valid(t *testing.T) {
	orderID := kernel.NewUUID()

	query, err := queries.NewGetWorkOrderEventsQuery(orderID)

	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, orderID, query.OrderID())
}

func TestNewGetWorkOrderEventsQuery_InvalidOrderID(t *testing.T) {
	_, err := queries.NewGetWorkOrderEventsQuery(kernel.UUID{})
	require.Error(t, err)
}

func TestGetWorkOrderEventsQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetWorkOrderEventsQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetWorkOrderEventsQueryIsNotConstructed)
}
