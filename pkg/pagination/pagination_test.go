package pagination_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/pagination"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := pagination.Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := pagination.ParseCursor(pagination.EncodeCursor(cursor))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, cursor.CreatedAt.Equal(parsed.CreatedAt))
	assert.Equal(t, cursor.ID, parsed.ID)
}

func TestParseCursorEmptyIsFirstPage(t *testing.T) {
	parsed, err := pagination.ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseCursorMalformedIsValidationError(t *testing.T) {
	for _, raw := range []string{"not-base64!!!", "bm8tcGlwZQ=="} {
		_, err := pagination.ParseCursor(raw)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "expected typed error for %q", raw)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, pagination.DefaultLimit, pagination.NormalizeLimit(0))
	assert.Equal(t, pagination.MaxLimit, pagination.NormalizeLimit(500))
	assert.Equal(t, 10, pagination.NormalizeLimit(10))
	assert.Equal(t, 11, pagination.LimitWithBuffer(10))
}
