package mysql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

// fakeRows отдаёт имена категорий и затем ошибку итерации
type fakeRows struct {
	names  []string
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.names) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.names[r.pos-1]
	return nil
}

func (r *fakeRows) Err() error   { return r.err }
func (r *fakeRows) Close() error { r.closed = true; return nil }

func scanCategoryName(row rowScanner) (storage.Category, error) {
	var c storage.Category
	err := row.Scan(&c.Name)
	return c, err
}

func TestCollectRows(t *testing.T) {
	rows := &fakeRows{names: []string{"Оренда", "Реклама"}}

	got, err := collectRows(rows, scanCategoryName)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Реклама", got[1].Name)
	assert.True(t, rows.closed)
}

func TestCollectRows_InterruptedIteration(t *testing.T) {
	connLost := errors.New("invalid connection")
	rows := &fakeRows{names: []string{"Оренда"}, err: connLost}

	got, err := collectRows(rows, scanCategoryName)
	assert.ErrorIs(t, err, connLost)
	assert.Nil(t, got)
	assert.True(t, rows.closed)
}

func TestCollectRows_Empty(t *testing.T) {
	got, err := collectRows(&fakeRows{}, scanCategoryName)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
