package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_DollarPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("bookings").
		Where(squirrel.Eq{"teacher_id": "t1"}).
		Where(squirrel.Eq{"status": []string{"scheduled", "confirmed"}}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM bookings WHERE teacher_id = $1 AND status IN ($2,$3)", query)
	assert.Equal(t, []interface{}{"t1", "scheduled", "confirmed"}, args)
}

func TestUpdate_DollarPlaceholders(t *testing.T) {
	query, args, err := Update("bookings").
		Set("status", "confirmed").
		Where(squirrel.Eq{"id": "b1", "status": "scheduled"}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3", query)
	assert.Equal(t, []interface{}{"confirmed", "b1", "scheduled"}, args)
}
