package legacy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStringTrimsAndRejectsBlank(t *testing.T) {
	r := Record{"name": "  Acme  ", "blank": "   ", "num": json.Number("12"), "nil": nil}

	s, ok := r.String("name")
	assert.True(t, ok)
	assert.Equal(t, "Acme", s)

	_, ok = r.String("blank")
	assert.False(t, ok)
	_, ok = r.String("nil")
	assert.False(t, ok)
	_, ok = r.String("missing")
	assert.False(t, ok)

	s, ok = r.String("num")
	assert.True(t, ok)
	assert.Equal(t, "12", s)

	assert.Equal(t, "Acme", r.FirstString("blank", "name"))
}

func TestRecordNumbers(t *testing.T) {
	r := Record{
		"a": "42",
		"b": json.Number("7"),
		"c": 3.0,
		"d": "12.50",
		"e": "abc",
		"f": json.Number("1234.5678"),
	}

	n, ok := r.Int64("a")
	require.True(t, ok)
	assert.Equal(t, int64(42), n)

	i, ok := r.Int("b")
	require.True(t, ok)
	assert.Equal(t, 7, i)

	n, ok = r.Int64("c")
	require.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, ok = r.Int64("e")
	assert.False(t, ok)

	d, ok := r.Decimal("d")
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))

	d, ok = r.Decimal("f")
	require.True(t, ok)
	assert.Equal(t, "1234.5678", d.String())

	assert.True(t, r.DecimalOr("missing", decimal.NewFromInt(9)).Equal(decimal.NewFromInt(9)))
}

func TestRecordDate(t *testing.T) {
	r := Record{
		"iso":       "2024-03-15 10:22:00",
		"unix":      json.Number("1710460800"),
		"garbage":   "15/03/2024",
		"too_short": "2024-03",
	}

	d, ok := r.Date("iso")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	d, ok = r.Date("unix")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, ok = r.Date("garbage")
	assert.False(t, ok)
	_, ok = r.Date("too_short")
	assert.False(t, ok)

	d, ok = r.FirstDate("garbage", "iso")
	require.True(t, ok)
	assert.Equal(t, 15, d.Day())
}

func TestRecordBool(t *testing.T) {
	r := Record{"t": true, "one": "1", "y": "Y", "word": "TRUE", "zero": "0", "num": json.Number("1"), "f": false}
	assert.True(t, r.Bool("t"))
	assert.True(t, r.Bool("one"))
	assert.True(t, r.Bool("y"))
	assert.True(t, r.Bool("word"))
	assert.True(t, r.Bool("num"))
	assert.False(t, r.Bool("zero"))
	assert.False(t, r.Bool("f"))
	assert.False(t, r.Bool("missing"))
}

func TestRecordIDPrefersRowID(t *testing.T) {
	id, ok := Record{"rowid": "5", "id": "9"}.ID()
	require.True(t, ok)
	assert.Equal(t, int64(5), id)

	id, ok = Record{"id": json.Number("9")}.ID()
	require.True(t, ok)
	assert.Equal(t, int64(9), id)

	_, ok = Record{"name": "x"}.ID()
	assert.False(t, ok)
}

func TestThirdPartyCode(t *testing.T) {
	assert.Equal(t, "CU001", Record{"code_client": "CU001", "code_fournisseur": "SU001"}.ThirdPartyCode())
	assert.Equal(t, "SU001", Record{"code_fournisseur": "SU001", "id": "3"}.ThirdPartyCode())
	assert.Equal(t, "DOLI-7", Record{"id": "7"}.ThirdPartyCode())
	assert.Equal(t, "DOLI-UNK", Record{}.ThirdPartyCode())
}

func TestRecordLines(t *testing.T) {
	r := Record{"lines": []interface{}{
		map[string]interface{}{"total_ht": "10"},
		"not an object",
		map[string]interface{}{"total_ht": "5"},
	}}
	lines := r.Lines()
	require.Len(t, lines, 2)
	assert.Nil(t, Record{}.Lines())
}
