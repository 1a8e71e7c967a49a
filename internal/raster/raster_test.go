package raster

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryTable(t *testing.T) {
	table := CategoryTable{
		{Code: 1, Label: "ASM"},
		{Code: 2, Label: "Non.ASM"},
	}

	assert.Equal(t, []string{"ASM", "Non.ASM"}, table.Labels())
	assert.Equal(t, "ASM", table.LabelFor(1))
	assert.Equal(t, "", table.LabelFor(99))
	assert.Equal(t, []int{1}, table.CodesFor("ASM"))
	assert.Nil(t, table.CodesFor("Forest"))
	assert.True(t, table.HasCode(2))
	assert.False(t, table.HasCode(3))
}

func TestCategoryTableDuplicateLabels(t *testing.T) {
	table := CategoryTable{
		{Code: 1, Label: "ASM"},
		{Code: 3, Label: "ASM"},
		{Code: 1, Label: "ASM"}, // repeated pair is not a new code
	}
	assert.Equal(t, []int{1, 3}, table.CodesFor("ASM"))
}

func TestLayerAt(t *testing.T) {
	l := &Layer{
		Cells:      []int{1, 2, -9999, 4},
		Cols:       2,
		Rows:       2,
		CellWidth:  10,
		CellHeight: 10,
		NoData:     -9999,
		HasNoData:  true,
	}

	v, ok := l.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = l.At(1, 1)
	require.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = l.At(0, 1)
	assert.False(t, ok, "nodata cell is missing")

	_, ok = l.At(2, 0)
	assert.False(t, ok, "out of range is missing")
	_, ok = l.At(-1, 0)
	assert.False(t, ok)
}

func TestLayerCellCenter(t *testing.T) {
	l := &Layer{
		Cols: 4, Rows: 4,
		CellWidth: 10, CellHeight: 10,
		Origin: orb.Point{0, 40},
	}

	assert.Equal(t, orb.Point{5, 35}, l.CellCenter(0, 0))
	assert.Equal(t, orb.Point{35, 5}, l.CellCenter(3, 3))
	assert.Equal(t, 100.0, l.PixelArea())
}

func TestLayerValidate(t *testing.T) {
	valid := func() *Layer {
		return &Layer{
			Name: "cls", Cells: []int{1, 2, 3, 4},
			Cols: 2, Rows: 2, CellWidth: 10, CellHeight: 10,
		}
	}

	require.NoError(t, valid().Validate())

	l := valid()
	l.Cols = 0
	assert.Error(t, l.Validate())

	l = valid()
	l.Cells = l.Cells[:3]
	assert.Error(t, l.Validate())

	l = valid()
	l.CellWidth = 0
	assert.Error(t, l.Validate())

	var nilLayer *Layer
	assert.Error(t, nilLayer.Validate())
	assert.False(t, nilLayer.IsCategorical())
}

func TestStackOrder(t *testing.T) {
	s := NewStack(&Layer{Name: "z_layer"}, &Layer{Name: "a_layer"})
	s.Append(&Layer{Name: "m_layer"})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"z_layer", "a_layer", "m_layer"}, s.Names())
}

func TestClassRef(t *testing.T) {
	label := ByLabel("ASM")
	assert.False(t, label.IsCode())
	assert.Equal(t, "ASM", label.Label())
	assert.Equal(t, `"ASM"`, label.String())

	code := ByCode(2)
	assert.True(t, code.IsCode())
	assert.Equal(t, 2, code.Code())
	assert.Equal(t, "code 2", code.String())
}

func TestParseClassRef(t *testing.T) {
	ref, err := ParseClassRef("ASM")
	require.NoError(t, err)
	assert.Equal(t, ByLabel("ASM"), ref)

	ref, err = ParseClassRef("code:7")
	require.NoError(t, err)
	assert.Equal(t, ByCode(7), ref)

	_, err = ParseClassRef("code:seven")
	assert.Error(t, err)

	_, err = ParseClassRef("")
	assert.Error(t, err)
}
