package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unit string

type note struct {
	Title    string
	Unit     unit
	Comments *string
	Tags     []string
	Extra    map[string]string
	Count    int
	hidden   string
}

func TestTrimAllStringFields(t *testing.T) {
	comment := "  sem vazamentos  "
	in := note{
		Title:    "  Setor 3 ",
		Unit:     unit(" mL "),
		Comments: &comment,
		Tags:     []string{" a", "b "},
		Extra:    map[string]string{" k ": " v "},
		Count:    7,
		hidden:   " keep ",
	}

	out := TrimAllStringFields(in)

	assert.Equal(t, "Setor 3", out.Title)
	assert.Equal(t, unit("mL"), out.Unit)
	require.NotNil(t, out.Comments)
	assert.Equal(t, "sem vazamentos", *out.Comments)
	assert.Equal(t, "  sem vazamentos  ", comment, "input pointer target untouched")
	assert.Equal(t, []string{"a", "b"}, out.Tags)
	assert.Equal(t, map[string]string{"k": "v"}, out.Extra)
	assert.Equal(t, 7, out.Count)
	assert.Equal(t, " keep ", out.hidden)

	var nilNote *note
	assert.Nil(t, TrimAllStringFields(nilNote))
}

func TestSerializeRoundTripAndNilGuard(t *testing.T) {
	data, err := SerializeModel(&note{Title: "x", Count: 2})
	require.NoError(t, err)

	var back note
	require.NoError(t, DeserializeModel(data, &back))
	assert.Equal(t, "x", back.Title)
	assert.Equal(t, 2, back.Count)

	var missing *note
	_, err = SerializeModel(missing)
	assert.ErrorIs(t, err, ErrNilModel)

	assert.ErrorIs(t, DeserializeModel(nil, &back), ErrEmptyData)
	assert.Error(t, DeserializeModel[note](data, nil))
}

func TestCreateResponses(t *testing.T) {
	ok := CreatePagedSuccessResponse([]int{1, 2}, 2, 10, 12)
	assert.True(t, ok.Success)
	require.NotNil(t, ok.Meta)
	assert.Equal(t, 2, ok.Meta.Page)
	assert.Equal(t, 10, ok.Meta.Limit)
	assert.Equal(t, 12, ok.Meta.Total)
	assert.False(t, ok.Meta.Timestamp.IsZero())

	bad := CreateDetailedErrorResponse("VALIDATION_ERROR", "bad input", []string{"row"})
	assert.False(t, bad.Success)
	assert.Equal(t, "VALIDATION_ERROR", bad.Error.Code)
	assert.Equal(t, []string{"row"}, bad.Error.Details)
}

func TestGetQueryParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?limit=25&page=abc&spacing=0.75&neg=-1", nil)

	limit, err := GetQueryParamAsInt(c, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 25, limit)

	_, err = GetQueryParamAsInt(c, "page", 1)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "page", verr.Field)

	def, err := GetQueryParamAsInt(c, "absent", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, def)

	spacing, err := GetQueryParamAsFloat(c, "spacing", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.75, spacing)

	_, err = GetQueryParamAsFloat(c, "neg", 1)
	assert.Error(t, err)
}
