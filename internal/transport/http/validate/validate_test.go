package validate

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/dto"
)

func TestStruct_ItemViewsReq(t *testing.T) {
	ok := dto.ItemViewsReq{IDs: []string{uuid.NewString(), uuid.NewString()}}
	assert.NoError(t, Struct(ok))

	err := Struct(dto.ItemViewsReq{})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	tooMany := make([]string, 101)
	for i := range tooMany {
		tooMany[i] = uuid.NewString()
	}
	err = Struct(dto.ItemViewsReq{IDs: tooMany})
	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "must have at most 100", ae.Meta["ids"])

	err = Struct(dto.ItemViewsReq{IDs: []string{uuid.NewString(), "nope"}})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "must be uuid", ae.Meta["ids[1]"])
}

func TestStruct_ToggleReactionReq(t *testing.T) {
	item := uuid.NewString()
	req := dto.ToggleReactionReq{
		TargetReq: dto.TargetReq{ListID: uuid.NewString(), ListItemID: &item},
		Type:      "love",
	}
	assert.NoError(t, Struct(req))

	req.Type = "meh"
	err := Struct(req)
	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Meta["type"], "like, love")

	bad := "x"
	req.Type = "like"
	req.ListItemID = &bad
	assert.Error(t, Struct(req))
}

func TestStruct_CreateCollectionReq(t *testing.T) {
	assert.NoError(t, Struct(dto.CreateCollectionReq{Name: "Reading"}))
	assert.Error(t, Struct(dto.CreateCollectionReq{Name: strings.Repeat("a", 65)}))
	assert.Error(t, Struct(dto.CreateCollectionReq{}))
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"ids":[],"extra":1}`))
	var req dto.ItemViewsReq
	assert.Error(t, DecodeJSON(r, &req))

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"ids":["a"]}`))
	require.NoError(t, DecodeJSON(r, &req))
	assert.Equal(t, []string{"a"}, req.IDs)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(uuid.NewString()))
	assert.False(t, IsUUID("list-1"))
	assert.False(t, IsUUID(""))
}
