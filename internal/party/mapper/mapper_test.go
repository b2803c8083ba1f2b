package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"party/internal/party/models"
)

func ptr[T any](v T) *T { return &v }

func validRequest() *models.PartyRequest {
	return &models.PartyRequest{
		CustID:    ptr(int64(42)),
		FirstName: ptr("Jane"),
		LastName:  ptr("Doe"),
		EmailID:   ptr("jane@x.com"),
		PhoneNo:   ptr("555-1234"),
	}
}

func TestRoundTrip(t *testing.T) {
	req := validRequest()

	record := ToRecord(req)
	require.NotNil(t, record)
	assert.True(t, record.ID.IsZero(), "identity is assigned by the store")
	assert.True(t, record.CreatedAt.IsZero(), "timestamps are assigned on save")
	assert.Equal(t, int64(42), record.CustID)

	record.ID = 7
	resp := ToResponse(record)

	assert.Equal(t, "7", resp.ID)
	assert.Equal(t, *req.FirstName, resp.FirstName)
	assert.Equal(t, *req.LastName, resp.LastName)
	assert.Equal(t, *req.EmailID, resp.EmailID)
	assert.Equal(t, *req.PhoneNo, resp.PhoneNo)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.NotContains(t, wire, "custId")
	assert.NotContains(t, wire, "createdAt")
	assert.NotContains(t, wire, "modifiedAt")
}

func TestApplyUpdate(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	existing := func() *models.Party {
		return &models.Party{
			ID:        3,
			CustID:    9,
			FirstName: "Jane",
			LastName:  "Doe",
			EmailID:   "jane@x.com",
			PhoneNo:   "555-1234",
			Version:   2,
			Audit:     models.Audit{CreatedAt: created, ModifiedAt: created},
		}
	}

	t.Run("only present fields are copied", func(t *testing.T) {
		p := existing()
		ApplyUpdate(p, &models.PartyRequest{LastName: ptr("Smith")})

		assert.Equal(t, "Smith", p.LastName)
		assert.Equal(t, "Jane", p.FirstName)
		assert.Equal(t, "jane@x.com", p.EmailID)
		assert.Equal(t, "555-1234", p.PhoneNo)
		assert.Equal(t, int64(9), p.CustID)
	})

	t.Run("identity, version and audit are never touched", func(t *testing.T) {
		p := existing()
		ApplyUpdate(p, validRequest())

		assert.Equal(t, models.PartyID(3), p.ID)
		assert.Equal(t, int64(2), p.Version)
		assert.Equal(t, created, p.CreatedAt)
		assert.Equal(t, int64(42), p.CustID)
	})

	t.Run("nil inputs are ignored", func(t *testing.T) {
		p := existing()
		ApplyUpdate(p, nil)
		ApplyUpdate(nil, validRequest())

		assert.Equal(t, existing(), p)
	})
}

func TestNilMapping(t *testing.T) {
	assert.Nil(t, ToRecord(nil))
	assert.Nil(t, ToResponse(nil))
}
