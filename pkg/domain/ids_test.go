package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "admissio/pkg/domain-errors"
)

func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePrincipalID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePrincipalID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePrincipalID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		principalID, err := ParsePrincipalID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, PrincipalID(validUUID), principalID)
	})
}

// Parsing must reject attack vectors at API entry points, since route
// parameters feed these parsers directly.
func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE principal;--", true},
		{"path traversal", "../../../etc/passwd", true},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"whitespace only", "   ", true},
		{"uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"lowercase valid UUID", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseApplicationID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// All ID types must validate identically; a looser parser on one type would
// be a hole in the trust boundary.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errPrincipal := ParsePrincipalID(validUUID)
		_, errApplication := ParseApplicationID(validUUID)
		_, errCourse := ParseCourseID(validUUID)
		_, errPayment := ParsePaymentID(validUUID)
		_, errRecord := ParseRecordID(validUUID)

		require.NoError(t, errPrincipal)
		require.NoError(t, errApplication)
		require.NoError(t, errCourse)
		require.NoError(t, errPayment)
		require.NoError(t, errRecord)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errPrincipal := ParsePrincipalID(input)
			_, errApplication := ParseApplicationID(input)
			_, errCourse := ParseCourseID(input)
			_, errPayment := ParsePaymentID(input)
			_, errRecord := ParseRecordID(input)

			require.Error(t, errPrincipal)
			require.Error(t, errApplication)
			require.Error(t, errCourse)
			require.Error(t, errPayment)
			require.Error(t, errRecord)
		})
	}
}

// IDs must serialize as quoted canonical UUID strings. A type alias without
// text marshalers would silently degrade to the raw byte array on the wire.
func TestID_JSONWireFormat(t *testing.T) {
	raw := "eca111b4-4bda-44a4-8195-80f2dc58288a"
	applicationID, err := ParseApplicationID(raw)
	require.NoError(t, err)

	t.Run("marshals as quoted UUID string", func(t *testing.T) {
		payload := struct {
			ID ApplicationID `json:"id"`
		}{ID: applicationID}

		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"`+raw+`"}`, string(encoded))
	})

	t.Run("unmarshals from quoted UUID string", func(t *testing.T) {
		var payload struct {
			ID ApplicationID `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"id":"`+raw+`"}`), &payload))
		assert.Equal(t, applicationID, payload.ID)
	})

	t.Run("rejects nil UUID on unmarshal", func(t *testing.T) {
		var payload struct {
			ID ApplicationID `json:"id"`
		}
		err := json.Unmarshal([]byte(`{"id":"`+uuid.Nil.String()+`"}`), &payload)
		require.Error(t, err)
	})

	t.Run("every ID type marshals as a string", func(t *testing.T) {
		for name, encoded := range map[string][]byte{
			"principal": mustMarshal(t, NewPrincipalID()),
			"course":    mustMarshal(t, NewCourseID()),
			"document":  mustMarshal(t, NewDocumentID()),
			"payment":   mustMarshal(t, NewPaymentID()),
			"review":    mustMarshal(t, NewReviewID()),
			"status":    mustMarshal(t, NewStatusID()),
			"record":    mustMarshal(t, NewRecordID()),
		} {
			assert.Regexp(t, `^"[0-9a-f-]{36}"$`, string(encoded), name)
		}
	})
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	encoded, err := json.Marshal(v)
	require.NoError(t, err)
	return encoded
}

// If this compiles, handing an ApplicationID where a PrincipalID is expected
// stays a compile error.
func TestTypeDistinction(t *testing.T) {
	principalID := PrincipalID(uuid.New())
	applicationID := ApplicationID(uuid.New())

	// var _ PrincipalID = applicationID   // compile error
	// var _ ApplicationID = principalID   // compile error

	assert.NotEqual(t, uuid.UUID(principalID), uuid.UUID(applicationID))
}
