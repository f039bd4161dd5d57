package document

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Majedzeyad/cancare-api/internal/model"
)

func TestPatientDecodesCompleteDocument(t *testing.T) {
	doctorID := uuid.New()
	doc := map[string]interface{}{
		"uid":                "auth-uid-1",
		"name":               "Alice Smith",
		"email":              "alice@example.com",
		"diagnosis":          "Lymphoma",
		"status":             "active",
		"assigned_doctor_id": doctorID.String(),
		"created_at":         "2024-03-01T10:00:00Z",
	}
	id := uuid.New()

	p := Patient(id.String(), doc)

	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Alice Smith", p.Name)
	assert.Equal(t, "Lymphoma", p.Diagnosis)
	assert.NotNil(t, p.AssignedDoctorID)
	assert.Equal(t, doctorID, *p.AssignedDoctorID)
	assert.Equal(t, 2024, p.CreatedAt.Year())
}

func TestPatientAppliesDefaultsForMissingFields(t *testing.T) {
	p := Patient(uuid.New().String(), map[string]interface{}{})

	assert.Equal(t, model.UnknownName, p.Name)
	assert.Equal(t, string(model.PatientStatusActive), p.Status)
	assert.Nil(t, p.AssignedDoctorID)
	assert.True(t, p.CreatedAt.IsZero())
}

func TestPatientToleratesWrongTypes(t *testing.T) {
	doc := map[string]interface{}{
		"name":               42,
		"assigned_doctor_id": "not-a-uuid",
		"created_at":         "garbage",
	}

	p := Patient(uuid.New().String(), doc)

	assert.Equal(t, model.UnknownName, p.Name)
	assert.Nil(t, p.AssignedDoctorID)
	assert.True(t, p.CreatedAt.IsZero())
}

func TestPatientMalformedIDDecodesToNil(t *testing.T) {
	p := Patient("not-a-uuid", map[string]interface{}{"name": "Bob"})

	assert.Equal(t, uuid.Nil, p.ID)
	assert.Equal(t, "Bob", p.Name)
}

func TestOverrideDecodesDecision(t *testing.T) {
	actor := uuid.New()
	doc := map[string]interface{}{
		"medication": "morphine",
		"status":     "approved",
		"decided_by": actor.String(),
		"decided_at": "2024-06-01T12:00:00Z",
	}

	o := Override(uuid.New().String(), doc)

	assert.Equal(t, "approved", o.Status)
	assert.NotNil(t, o.DecidedBy)
	assert.Equal(t, actor, *o.DecidedBy)
	assert.NotNil(t, o.DecidedAt)
}

func TestOverrideDefaultsToPending(t *testing.T) {
	o := Override(uuid.New().String(), map[string]interface{}{})

	assert.Equal(t, string(model.OverrideStatusPending), o.Status)
	assert.Nil(t, o.DecidedBy)
	assert.Nil(t, o.DecidedAt)
}

func TestMessageReadByDecoding(t *testing.T) {
	sender := uuid.New().String()
	doc := map[string]interface{}{
		"text": "hello",
		"read_by": map[string]interface{}{
			sender:    "2024-06-01T12:00:00Z",
			"garbage": 42,
		},
	}

	m := Message(uuid.New().String(), doc)

	assert.Equal(t, "hello", m.Text)
	assert.Len(t, m.ReadBy, 1)
	assert.Contains(t, m.ReadBy, sender)
}

func TestPostLikesCoercion(t *testing.T) {
	p := Post(uuid.New().String(), map[string]interface{}{"likes": float64(7)})
	assert.Equal(t, 7, p.Likes)

	p = Post(uuid.New().String(), map[string]interface{}{"likes": "many"})
	assert.Equal(t, 0, p.Likes)
}

func TestReadByJSON(t *testing.T) {
	m := ReadByJSON([]byte(`{"user-1":"2024-06-01T12:00:00Z"}`))
	assert.Len(t, m, 1)
	assert.Equal(t, time.June, m["user-1"].Month())

	assert.Empty(t, ReadByJSON(nil))
	assert.Empty(t, ReadByJSON([]byte("not json")))
}
