// Package document is the single decode boundary between raw key-value
// documents and typed records. Every field access tolerates absence and wrong
// types by applying a named default; a malformed document yields a
// best-effort partial record, never an error. Enum-like string fields (status,
// role) pass through verbatim; callers own handling of unexpected values.
package document

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/model"
)

// Str returns doc[key] as a string, or def when absent or not a string.
func Str(doc map[string]interface{}, key, def string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return def
}

// Int returns doc[key] as an int, coercing the numeric types JSON decoding
// produces, or def.
func Int(doc map[string]interface{}, key string, def int) int {
	switch v := doc[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// ID returns doc[key] parsed as a UUID, or uuid.Nil.
func ID(doc map[string]interface{}, key string) uuid.UUID {
	s, ok := doc[key].(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Time returns doc[key] parsed as an RFC 3339 timestamp, or the zero time.
func Time(doc map[string]interface{}, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

func base(id string, doc map[string]interface{}) model.Base {
	docID, err := uuid.Parse(id)
	if err != nil {
		docID = uuid.Nil
	}
	return model.Base{
		ID:        docID,
		CreatedAt: Time(doc, "created_at"),
		UpdatedAt: Time(doc, "updated_at"),
	}
}

// Patient decodes a raw patient document.
func Patient(id string, doc map[string]interface{}) *model.Patient {
	p := &model.Patient{
		Base:      base(id, doc),
		UID:       Str(doc, "uid", ""),
		Name:      Str(doc, "name", model.UnknownName),
		Email:     Str(doc, "email", ""),
		Phone:     Str(doc, "phone", ""),
		Diagnosis: Str(doc, "diagnosis", ""),
		Status:    Str(doc, "status", string(model.PatientStatusActive)),
	}
	if docID := ID(doc, "assigned_doctor_id"); docID != uuid.Nil {
		p.AssignedDoctorID = &docID
	}
	if nurseID := ID(doc, "assigned_nurse_id"); nurseID != uuid.Nil {
		p.AssignedNurseID = &nurseID
	}
	if respID := ID(doc, "responsible_party_id"); respID != uuid.Nil {
		p.ResponsiblePartyID = &respID
	}
	return p
}

// Message decodes a raw chat-message document, as carried on the broker.
func Message(id string, doc map[string]interface{}) *model.Message {
	return &model.Message{
		Base:       base(id, doc),
		ChatID:     ID(doc, "chat_id"),
		SenderID:   ID(doc, "sender_id"),
		SenderName: Str(doc, "sender_name", model.UnknownName),
		SenderRole: Str(doc, "sender_role", ""),
		Text:       Str(doc, "text", ""),
		ReadBy:     readBy(doc["read_by"]),
	}
}

// Override decodes a raw override-request document, as carried on the broker.
func Override(id string, doc map[string]interface{}) *model.OverrideRequest {
	o := &model.OverrideRequest{
		Base:            base(id, doc),
		NurseID:         ID(doc, "nurse_id"),
		DoctorID:        ID(doc, "doctor_id"),
		PatientID:       ID(doc, "patient_id"),
		Medication:      Str(doc, "medication", ""),
		CurrentDosage:   Str(doc, "current_dosage", ""),
		RequestedDosage: Str(doc, "requested_dosage", ""),
		Reason:          Str(doc, "reason", ""),
		Status:          Str(doc, "status", string(model.OverrideStatusPending)),
		NurseName:       Str(doc, "nurse_name", model.UnknownName),
	}
	if actor := ID(doc, "decided_by"); actor != uuid.Nil {
		o.DecidedBy = &actor
	}
	if t := Time(doc, "decided_at"); !t.IsZero() {
		o.DecidedAt = &t
	}
	return o
}

// Post decodes a raw community-post document.
func Post(id string, doc map[string]interface{}) *model.Post {
	return &model.Post{
		Base:       base(id, doc),
		AuthorID:   ID(doc, "author_id"),
		AuthorName: Str(doc, "author_name", model.UnknownName),
		AuthorRole: Str(doc, "author_role", string(model.RolePatient)),
		Title:      Str(doc, "title", ""),
		Body:       Str(doc, "body", ""),
		Likes:      Int(doc, "likes", 0),
	}
}

// ReadByJSON decodes a JSONB read-by column. Malformed payloads decode to an
// empty map.
func ReadByJSON(raw []byte) map[string]time.Time {
	if len(raw) == 0 {
		return map[string]time.Time{}
	}
	var m map[string]time.Time
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]time.Time{}
	}
	return m
}

func readBy(v interface{}) map[string]time.Time {
	out := map[string]time.Time{}
	m, ok := v.(map[string]interface{})
	if !ok {
		return out
	}
	for k, raw := range m {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			continue
		}
		out[k] = t
	}
	return out
}
