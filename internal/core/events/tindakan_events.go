package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeValidationStatusReset = "tindakan.validation_reset"
	EventTypeTindakanApproved      = "tindakan.approved"
	EventTypeAttendanceRecorded    = "attendance.recorded"
)

// ValidationStatusResetEvent describes one automatic approval revert caused by
// an edit to a critical field of an approved tindakan.
type ValidationStatusResetEvent struct {
	BaseEvent
	EntityType    string   `json:"entity_type"`
	EntityID      int64    `json:"entity_id"`
	PriorStatus   string   `json:"prior_status"`
	NewStatus     string   `json:"new_status"`
	ChangedFields []string `json:"changed_fields"`
	EditorID      int64    `json:"editor_id"`
	EditorName    string   `json:"editor_name"`
	PasienName    string   `json:"pasien_name"`
	TindakanName  string   `json:"tindakan_name"`
	DokterName    string   `json:"dokter_name"`
	Tarif         string   `json:"tarif"`
	TanggalLabel  string   `json:"tanggal_label"`
}

func NewValidationStatusResetEvent(entityID int64, priorStatus string, changedFields []string, editorID int64, editorName, pasienName, tindakanName, dokterName, tarif, tanggalLabel string) *ValidationStatusResetEvent {
	return &ValidationStatusResetEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeValidationStatusReset,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity_type":    "Tindakan",
				"entity_id":      entityID,
				"prior_status":   priorStatus,
				"new_status":     "pending",
				"changed_fields": changedFields,
				"editor_id":      editorID,
				"editor_name":    editorName,
				"pasien_name":    pasienName,
				"tindakan_name":  tindakanName,
				"dokter_name":    dokterName,
				"tarif":          tarif,
				"tanggal":        tanggalLabel,
			},
		},
		EntityType:    "Tindakan",
		EntityID:      entityID,
		PriorStatus:   priorStatus,
		NewStatus:     "pending",
		ChangedFields: changedFields,
		EditorID:      editorID,
		EditorName:    editorName,
		PasienName:    pasienName,
		TindakanName:  tindakanName,
		DokterName:    dokterName,
		Tarif:         tarif,
		TanggalLabel:  tanggalLabel,
	}
}

type TindakanApprovedEvent struct {
	BaseEvent
	TindakanID   int64  `json:"tindakan_id"`
	ApprovedBy   int64  `json:"approved_by"`
	ApproverName string `json:"approver_name"`
	Tarif        string `json:"tarif"`
}

func NewTindakanApprovedEvent(tindakanID, approvedBy int64, approverName, tarif string) *TindakanApprovedEvent {
	return &TindakanApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTindakanApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"tindakan_id":   tindakanID,
				"approved_by":   approvedBy,
				"approver_name": approverName,
				"tarif":         tarif,
			},
		},
		TindakanID:   tindakanID,
		ApprovedBy:   approvedBy,
		ApproverName: approverName,
		Tarif:        tarif,
	}
}

type AttendanceRecordedEvent struct {
	BaseEvent
	AttendanceID  int64   `json:"attendance_id"`
	UserID        int64   `json:"user_id"`
	Kind          string  `json:"kind"`
	Status        string  `json:"status"`
	LocationValid bool    `json:"location_valid"`
	Distance      float64 `json:"distance_meters"`
}

func NewAttendanceRecordedEvent(attendanceID, userID int64, kind, status string, locationValid bool, distance float64) *AttendanceRecordedEvent {
	return &AttendanceRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAttendanceRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"attendance_id":  attendanceID,
				"user_id":        userID,
				"kind":           kind,
				"status":         status,
				"location_valid": locationValid,
				"distance":       distance,
			},
		},
		AttendanceID:  attendanceID,
		UserID:        userID,
		Kind:          kind,
		Status:        status,
		LocationValid: locationValid,
		Distance:      distance,
	}
}
