package tindakan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/yakey01/dokterku-sub009/internal/core/events"
)

// ResetCommentPrefix is the fixed audit comment template; the comma-joined
// changed-field names are appended in checked order.
const ResetCommentPrefix = "Data diubah oleh petugas - perlu validasi ulang. Fields: "

// ResetWarning is surfaced to the editor whenever an approved record is
// knocked back to pending.
const ResetWarning = "Tindakan yang sudah disetujui telah diubah. Status validasi dikembalikan ke pending dan bendahara akan menerima notifikasi untuk validasi ulang."

// criticalFields is the fixed, ordered set of fields whose edit invalidates
// an existing approval. Order matters: the audit comment and event list the
// changed names in this order.
var criticalFields = []string{
	"pasien_id",
	"jenis_tindakan_id",
	"dokter_id",
	"paramedis_id",
	"non_paramedis_id",
	"tanggal_tindakan",
	"tarif",
	"jasa_dokter",
	"jasa_paramedis",
	"jasa_non_paramedis",
	"shift_id",
}

// persistedFieldValue extracts the currently persisted value for a critical
// field so comparators work on one canonical in-memory representation.
var persistedFieldValue = map[string]func(t *Tindakan) interface{}{
	"pasien_id":          func(t *Tindakan) interface{} { return t.PasienID },
	"jenis_tindakan_id":  func(t *Tindakan) interface{} { return t.JenisTindakanID },
	"dokter_id":          func(t *Tindakan) interface{} { return t.DokterID },
	"paramedis_id":       func(t *Tindakan) interface{} { return t.ParamedisID },
	"non_paramedis_id":   func(t *Tindakan) interface{} { return t.NonParamedisID },
	"tanggal_tindakan":   func(t *Tindakan) interface{} { return t.TanggalTindakan },
	"tarif":              func(t *Tindakan) interface{} { return t.Tarif },
	"jasa_dokter":        func(t *Tindakan) interface{} { return t.JasaDokter },
	"jasa_paramedis":     func(t *Tindakan) interface{} { return t.JasaParamedis },
	"jasa_non_paramedis": func(t *Tindakan) interface{} { return t.JasaNonParamedis },
	"shift_id":           func(t *Tindakan) interface{} { return t.ShiftID },
}

// fieldComparator reports whether submitted differs from persisted.
type fieldComparator func(submitted, persisted interface{}) bool

// fieldComparators is keyed by field name. The date field gets its own
// normalizing comparator; everything else uses loose comparison where a
// numeric string and a number with the same value are NOT a change.
var fieldComparators = map[string]fieldComparator{
	"tanggal_tindakan": dateChanged,
}

func comparatorFor(field string) fieldComparator {
	if cmp, ok := fieldComparators[field]; ok {
		return cmp
	}
	return looseChanged
}

func looseChanged(submitted, persisted interface{}) bool {
	return canonicalValue(submitted) != canonicalValue(persisted)
}

func dateChanged(submitted, persisted interface{}) bool {
	return normalizeDateTime(submitted) != normalizeDateTime(persisted)
}

// canonicalValue collapses a value to a representation-free string: numbers
// in any carrier (json.Number, numeric string, int, float) with the same
// value map to the same canonical form, nil pointers and nil map to "".
func canonicalValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x.String()
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *int64:
		if x == nil {
			return ""
		}
		return strconv.FormatInt(*x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

const canonicalDateTimeLayout = "2006-01-02 15:04:05"

// acceptedDateLayouts covers the representations an edit form may submit a
// scheduled date in.
var acceptedDateLayouts = []string{
	canonicalDateTimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// normalizeDateTime renders any supported date representation as
// "YYYY-MM-DD HH:MM:SS" so a structured value and its pre-formatted string
// compare equal. Unparseable strings fall back to their trimmed raw form.
func normalizeDateTime(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(canonicalDateTimeLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(canonicalDateTimeLayout)
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range acceptedDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(canonicalDateTimeLayout)
			}
		}
		return s
	default:
		return canonicalValue(v)
	}
}

// parseSubmittedDate returns the submitted date as time.Time when it can be
// understood, for the d/m/Y event label.
func parseSubmittedDate(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range acceptedDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Editor identifies who submitted the edit. A nil *Editor means the actor
// could not be resolved at all and is reported as "System".
type Editor struct {
	ID   int64
	Name string
}

func (e *Editor) displayName() string {
	if e == nil {
		return "System"
	}
	if e.Name == "" {
		return "Unknown"
	}
	return e.Name
}

func (e *Editor) id() int64 {
	if e == nil {
		return 0
	}
	return e.ID
}

// DisplayNames carries the resolved human-readable names for the reset
// event payload; empty entries fall back to "Unknown".
type DisplayNames struct {
	Pasien        string
	JenisTindakan string
	Dokter        string
}

func fallbackUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// EventPublisher is the audit/event-bus collaborator; emission failures are
// logged and swallowed, never surfaced to the save path.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ResetResult reports what the guard did to the submitted data.
type ResetResult struct {
	Reset         bool     `json:"reset"`
	ChangedFields []string `json:"changed_fields,omitempty"`
	PriorStatus   string   `json:"prior_status,omitempty"`
	Warning       string   `json:"warning,omitempty"`
}

// ResetGuard is the pre-persist hook guaranteeing an approved tindakan never
// silently keeps its approval after a substantive edit.
type ResetGuard struct {
	publisher EventPublisher
	logger    *slog.Logger
}

func NewResetGuard(publisher EventPublisher, logger *slog.Logger) *ResetGuard {
	return &ResetGuard{
		publisher: publisher,
		logger:    logger,
	}
}

// Apply inspects the submitted edit against the persisted record and, when
// the record is approved and a critical field changed, mutates the submitted
// data in place: status back to pending, approver and approval timestamp
// cleared, audit comment set. One reset event is emitted per qualifying
// edit; a publish failure is logged with entity context and swallowed so the
// save always proceeds.
func (g *ResetGuard) Apply(ctx context.Context, submitted SubmittedData, existing *Tindakan, editor *Editor, names DisplayNames) *ResetResult {
	if !existing.IsApproved() {
		return &ResetResult{Reset: false}
	}

	var changed []string
	for _, field := range criticalFields {
		if !submitted.Has(field) {
			continue
		}
		persisted := persistedFieldValue[field](existing)
		if comparatorFor(field)(submitted[field], persisted) {
			changed = append(changed, field)
		}
	}

	if len(changed) == 0 {
		return &ResetResult{Reset: false}
	}

	priorStatus := existing.StatusValidasi

	submitted["status_validasi"] = StatusPending
	submitted["validasi_by"] = nil
	submitted["validasi_at"] = nil
	submitted["komentar_validasi"] = ResetCommentPrefix + strings.Join(changed, ", ")

	g.emitResetEvent(ctx, submitted, existing, editor, names, priorStatus, changed)

	return &ResetResult{
		Reset:         true,
		ChangedFields: changed,
		PriorStatus:   priorStatus,
		Warning:       ResetWarning,
	}
}

func (g *ResetGuard) emitResetEvent(ctx context.Context, submitted SubmittedData, existing *Tindakan, editor *Editor, names DisplayNames, priorStatus string, changed []string) {
	tarif := canonicalValue(existing.Tarif)
	if submitted.Has("tarif") && submitted["tarif"] != nil {
		tarif = canonicalValue(submitted["tarif"])
	}

	tanggal := existing.TanggalTindakan
	if submitted.Has("tanggal_tindakan") {
		if t, ok := parseSubmittedDate(submitted["tanggal_tindakan"]); ok {
			tanggal = t
		}
	}

	event := events.NewValidationStatusResetEvent(
		existing.ID,
		priorStatus,
		changed,
		editor.id(),
		editor.displayName(),
		fallbackUnknown(names.Pasien),
		fallbackUnknown(names.JenisTindakan),
		fallbackUnknown(names.Dokter),
		tarif,
		tanggal.Format("02/01/2006"),
	)

	if err := g.publisher.Publish(ctx, event); err != nil {
		g.logger.Error("failed to emit validation reset event",
			"entity_type", "Tindakan",
			"entity_id", existing.ID,
			"error", err)
	}
}
