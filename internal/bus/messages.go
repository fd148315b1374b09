package bus

import "github.com/mmynk/teamtime/internal/models"

// Kind enumerates every notification the bus carries.
type Kind int

const (
	KindEventsChanged Kind = iota + 1
	KindGroupsChanged
	KindDataChanged
	KindGroupDeleted

	// Event intents
	KindEventCreate
	KindEventEdit
	KindEventDelete

	// Membership intents
	KindAddEventToGroup
	KindRemoveEventFromGroup

	// UI navigation and editing intents
	KindEventClick
	KindEventCreateRequest
	KindEventEditRequest
	KindEventDeleteRequest

	// Display state
	KindViewChange
	KindDateChange
	KindDeviceTypeChange
	KindVisibilityChange

	KindNotification
)

var kindNames = map[Kind]string{
	KindEventsChanged:        "events-change",
	KindGroupsChanged:        "groups-changed",
	KindDataChanged:          "data-changed",
	KindGroupDeleted:         "group-deleted",
	KindEventCreate:          "event-create",
	KindEventEdit:            "event-edit",
	KindEventDelete:          "event-delete",
	KindAddEventToGroup:      "add-event-to-group",
	KindRemoveEventFromGroup: "remove-event-from-group",
	KindEventClick:           "event-click",
	KindEventCreateRequest:   "event-create-request",
	KindEventEditRequest:     "event-edit-request",
	KindEventDeleteRequest:   "event-delete-request",
	KindViewChange:           "view-change",
	KindDateChange:           "date-change",
	KindDeviceTypeChange:     "device-type-change",
	KindVisibilityChange:     "visibility-change",
	KindNotification:         "notification",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Message is a notification payload. The set of implementations is closed.
type Message interface {
	Kind() Kind
	isMessage()
}

// EventsChanged carries the full event list after an event store mutation.
type EventsChanged struct {
	Events        []models.Event
	EventsByGroup map[string][]models.Event
}

// GroupsChanged carries the full group list after a group store mutation.
type GroupsChanged struct {
	Groups []models.Group
}

// DataChanged is a payload-free refresh signal for views that re-query.
type DataChanged struct{}

type GroupDeleted struct {
	GroupID string
}

type EventCreate struct {
	Event models.Event
}

type EventEdit struct {
	Event models.Event
}

type EventDelete struct {
	Event models.Event
}

// AddEventToGroup asks the group store to record eventID as a member of GroupID.
type AddEventToGroup struct {
	GroupID string
	EventID int64
}

// RemoveEventFromGroup asks the group store to drop eventID from GroupID.
type RemoveEventFromGroup struct {
	GroupID string
	EventID int64
}

type EventClick struct {
	Event models.Event
}

// EventCreateRequest opens the editor prefilled with a slot.
type EventCreateRequest struct {
	Date      models.Date
	StartTime int
	EndTime   int
}

type EventEditRequest struct {
	Event models.Event
}

type EventDeleteRequest struct {
	Event models.Event
}

type ViewChange struct {
	View string
}

type DateChange struct {
	Date models.Date
}

type DeviceTypeChange struct {
	DeviceType string
}

// VisibilityChange reports that the client became visible or hidden.
// Becoming visible triggers a reload from storage.
type VisibilityChange struct {
	Visible bool
}

// NotificationLevel classifies user-facing notifications.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient user-facing message.
type Notification struct {
	Level NotificationLevel
	Text  string
}

func (EventsChanged) Kind() Kind        { return KindEventsChanged }
func (GroupsChanged) Kind() Kind        { return KindGroupsChanged }
func (DataChanged) Kind() Kind          { return KindDataChanged }
func (GroupDeleted) Kind() Kind         { return KindGroupDeleted }
func (EventCreate) Kind() Kind          { return KindEventCreate }
func (EventEdit) Kind() Kind            { return KindEventEdit }
func (EventDelete) Kind() Kind          { return KindEventDelete }
func (AddEventToGroup) Kind() Kind      { return KindAddEventToGroup }
func (RemoveEventFromGroup) Kind() Kind { return KindRemoveEventFromGroup }
func (EventClick) Kind() Kind           { return KindEventClick }
func (EventCreateRequest) Kind() Kind   { return KindEventCreateRequest }
func (EventEditRequest) Kind() Kind     { return KindEventEditRequest }
func (EventDeleteRequest) Kind() Kind   { return KindEventDeleteRequest }
func (ViewChange) Kind() Kind           { return KindViewChange }
func (DateChange) Kind() Kind           { return KindDateChange }
func (DeviceTypeChange) Kind() Kind     { return KindDeviceTypeChange }
func (VisibilityChange) Kind() Kind     { return KindVisibilityChange }
func (Notification) Kind() Kind         { return KindNotification }

func (EventsChanged) isMessage()        {}
func (GroupsChanged) isMessage()        {}
func (DataChanged) isMessage()          {}
func (GroupDeleted) isMessage()         {}
func (EventCreate) isMessage()          {}
func (EventEdit) isMessage()            {}
func (EventDelete) isMessage()          {}
func (AddEventToGroup) isMessage()      {}
func (RemoveEventFromGroup) isMessage() {}
func (EventClick) isMessage()           {}
func (EventCreateRequest) isMessage()   {}
func (EventEditRequest) isMessage()     {}
func (EventDeleteRequest) isMessage()   {}
func (ViewChange) isMessage()           {}
func (DateChange) isMessage()           {}
func (DeviceTypeChange) isMessage()     {}
func (VisibilityChange) isMessage()     {}
func (Notification) isMessage()         {}
