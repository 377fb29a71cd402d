package statemachine

import "github.com/addisfuel/fuelwatch/models"

// Trip lifecycle events.
const (
	EventTripStart    Event = "start"
	EventTripComplete Event = "complete"
	EventTripCancel   Event = "cancel"
)

// Approval decision events.
const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

// User report moderation events.
const (
	EventReportResolve Event = "resolve"
	EventReportReject  Event = "reject"
)

// Trips: scheduled -> in_progress -> completed, with cancellation allowed
// until completion. completed and cancelled are terminal.
var Trips = New("trip", map[models.TripStatus]map[Event]models.TripStatus{
	models.TripScheduled: {
		EventTripStart:  models.TripInProgress,
		EventTripCancel: models.TripCancelled,
	},
	models.TripInProgress: {
		EventTripComplete: models.TripCompleted,
		EventTripCancel:   models.TripCancelled,
	},
	models.TripCompleted: {},
	models.TripCancelled: {},
})

// Approvals: pending -> approved | rejected, both terminal. No re-opening.
var Approvals = New("approval", map[models.ApprovalStatus]map[Event]models.ApprovalStatus{
	models.ApprovalPending: {
		EventApprove: models.ApprovalApproved,
		EventReject:  models.ApprovalRejected,
	},
	models.ApprovalApproved: {},
	models.ApprovalRejected: {},
})

// UserReports: open -> resolved | rejected, both terminal.
var UserReports = New("user report", map[models.UserReportStatus]map[Event]models.UserReportStatus{
	models.ReportOpen: {
		EventReportResolve: models.ReportResolved,
		EventReportReject:  models.ReportRejected,
	},
	models.ReportResolved: {},
	models.ReportRejected: {},
})

// ParseApprovalAction maps the API action verbs to approval events.
func ParseApprovalAction(action string) (Event, bool) {
	switch action {
	case "approve":
		return EventApprove, true
	case "reject":
		return EventReject, true
	}
	return "", false
}
