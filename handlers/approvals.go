package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
	"github.com/addisfuel/fuelwatch/pkg/statemachine"
)

// errApprovalConflict means another caller decided the approval first. The
// conditional update below is the only authority on who won.
var errApprovalConflict = errors.New("approval already decided")

// ListPendingApprovals returns pending approvals for the caller's scope:
// admins see everything, managers only the stations they manage.
func (a *App) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	userID := middleware.GetUserID(r)

	query := a.DB.Model(&models.PendingApproval{}).Where("status = ?", models.ApprovalPending)
	if middleware.CallerRole(r) == models.RoleManager {
		query = query.Where("station_id IN (?)",
			a.DB.Model(&models.Station{}).Select("id").Where("manager_id = ?", userID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var approvals []models.PendingApproval
	if err := query.Preload("Station").Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset()).Find(&approvals).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(approvals, p, total))
}

type decideApprovalReq struct {
	FuelStatusID string `json:"fuelStatusId"`
	Action       string `json:"action"` // approve | reject
	Notes        string `json:"notes,omitempty"`
}

// DecideApproval applies a manager/admin decision to the pending approval of
// a fuel status submission. Calling it twice for the same submission leaves
// exactly one terminal state and sends exactly one notification: the second
// caller gets a conflict, not a duplicate success.
func (a *App) DecideApproval(w http.ResponseWriter, r *http.Request) {
	var req decideApprovalReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fuelStatusID, err := uuid.Parse(req.FuelStatusID)
	if err != nil {
		writeFieldErrors(w, map[string]string{"fuelStatusId": "invalid uuid"})
		return
	}
	event, ok := statemachine.ParseApprovalAction(req.Action)
	if !ok {
		writeFieldErrors(w, map[string]string{"action": "must be approve or reject"})
		return
	}

	var approval models.PendingApproval
	if err := a.DB.Where("fuel_status_id = ? AND status = ?", fuelStatusID, models.ApprovalPending).
		Order("created_at DESC").First(&approval).Error; err != nil {
		http.Error(w, "no pending approval for this fuel status", http.StatusNotFound)
		return
	}

	reviewerID := middleware.GetUserID(r)
	if middleware.CallerRole(r) == models.RoleManager {
		var managed int64
		if err := a.DB.Model(&models.Station{}).
			Where("id = ? AND manager_id = ?", approval.StationID, reviewerID).
			Count(&managed).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if managed == 0 {
			http.Error(w, "managers can only decide approvals for their own stations", http.StatusForbidden)
			return
		}
	}

	nextStatus, err := statemachine.Approvals.Next(approval.Status, event)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	var previousStatus models.FuelAvailability
	err = a.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		// Guard on status = pending, not on id alone: the losing side of a
		// concurrent double-decision updates zero rows.
		result := tx.Model(&models.PendingApproval{}).
			Where("id = ? AND status = ?", approval.ID, models.ApprovalPending).
			Updates(map[string]interface{}{
				"status":      nextStatus,
				"notes":       req.Notes,
				"reviewed_by": reviewerID,
				"reviewed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errApprovalConflict
		}

		if nextStatus == models.ApprovalApproved {
			parsed := parsedFuelStatus{
				stationID:  approval.StationID,
				fuelType:   "",
				status:     approval.SubmittedStatus,
				price:      approval.SubmittedPrice,
				queueLevel: approval.SubmittedQueueLevel,
			}
			var live models.FuelStatus
			if err := tx.First(&live, "id = ?", approval.FuelStatusID).Error; err != nil {
				return fmt.Errorf("fuel status disappeared: %w", err)
			}
			parsed.fuelType = live.FuelType

			_, oldStatus, err := a.applyFuelStatusChange(tx, parsed, models.SourceStaff, approval.SubmittedBy)
			if err != nil {
				return err
			}
			previousStatus = oldStatus
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errApprovalConflict) {
			http.Error(w, "approval was already decided", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Exactly one notification to the submitter, only from the winner of the
	// conditional update above.
	var title, message string
	if nextStatus == models.ApprovalApproved {
		title = "Fuel status submission approved"
		message = fmt.Sprintf("Your %s submission was approved.", approval.SubmittedStatus)
	} else {
		title = "Fuel status submission rejected"
		message = "Your submission was rejected."
		if req.Notes != "" {
			message = fmt.Sprintf("Your submission was rejected: %s", req.Notes)
		}
	}
	if err := a.Notifier.NotifyUser(approval.SubmittedBy, &approval.StationID, title, message); err != nil {
		a.Log.Warn().Err(err).Msg("submitter notification failed")
	}

	// Post-approval availability fan-out to subscribers.
	if nextStatus == models.ApprovalApproved {
		var station models.Station
		if err := a.DB.First(&station, "id = ?", approval.StationID).Error; err == nil {
			var live models.FuelStatus
			if err := a.DB.First(&live, "id = ?", approval.FuelStatusID).Error; err == nil {
				a.fanOutAvailabilityChange(station, &live, previousStatus)
			}
		}
	}

	a.audit(r, "approval.decide", "pending_approval", approval.ID.String(), map[string]interface{}{
		"action": req.Action,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"approvalId": approval.ID,
		"action":     req.Action,
		"message":    fmt.Sprintf("submission %s", nextStatus),
	})
}
