// handlers/auth.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register self-registers a portal account. The role is always public;
// privileged accounts are created by an admin via CreateUser.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "required"
	}
	if strings.TrimSpace(req.Phone) == "" {
		fields["phone"] = "required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	u := models.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         string(models.RolePublic),
	}
	if err := a.DB.Create(&u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "account already exists", http.StatusConflict)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, u.ToDTO())
}

type createUserReq struct {
	registerReq
	Role              string  `json:"role"`
	AssignedStationID *string `json:"assignedStationId,omitempty"`
}

// CreateUser lets an admin create accounts with any role and an optional
// station assignment.
func (a *App) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		writeFieldErrors(w, map[string]string{"role": "unknown role"})
		return
	}
	if len(req.Password) < 8 {
		writeFieldErrors(w, map[string]string{"password": "must be at least 8 characters"})
		return
	}

	var stationID *uuid.UUID
	if req.AssignedStationID != nil {
		id, err := uuid.Parse(*req.AssignedStationID)
		if err != nil {
			writeFieldErrors(w, map[string]string{"assignedStationId": "invalid uuid"})
			return
		}
		var station models.Station
		if err := a.DB.First(&station, "id = ?", id).Error; err != nil {
			http.Error(w, "station not found", http.StatusNotFound)
			return
		}
		stationID = &id
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	u := models.User{
		Name:              req.Name,
		Email:             strings.ToLower(req.Email),
		Phone:             req.Phone,
		PasswordHash:      string(hash),
		Role:              string(role),
		AssignedStationID: stationID,
	}
	if err := a.DB.Create(&u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "account already exists", http.StatusConflict)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	a.audit(r, "user.create", "user", u.ID.String(), map[string]interface{}{"role": role})
	writeJSON(w, http.StatusCreated, u.ToDTO())
}

type loginReq struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string         `json:"token"`
	User  models.UserDTO `json:"user"`
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var u models.User
	if err := a.DB.Where("phone = ? AND is_active = ?", req.Phone, true).First(&u).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := a.Tokens.GenerateToken(u.ID.String(), string(u.NormalizedRole()), u.Name, u.Phone)
	if err != nil {
		http.Error(w, "couldn't create token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, loginResp{Token: token, User: u.ToDTO()})
}

// Profile returns the authenticated user's own record.
func (a *App) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var u models.User
	if err := a.DB.Preload("AssignedStation").First(&u, "id = ?", userID).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, u.ToDTO())
}
