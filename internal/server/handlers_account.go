package server

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecompass/backend/internal/db"
)

const minPasswordLength = 8

// bookAppointment godoc
// @Summary Book an appointment
// @Tags account
// @Accept json
// @Produce json
// @Param body body appointmentRequest true "Appointment"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /appointments [post]
func (a *App) bookAppointment(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req appointmentRequest
	if !mustJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	doctor := strings.TrimSpace(req.Doctor)
	date := strings.TrimSpace(req.Date)
	if name == "" || doctor == "" || date == "" {
		writeError(c, http.StatusBadRequest, "Missing name, doctor or date")
		return
	}

	err := a.db.Do(c.Request.Context(), func(ctx context.Context, q db.Querier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO appointments (user_id, name, doctor, date) VALUES ($1, $2, $3, $4)`,
			user.ID, name, doctor, date,
		)
		return err
	})
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to book appointment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Appointment booked"})
}

// deleteAccount godoc
// @Summary Delete the caller's account and every record tied to it
// @Tags account
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /delete-account [post]
func (a *App) deleteAccount(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req deleteAccountRequest
	if c.Request.ContentLength > 0 && !mustJSON(c, &req) {
		return
	}
	if !sameUser(c, user, req.UserID) {
		return
	}

	ctx := c.Request.Context()
	err := a.db.Do(ctx, func(ctx context.Context, q db.Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM medications WHERE user_id = $1`, user.ID); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `DELETE FROM appointments WHERE user_id = $1`, user.ID)
		return err
	})
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to delete account")
		return
	}
	if err := a.store.DeleteHistory(ctx, user.ID); err != nil {
		a.writeUpstreamError(c, err, "Failed to delete account")
		return
	}
	if err := a.auth.DeleteUser(ctx, user.ID); err != nil {
		a.writeUpstreamError(c, err, "Failed to delete account")
		return
	}

	a.log.Info("account deleted", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"status": "Account deleted"})
}

// @Summary Send a password reset code
// @Tags account
// @Accept json
// @Produce json
// @Param body body passwordResetRequest true "Email"
// @Success 200 {object} map[string]string
// @Router /request-password-reset [post]
func (a *App) requestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if !mustJSON(c, &req) {
		return
	}
	email, ok := requireEmail(c, req.Email)
	if !ok {
		return
	}
	if err := a.auth.RequestPasswordReset(c.Request.Context(), email, strings.TrimSpace(req.RedirectTo)); err != nil {
		a.writeUpstreamError(c, err, "Failed to send password reset email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Password reset email sent"})
}

// @Summary Verify a reset code and set a new password
// @Tags account
// @Accept json
// @Produce json
// @Param body body verifyPasswordResetRequest true "Email, code and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /verify-password-reset [post]
func (a *App) verifyPasswordReset(c *gin.Context) {
	var req verifyPasswordResetRequest
	if !mustJSON(c, &req) {
		return
	}
	email, ok := requireEmail(c, req.Email)
	if !ok {
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(c, http.StatusBadRequest, "code is required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(c, http.StatusBadRequest, "new_password must be at least 8 characters")
		return
	}

	if err := a.auth.VerifyPasswordReset(c.Request.Context(), email, code, req.NewPassword); err != nil {
		if isClientRejection(err) {
			a.log.Info("password reset rejected", zap.Error(err))
			writeError(c, http.StatusBadRequest, "Invalid or expired reset code")
			return
		}
		a.writeUpstreamError(c, err, "Failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Password updated"})
}

func requireEmail(c *gin.Context, raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if email == "" {
		writeError(c, http.StatusBadRequest, "email is required")
		return "", false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		writeError(c, http.StatusBadRequest, "email is invalid")
		return "", false
	}
	return strings.ToLower(email), true
}
