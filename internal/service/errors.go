// Package service holds the booking and meeting lifecycle use cases.  HTTP
// handlers call into it; storage is reached through small interfaces
// satisfied by the repository package.
package service

import (
	"net/http"

	"github.com/MathiAviles/abogapp/internal/apperr"
)

var (
	ErrSlotUnavailable   = apperr.New(apperr.Conflict, "SLOT_UNAVAILABLE", "the requested slot is not available")
	ErrLawyerUnavailable = apperr.New(apperr.NotFound, "LAWYER_NOT_FOUND", "lawyer not found or not accepting bookings")
	ErrNotApproved       = apperr.New(apperr.Forbidden, "ACCOUNT_NOT_APPROVED", "account must be approved before booking")
	ErrMeetingNotFound   = apperr.New(apperr.NotFound, "MEETING_NOT_FOUND", "meeting not found")
	ErrNotParticipant    = apperr.New(apperr.Forbidden, "FORBIDDEN", "not a participant of this meeting")
	ErrInvalidStatus     = apperr.New(apperr.StateError, "INVALID_STATUS", "status not allowed")
	ErrMeetingCancelled  = apperr.New(apperr.StateError, "MEETING_CANCELLED", "meeting was cancelled")
	ErrNotJoinable       = apperr.WithStatus(apperr.PreconditionFailed, "MEETING_NOT_ACTIVE",
		"meeting status does not allow joining", http.StatusPaymentRequired)
	ErrOutsideWindow = apperr.WithStatus(apperr.PreconditionFailed, "OUTSIDE_JOIN_WINDOW",
		"meeting can be joined from 10 minutes before its start until it ends", http.StatusForbidden)
	ErrVideoUnavailable = apperr.WithStatus(apperr.Internal, "VIDEO_UNAVAILABLE",
		"video provider not configured", http.StatusServiceUnavailable)
)
