package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	authservice "findy/internal/app/services/auth"
	domainauth "findy/internal/domain/auth"
	domainchat "findy/internal/domain/chat"
	domainfav "findy/internal/domain/favorites"
	domainlistings "findy/internal/domain/listings"
	domainpayments "findy/internal/domain/payments"
	domainreviews "findy/internal/domain/reviews"
	domainuser "findy/internal/domain/user"
)

// All responses use the same envelope: {success, count, data, message}.
// count appears on collection responses only.

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, count int, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError maps a domain error to an HTTP status and stable message.
// Unknown errors become a 500 with the detail kept out of the body.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	respondFail(c, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domainchat.ErrContentRequired):
		return http.StatusBadRequest, "message content is required"
	case errors.Is(err, domainchat.ErrReceiverRequired):
		return http.StatusBadRequest, "receiverId is required"
	case errors.Is(err, domainchat.ErrSelfMessage):
		return http.StatusBadRequest, "cannot start a conversation with yourself"
	case errors.Is(err, domainchat.ErrConversationNotFound):
		return http.StatusNotFound, "conversation not found"
	case errors.Is(err, domainchat.ErrMessageNotFound):
		return http.StatusNotFound, "message not found"
	case errors.Is(err, domainchat.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domainchat.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, domainchat.ErrNotParticipant):
		return http.StatusForbidden, "not a participant of this conversation"

	case errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrNameRequired),
		errors.Is(err, authservice.ErrPasswordTooShort):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, authservice.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, domainauth.ErrSessionNotFound), errors.Is(err, domainauth.ErrTokenRequired):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, domainuser.ErrNotFound):
		return http.StatusNotFound, "user not found"

	case errors.Is(err, domainlistings.ErrTitleRequired),
		errors.Is(err, domainlistings.ErrDescriptionRequired),
		errors.Is(err, domainlistings.ErrPriceInvalid),
		errors.Is(err, domainlistings.ErrGenderInvalid),
		errors.Is(err, domainlistings.ErrCoordinatesInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domainlistings.ErrNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, domainlistings.ErrNotOwner):
		return http.StatusForbidden, "you do not own this listing"

	case errors.Is(err, domainfav.ErrAlreadyFavorited):
		return http.StatusConflict, "listing already in favorites"
	case errors.Is(err, domainfav.ErrNotFound):
		return http.StatusNotFound, "favorite not found"

	case errors.Is(err, domainreviews.ErrRatingRange),
		errors.Is(err, domainreviews.ErrListingRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domainreviews.ErrAlreadyReviewed):
		return http.StatusConflict, "you have already reviewed this listing"

	case errors.Is(err, domainpayments.ErrAmountInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domainpayments.ErrNotFound):
		return http.StatusNotFound, "payment not found"
	case errors.Is(err, domainpayments.ErrIntentFailed):
		return http.StatusBadRequest, "payment was not completed"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
