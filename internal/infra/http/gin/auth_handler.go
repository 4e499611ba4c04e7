package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"findy/internal/app/services/auth"
	domainuser "findy/internal/domain/user"
)

type AuthHandler struct {
	Service *auth.Service
	Logger  *slog.Logger
}

type userResponse struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	Name        string               `json:"name"`
	Phone       string               `json:"phone,omitempty"`
	Avatar      string               `json:"avatar,omitempty"`
	Role        string               `json:"role"`
	Preferences preferencesResponse  `json:"preferences"`
}

type preferencesResponse struct {
	PureVeg   bool   `json:"pureVeg"`
	Gender    string `json:"gender,omitempty"`
	EarlyBird bool   `json:"earlyBird"`
	NightOwl  bool   `json:"nightOwl"`
}

func newUserResponse(u *domainuser.User) userResponse {
	return userResponse{
		ID:     string(u.ID),
		Email:  u.Email,
		Name:   u.Name,
		Phone:  u.Phone,
		Avatar: u.Avatar,
		Role:   string(u.Role),
		Preferences: preferencesResponse{
			PureVeg:   u.Preferences.PureVeg,
			Gender:    u.Preferences.Gender,
			EarlyBird: u.Preferences.EarlyBird,
			NightOwl:  u.Preferences.NightOwl,
		},
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.Service.Register(c.Request.Context(), auth.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{
		"token": result.Token,
		"user":  newUserResponse(result.User),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.Service.Login(c.Request.Context(), auth.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"token": result.Token,
		"user":  newUserResponse(result.User),
	})
}

func (h AuthHandler) Logout(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Service.Logout(c.Request.Context(), p.Token); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "logged out")
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	user, err := h.Service.ResolveToken(c.Request.Context(), p.Token)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, newUserResponse(user))
}

type updateProfileRequest struct {
	Name        string               `json:"name"`
	Phone       string               `json:"phone"`
	Avatar      string               `json:"avatar"`
	Preferences *preferencesRequest  `json:"preferences"`
}

type preferencesRequest struct {
	PureVeg   bool   `json:"pureVeg"`
	Gender    string `json:"gender"`
	EarlyBird bool   `json:"earlyBird"`
	NightOwl  bool   `json:"nightOwl"`
}

func (h AuthHandler) UpdateProfile(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	var prefs *domainuser.Preferences
	if req.Preferences != nil {
		prefs = &domainuser.Preferences{
			PureVeg:   req.Preferences.PureVeg,
			Gender:    req.Preferences.Gender,
			EarlyBird: req.Preferences.EarlyBird,
			NightOwl:  req.Preferences.NightOwl,
		}
	}
	user, err := h.Service.UpdateProfile(c.Request.Context(), p.ID, req.Name, req.Phone, req.Avatar, prefs)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, newUserResponse(user))
}
