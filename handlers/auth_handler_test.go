package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oneclass/platform/auth"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/tenancy"
)

// schoolUser returns a school admin whose password is loginPassword.
const loginPassword = "correct-horse"

func schoolUser(t *testing.T, schoolID uuid.UUID, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(loginPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return models.NewUser(schoolID, email, string(hash), models.RoleSchoolAdmin)
}

func TestHandleLogin(t *testing.T) {
	email := "head@stmarys.ac.zw"

	loginRequest := func(t *testing.T, host string, body LoginRequest) *http.Request {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, body))
		req.Host = host
		return req
	}

	matchSchool := func(id uuid.UUID) interface{} {
		return mock.MatchedBy(func(got *uuid.UUID) bool {
			return got != nil && *got == id
		})
	}

	t.Run("resolves the school from the request host", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		school := activeSchool("stmarys")
		user := schoolUser(t, school.ID, email)

		env.schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil)
		env.schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil)
		env.users.On("FindByEmail", mock.Anything, matchSchool(school.ID), email).Return(user, nil)

		req := loginRequest(t, "stmarys.oneclass.ac.zw", LoginRequest{Email: email, Password: loginPassword})
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data LoginResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.NotEmpty(t, response.Data.Token)
		assert.NotEmpty(t, response.Data.ExpiresAt)
		require.NotNil(t, response.Data.User)
		assert.Equal(t, user.ID, response.Data.User.ID)

		// Host-only session cookie: no Domain attribute, invisible to other
		// school subdomains.
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.TokenCookie, cookies[0].Name)
		assert.Equal(t, response.Data.Token, cookies[0].Value)
		assert.Empty(t, cookies[0].Domain)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

		env.users.AssertExpectations(t)
	})

	t.Run("host subdomain wins over the body subdomain", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		school := activeSchool("stmarys")
		user := schoolUser(t, school.ID, email)

		env.schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil)
		env.schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil)
		env.users.On("FindByEmail", mock.Anything, matchSchool(school.ID), email).Return(user, nil)

		body := LoginRequest{Email: email, Password: loginPassword, Subdomain: "other-school"}
		req := loginRequest(t, "stmarys.oneclass.ac.zw", body)
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env.schools.AssertNotCalled(t, "GetBySubdomain", mock.Anything, "other-school")
	})

	t.Run("body subdomain serves the bare domain", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		school := activeSchool("stmarys")
		user := schoolUser(t, school.ID, email)

		env.schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil)
		env.schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil)
		env.users.On("FindByEmail", mock.Anything, matchSchool(school.ID), email).Return(user, nil)

		body := LoginRequest{Email: email, Password: loginPassword, Subdomain: "stmarys"}
		req := loginRequest(t, "oneclass.ac.zw", body)
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env.schools.AssertExpectations(t)
	})

	t.Run("no school at all is a platform administrator login", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		hash, err := bcrypt.GenerateFromPassword([]byte(loginPassword), bcrypt.MinCost)
		require.NoError(t, err)
		operator := models.NewPlatformAdmin("ops@oneclass.ac.zw", string(hash))

		env.users.On("FindByEmail", mock.Anything,
			mock.MatchedBy(func(got *uuid.UUID) bool { return got == nil }),
			"ops@oneclass.ac.zw").Return(operator, nil)

		body := LoginRequest{Email: "ops@oneclass.ac.zw", Password: loginPassword}
		req := loginRequest(t, "oneclass.ac.zw", body)
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env.schools.AssertNotCalled(t, "GetBySubdomain", mock.Anything, mock.Anything)

		var response struct {
			Data LoginResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, models.RolePlatformAdmin, response.Data.User.Role)
		assert.Nil(t, response.Data.User.SchoolID)
	})

	t.Run("suspended school cannot be logged into", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		school := activeSchool("stmarys")
		school.Status = models.SchoolStatusSuspended
		env.schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil)
		env.schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil)

		req := loginRequest(t, "stmarys.oneclass.ac.zw", LoginRequest{Email: email, Password: loginPassword})
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "school_unavailable", response["error"])
		details := response["details"].(map[string]interface{})
		assert.Equal(t, "/suspended", details["redirect"])

		// Credentials are never checked against an unavailable school.
		env.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("wrong password is a uniform 401", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		school := activeSchool("stmarys")
		user := schoolUser(t, school.ID, email)

		env.schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil)
		env.schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil)
		env.users.On("FindByEmail", mock.Anything, matchSchool(school.ID), email).Return(user, nil)

		req := loginRequest(t, "stmarys.oneclass.ac.zw", LoginRequest{Email: email, Password: "nope"})
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "unauthorized", response["error"])
		assert.Equal(t, "invalid email or password", response["message"])
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("unknown email is the same 401", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		school := activeSchool("stmarys")
		env.schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil)
		env.schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil)
		env.users.On("FindByEmail", mock.Anything, matchSchool(school.ID), "ghost@stmarys.ac.zw").
			Return(nil, services.ErrUserNotFound)

		req := loginRequest(t, "stmarys.oneclass.ac.zw", LoginRequest{Email: "ghost@stmarys.ac.zw", Password: loginPassword})
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "invalid email or password", response["message"])
	})
}

func TestHandleLogout(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()

	handler.HandleLogout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.TokenCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHandleMe(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		w := httptest.NewRecorder()

		handler.HandleMe(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("echoes the session and resolved school", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		schoolID := uuid.New()
		userID := uuid.New()
		tc := &tenancy.TenantContext{
			SchoolID:   schoolID,
			SchoolName: "St Marys College",
			Subdomain:  "stmarys",
			Tier:       models.TierBasic,
			Modules: map[string]bool{
				models.ModuleSIS:       true,
				models.ModuleFinance:   true,
				models.ModuleReporting: false,
			},
			Session: &tenancy.UserSession{
				UserID:      userID,
				SchoolID:    schoolID,
				Role:        string(models.RoleSchoolAdmin),
				Permissions: []string{},
			},
			Strategy: tenancy.StrategyHost,
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(tenancy.WithTenant(req.Context(), tc))
		w := httptest.NewRecorder()

		handler.HandleMe(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data MeResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, userID, response.Data.UserID)
		require.NotNil(t, response.Data.SchoolID)
		assert.Equal(t, schoolID, *response.Data.SchoolID)
		assert.Equal(t, string(models.RoleSchoolAdmin), response.Data.Role)

		require.NotNil(t, response.Data.School)
		assert.Equal(t, "stmarys", response.Data.School.Subdomain)
		// Enabled modules only, in sorted order.
		assert.Equal(t, []string{models.ModuleFinance, models.ModuleSIS}, response.Data.School.Modules)
	})

	t.Run("platform administrator has no school echo", func(t *testing.T) {
		env := newHandlerEnv(t)
		handler := NewAuthHandler(env.authSvc, env.dirSvc, env.cfg, env.logger)

		session := &tenancy.UserSession{
			UserID: uuid.New(),
			Role:   string(models.RolePlatformAdmin),
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(tenancy.WithSession(req.Context(), session))
		w := httptest.NewRecorder()

		handler.HandleMe(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data MeResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, session.UserID, response.Data.UserID)
		assert.Nil(t, response.Data.SchoolID)
		assert.Nil(t, response.Data.School)
	})
}
