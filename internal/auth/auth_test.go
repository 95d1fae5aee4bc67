package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer() *Issuer {
	return NewIssuer("rollcall-test", "secret", 15*time.Minute, 24*time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	iss := newIssuer()
	pair, err := iss.Issue("  Ms. Rao ")
	require.NoError(t, err)
	assert.True(t, pair.RefreshExp.After(pair.AccessExp))

	claims, err := iss.Parse(pair.AccessToken, UseAccess)
	require.NoError(t, err)
	assert.Equal(t, "Ms. Rao", claims.Subject)
	assert.Equal(t, RoleTeacher, claims.Role)

	_, err = iss.Parse(pair.RefreshToken, UseAccess)
	assert.ErrorIs(t, err, ErrWrongUse)
}

func TestIssueRequiresName(t *testing.T) {
	_, err := newIssuer().Issue("   ")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestParseRejects(t *testing.T) {
	iss := newIssuer()
	pair, err := iss.Issue("Ms. Rao")
	require.NoError(t, err)

	other := NewIssuer("rollcall-test", "other-secret", time.Minute, time.Minute)
	_, err = other.Parse(pair.AccessToken, UseAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewIssuer("someone-else", "secret", time.Minute, time.Minute)
	_, err = wrongIssuer.Parse(pair.AccessToken, UseAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := newIssuer()
	expired.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = expired.Parse(pair.AccessToken, UseAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("garbage", UseAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	iss := newIssuer()
	pair, err := iss.Issue("Mr. Iyer")
	require.NoError(t, err)

	next, err := iss.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	claims, err := iss.Parse(next.AccessToken, UseAccess)
	require.NoError(t, err)
	assert.Equal(t, "Mr. Iyer", claims.Subject)

	_, err = iss.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongUse)
}

func TestTeacherAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	iss := newIssuer()
	pair, err := iss.Issue("Ms. Rao")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/who", TeacherAuth(iss), func(c *gin.Context) {
		c.String(http.StatusOK, Teacher(c))
	})

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, ""},
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK, "Ms. Rao"},
		{"lowercase scheme", "bearer " + pair.AccessToken, http.StatusOK, "Ms. Rao"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
