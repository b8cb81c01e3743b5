package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/pkg/jwthelper"
)

const CallerKey = "caller"

var (
	errMissingToken = errors.New("missing bearer token")
	errNotAdmin     = errors.New("admin token required")
)

// Caller is the identity carried by a verified token. Tokens are issued
// outside this service.
type Caller struct {
	Name  string
	Admin bool
}

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT reads the token from the Authorization header, or from the
// "token" query parameter for websocket upgrades.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := strings.CutPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			token = ctx.Query("token")
		}
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			return
		}

		ctx.Set(CallerKey, Caller{Name: claims.Subject, Admin: claims.Admin})
		ctx.Next()
	}
}

// RequireAdmin must run after VerifyJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		caller, ok := GetCaller(ctx)
		if !ok || !caller.Admin {
			response.RenderErr(ctx, response.ErrPermissionDenied(errNotAdmin))
			return
		}
		ctx.Next()
	}
}

func GetCaller(ctx *gin.Context) (Caller, bool) {
	v, ok := ctx.Get(CallerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}
