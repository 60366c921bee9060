package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
	"github.com/noah-isme/kaizen-portal-api/pkg/response"
)

const contextActorKey = "kaizen_actor"

const bearerChallenge = `Bearer realm="kaizen-admin"`

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT resolves the admin actor from the bearer token and rejects the request otherwise.
func JWT(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var claims *models.JWTClaims
			if claims, err = auth.ValidateToken(token); err == nil {
				SetActor(c, models.ActorFromClaims(claims))
				c.Next()
				return
			}
		}
		c.Header("WWW-Authenticate", bearerChallenge)
		response.Error(c, err)
		c.Abort()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return token, nil
}

// SetActor stores the authenticated admin on the request.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(contextActorKey, actor)
}

// ActorFromContext returns the authenticated admin, if any.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(contextActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok && actor.ID != ""
}
