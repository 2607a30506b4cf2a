package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultActorId = "local-dev-user"

// ActorMiddleware resolves the acting identity for audit attribution.
// A valid bearer token supplies actor_id from its claims; without one the
// request is attributed to the default actor rather than rejected, since
// the ledger must record WHO acted even for unauthenticated deployments.
func ActorMiddleware(ctx *fiber.Ctx) error {
	actorId := DefaultActorId

	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["actor_id"].(string); ok && sub != "" {
					actorId = sub
				} else if sub, ok := claims["sub"].(string); ok && sub != "" {
					actorId = sub
				}
			}
		}
	}

	ctx.Locals("actor_id", actorId)
	return ctx.Next()
}
