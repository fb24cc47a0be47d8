/**
 * @description
 * Request token signing for the App Store Connect API. The API authorizes
 * requests with short-lived ES256 JWTs; keys are issued per team in App
 * Store Connect and referenced by key id.
 */
package appstoreclient

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// tokenAudience is fixed by the App Store Connect API.
	tokenAudience = "appstoreconnect-v1"
	// tokenTTL keeps tokens well inside the API's 20 minute lifetime cap.
	tokenTTL = 15 * time.Minute
)

// signToken issues a fresh ES256 token for one outbound request. Tokens
// are never cached or reused across requests.
func (c *Client) signToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": c.issuerID,
		"exp": time.Now().Add(tokenTTL).Unix(),
		"aud": tokenAudience,
	})
	token.Header["kid"] = c.keyID

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign request token: %w", err)
	}
	return signed, nil
}
