package common

// AccessTokenHeaderName is the HTTP header carrying the bearer access token.
const AccessTokenHeaderName = "Authorization"

// CartSessionHeaderName is the HTTP header carrying the signed cart session
// token. The server issues it on the first cart operation.
const CartSessionHeaderName = "X-Cart-Session"
