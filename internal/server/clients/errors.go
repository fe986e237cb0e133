package clients

import "errors"

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var re *remoteError
	return errors.As(err, &re) && re.StatusCode == 404
}
