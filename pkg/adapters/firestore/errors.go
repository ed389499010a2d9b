package firestore

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/emberhq/ember/pkg/core"
)

// mapError translates the one store error code this layer owns, NotFound,
// into the domain error. Everything else (permission, quota, transport)
// passes through untouched.
func mapError(err error, collection, id string) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return &core.DoesNotExist{Collection: collection, ID: id}
	}
	return err
}
